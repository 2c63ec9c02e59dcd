package engine

import (
	"fmt"
	"strings"
)

// Partition is a disjoint, exhaustive grouping of one table's rows by a
// column's raw values. Groups appear in the order their key first occurs
// in the source table; every source row lands in exactly one group.
type Partition struct {
	Column string
	Groups []Group
}

// Group is one partition bucket: the raw key value, a file-safe label
// unique within the partition, and the table of matching rows.
type Group struct {
	Key   Cell
	Label string
	Table *Table
}

// PartitionBy splits a table by the raw values of one column in a single
// pass. Missing is a valid, distinct group, labeled "(blank)". Keys are
// not coerced: a numeric 5 and the text "5" form separate groups.
func PartitionBy(t *Table, column string) (*Partition, error) {
	if t == nil {
		return nil, &SchemaError{Reason: "table is nil"}
	}
	ci, err := t.columnIndex(column)
	if err != nil {
		return nil, err
	}

	cells := t.cols[ci].Cells
	order := make([]string, 0, 8)
	rowsByKey := make(map[string][]int)
	keyCell := make(map[string]Cell)

	for i, cell := range cells {
		k := cell.key()
		if _, seen := rowsByKey[k]; !seen {
			order = append(order, k)
			keyCell[k] = cell
		}
		rowsByKey[k] = append(rowsByKey[k], i)
	}

	p := &Partition{Column: column, Groups: make([]Group, 0, len(order))}
	used := make(map[string]bool, len(order))
	for _, k := range order {
		cell := keyCell[k]
		label := uniqueLabel(fileSafeLabel(cell), used)
		p.Groups = append(p.Groups, Group{
			Key:   cell,
			Label: label,
			Table: t.selectRows(rowsByKey[k]),
		})
	}
	return p, nil
}

// Len returns the number of groups.
func (p *Partition) Len() int { return len(p.Groups) }

// fileSafeLabel renders a cell as an identifier usable in file and sheet
// names: canonical text with path separators, reserved punctuation and
// control characters replaced, trimmed, and capped in length. Missing
// becomes "(blank)".
func fileSafeLabel(c Cell) string {
	if c.IsMissing() {
		return "(blank)"
	}
	s := c.String()
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < 0x20, r == 0x7f:
			b.WriteRune('_')
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	s = strings.Trim(b.String(), " .")
	if s == "" {
		return "_"
	}
	runes := []rune(s)
	if len(runes) > 80 {
		s = string(runes[:80])
	}
	return s
}

// uniqueLabel disambiguates labels that sanitize to the same string by
// appending _2, _3, ... in encounter order.
func uniqueLabel(label string, used map[string]bool) string {
	if !used[label] {
		used[label] = true
		return label
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", label, n)
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}
