package sheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tabwork/tabwork/internal/engine"
)

// readExcel decodes the first sheet of a workbook. All cell values come
// through as their displayed text; typing happens downstream.
func (c *Codec) readExcel(path string) (*engine.Table, error) {
	f, err := c.fs.Open(path)
	if err != nil {
		return nil, &engine.ReadError{Path: path, Err: err}
	}
	defer f.Close()

	x, err := excelize.OpenReader(f)
	if err != nil {
		return nil, &engine.ReadError{Path: path, Err: err}
	}
	defer x.Close()

	sheets := x.GetSheetList()
	if len(sheets) == 0 {
		return nil, &engine.ReadError{Path: path, Err: errors.New("workbook has no sheets")}
	}
	records, err := x.GetRows(sheets[0])
	if err != nil {
		return nil, &engine.ReadError{Path: path, Err: err}
	}
	head, rows, err := header(path, records)
	if err != nil {
		return nil, err
	}
	t, err := engine.FromStringRows(head, rows)
	if err != nil {
		return nil, err
	}
	return t.WithSource(path), nil
}

// writeExcel encodes the table as a single-sheet workbook.
func (c *Codec) writeExcel(t *engine.Table, path string) error {
	return c.atomicWrite(path, func(w io.Writer) error {
		return encodeWorkbook(w, []engine.Sheet{{Name: c.sheetName, Table: t}})
	})
}

// WriteWorkbook encodes one workbook with one sheet per entry. Sheet
// names are made Excel-safe and deduplicated.
func (c *Codec) WriteWorkbook(path string, sheets []engine.Sheet) error {
	if len(sheets) == 0 {
		return &engine.WriteError{Path: path, Err: errors.New("workbook needs at least one sheet")}
	}
	return c.atomicWrite(path, func(w io.Writer) error {
		return encodeWorkbook(w, sheets)
	})
}

func encodeWorkbook(w io.Writer, sheets []engine.Sheet) error {
	x := excelize.NewFile()
	defer x.Close()

	used := make(map[string]bool, len(sheets))
	for i, sh := range sheets {
		name := sheetSafeName(sh.Name, used)
		if i == 0 {
			// A fresh workbook starts with one default sheet; claim it.
			if name != "Sheet1" {
				if err := x.SetSheetName("Sheet1", name); err != nil {
					return err
				}
			}
		} else {
			if _, err := x.NewSheet(name); err != nil {
				return err
			}
		}
		if err := writeSheet(x, name, sh.Table); err != nil {
			return err
		}
	}
	x.SetActiveSheet(0)
	return x.Write(w)
}

func writeSheet(x *excelize.File, name string, t *engine.Table) error {
	headerRow := make([]interface{}, t.NumCols())
	for i, col := range t.ColumnNames() {
		headerRow[i] = col
	}
	if err := x.SetSheetRow(name, "A1", &headerRow); err != nil {
		return err
	}

	row := make([]interface{}, t.NumCols())
	for i := 0; i < t.NumRows(); i++ {
		for j, cell := range t.Row(i) {
			row[j] = excelValue(cell)
		}
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := x.SetSheetRow(name, ref, &row); err != nil {
			return err
		}
	}
	return nil
}

// excelValue maps a cell to the typed value excelize stores: numbers
// and booleans keep their type, datetimes become Excel dates, Missing
// leaves the cell empty.
func excelValue(c engine.Cell) interface{} {
	if c.IsMissing() {
		return nil
	}
	if d, ok := c.Number(); ok {
		return d.InexactFloat64()
	}
	if ts, ok := c.Time(); ok {
		return ts
	}
	if b, ok := c.Bool(); ok {
		return b
	}
	return c.String()
}

const maxSheetNameLen = 31

// sheetSafeName rewrites a label into a legal, unique Excel sheet name:
// the characters Excel forbids become underscores, the result is capped
// at 31 runes, and collisions get a numeric suffix.
func sheetSafeName(label string, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, label)
	name = strings.Trim(name, "'")
	if name = strings.TrimSpace(name); name == "" {
		name = "Sheet"
	}
	name = truncateRunes(name, maxSheetNameLen)

	if !used[name] {
		used[name] = true
		return name
	}
	for n := 2; ; n++ {
		suffix := fmt.Sprintf("_%d", n)
		candidate := truncateRunes(name, maxSheetNameLen-len(suffix)) + suffix
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
