package sheet

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/xitongsys/parquet-go/writer"

	"github.com/tabwork/tabwork/internal/engine"
)

// parquetField is one node of the JSON schema handed to the parquet
// writer; tags carry the name and physical type.
type parquetField struct {
	Tag    string          `json:",omitempty"`
	Fields []*parquetField `json:",omitempty"`
}

// writeParquet encodes the table with one optional parquet column per
// table column. Numeric columns become DOUBLE, boolean columns BOOLEAN
// and everything else UTF8 text in canonical form; Missing cells are
// nulls.
func (c *Codec) writeParquet(t *engine.Table, path string) error {
	return c.atomicWrite(path, func(w io.Writer) error {
		return encodeParquet(t, w)
	})
}

func encodeParquet(t *engine.Table, w io.Writer) error {
	names := parquetNames(t.ColumnNames())

	kinds := make([]engine.Kind, t.NumCols())
	root := parquetField{Tag: "name=parquet_go_root, repetitiontype=REQUIRED"}
	for i := 0; i < t.NumCols(); i++ {
		kinds[i] = columnKind(t.ColumnAt(i))
		tag := fmt.Sprintf("name=%s, %s, repetitiontype=OPTIONAL", names[i], typeTag(kinds[i]))
		root.Fields = append(root.Fields, &parquetField{Tag: tag})
	}
	schema, err := json.Marshal(root)
	if err != nil {
		return err
	}

	pw, err := writer.NewJSONWriterFromWriter(string(schema), w, 4)
	if err != nil {
		return err
	}
	for i := 0; i < t.NumRows(); i++ {
		row := make(map[string]any, t.NumCols())
		for j, cell := range t.Row(i) {
			if cell.IsMissing() {
				continue
			}
			row[names[j]] = parquetValue(cell, kinds[j])
		}
		rowBytes, err := json.Marshal(row)
		if err != nil {
			return err
		}
		if err := pw.Write(rowBytes); err != nil {
			return err
		}
	}
	return pw.WriteStop()
}

// columnKind resolves the physical type of a column: a single definite
// kind across every present cell keeps its native type, anything mixed
// falls back to text.
func columnKind(col engine.Column) engine.Kind {
	kind := engine.KindMissing
	for _, cell := range col.Cells {
		if cell.IsMissing() {
			continue
		}
		if kind == engine.KindMissing {
			kind = cell.Kind()
			continue
		}
		if cell.Kind() != kind {
			return engine.KindText
		}
	}
	return kind
}

func typeTag(kind engine.Kind) string {
	switch kind {
	case engine.KindNumber:
		return "type=DOUBLE"
	case engine.KindBool:
		return "type=BOOLEAN"
	default:
		return "type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN"
	}
}

// parquetValue renders a cell in the form the column's physical type
// expects. Cells in a column that fell back to text always render as
// canonical text, whatever their own kind.
func parquetValue(c engine.Cell, kind engine.Kind) any {
	switch kind {
	case engine.KindNumber:
		if d, ok := c.Number(); ok {
			return d.InexactFloat64()
		}
	case engine.KindBool:
		if b, ok := c.Bool(); ok {
			return b
		}
	}
	return c.String()
}

// parquetNames rewrites column names into unique schema-safe field
// names: tag syntax reserves commas and equals signs, and the writer
// wants names starting with an upper-case letter.
func parquetNames(columns []string) []string {
	names := make([]string, len(columns))
	used := make(map[string]bool, len(columns))
	for i, col := range columns {
		name := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
				return r
			}
			return '_'
		}, col)
		if name == "" || !unicode.IsLetter([]rune(name)[0]) {
			name = "Col_" + name
		}
		runes := []rune(name)
		runes[0] = unicode.ToUpper(runes[0])
		name = string(runes)

		if used[name] {
			for n := 2; ; n++ {
				candidate := fmt.Sprintf("%s_%d", name, n)
				if !used[candidate] {
					name = candidate
					break
				}
			}
		}
		used[name] = true
		names[i] = name
	}
	return names
}
