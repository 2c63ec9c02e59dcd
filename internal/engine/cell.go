package engine

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the semantic type of a cell value.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindDateTime
	KindBool
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDateTime:
		return "datetime"
	case KindBool:
		return "bool"
	case KindText:
		return "text"
	case KindMissing:
		return "missing"
	}
	return "unknown"
}

// ParseKind maps a user-supplied type name to a Kind. It accepts the
// common aliases (numeric, date, boolean, string).
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "number", "numeric", "num", "float", "int":
		return KindNumber, true
	case "datetime", "date", "timestamp":
		return KindDateTime, true
	case "bool", "boolean":
		return KindBool, true
	case "text", "string", "str":
		return KindText, true
	}
	return KindMissing, false
}

// Cell is one tagged table value: a Number, DateTime, Bool, Text, or
// Missing. Missing is a first-class value, distinct from an empty string
// or zero. The zero Cell is Missing.
type Cell struct {
	kind Kind
	num  decimal.Decimal
	ts   time.Time
	b    bool
	text string
}

// Missing returns the absent-value cell.
func Missing() Cell { return Cell{} }

// Number returns a numeric cell.
func Number(d decimal.Decimal) Cell { return Cell{kind: KindNumber, num: d} }

// NumberFromInt returns a numeric cell holding an integer.
func NumberFromInt(n int64) Cell { return Number(decimal.NewFromInt(n)) }

// NumberFromFloat returns a numeric cell holding a float.
func NumberFromFloat(f float64) Cell { return Number(decimal.NewFromFloat(f)) }

// DateTime returns a datetime cell.
func DateTime(t time.Time) Cell { return Cell{kind: KindDateTime, ts: t} }

// Bool returns a boolean cell.
func Bool(v bool) Cell { return Cell{kind: KindBool, b: v} }

// Text returns a text cell. Text("") is not Missing; absence is modeled
// only by the Missing kind.
func Text(s string) Cell { return Cell{kind: KindText, text: s} }

func (c Cell) Kind() Kind      { return c.kind }
func (c Cell) IsMissing() bool { return c.kind == KindMissing }

// Number returns the numeric value and whether the cell is a Number.
func (c Cell) Number() (decimal.Decimal, bool) { return c.num, c.kind == KindNumber }

// Time returns the timestamp and whether the cell is a DateTime.
func (c Cell) Time() (time.Time, bool) { return c.ts, c.kind == KindDateTime }

// Bool returns the boolean value and whether the cell is a Bool.
func (c Cell) Bool() (bool, bool) { return c.b, c.kind == KindBool }

// Text returns the raw text and whether the cell is a Text.
func (c Cell) Text() (string, bool) { return c.text, c.kind == KindText }

// String returns the canonical text form of the cell: numbers without
// trailing zeros (5.0 prints as "5"), datetimes as 2006-01-02 when the
// time of day is zero and 2006-01-02 15:04:05 otherwise, booleans as
// lowercase true/false, Missing as the empty string.
func (c Cell) String() string {
	switch c.kind {
	case KindNumber:
		return c.num.String()
	case KindDateTime:
		if dateOnly(c.ts) {
			return c.ts.Format("2006-01-02")
		}
		return c.ts.Format("2006-01-02 15:04:05")
	case KindBool:
		if c.b {
			return "true"
		}
		return "false"
	case KindText:
		return c.text
	}
	return ""
}

func dateOnly(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

// Equal reports raw-value equality: same kind and same value. Numbers
// compare numerically, so 5 and 5.00 are equal; a Number never equals a
// Text, whatever their strings.
func (c Cell) Equal(o Cell) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case KindNumber:
		return c.num.Equal(o.num)
	case KindDateTime:
		return c.ts.Equal(o.ts)
	case KindBool:
		return c.b == o.b
	case KindText:
		return c.text == o.text
	}
	return true
}

// key is the raw-value grouping identity used by partitioning, duplicate
// detection and dedupe. It carries the kind tag so a numeric 5 and the
// text "5" land in different groups.
func (c Cell) key() string {
	switch c.kind {
	case KindNumber:
		return "n\x00" + c.num.String()
	case KindDateTime:
		return "d\x00" + c.ts.Format(time.RFC3339Nano)
	case KindBool:
		if c.b {
			return "b\x001"
		}
		return "b\x000"
	case KindText:
		return "t\x00" + c.text
	}
	return "m"
}
