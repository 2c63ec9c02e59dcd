package engine

// coerce.go is the single conversion point for cell values. Every
// type-sensitive comparison in the engine funnels through a Coercer;
// inline ad hoc parsing anywhere else is a correctness bug.
//
// Parsing handles the messy reality of spreadsheet exports:
//   - multiple date formats (US, EU, ISO) with a fixed day/month convention
//   - currency symbols, thousands separators, accounting negatives
//   - assorted boolean spellings (yes/no, true/false, 1/0)
//
// Coercion never fails: a value that does not convert cleanly becomes
// Missing, and callers that need strictness count the Missing results.

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// numericRegex validates a numeric string after cleanup. Matches integers,
// decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// DateOrder fixes how ambiguous all-numeric dates are read: 1/2/2006 is
// January 2 under MDY and February 1 under DMY.
type DateOrder string

const (
	DateOrderMDY DateOrder = "mdy"
	DateOrderDMY DateOrder = "dmy"
)

// ParseDateOrder maps a config string to a DateOrder.
func ParseDateOrder(s string) (DateOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mdy", "us":
		return DateOrderMDY, true
	case "dmy", "eu":
		return DateOrderDMY, true
	}
	return "", false
}

// Date layouts split by year width so two-digit years can be pivoted.
var (
	commonFourDigitLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02T15:04:05",
		time.RFC3339,
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
	mdyFourDigitLayouts = []string{
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"1/2/2006 15:04:05", "1/2/2006 15:04",
	}
	dmyFourDigitLayouts = []string{
		"2/1/2006", "02/01/2006", "2-1-2006", "02-01-2006", "2.1.2006", "02.01.2006",
		"2/1/2006 15:04:05", "2/1/2006 15:04",
	}
	mdyTwoDigitLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	dmyTwoDigitLayouts = []string{
		"2/1/06", "02/01/06", "2-1-06", "2.1.06", "02.01.06",
	}
)

// Coercer converts cells to target kinds under one fixed set of
// conventions: a day/month order for ambiguous dates and a pivot for
// two-digit years. A Coercer is immutable and safe for concurrent use.
type Coercer struct {
	dateOrder DateOrder
	yearPivot int
	now       func() time.Time

	fourDigit []string
	twoDigit  []string
}

// CoercerOption configures a Coercer.
type CoercerOption func(*Coercer)

// WithDateOrder sets the day/month convention for ambiguous dates.
func WithDateOrder(o DateOrder) CoercerOption {
	return func(c *Coercer) { c.dateOrder = o }
}

// WithYearPivot sets how far into the future a two-digit year may land
// before it is pushed back a century.
func WithYearPivot(years int) CoercerOption {
	return func(c *Coercer) { c.yearPivot = years }
}

// NewCoercer returns a Coercer with the given options applied over the
// defaults (MDY, pivot 20).
func NewCoercer(opts ...CoercerOption) *Coercer {
	c := &Coercer{
		dateOrder: DateOrderMDY,
		yearPivot: 20,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dateOrder == DateOrderDMY {
		c.fourDigit = append(append([]string{}, dmyFourDigitLayouts...), commonFourDigitLayouts...)
		c.twoDigit = dmyTwoDigitLayouts
	} else {
		c.fourDigit = append(append([]string{}, mdyFourDigitLayouts...), commonFourDigitLayouts...)
		c.twoDigit = mdyTwoDigitLayouts
	}
	return c
}

// DateOrder returns the configured day/month convention.
func (c *Coercer) DateOrder() DateOrder { return c.dateOrder }

// Coerce converts a cell to the target kind. Values that do not convert
// cleanly become Missing; Missing stays Missing under every target, so
// fill and is-missing semantics survive conversion.
func (c *Coercer) Coerce(v Cell, target Kind) Cell {
	if v.IsMissing() {
		return Missing()
	}
	switch target {
	case KindText:
		if v.kind == KindText {
			return v
		}
		return Text(v.String())
	case KindNumber:
		switch v.kind {
		case KindNumber:
			return v
		case KindBool:
			if v.b {
				return NumberFromInt(1)
			}
			return NumberFromInt(0)
		case KindText:
			if d, ok := c.ParseNumber(v.text); ok {
				return Number(d)
			}
		}
		return Missing()
	case KindDateTime:
		switch v.kind {
		case KindDateTime:
			return v
		case KindText:
			if t, ok := c.ParseDateTime(v.text); ok {
				return DateTime(t)
			}
		}
		return Missing()
	case KindBool:
		switch v.kind {
		case KindBool:
			return v
		case KindText:
			if b, ok := ParseBool(v.text); ok {
				return Bool(b)
			}
		case KindNumber:
			if v.num.IsZero() {
				return Bool(false)
			}
			if v.num.Equal(decimal.NewFromInt(1)) {
				return Bool(true)
			}
		}
		return Missing()
	}
	return Missing()
}

// ParseNumber parses a numeric string. It strips currency symbols and
// thousands separators and reads the accounting negative "(123.45)".
func (c *Coercer) ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if negative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// ParseDateTime parses a date or datetime string. Four-digit-year layouts
// are tried first (unambiguous); two-digit years are pivoted so they never
// land more than the configured number of years in the future.
func (c *Coercer) ParseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range c.fourDigit {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivot := c.now().Year() + c.yearPivot
	for _, layout := range c.twoDigit {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivot {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// ParseBool parses a boolean string. Accepts true/false, t/f, yes/no,
// y/n, 1/0, case-insensitive.
func ParseBool(s string) (value, ok bool) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	}
	return false, false
}

// InferColumnKind reports the advisory kind of a column: the single kind
// that every non-missing cell either has or parses as. Typed cells pin
// their own kind; text cells contribute every kind they parse as. When
// more than one kind survives, Number wins over DateTime over Bool.
// Columns with no agreeing kind infer as Text; all-missing columns infer
// as Missing.
func (c *Coercer) InferColumnKind(cells []Cell) Kind {
	const (
		asNumber = 1 << iota
		asDateTime
		asBool
	)

	mask := asNumber | asDateTime | asBool
	seen := false
	for _, cell := range cells {
		if cell.IsMissing() {
			continue
		}
		seen = true
		var m int
		switch cell.kind {
		case KindNumber:
			m = asNumber
		case KindDateTime:
			m = asDateTime
		case KindBool:
			m = asBool
		case KindText:
			if _, ok := c.ParseNumber(cell.text); ok {
				m |= asNumber
			}
			if _, ok := c.ParseDateTime(cell.text); ok {
				m |= asDateTime
			}
			if _, ok := ParseBool(cell.text); ok {
				m |= asBool
			}
		}
		mask &= m
		if mask == 0 {
			return KindText
		}
	}
	if !seen {
		return KindMissing
	}
	switch {
	case mask&asNumber != 0:
		return KindNumber
	case mask&asDateTime != 0:
		return KindDateTime
	default:
		return KindBool
	}
}

// CleanCell strips common spreadsheet-export artifacts from a raw cell:
// surrounding whitespace, the Excel formula prefix (="..."), and wrapping
// quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return s
}
