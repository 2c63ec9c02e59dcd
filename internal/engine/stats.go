package engine

// stats.go derives report tables from the working table: per-column
// descriptive statistics and a Pearson correlation matrix. Both consider
// only columns that infer as numeric; values that fail numeric coercion
// are skipped, never zero-filled.

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// describeHeader is the column layout of the Describe report.
var describeHeader = []string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Describe returns one report row per column that infers as numeric:
// count, mean, sample standard deviation, minimum, quartiles and maximum.
// Quartiles use linear interpolation between closest ranks. Missing cells
// do not count toward the statistics; std on a single value is Missing.
// An input with no numeric columns yields an empty report.
func Describe(co *Coercer, t *Table) (*Table, error) {
	if t == nil {
		return nil, &SchemaError{Reason: "table is nil"}
	}

	cols := make([]Column, len(describeHeader))
	for i, name := range describeHeader {
		cols[i] = Column{Name: name}
	}

	for _, col := range t.cols {
		if co.InferColumnKind(col.Cells) != KindNumber {
			continue
		}
		nums := numericValues(co, col.Cells)
		if len(nums) == 0 {
			continue
		}
		sorted := append([]decimal.Decimal(nil), nums...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Cmp(sorted[j]) < 0 })

		std := Missing()
		if len(nums) > 1 {
			std = NumberFromFloat(stddev(nums))
		}

		row := []Cell{
			Text(col.Name),
			NumberFromInt(int64(len(nums))),
			Number(decimal.Avg(nums[0], nums[1:]...)),
			std,
			Number(sorted[0]),
			Number(quantile(sorted, 0.25)),
			Number(quantile(sorted, 0.5)),
			Number(quantile(sorted, 0.75)),
			Number(sorted[len(sorted)-1]),
		}
		for i := range cols {
			cols[i].Cells = append(cols[i].Cells, row[i])
		}
	}

	return New(cols)
}

// Correlate returns the Pearson correlation matrix of the numeric
// columns as a table: a leading "column" column then one column per
// numeric input column. Each pair correlates over the rows where both
// values are numeric; pairs with fewer than two such rows, or with zero
// variance, yield Missing. Coefficients are rounded to six places.
func Correlate(co *Coercer, t *Table) (*Table, error) {
	if t == nil {
		return nil, &SchemaError{Reason: "table is nil"}
	}

	type numericCol struct {
		name   string
		values []float64 // aligned to source rows; NaN marks non-numeric
	}
	var numeric []numericCol
	for _, col := range t.cols {
		if co.InferColumnKind(col.Cells) != KindNumber {
			continue
		}
		values := make([]float64, len(col.Cells))
		usable := 0
		for i, cell := range col.Cells {
			if d, ok := co.Coerce(cell, KindNumber).Number(); ok {
				values[i] = d.InexactFloat64()
				usable++
			} else {
				values[i] = math.NaN()
			}
		}
		if usable >= 2 {
			numeric = append(numeric, numericCol{name: col.Name, values: values})
		}
	}

	cols := make([]Column, 0, len(numeric)+1)
	label := Column{Name: "column"}
	for _, nc := range numeric {
		label.Cells = append(label.Cells, Text(nc.name))
	}
	cols = append(cols, label)

	for _, x := range numeric {
		out := Column{Name: x.name, Cells: make([]Cell, len(numeric))}
		for i, y := range numeric {
			r, ok := pearson(x.values, y.values)
			if !ok {
				out.Cells[i] = Missing()
			} else {
				out.Cells[i] = Number(decimal.NewFromFloat(r).Round(6))
			}
		}
		cols = append(cols, out)
	}

	return New(cols)
}

// numericValues collects the column's values that coerce to Number.
func numericValues(co *Coercer, cells []Cell) []decimal.Decimal {
	nums := make([]decimal.Decimal, 0, len(cells))
	for _, cell := range cells {
		if d, ok := co.Coerce(cell, KindNumber).Number(); ok {
			nums = append(nums, d)
		}
	}
	return nums
}

// stddev returns the sample standard deviation (n-1 denominator).
func stddev(nums []decimal.Decimal) float64 {
	mean := decimal.Avg(nums[0], nums[1:]...).InexactFloat64()
	var sum float64
	for _, d := range nums {
		diff := d.InexactFloat64() - mean
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(nums)-1))
}

// quantile returns the q-th quantile of sorted values with linear
// interpolation between closest ranks.
func quantile(sorted []decimal.Decimal, q float64) decimal.Decimal {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := decimal.NewFromFloat(pos - float64(lo))
	return sorted[lo].Add(sorted[hi].Sub(sorted[lo]).Mul(frac))
}

// pearson computes the correlation of the pairwise-complete rows of two
// aligned series. NaN entries mark rows to skip.
func pearson(xs, ys []float64) (float64, bool) {
	var n int
	var sumX, sumY float64
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		n++
		sumX += xs[i]
		sumY += ys[i]
	}
	if n < 2 {
		return 0, false
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var cov, varX, varY float64
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}
