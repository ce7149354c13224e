package analysis

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/profile_data/internal/table"
	"github.com/shopspring/decimal"
)

const (
	// DistributionMaxCardinality is the largest number of distinct values a
	// categorical column may have for its value distribution to be reported.
	DistributionMaxCardinality = 10
	// DistributionTopN caps the number of values listed in a distribution.
	DistributionTopN = 10

	// iqrFactor scales the interquartile range into outlier fences.
	iqrFactor = 1.5
)

// Report is the descriptive profile of a table.
type Report struct {
	Name        string
	Rows        int
	Cols        int
	MemoryBytes int
	Missing     []MissingCount
	Duplicates  DuplicateCount
	Types       []TypeCount
	// Numeric is empty when the table has no numeric columns; the outlier
	// section is omitted in that case as well.
	Numeric     []NumericSummary
	Outliers    []OutlierCount
	Categorical []CategoricalSummary
}

// MissingCount is the number of null cells of one column.
type MissingCount struct {
	Column  string
	Count   int
	Percent decimal.Decimal
}

// DuplicateCount is the number of rows repeating an earlier row.
type DuplicateCount struct {
	Count   int
	Percent decimal.Decimal
}

// TypeCount is the number of columns of one kind.
type TypeCount struct {
	Kind  table.Kind
	Count int
}

// NumericSummary holds the descriptive statistics of a numeric column.
// Nulls are ignored; undefined statistics are NaN.
type NumericSummary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// OutlierCount reports values outside [Lower, Upper] for one column.
type OutlierCount struct {
	Column  string
	Count   int
	Percent decimal.Decimal
	Lower   float64
	Upper   float64
}

// CategoryCount is the frequency of one categorical value.
type CategoryCount struct {
	Value string
	Count int
}

// CategoricalSummary describes a categorical column. TopValues is nil when
// Unique exceeds DistributionMaxCardinality.
type CategoricalSummary struct {
	Column    string
	Unique    int
	TopValues []CategoryCount
}

// Profile computes every section of the report for t.
func Profile(t *table.Table) *Report {
	rep := &Report{
		Name:        t.Name,
		Rows:        t.NumRows(),
		Cols:        t.NumCols(),
		MemoryBytes: t.SizeBytes(),
	}
	rep.Missing = missingCounts(t)
	rep.Duplicates = duplicateRows(t)
	rep.Types = typeCounts(t)
	for _, c := range t.Columns() {
		switch {
		case c.Kind.Numeric():
			vals := c.Floats()
			rep.Numeric = append(rep.Numeric, describe(c.Name, vals))
			if o, ok := iqrOutliers(c.Name, vals, rep.Rows); ok {
				rep.Outliers = append(rep.Outliers, o)
			}
		case c.Kind.Categorical():
			rep.Categorical = append(rep.Categorical, categorical(c))
		}
	}
	return rep
}

// MemoryMB returns the memory footprint in mebibytes.
func (r *Report) MemoryMB() float64 {
	return float64(r.MemoryBytes) / (1024 * 1024)
}

// percent returns count/total*100 rounded half to even at two decimals, or
// zero for an empty table.
func percent(count, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(float64(count) / float64(total) * 100).RoundBank(2)
}

func missingCounts(t *table.Table) []MissingCount {
	var out []MissingCount
	for _, c := range t.Columns() {
		n := c.NullN()
		if n == 0 {
			continue
		}
		out = append(out, MissingCount{Column: c.Name, Count: n, Percent: percent(n, t.NumRows())})
	}
	return out
}

// duplicateRows counts rows identical, column by column, to an earlier row.
// Nulls compare equal to each other.
func duplicateRows(t *table.Table) DuplicateCount {
	cols := t.Columns()
	seen := make(map[string]struct{}, t.NumRows())
	var dup int
	var b strings.Builder
	for i := 0; i < t.NumRows(); i++ {
		b.Reset()
		for _, c := range cols {
			if c.IsNull(i) {
				b.WriteString("N;")
				continue
			}
			v := c.String(i)
			b.WriteString(strconv.Itoa(len(v)))
			b.WriteByte(':')
			b.WriteString(v)
		}
		key := b.String()
		if _, ok := seen[key]; ok {
			dup++
			continue
		}
		seen[key] = struct{}{}
	}
	return DuplicateCount{Count: dup, Percent: percent(dup, t.NumRows())}
}

// typeCounts groups columns by kind, most frequent first. Ties keep the
// order in which kinds first appear.
func typeCounts(t *table.Table) []TypeCount {
	var out []TypeCount
	idx := map[table.Kind]int{}
	for _, c := range t.Columns() {
		i, ok := idx[c.Kind]
		if !ok {
			i = len(out)
			idx[c.Kind] = i
			out = append(out, TypeCount{Kind: c.Kind})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func describe(name string, vals []float64) NumericSummary {
	s := NumericSummary{
		Column: name,
		Count:  len(vals),
		Mean:   math.NaN(),
		Std:    math.NaN(),
		Min:    math.NaN(),
		Max:    math.NaN(),
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	s.Q1 = quantile(sorted, 0.25)
	s.Median = quantile(sorted, 0.5)
	s.Q3 = quantile(sorted, 0.75)
	if len(sorted) == 0 {
		return s
	}
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]

	// Welford
	var mean, m2 float64
	for i, x := range vals {
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
	}
	s.Mean = mean
	if len(vals) > 1 {
		s.Std = math.Sqrt(m2 / float64(len(vals)-1))
	}
	return s
}

// iqrOutliers counts values strictly outside the Tukey fences. Columns with
// a zero interquartile range or no outliers report ok == false.
func iqrOutliers(name string, vals []float64, rows int) (OutlierCount, bool) {
	if len(vals) == 0 {
		return OutlierCount{}, false
	}
	q1, q3 := quartiles(vals)
	iqr := q3 - q1
	if iqr == 0 {
		return OutlierCount{}, false
	}
	lower := q1 - iqrFactor*iqr
	upper := q3 + iqrFactor*iqr
	var n int
	for _, v := range vals {
		if v < lower || v > upper {
			n++
		}
	}
	if n == 0 {
		return OutlierCount{}, false
	}
	return OutlierCount{
		Column:  name,
		Count:   n,
		Percent: percent(n, rows),
		Lower:   lower,
		Upper:   upper,
	}, true
}

func categorical(c table.Column) CategoricalSummary {
	counts := map[string]int{}
	var order []string
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		v := c.String(i)
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}
	s := CategoricalSummary{Column: c.Name, Unique: len(counts)}
	if s.Unique > DistributionMaxCardinality {
		return s
	}
	tops := make([]CategoryCount, 0, len(order))
	for _, v := range order {
		tops = append(tops, CategoryCount{Value: v, Count: counts[v]})
	}
	sort.SliceStable(tops, func(i, j int) bool { return tops[i].Count > tops[j].Count })
	if len(tops) > DistributionTopN {
		tops = tops[:DistributionTopN]
	}
	s.TopValues = tops
	return s
}
