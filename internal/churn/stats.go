package churn

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// FiveNumberSummary describes a distribution the way a box plot draws it.
type FiveNumberSummary struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// NewFiveNumberSummary summarizes values. Quartiles interpolate linearly
// between order statistics. ok is false when values is empty.
func NewFiveNumberSummary(values []float64) (summary FiveNumberSummary, ok bool) {
	if len(values) == 0 {
		return FiveNumberSummary{}, false
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return FiveNumberSummary{
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}, true
}

// quantile expects sorted input.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// CorrelationMatrix is a symmetric Pearson matrix. A nil entry marks a
// coefficient that is undefined for the subset, e.g. a constant column.
type CorrelationMatrix struct {
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
}

// At returns the coefficient for columns i and j.
func (m *CorrelationMatrix) At(i, j int) (float64, bool) {
	v := m.Values[i][j]
	if v == nil {
		return 0, false
	}
	return *v, true
}

func correlationMatrix(d *Dataset) (*CorrelationMatrix, error) {
	cols := d.numericColumns
	rows := d.customers
	if len(rows) < 2 || len(cols) < 2 {
		return nil, &InsufficientDataError{Rows: len(rows), Columns: len(cols)}
	}

	values := make([][]*float64, len(cols))
	for i := range values {
		values[i] = make([]*float64, len(cols))
	}

	for i := range cols {
		for j := i; j < len(cols); j++ {
			r, ok := pairwiseCorrelation(rows, i, j)
			if !ok {
				continue
			}
			values[i][j] = &r
			values[j][i] = &r
		}
	}

	return &CorrelationMatrix{
		Columns: slices.Clone(cols),
		Values:  values,
	}, nil
}

// pairwiseCorrelation uses the rows where both columns are present.
func pairwiseCorrelation(rows []Customer, i, j int) (float64, bool) {
	x := make([]float64, 0, len(rows))
	y := make([]float64, 0, len(rows))
	for _, c := range rows {
		a, b := c.numeric[i], c.numeric[j]
		if math.IsNaN(a) || math.IsNaN(b) {
			continue
		}
		x = append(x, a)
		y = append(y, b)
	}
	if len(x) < 2 {
		return 0, false
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return 0, false
	}
	if i == j {
		return 1, true
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return math.Max(-1, math.Min(1, r)), true
}
