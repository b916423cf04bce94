package churn

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	summary, err := Summarize(FromCustomers(sampleCustomers()))
	require.NoError(t, err)

	assert.Equal(t, 6, summary.Customers)
	assert.Equal(t, 2, summary.Churned)
	assert.Equal(t, 4, summary.Retained)
	assert.InDelta(t, 1.0/3.0, summary.ChurnRate, 1e-12)
	assert.InDelta(t, 2.0/3.0, summary.RetentionRate, 1e-12)
	assert.InDelta(t, 149.0/6.0, summary.MeanTenure, 1e-12)
}

func TestSummarizeMissingCategory(t *testing.T) {
	tests := []struct {
		name     string
		criteria FilterCriteria
		missing  []string
	}{
		{"no churned customers", FilterCriteria{Contract: "Two year"}, []string{ChurnYes}},
		{"no retained customers", FilterCriteria{Contract: "Month-to-month", InternetService: "Fiber optic"}, []string{ChurnNo}},
		{"empty subset", FilterCriteria{Contract: "Three year"}, []string{ChurnYes, ChurnNo}},
	}

	d := FromCustomers(sampleCustomers())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Summarize(d.Filter(tt.criteria))
			require.Error(t, err)

			var missing *MissingCategoryError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, tt.missing, missing.Missing)
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `churn category "yes" absent from subset`, (&MissingCategoryError{Missing: []string{"yes"}}).Error())
	assert.Equal(t, `churn category "yes" and "no" absent from subset`, (&MissingCategoryError{Missing: []string{"yes", "no"}}).Error())
	assert.Equal(t,
		"correlation undefined for 1 rows and 4 numeric columns (need at least 2 of each)",
		(&InsufficientDataError{Rows: 1, Columns: 4}).Error())
}

func TestChartErrors(t *testing.T) {
	assert.Nil(t, ChartErrors(nil))
	assert.Empty(t, ChartErrors(errors.New("plain")))

	a := &ChartError{Chart: "a", Err: &InsufficientDataError{}}
	b := &ChartError{Chart: "b", Err: errors.New("boom")}
	joined := errors.Join(a, errors.New("not a chart"), fmt.Errorf("wrapped: %w", b))

	got := ChartErrors(joined)
	require.Len(t, got, 2)
	assert.Same(t, a, got[0])
	assert.Same(t, b, got[1])
	assert.Equal(t, "b: boom", b.Error())
}
