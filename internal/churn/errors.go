package churn

import (
	"errors"
	"fmt"
	"strings"
)

// MissingCategoryError is returned when a proportion is requested over a subset
// in which one or both churn categories have no customers.
type MissingCategoryError struct {
	Missing []string
}

func (e *MissingCategoryError) Error() string {
	quoted := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		quoted[i] = fmt.Sprintf("%q", m)
	}
	return fmt.Sprintf("churn category %s absent from subset", strings.Join(quoted, " and "))
}

// InsufficientDataError is returned when a correlation matrix is requested
// over fewer than two rows or fewer than two numeric columns.
type InsufficientDataError struct {
	Rows    int
	Columns int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("correlation undefined for %d rows and %d numeric columns (need at least 2 of each)", e.Rows, e.Columns)
}

// UnknownTabError is returned for a tab identifier outside AllTabs.
type UnknownTabError struct {
	Tab string
}

func (e *UnknownTabError) Error() string {
	return fmt.Sprintf("unknown tab %q", e.Tab)
}

// ChartError ties a failure to the chart that could not be computed.
type ChartError struct {
	Chart string
	Err   error
}

func (e *ChartError) Error() string {
	return fmt.Sprintf("%s: %v", e.Chart, e.Err)
}

func (e *ChartError) Unwrap() error {
	return e.Err
}

// ChartErrors flattens an error returned by Resolve into its per-chart failures.
func ChartErrors(err error) []*ChartError {
	if err == nil {
		return nil
	}

	var out []*ChartError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, ChartErrors(e)...)
		}
		return out
	}

	var chartErr *ChartError
	if errors.As(err, &chartErr) {
		out = append(out, chartErr)
	}
	return out
}
