package utils

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"churnboard.telecomx.org/internal/churn"
)

func TestValidateFilterParams(t *testing.T) {
	tests := []struct {
		name   string
		params FilterParams
		want   map[string][]string
	}{
		{
			name:   "empty values are unconstrained",
			params: FilterParams{},
			want:   map[string][]string{},
		},
		{
			name:   "dataset values pass",
			params: FilterParams{Contract: "Month-to-month", Service: "Fiber optic"},
			want:   map[string][]string{},
		},
		{
			name:   "markup is rejected",
			params: FilterParams{Contract: "<script>alert(1)</script>"},
			want:   map[string][]string{"contract": {"contract contains invalid characters"}},
		},
		{
			name:   "comment sequence is rejected",
			params: FilterParams{Service: "DSL' --"},
			want:   map[string][]string{"service": {"service contains invalid characters"}},
		},
		{
			name:   "overlong values are rejected",
			params: FilterParams{Contract: strings.Repeat("a", 101)},
			want:   map[string][]string{"contract": {"contract too long (max 100 characters)"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateFilterParams(tt.params))
		})
	}
}

func TestParseFilterParams(t *testing.T) {
	q := url.Values{}
	q.Set("contract", " Two year ")
	q.Set("service", "all")
	req := httptest.NewRequest(http.MethodGet, "/api/summary.json?"+q.Encode(), nil)

	params, fieldErrors := ParseFilterParams(req)
	assert.Empty(t, fieldErrors)
	assert.Equal(t, FilterParams{Contract: "Two year", Service: "all"}, params)
	assert.Equal(t, churn.FilterCriteria{Contract: "Two year"}, params.Criteria())
}
