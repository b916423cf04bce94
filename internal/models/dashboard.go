package models

import "churnboard.telecomx.org/internal/churn"

// FilterSelection echoes the filter values a payload was computed for.
// Unconstrained filters are reported as "all".
type FilterSelection struct {
	Contract        string `json:"contract"`
	InternetService string `json:"internetService"`
}

func NewFilterSelection(c churn.FilterCriteria) FilterSelection {
	sel := FilterSelection{Contract: c.Contract, InternetService: c.InternetService}
	if sel.Contract == "" {
		sel.Contract = churn.AllValues
	}
	if sel.InternetService == "" {
		sel.InternetService = churn.AllValues
	}
	return sel
}

// UnavailableChart names a chart that could not be computed for the subset.
type UnavailableChart struct {
	Chart  string `json:"chart"`
	Reason string `json:"reason"`
}

type TabPayload struct {
	Filter      FilterSelection    `json:"filter"`
	Content     churn.TabContent   `json:"content"`
	Unavailable []UnavailableChart `json:"unavailable"`
}

type SummaryPayload struct {
	Filter  FilterSelection `json:"filter"`
	Summary churn.Summary   `json:"summary"`
}

type FiltersPayload struct {
	Contracts        []string `json:"contracts"`
	InternetServices []string `json:"internetServices"`
	Tabs             []string `json:"tabs"`
	AllValue         string   `json:"allValue"`
}

func NewFiltersPayload(opts churn.FilterOptions) FiltersPayload {
	tabs := make([]string, len(churn.AllTabs))
	for i, t := range churn.AllTabs {
		tabs[i] = string(t)
	}
	return FiltersPayload{
		Contracts:        opts.Contracts,
		InternetServices: opts.InternetServices,
		Tabs:             tabs,
		AllValue:         churn.AllValues,
	}
}
