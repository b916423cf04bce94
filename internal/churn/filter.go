package churn

import "fmt"

// AllValues is the sentinel meaning "no constraint", as offered by the
// dashboard dropdowns.
const AllValues = "all"

// FilterCriteria holds the two optional equality constraints of a dashboard
// interaction. An empty value or AllValues leaves that attribute unconstrained.
type FilterCriteria struct {
	Contract        string
	InternetService string
}

// NewFilterCriteria normalizes the sentinel so that equal criteria compare equal.
func NewFilterCriteria(contract, internetService string) FilterCriteria {
	if contract == AllValues {
		contract = ""
	}
	if internetService == AllValues {
		internetService = ""
	}
	return FilterCriteria{Contract: contract, InternetService: internetService}
}

// Unconstrained reports whether the criteria keep every row.
func (c FilterCriteria) Unconstrained() bool {
	return unconstrained(c.Contract) && unconstrained(c.InternetService)
}

// Matches applies both constraints conjunctively, exact and case-sensitive.
func (c FilterCriteria) Matches(customer Customer) bool {
	if !unconstrained(c.Contract) && customer.Contract != c.Contract {
		return false
	}
	if !unconstrained(c.InternetService) && customer.InternetService != c.InternetService {
		return false
	}
	return true
}

func (c FilterCriteria) String() string {
	return fmt.Sprintf("contract=%s service=%s", orAll(c.Contract), orAll(c.InternetService))
}

// Filter returns the customers matching criteria in source order. The result
// is always a new slice; customers is not modified.
func Filter(customers []Customer, criteria FilterCriteria) []Customer {
	out := make([]Customer, 0, len(customers))
	for _, c := range customers {
		if criteria.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}

// Filter returns the subset of d matching criteria. The subset keeps the
// column layout of d.
func (d *Dataset) Filter(criteria FilterCriteria) *Dataset {
	return d.withCustomers(Filter(d.customers, criteria))
}

func unconstrained(v string) bool {
	return v == "" || v == AllValues
}

func orAll(v string) string {
	if unconstrained(v) {
		return AllValues
	}
	return v
}
