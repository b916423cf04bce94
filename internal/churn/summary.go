package churn

import "gonum.org/v1/gonum/stat"

// Summary holds the headline KPIs of the dashboard.
type Summary struct {
	Customers     int     `json:"customers"`
	Churned       int     `json:"churned"`
	Retained      int     `json:"retained"`
	ChurnRate     float64 `json:"churnRate"`
	RetentionRate float64 `json:"retentionRate"`
	MeanTenure    float64 `json:"meanTenure"`
}

// Summarize computes the KPIs over d. It returns a *MissingCategoryError when
// either churn category has no customers in d.
func Summarize(d *Dataset) (Summary, error) {
	var churned int
	tenure := make([]float64, 0, d.Len())
	for _, c := range d.customers {
		if c.Churned {
			churned++
		}
		tenure = append(tenure, float64(c.TenureMonths))
	}
	retained := d.Len() - churned

	var missing []string
	if churned == 0 {
		missing = append(missing, ChurnYes)
	}
	if retained == 0 {
		missing = append(missing, ChurnNo)
	}
	if len(missing) > 0 {
		return Summary{}, &MissingCategoryError{Missing: missing}
	}

	total := float64(d.Len())
	return Summary{
		Customers:     d.Len(),
		Churned:       churned,
		Retained:      retained,
		ChurnRate:     float64(churned) / total,
		RetentionRate: float64(retained) / total,
		MeanTenure:    stat.Mean(tenure, nil),
	}, nil
}

// FilterOptions lists the values offered by the two dashboard filters, in
// order of first appearance.
type FilterOptions struct {
	Contracts        []string `json:"contracts"`
	InternetServices []string `json:"internetServices"`
}

func (d *Dataset) Options() FilterOptions {
	return FilterOptions{
		Contracts:        distinct(d.customers, func(c Customer) string { return c.Contract }),
		InternetServices: distinct(d.customers, func(c Customer) string { return c.InternetService }),
	}
}

func distinct(customers []Customer, value func(Customer) string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, c := range customers {
		v := value(c)
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
