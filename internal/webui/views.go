package webui

import (
	"fmt"
	"strconv"

	"churnboard.telecomx.org/internal/churn"
)

// section is one rendered chart, flattened to a table.
type section struct {
	Chart   string
	Title   string
	Columns []string
	Rows    [][]string
}

var tabLabels = map[churn.TabID]string{
	churn.TabProfile:   "Customer profile",
	churn.TabServices:  "Services",
	churn.TabFinancial: "Financial",
	churn.TabInsights:  "Insights",
}

func tabSections(content churn.TabContent) []section {
	var sections []section

	switch content.Tab {
	case churn.TabProfile:
		p := content.Profile
		sections = append(sections,
			churnShareSection(p.ChurnDistribution),
			crossTabSection(churn.ChartSeniorityByChurn, "Seniority by churn", "Seniority", p.SeniorityByChurn))
		if p.Correlation != nil {
			sections = append(sections, correlationSection(p.Correlation))
		}
	case churn.TabServices:
		s := content.Services
		sections = append(sections,
			crossTabSection(churn.ChartInternetServiceByChurn, "Internet service by churn", "Internet service", s.InternetServiceByChurn),
			crossTabSection(churn.ChartPhoneLinesByChurn, "Multiple lines by churn", "Multiple lines", s.PhoneLinesByChurn))
	case churn.TabFinancial:
		f := content.Financial
		sections = append(sections,
			hierarchySection(f.ContractPayment),
			fiveNumberSection(churn.ChartTotalChargeByChurn, "Total charges by churn", f.TotalChargeByChurn))
	case churn.TabInsights:
		in := content.Insights
		sections = append(sections,
			meanSection(in.MeanTenureByChurn),
			clvSection(in.CLVByChurn),
			section{
				Chart:   churn.ChartTopByMonthlyCharge,
				Title:   fmt.Sprintf("Top %d customers by monthly charge", churn.TopLimit),
				Columns: in.TopByMonthlyCharge.Columns,
				Rows:    in.TopByMonthlyCharge.Rows,
			})
	}

	return sections
}

func churnShareSection(shares []churn.ChurnShare) section {
	s := section{
		Chart:   churn.ChartChurnDistribution,
		Title:   "Churn distribution",
		Columns: []string{"Churn", "Customers", "Share"},
	}
	for _, share := range shares {
		s.Rows = append(s.Rows, []string{share.Label, strconv.Itoa(share.Count), percent(share.Proportion)})
	}
	return s
}

func crossTabSection(chart, title, dimension string, t churn.CrossTab) section {
	s := section{
		Chart:   chart,
		Title:   title,
		Columns: []string{dimension, "Churn", "Customers"},
	}
	for _, cell := range t.Cells {
		s.Rows = append(s.Rows, []string{cell.Category, cell.Label, strconv.Itoa(cell.Count)})
	}
	return s
}

func correlationSection(m *churn.CorrelationMatrix) section {
	s := section{
		Chart:   churn.ChartCorrelation,
		Title:   "Correlation of numeric columns",
		Columns: append([]string{""}, m.Columns...),
	}
	for i, name := range m.Columns {
		row := []string{name}
		for j := range m.Columns {
			if r, ok := m.At(i, j); ok {
				row = append(row, fmt.Sprintf("%.2f", r))
			} else {
				row = append(row, "n/a")
			}
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

func hierarchySection(nodes []churn.HierarchyNode) section {
	s := section{
		Chart:   churn.ChartContractPayment,
		Title:   "Monthly charges by contract and payment method",
		Columns: []string{"Contract", "Payment method", "Customers", "Monthly charges", "Churned", "Retained", "Churn"},
	}
	for _, root := range nodes {
		s.Rows = append(s.Rows, hierarchyRow(root.Label, "", root))
		for _, child := range root.Children {
			s.Rows = append(s.Rows, hierarchyRow(root.Label, child.Label, child))
		}
	}
	return s
}

func hierarchyRow(contract, payment string, n churn.HierarchyNode) []string {
	return []string{
		contract,
		payment,
		strconv.Itoa(n.Customers),
		number(n.Value),
		number(n.ChurnedValue),
		number(n.RetainedValue),
		n.Churn,
	}
}

var fiveNumberColumns = []string{"Churn", "Customers", "Min", "Q1", "Median", "Q3", "Max"}

func fiveNumberRow(label string, count int, f churn.FiveNumberSummary) []string {
	return []string{label, strconv.Itoa(count), number(f.Min), number(f.Q1), number(f.Median), number(f.Q3), number(f.Max)}
}

func fiveNumberSection(chart, title string, summaries []churn.ChurnSummary) section {
	s := section{Chart: chart, Title: title, Columns: fiveNumberColumns}
	for _, g := range summaries {
		s.Rows = append(s.Rows, fiveNumberRow(g.Label, g.Count, g.Summary))
	}
	return s
}

func meanSection(means []churn.ChurnMean) section {
	s := section{
		Chart:   churn.ChartMeanTenureByChurn,
		Title:   "Mean tenure by churn (months)",
		Columns: []string{"Churn", "Customers", "Mean tenure"},
	}
	for _, m := range means {
		s.Rows = append(s.Rows, []string{m.Label, strconv.Itoa(m.Count), fmt.Sprintf("%.1f", m.Mean)})
	}
	return s
}

func clvSection(groups []churn.CLVDistribution) section {
	s := section{Chart: churn.ChartCLVByChurn, Title: "Customer lifetime value by churn", Columns: fiveNumberColumns}
	for _, g := range groups {
		s.Rows = append(s.Rows, fiveNumberRow(g.Label, len(g.Values), g.Summary))
	}
	return s
}
