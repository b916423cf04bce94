package churn

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// ChurnShare is one slice of the churn distribution.
type ChurnShare struct {
	Churned    bool    `json:"churned"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Proportion float64 `json:"proportion"`
}

// CrossTabCell counts the customers of one category with one churn outcome.
type CrossTabCell struct {
	Category string `json:"category"`
	Churned  bool   `json:"churned"`
	Label    string `json:"churn"`
	Count    int    `json:"count"`
}

// CrossTab counts customers by (category, churn). Categories keep their order
// of first appearance; cells with a zero count are omitted.
type CrossTab struct {
	Dimension  string         `json:"dimension"`
	Categories []string       `json:"categories"`
	Cells      []CrossTabCell `json:"cells"`
}

// Count returns the cell count for category and churn outcome.
func (t CrossTab) Count(category string, churned bool) int {
	for _, c := range t.Cells {
		if c.Category == category && c.Churned == churned {
			return c.Count
		}
	}
	return 0
}

// ChurnMean is the mean of a value within one churn group.
type ChurnMean struct {
	Churned bool    `json:"churned"`
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
}

// ChurnSummary is the five-number summary of a value within one churn group.
type ChurnSummary struct {
	Churned bool              `json:"churned"`
	Label   string            `json:"label"`
	Count   int               `json:"count"`
	Summary FiveNumberSummary `json:"summary"`
}

// CLVDistribution carries the raw lifetime values of a churn group next to
// their summary, for violin and strip displays.
type CLVDistribution struct {
	Churned bool              `json:"churned"`
	Label   string            `json:"label"`
	Summary FiveNumberSummary `json:"summary"`
	Values  []float64         `json:"values"`
}

// HierarchyNode is one ring segment of the contract / payment method breakdown.
// Churn is "yes" or "no" when every customer under the node shares the outcome
// and "mixed" otherwise.
type HierarchyNode struct {
	Label         string          `json:"label"`
	Value         float64         `json:"value"`
	ChurnedValue  float64         `json:"churnedValue"`
	RetainedValue float64         `json:"retainedValue"`
	Customers     int             `json:"customers"`
	Churn         string          `json:"churn"`
	Children      []HierarchyNode `json:"children,omitempty"`

	churnedCustomers int
}

// ChurnMixed is the Churn of a hierarchy node holding both churned and
// retained customers.
const ChurnMixed = "mixed"

// Table is a literal row listing with the dataset's original columns.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// churnGroup is a churn outcome with its customers, retained first.
type churnGroup struct {
	churned   bool
	customers []Customer
}

// groupByChurn splits customers into retained then churned. Empty groups are
// left out.
func groupByChurn(customers []Customer) []churnGroup {
	var retained, churned []Customer
	for _, c := range customers {
		if c.Churned {
			churned = append(churned, c)
		} else {
			retained = append(retained, c)
		}
	}

	groups := make([]churnGroup, 0, 2)
	if len(retained) > 0 {
		groups = append(groups, churnGroup{churned: false, customers: retained})
	}
	if len(churned) > 0 {
		groups = append(groups, churnGroup{churned: true, customers: churned})
	}
	return groups
}

func churnDistribution(customers []Customer) []ChurnShare {
	out := []ChurnShare{}
	total := float64(len(customers))
	for _, g := range groupByChurn(customers) {
		out = append(out, ChurnShare{
			Churned:    g.churned,
			Label:      ChurnLabel(g.churned),
			Count:      len(g.customers),
			Proportion: float64(len(g.customers)) / total,
		})
	}
	return out
}

func crossTab(dimension string, customers []Customer, category func(Customer) string) CrossTab {
	type counts struct{ retained, churned int }

	categories := []string{}
	tally := make(map[string]*counts)
	for _, c := range customers {
		key := category(c)
		t, ok := tally[key]
		if !ok {
			t = &counts{}
			tally[key] = t
			categories = append(categories, key)
		}
		if c.Churned {
			t.churned++
		} else {
			t.retained++
		}
	}

	cells := []CrossTabCell{}
	for _, key := range categories {
		t := tally[key]
		if t.retained > 0 {
			cells = append(cells, CrossTabCell{Category: key, Churned: false, Label: ChurnNo, Count: t.retained})
		}
		if t.churned > 0 {
			cells = append(cells, CrossTabCell{Category: key, Churned: true, Label: ChurnYes, Count: t.churned})
		}
	}

	return CrossTab{Dimension: dimension, Categories: categories, Cells: cells}
}

func meanByChurn(customers []Customer, value func(Customer) float64) []ChurnMean {
	out := []ChurnMean{}
	for _, g := range groupByChurn(customers) {
		out = append(out, ChurnMean{
			Churned: g.churned,
			Label:   ChurnLabel(g.churned),
			Count:   len(g.customers),
			Mean:    stat.Mean(collect(g.customers, value), nil),
		})
	}
	return out
}

func summaryByChurn(customers []Customer, value func(Customer) float64) []ChurnSummary {
	out := []ChurnSummary{}
	for _, g := range groupByChurn(customers) {
		summary, ok := NewFiveNumberSummary(collect(g.customers, value))
		if !ok {
			continue
		}
		out = append(out, ChurnSummary{
			Churned: g.churned,
			Label:   ChurnLabel(g.churned),
			Count:   len(g.customers),
			Summary: summary,
		})
	}
	return out
}

func clvByChurn(customers []Customer) []CLVDistribution {
	out := []CLVDistribution{}
	for _, g := range groupByChurn(customers) {
		values := collect(g.customers, Customer.CLV)
		summary, ok := NewFiveNumberSummary(values)
		if !ok {
			continue
		}
		out = append(out, CLVDistribution{
			Churned: g.churned,
			Label:   ChurnLabel(g.churned),
			Summary: summary,
			Values:  values,
		})
	}
	return out
}

func contractPaymentHierarchy(customers []Customer) []HierarchyNode {
	var roots []HierarchyNode
	rootIdx := make(map[string]int)
	childIdx := make(map[[2]string]int)

	for _, c := range customers {
		ri, ok := rootIdx[c.Contract]
		if !ok {
			ri = len(roots)
			rootIdx[c.Contract] = ri
			roots = append(roots, HierarchyNode{Label: c.Contract})
		}
		root := &roots[ri]

		key := [2]string{c.Contract, c.PaymentMethod}
		ci, ok := childIdx[key]
		if !ok {
			ci = len(root.Children)
			childIdx[key] = ci
			root.Children = append(root.Children, HierarchyNode{Label: c.PaymentMethod})
		}

		root.add(c)
		root.Children[ci].add(c)
	}

	for i := range roots {
		roots[i].label()
		for j := range roots[i].Children {
			roots[i].Children[j].label()
		}
	}

	if roots == nil {
		return []HierarchyNode{}
	}
	return roots
}

func (n *HierarchyNode) add(c Customer) {
	n.Value += c.MonthlyCharge
	n.Customers++
	if c.Churned {
		n.ChurnedValue += c.MonthlyCharge
		n.churnedCustomers++
	} else {
		n.RetainedValue += c.MonthlyCharge
	}
}

func (n *HierarchyNode) label() {
	switch {
	case n.churnedCustomers == 0:
		n.Churn = ChurnNo
	case n.churnedCustomers == n.Customers:
		n.Churn = ChurnYes
	default:
		n.Churn = ChurnMixed
	}
}

func topByMonthlyCharge(d *Dataset, limit int) Table {
	order := make([]int, len(d.customers))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(d.customers[b].MonthlyCharge, d.customers[a].MonthlyCharge)
	})

	if len(order) > limit {
		order = order[:limit]
	}

	rows := make([][]string, 0, len(order))
	for _, i := range order {
		rows = append(rows, d.customers[i].Values())
	}
	return Table{Columns: d.Columns(), Rows: rows}
}

func collect(customers []Customer, value func(Customer) float64) []float64 {
	out := make([]float64, len(customers))
	for i, c := range customers {
		out[i] = value(c)
	}
	return out
}
