package churn

import (
	"errors"
)

// TabID names one of the dashboard's analysis tabs.
type TabID string

const (
	TabProfile   TabID = "profile"
	TabServices  TabID = "services"
	TabFinancial TabID = "financial"
	TabInsights  TabID = "insights"
)

// AllTabs lists every tab in display order.
var AllTabs = []TabID{TabProfile, TabServices, TabFinancial, TabInsights}

// Identifiers used by the first version of the dashboard.
var tabAliases = map[string]TabID{
	"tab-perfil":     TabProfile,
	"tab-servicos":   TabServices,
	"tab-financeiro": TabFinancial,
	"tab-insights":   TabInsights,
}

// Chart names, used to tag per-chart failures.
const (
	ChartChurnDistribution      = "churnDistribution"
	ChartSeniorityByChurn       = "seniorityByChurn"
	ChartCorrelation            = "correlation"
	ChartInternetServiceByChurn = "internetServiceByChurn"
	ChartPhoneLinesByChurn      = "phoneLinesByChurn"
	ChartContractPayment        = "contractPayment"
	ChartTotalChargeByChurn     = "totalChargeByChurn"
	ChartMeanTenureByChurn      = "meanTenureByChurn"
	ChartCLVByChurn             = "clvByChurn"
	ChartTopByMonthlyCharge     = "topByMonthlyCharge"
)

// TopLimit is the size of the highest-charge customer table.
const TopLimit = 10

// ParseTabID accepts a tab name or one of its legacy aliases. Matching is
// exact: case and surrounding whitespace are significant.
func ParseTabID(raw string) (TabID, error) {
	if alias, ok := tabAliases[raw]; ok {
		return alias, nil
	}
	tab := TabID(raw)
	if _, ok := resolvers[tab]; !ok {
		return "", &UnknownTabError{Tab: raw}
	}
	return tab, nil
}

// TabContent is the derived data of one tab. Exactly one of the variant
// fields is set, matching Tab.
type TabContent struct {
	Tab       TabID             `json:"tab"`
	Rows      int               `json:"rows"`
	Profile   *ProfileContent   `json:"profile,omitempty"`
	Services  *ServicesContent  `json:"services,omitempty"`
	Financial *FinancialContent `json:"financial,omitempty"`
	Insights  *InsightsContent  `json:"insights,omitempty"`
}

type ProfileContent struct {
	ChurnDistribution []ChurnShare       `json:"churnDistribution"`
	SeniorityByChurn  CrossTab           `json:"seniorityByChurn"`
	Correlation       *CorrelationMatrix `json:"correlation"`
}

type ServicesContent struct {
	InternetServiceByChurn CrossTab `json:"internetServiceByChurn"`
	PhoneLinesByChurn      CrossTab `json:"phoneLinesByChurn"`
}

type FinancialContent struct {
	ContractPayment    []HierarchyNode `json:"contractPayment"`
	TotalChargeByChurn []ChurnSummary  `json:"totalChargeByChurn"`
}

type InsightsContent struct {
	MeanTenureByChurn  []ChurnMean       `json:"meanTenureByChurn"`
	CLVByChurn         []CLVDistribution `json:"clvByChurn"`
	TopByMonthlyCharge Table             `json:"topByMonthlyCharge"`
}

type resolverFunc func(*Dataset) (TabContent, error)

var resolvers = map[TabID]resolverFunc{
	TabProfile:   resolveProfile,
	TabServices:  resolveServices,
	TabFinancial: resolveFinancial,
	TabInsights:  resolveInsights,
}

// Resolve computes the content of tab over filtered. When a chart cannot be
// computed the rest of the tab is still returned, together with the joined
// *ChartError values; see ChartErrors. filtered is only read.
func Resolve(tab TabID, filtered *Dataset) (TabContent, error) {
	resolve, ok := resolvers[tab]
	if !ok {
		return TabContent{}, &UnknownTabError{Tab: string(tab)}
	}
	if filtered == nil {
		filtered = &Dataset{}
	}
	return resolve(filtered)
}

func resolveProfile(d *Dataset) (TabContent, error) {
	profile := &ProfileContent{
		ChurnDistribution: churnDistribution(d.customers),
		SeniorityByChurn: crossTab(ColumnSeniorCitizen, d.customers, func(c Customer) string {
			return SeniorityLabel(c.SeniorCitizen)
		}),
	}

	var errs []error
	corr, err := correlationMatrix(d)
	if err != nil {
		errs = append(errs, &ChartError{Chart: ChartCorrelation, Err: err})
	} else {
		profile.Correlation = corr
	}

	return TabContent{Tab: TabProfile, Rows: d.Len(), Profile: profile}, errors.Join(errs...)
}

func resolveServices(d *Dataset) (TabContent, error) {
	return TabContent{
		Tab:  TabServices,
		Rows: d.Len(),
		Services: &ServicesContent{
			InternetServiceByChurn: crossTab(ColumnInternetService, d.customers, func(c Customer) string {
				return c.InternetService
			}),
			PhoneLinesByChurn: crossTab(ColumnMultipleLines, d.customers, func(c Customer) string {
				return c.PhoneLines
			}),
		},
	}, nil
}

func resolveFinancial(d *Dataset) (TabContent, error) {
	return TabContent{
		Tab:  TabFinancial,
		Rows: d.Len(),
		Financial: &FinancialContent{
			ContractPayment: contractPaymentHierarchy(d.customers),
			TotalChargeByChurn: summaryByChurn(d.customers, func(c Customer) float64 {
				return c.TotalCharge
			}),
		},
	}, nil
}

func resolveInsights(d *Dataset) (TabContent, error) {
	return TabContent{
		Tab:  TabInsights,
		Rows: d.Len(),
		Insights: &InsightsContent{
			MeanTenureByChurn: meanByChurn(d.customers, func(c Customer) float64 {
				return float64(c.TenureMonths)
			}),
			CLVByChurn:         clvByChurn(d.customers),
			TopByMonthlyCharge: topByMonthlyCharge(d, TopLimit),
		},
	}, nil
}
