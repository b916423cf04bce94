package churn

import (
	"fmt"
	"strings"
)

// Column names of the TelecomX customer dataset.
const (
	ColumnCustomerID      = "customerID"
	ColumnChurn           = "Churn"
	ColumnSeniorCitizen   = "customer_SeniorCitizen"
	ColumnTenure          = "customer_tenure"
	ColumnMultipleLines   = "phone_MultipleLines"
	ColumnInternetService = "internet_InternetService"
	ColumnContract        = "account_Contract"
	ColumnPaymentMethod   = "account_PaymentMethod"
	ColumnMonthlyCharges  = "account_Charges_Monthly"
	ColumnTotalCharges    = "account_Charges_Total"
)

// RequiredColumns lists the columns every dataset must provide.
var RequiredColumns = []string{
	ColumnCustomerID,
	ColumnChurn,
	ColumnSeniorCitizen,
	ColumnTenure,
	ColumnMultipleLines,
	ColumnInternetService,
	ColumnContract,
	ColumnPaymentMethod,
	ColumnMonthlyCharges,
	ColumnTotalCharges,
}

// Churn labels as they appear in the dataset and in every chart series.
const (
	ChurnYes = "yes"
	ChurnNo  = "no"
)

// Customer is one row of the dataset. The exported fields are the typed
// attributes the aggregations use; the full row is kept alongside for the
// correlation matrix and the top-charges table.
type Customer struct {
	ID              string
	Contract        string
	InternetService string
	PhoneLines      string
	PaymentMethod   string
	SeniorCitizen   bool
	TenureMonths    int
	MonthlyCharge   float64
	TotalCharge     float64
	Churned         bool

	values  []string
	numeric []float64
}

// CLV is the simplified customer lifetime value: monthly charge times tenure.
func (c Customer) CLV() float64 {
	return c.MonthlyCharge * float64(c.TenureMonths)
}

// Values returns a copy of the raw row, aligned with Dataset.Columns.
func (c Customer) Values() []string {
	out := make([]string, len(c.values))
	copy(out, c.values)
	return out
}

// ChurnLabel maps the churn flag to the dataset's literal category.
func ChurnLabel(churned bool) string {
	if churned {
		return ChurnYes
	}
	return ChurnNo
}

// SeniorityLabel is the display category for the senior-citizen flag.
func SeniorityLabel(senior bool) string {
	if senior {
		return "Senior"
	}
	return "Non-senior"
}

// ParseChurn accepts yes/no, true/false and 1/0, case-insensitively.
func ParseChurn(raw string) (bool, error) {
	v, err := parseFlag(raw)
	if err != nil {
		return false, fmt.Errorf("invalid churn value %q", raw)
	}
	return v, nil
}

func parseFlag(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid flag value %q", raw)
}
