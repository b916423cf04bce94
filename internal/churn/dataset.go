package churn

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Dataset is an immutable, ordered set of customers together with the column
// layout they were read from. A Dataset is safe for concurrent use; nothing
// writes to it after construction.
type Dataset struct {
	columns        []string
	numericColumns []string
	customers      []Customer
	fingerprint    string
}

// NormalizeColumn folds a header for matching: case-insensitive, with '.'
// treated as '_' so both spellings of the TelecomX export are accepted.
func NormalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, ".", "_")
	return strings.ToLower(name)
}

// ColumnIndex returns the position of name within columns, or -1.
func ColumnIndex(columns []string, name string) int {
	want := NormalizeColumn(name)
	for i, c := range columns {
		if NormalizeColumn(c) == want {
			return i
		}
	}
	return -1
}

// NewDataset builds a Dataset from a header row and its records. Every record
// must have one cell per column and a parseable value for each required column.
func NewDataset(columns []string, rows [][]string) (*Dataset, error) {
	index := make(map[string]int, len(RequiredColumns))
	for _, name := range RequiredColumns {
		i := ColumnIndex(columns, name)
		if i < 0 {
			return nil, fmt.Errorf("missing required column %q", name)
		}
		index[name] = i
	}

	for r, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d: expected %d fields, got %d", r+1, len(columns), len(row))
		}
	}

	numericIdx := inferNumericColumns(columns, rows)
	numericNames := make([]string, len(numericIdx))
	for i, c := range numericIdx {
		numericNames[i] = columns[c]
	}

	customers := make([]Customer, 0, len(rows))
	for r, row := range rows {
		c, err := parseCustomer(row, index)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", r+1, err)
		}
		c.values = append([]string(nil), row...)
		c.numeric = make([]float64, len(numericIdx))
		for i, col := range numericIdx {
			c.numeric[i] = parseNumericCell(row[col])
		}
		customers = append(customers, c)
	}

	return &Dataset{
		columns:        append([]string(nil), columns...),
		numericColumns: numericNames,
		customers:      customers,
		fingerprint:    fingerprint(columns, rows),
	}, nil
}

// FromCustomers builds a Dataset from typed records, synthesizing the raw row
// from the typed fields in RequiredColumns order.
func FromCustomers(customers []Customer) *Dataset {
	rows := make([][]string, len(customers))
	for i, c := range customers {
		rows[i] = []string{
			c.ID,
			ChurnLabel(c.Churned),
			formatFlag(c.SeniorCitizen),
			strconv.Itoa(c.TenureMonths),
			c.PhoneLines,
			c.InternetService,
			c.Contract,
			c.PaymentMethod,
			strconv.FormatFloat(c.MonthlyCharge, 'f', -1, 64),
			strconv.FormatFloat(c.TotalCharge, 'f', -1, 64),
		}
	}

	numeric := []string{ColumnSeniorCitizen, ColumnTenure, ColumnMonthlyCharges, ColumnTotalCharges}
	out := make([]Customer, len(customers))
	for i, c := range customers {
		c.values = rows[i]
		c.numeric = []float64{
			boolToFloat(c.SeniorCitizen),
			float64(c.TenureMonths),
			c.MonthlyCharge,
			c.TotalCharge,
		}
		out[i] = c
	}

	return &Dataset{
		columns:        append([]string(nil), RequiredColumns...),
		numericColumns: numeric,
		customers:      out,
		fingerprint:    fingerprint(RequiredColumns, rows),
	}
}

// Columns returns the header row in file order.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// NumericColumns returns the columns taking part in the correlation matrix.
func (d *Dataset) NumericColumns() []string {
	return append([]string(nil), d.numericColumns...)
}

// Customers returns the records in source order. The slice is a copy; the
// records share their raw rows with the dataset and must be treated as read-only.
func (d *Dataset) Customers() []Customer {
	return append([]Customer(nil), d.customers...)
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.customers)
}

// Fingerprint identifies the dataset content. Subsets produced by Filter share
// the fingerprint of the dataset they were taken from.
func (d *Dataset) Fingerprint() string {
	return d.fingerprint
}

func (d *Dataset) withCustomers(customers []Customer) *Dataset {
	return &Dataset{
		columns:        d.columns,
		numericColumns: d.numericColumns,
		customers:      customers,
		fingerprint:    d.fingerprint,
	}
}

func parseCustomer(row []string, index map[string]int) (Customer, error) {
	cell := func(name string) string {
		return strings.TrimSpace(row[index[name]])
	}

	churned, err := ParseChurn(cell(ColumnChurn))
	if err != nil {
		return Customer{}, err
	}

	senior, err := parseFlag(cell(ColumnSeniorCitizen))
	if err != nil {
		return Customer{}, fmt.Errorf("column %s: %w", ColumnSeniorCitizen, err)
	}

	tenure, ok := parseFinite(cell(ColumnTenure))
	if !ok || tenure < 0 || tenure != math.Trunc(tenure) {
		return Customer{}, fmt.Errorf("column %s: invalid tenure %q", ColumnTenure, cell(ColumnTenure))
	}

	monthly, ok := parseFinite(cell(ColumnMonthlyCharges))
	if !ok || monthly < 0 {
		return Customer{}, fmt.Errorf("column %s: invalid charge %q", ColumnMonthlyCharges, cell(ColumnMonthlyCharges))
	}

	// New customers have no accumulated charges yet.
	var total float64
	if raw := cell(ColumnTotalCharges); raw != "" {
		total, ok = parseFinite(raw)
		if !ok || total < 0 {
			return Customer{}, fmt.Errorf("column %s: invalid charge %q", ColumnTotalCharges, raw)
		}
	}

	return Customer{
		ID:              cell(ColumnCustomerID),
		Contract:        cell(ColumnContract),
		InternetService: cell(ColumnInternetService),
		PhoneLines:      cell(ColumnMultipleLines),
		PaymentMethod:   cell(ColumnPaymentMethod),
		SeniorCitizen:   senior,
		TenureMonths:    int(tenure),
		MonthlyCharge:   monthly,
		TotalCharge:     total,
		Churned:         churned,
	}, nil
}

// inferNumericColumns returns the indexes of columns with at least one
// finite cell where every non-blank cell parses as a number.
func inferNumericColumns(columns []string, rows [][]string) []int {
	var out []int
	for c := range columns {
		seen := false
		numeric := true
		for _, row := range rows {
			v := strings.TrimSpace(row[c])
			if v == "" {
				continue
			}
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				numeric = false
				break
			}
			if _, ok := parseFinite(v); ok {
				seen = true
			}
		}
		if seen && numeric {
			out = append(out, c)
		}
	}
	return out
}

// parseNumericCell reports blank, unparseable and non-finite cells as NaN,
// which the correlation treats as missing.
func parseNumericCell(raw string) float64 {
	v, ok := parseFinite(strings.TrimSpace(raw))
	if !ok {
		return math.NaN()
	}
	return v
}

// parseFinite rejects NaN and the infinities, which ParseFloat accepts.
func parseFinite(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func fingerprint(columns []string, rows [][]string) string {
	h := xxhash.New()
	write := func(fields []string) {
		for _, f := range fields {
			_, _ = h.WriteString(f)
			_, _ = h.Write([]byte{0x1f})
		}
		_, _ = h.Write([]byte{0x1e})
	}
	write(columns)
	for _, row := range rows {
		write(row)
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

func formatFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func boolToFloat(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
