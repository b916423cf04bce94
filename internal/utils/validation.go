package utils

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"churnboard.telecomx.org/internal/churn"
)

// Detect markup and comment sequences that have no place in a filter value.
var dangerousPattern = regexp.MustCompile(`[<>]|--|\/\*|\*\/|;.*--`)

const maxFilterLength = 100

// FilterParams are the query parameters shared by the summary and tab endpoints.
type FilterParams struct {
	Contract string `json:"contract" validate:"max=100,nomarkup"`
	Service  string `json:"service" validate:"max=100,nomarkup"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("nomarkup", func(fl validator.FieldLevel) bool {
		return !dangerousPattern.MatchString(fl.Field().String())
	})
	return v
}

// ParseFilterParams reads contract and service from the query string and
// validates them. The returned map is empty when the parameters are valid.
func ParseFilterParams(r *http.Request) (FilterParams, map[string][]string) {
	q := r.URL.Query()
	params := FilterParams{
		Contract: strings.TrimSpace(q.Get("contract")),
		Service:  strings.TrimSpace(q.Get("service")),
	}
	return params, ValidateFilterParams(params)
}

// ValidateFilterParams returns field errors keyed by query parameter name.
func ValidateFilterParams(params FilterParams) map[string][]string {
	fieldErrors := make(map[string][]string)

	err := validate.Struct(params)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fieldErrors
	}
	for _, fieldErr := range validationErrors {
		fieldErrors[fieldErr.Field()] = append(fieldErrors[fieldErr.Field()], message(fieldErr))
	}
	return fieldErrors
}

// Criteria converts validated parameters into filter criteria.
func (p FilterParams) Criteria() churn.FilterCriteria {
	return churn.NewFilterCriteria(p.Contract, p.Service)
}

func message(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "max":
		return fmt.Sprintf("%s too long (max %d characters)", fieldErr.Field(), maxFilterLength)
	case "nomarkup":
		return fmt.Sprintf("%s contains invalid characters", fieldErr.Field())
	default:
		return fmt.Sprintf("%s is invalid", fieldErr.Field())
	}
}
