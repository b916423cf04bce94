package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"churnboard.telecomx.org/internal/churn"
	"churnboard.telecomx.org/internal/logging"
	"churnboard.telecomx.org/internal/models"
)

// NoDataText is the response text when the filtered subset cannot produce
// the requested proportions.
const NoDataText = "no data for this filter"

type panicError struct {
	value interface{}
}

func (e panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "request failed", err,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path))

	api.sendResponse(w, r, models.NewErrorResponse(http.StatusInternalServerError, "internal server error"))
}

func (api *RestAPI) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewErrorResponse(http.StatusMethodNotAllowed, "method not allowed"))
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	response := struct {
		models.ResponseModel
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{
		ResponseModel: models.NewErrorResponse(http.StatusBadRequest, "invalid request parameters"),
		FieldErrors:   fieldErrors,
	}

	setJSONResponseType(&w)
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		api.logEncodeError(r, err)
	}
}

// serviceErrorResponse maps errors returned by the dashboard service to
// HTTP responses.
func (api *RestAPI) serviceErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var (
		missing *churn.MissingCategoryError
		unknown *churn.UnknownTabError
	)
	switch {
	case errors.As(err, &missing):
		api.sendResponse(w, r, models.NewErrorResponse(http.StatusUnprocessableEntity, NoDataText))
	case errors.As(err, &unknown):
		api.sendNotFound(w, r)
	case errors.Is(err, context.Canceled):
		logging.FromContext(r.Context()).Debug("client went away", slog.String("path", r.URL.Path))
	case errors.Is(err, context.DeadlineExceeded):
		api.sendResponse(w, r, models.NewErrorResponse(http.StatusServiceUnavailable, "request timed out"))
	default:
		api.serverErrorResponse(w, r, err)
	}
}

func (api *RestAPI) logEncodeError(r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "failed to encode response", err,
		slog.String("path", r.URL.Path))
}
