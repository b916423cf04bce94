package restapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"churnboard.telecomx.org/internal/app"
	"churnboard.telecomx.org/internal/appconf"
	"churnboard.telecomx.org/internal/dashboard"
	"churnboard.telecomx.org/internal/dataset"
	"churnboard.telecomx.org/internal/logging"
	"churnboard.telecomx.org/internal/models"
)

// createTestApi creates a RestAPI over the customer fixture with rate
// limiting effectively disabled.
func createTestApi(t *testing.T) *RestAPI {
	t.Helper()

	cfg := dataset.Config{
		Source: models.GetFixturePath(t, "customers.csv"),
		Env:    appconf.Test,
	}
	data, stats, err := dataset.Load(context.Background(), cfg)
	require.NoError(t, err)

	application := &app.Application{
		Config: appconf.Config{
			Env:          appconf.Test,
			CORSOrigins:  []string{"https://dashboards.example.com"},
			RateLimit:    0,
			RateBurst:    1,
			GzipMinBytes: 1024,
		},
		Logger:    slog.Default(),
		Dashboard: dashboard.NewService(data, nil, slog.Default()),
		LoadStats: stats,
	}

	api := NewRestAPI(application)
	t.Cleanup(api.Close)
	return api
}

// serveAndRetrieveEndpoint sets up a test server, makes a request to the specified endpoint, and returns the response
// and decoded model.
func serveAndRetrieveEndpoint(t *testing.T, endpoint string) (*RestAPI, *http.Response, models.ResponseModel) {
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, endpoint)
	return api, resp, model
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	var response models.ResponseModel
	resp := serveApiAndDecode(t, api, endpoint, &response)
	return resp, response
}

func serveApiAndDecode(t *testing.T, api *RestAPI, endpoint string, dest any) *http.Response {
	t.Helper()

	server := httptest.NewServer(api.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
	return resp
}
