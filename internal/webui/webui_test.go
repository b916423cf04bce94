package webui

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnboard.telecomx.org/internal/app"
	"churnboard.telecomx.org/internal/appconf"
	"churnboard.telecomx.org/internal/churn"
	"churnboard.telecomx.org/internal/dashboard"
	"churnboard.telecomx.org/internal/dataset"
	"churnboard.telecomx.org/internal/models"
)

func createTestWebUI(t *testing.T, env appconf.Environment) *WebUI {
	t.Helper()

	data, stats, err := dataset.Load(context.Background(), dataset.Config{
		Source: models.GetFixturePath(t, "customers.csv"),
		Env:    appconf.Test,
	})
	require.NoError(t, err)

	return &WebUI{Application: &app.Application{
		Config:    appconf.Config{Env: env},
		Logger:    slog.Default(),
		Dashboard: dashboard.NewService(data, nil, slog.Default()),
		LoadStats: stats,
	}}
}

func get(t *testing.T, webUI *WebUI, target string) (*http.Response, string) {
	t.Helper()

	router := httprouter.New()
	webUI.SetWebUIRoutes(router)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))

	resp := recorder.Result()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestDashboardDefaultTab(t *testing.T) {
	resp, body := get(t, createTestWebUI(t, appconf.Test), "/")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "<strong>48</strong>")
	assert.Contains(t, body, "<strong>33.3%</strong>")
	assert.Contains(t, body, `id="churnDistribution"`)
	assert.Contains(t, body, `id="correlation"`)
	assert.Contains(t, body, `class="active">Customer profile</a>`)
	assert.Contains(t, body, "48 customers match the current filter.")
}

func TestDashboardTabs(t *testing.T) {
	webUI := createTestWebUI(t, appconf.Test)

	tests := map[string]string{
		"services":       churn.ChartPhoneLinesByChurn,
		"financial":      churn.ChartContractPayment,
		"insights":       churn.ChartTopByMonthlyCharge,
		"tab-financeiro": churn.ChartTotalChargeByChurn,
	}
	for tab, chart := range tests {
		t.Run(tab, func(t *testing.T) {
			resp, body := get(t, webUI, "/?tab="+tab)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body, `id="`+chart+`"`)
		})
	}
}

func TestDashboardFilter(t *testing.T) {
	q := url.Values{"tab": {"services"}, "contract": {"Two year"}, "service": {"DSL"}}
	resp, body := get(t, createTestWebUI(t, appconf.Test), "/?"+q.Encode())

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `<option value="Two year" selected>`)
	assert.Contains(t, body, `<option value="DSL" selected>`)
	assert.NotContains(t, body, "48 customers match")
}

func TestDashboardEmptySubset(t *testing.T) {
	resp, body := get(t, createTestWebUI(t, appconf.Test), "/?contract=Three+year")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "No data for this filter")
	assert.Contains(t, body, "correlation unavailable")
	assert.Contains(t, body, "0 customers match the current filter.")
}

func TestDashboardUnknownTab(t *testing.T) {
	resp, body := get(t, createTestWebUI(t, appconf.Test), "/?tab=forecast")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `unknown tab`)
}

func TestDashboardInvalidFilter(t *testing.T) {
	q := url.Values{"contract": {"<b>bold</b>"}}
	resp, body := get(t, createTestWebUI(t, appconf.Test), "/?"+q.Encode())

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "contract contains invalid characters")
	assert.NotContains(t, body, "<b>bold</b>")
}

func TestDebugIndex(t *testing.T) {
	webUI := createTestWebUI(t, appconf.Development)

	for _, dataType := range []string{"columns", "options", "summary", "head", "load"} {
		t.Run(dataType, func(t *testing.T) {
			resp, body := get(t, webUI, "/debug/?dataType="+dataType)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body, "<pre>")
			assert.Contains(t, body, "Dataset - ")
		})
	}

	resp, body := get(t, webUI, "/debug/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Choose a data type")
}

func TestDebugIndexHiddenInProduction(t *testing.T) {
	resp, _ := get(t, createTestWebUI(t, appconf.Production), "/debug/?dataType=columns")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
