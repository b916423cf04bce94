package restapi

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnboard.telecomx.org/internal/churn"
	"churnboard.telecomx.org/internal/models"
)

type tabResponse struct {
	models.ResponseModel
	Data models.TabPayload `json:"data"`
}

type summaryResponse struct {
	models.ResponseModel
	Data models.SummaryPayload `json:"data"`
}

type filtersResponse struct {
	models.ResponseModel
	Data models.FiltersPayload `json:"data"`
}

type validationResponse struct {
	models.ResponseModel
	FieldErrors map[string][]string `json:"fieldErrors"`
}

func TestFiltersHandler(t *testing.T) {
	api := createTestApi(t)

	var response filtersResponse
	resp := serveApiAndDecode(t, api, "/api/filters.json", &response)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, models.ResponseVersion, response.Version)
	assert.Equal(t, "OK", response.Text)
	assert.NotZero(t, response.CurrentTime)

	assert.ElementsMatch(t, []string{"Month-to-month", "One year", "Two year"}, response.Data.Contracts)
	assert.ElementsMatch(t, []string{"DSL", "Fiber optic", "No"}, response.Data.InternetServices)
	assert.Equal(t, []string{"profile", "services", "financial", "insights"}, response.Data.Tabs)
	assert.Equal(t, churn.AllValues, response.Data.AllValue)
}

func TestSummaryHandler(t *testing.T) {
	api := createTestApi(t)

	var response summaryResponse
	resp := serveApiAndDecode(t, api, "/api/summary.json", &response)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := response.Data.Summary
	assert.Equal(t, 48, summary.Customers)
	assert.Equal(t, 16, summary.Churned)
	assert.Equal(t, 32, summary.Retained)
	assert.InDelta(t, 1.0/3.0, summary.ChurnRate, 1e-9)
	assert.Equal(t, models.FilterSelection{Contract: "all", InternetService: "all"}, response.Data.Filter)
}

func TestSummaryHandlerFiltered(t *testing.T) {
	api := createTestApi(t)

	q := url.Values{"contract": {"Month-to-month"}, "service": {"Fiber optic"}}
	var response summaryResponse
	resp := serveApiAndDecode(t, api, "/api/summary.json?"+q.Encode(), &response)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.FilterSelection{Contract: "Month-to-month", InternetService: "Fiber optic"}, response.Data.Filter)
	assert.Less(t, response.Data.Summary.Customers, 48)
	assert.Positive(t, response.Data.Summary.Churned)
	assert.Positive(t, response.Data.Summary.Retained)
}

func TestSummaryHandlerMissingCategory(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/summary.json?contract=Three+year")

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, http.StatusUnprocessableEntity, model.Code)
	assert.Equal(t, NoDataText, model.Text)
	assert.Nil(t, model.Data)
}

func TestTabHandler(t *testing.T) {
	api := createTestApi(t)

	for _, tab := range churn.AllTabs {
		t.Run(string(tab), func(t *testing.T) {
			var response tabResponse
			resp := serveApiAndDecode(t, api, "/api/tabs/"+string(tab)+".json", &response)

			require.Equal(t, http.StatusOK, resp.StatusCode)
			content := response.Data.Content
			assert.Equal(t, tab, content.Tab)
			assert.Equal(t, 48, content.Rows)
			assert.Empty(t, response.Data.Unavailable)

			switch tab {
			case churn.TabProfile:
				require.NotNil(t, content.Profile)
				assert.Nil(t, content.Services)
				assert.Len(t, content.Profile.ChurnDistribution, 2)
			case churn.TabServices:
				require.NotNil(t, content.Services)
			case churn.TabFinancial:
				require.NotNil(t, content.Financial)
			case churn.TabInsights:
				require.NotNil(t, content.Insights)
			}
		})
	}
}

func TestTabHandlerLegacyAlias(t *testing.T) {
	api := createTestApi(t)

	var response tabResponse
	resp := serveApiAndDecode(t, api, "/api/tabs/tab-financeiro", &response)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, churn.TabFinancial, response.Data.Content.Tab)
}

func TestTabHandlerEmptySubset(t *testing.T) {
	api := createTestApi(t)

	var response tabResponse
	resp := serveApiAndDecode(t, api, "/api/tabs/profile?contract=Three+year", &response)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, response.Data.Content.Rows)

	charts := make([]string, 0, len(response.Data.Unavailable))
	for _, u := range response.Data.Unavailable {
		charts = append(charts, u.Chart)
		assert.NotEmpty(t, u.Reason)
	}
	assert.Contains(t, charts, churn.ChartCorrelation)
}

func TestTabHandlerUnknownTab(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/tabs/forecast")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, model.Code)
	assert.Equal(t, "resource not found", model.Text)
}

func TestTabHandlerInvalidParams(t *testing.T) {
	api := createTestApi(t)

	q := url.Values{"contract": {"<script>alert(1)</script>"}, "service": {strings.Repeat("x", 101)}}
	var response validationResponse
	resp := serveApiAndDecode(t, api, "/api/tabs/profile?"+q.Encode(), &response)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, http.StatusBadRequest, response.Code)
	assert.Equal(t, []string{"contract contains invalid characters"}, response.FieldErrors["contract"])
	assert.Equal(t, []string{"service too long (max 100 characters)"}, response.FieldErrors["service"])
}

func TestNotFoundRoute(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/nothing-here.json")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, model.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	api := createTestApi(t)
	server := newTestServer(t, api)

	resp, err := http.Post(server.URL+"/api/summary.json", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close() // nolint:errcheck

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
