package webui

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"churnboard.telecomx.org/internal/churn"
	"churnboard.telecomx.org/internal/logging"
	"churnboard.telecomx.org/internal/models"
	"churnboard.telecomx.org/internal/utils"
)

type tabLink struct {
	Label  string
	URL    string
	Active bool
}

type dashboardPage struct {
	Filter      models.FilterSelection
	Tab         churn.TabID
	Options     churn.FilterOptions
	AllValue    string
	Tabs        []tabLink
	Summary     *churn.Summary
	SummaryNote string
	Rows        int
	Sections    []section
	Unavailable []models.UnavailableChart
	FieldErrors map[string][]string
	Error       string
}

func (webUI *WebUI) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := dashboardPage{
		Options:  webUI.Dashboard.Options(),
		AllValue: churn.AllValues,
		Tab:      churn.TabProfile,
	}

	params, fieldErrors := utils.ParseFilterParams(r)
	criteria := params.Criteria()
	page.Filter = models.NewFilterSelection(criteria)

	if raw := r.URL.Query().Get("tab"); raw != "" {
		tab, err := churn.ParseTabID(raw)
		if err != nil {
			page.Error = err.Error()
			webUI.renderDashboard(w, r, http.StatusNotFound, page)
			return
		}
		page.Tab = tab
	}
	page.Tabs = tabLinks(page.Tab, page.Filter)

	if len(fieldErrors) > 0 {
		page.FieldErrors = fieldErrors
		webUI.renderDashboard(w, r, http.StatusBadRequest, page)
		return
	}

	summary, err := webUI.Dashboard.Summary(ctx, criteria)
	var missing *churn.MissingCategoryError
	switch {
	case err == nil:
		page.Summary = &summary.Summary
	case errors.As(err, &missing):
		page.SummaryNote = "No data for this filter: " + missing.Error()
	default:
		webUI.serverError(w, r, err)
		return
	}

	payload, err := webUI.Dashboard.Tab(ctx, page.Tab, criteria)
	if err != nil {
		webUI.serverError(w, r, err)
		return
	}
	page.Rows = payload.Content.Rows
	page.Sections = tabSections(payload.Content)
	page.Unavailable = payload.Unavailable

	webUI.renderDashboard(w, r, http.StatusOK, page)
}

func tabLinks(active churn.TabID, filter models.FilterSelection) []tabLink {
	links := make([]tabLink, 0, len(churn.AllTabs))
	for _, tab := range churn.AllTabs {
		q := url.Values{}
		q.Set("tab", string(tab))
		q.Set("contract", filter.Contract)
		q.Set("service", filter.InternetService)
		links = append(links, tabLink{
			Label:  tabLabels[tab],
			URL:    "/?" + q.Encode(),
			Active: tab == active,
		})
	}
	return links
}

func (webUI *WebUI) renderDashboard(w http.ResponseWriter, r *http.Request, status int, page dashboardPage) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "dashboard.html", page); err != nil {
		webUI.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (webUI *WebUI) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "dashboard request failed", err,
		slog.String("path", r.URL.Path))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
