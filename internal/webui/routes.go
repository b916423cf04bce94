package webui

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"churnboard.telecomx.org/internal/app"
)

type WebUI struct {
	*app.Application
}

// SetWebUIRoutes registers the dashboard page. The debug pages are only
// served outside production.
func (webUI *WebUI) SetWebUIRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/", webUI.dashboardHandler)
	if !webUI.Config.IsProduction() {
		router.HandlerFunc(http.MethodGet, "/debug/", webUI.debugIndexHandler)
	}
}
