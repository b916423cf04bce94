package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"churnboard.telecomx.org/internal/app"
	"churnboard.telecomx.org/internal/restapi"
	"churnboard.telecomx.org/internal/webui"
)

// routes serves the JSON API and the HTML dashboard behind one middleware
// chain.
func routes(application *app.Application, api *restapi.RestAPI) http.Handler {
	router := httprouter.New()
	api.SetRoutes(router)

	webUI := &webui.WebUI{Application: application}
	webUI.SetWebUIRoutes(router)

	return api.WithMiddleware(router)
}
