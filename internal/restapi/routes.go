package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/api/filters.json", api.filtersHandler)
	router.HandlerFunc(http.MethodGet, "/api/summary.json", api.summaryHandler)
	router.HandlerFunc(http.MethodGet, "/api/tabs/:tab", api.tabHandler)

	router.NotFound = http.HandlerFunc(api.sendNotFound)
	router.HandleMethodNotAllowed = true
	router.MethodNotAllowed = http.HandlerFunc(api.methodNotAllowedResponse)
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		api.serverErrorResponse(w, r, panicError{value: v})
	}
}
