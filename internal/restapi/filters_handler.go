package restapi

import (
	"net/http"

	"churnboard.telecomx.org/internal/models"
)

func (api *RestAPI) filtersHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewOKResponse(models.NewFiltersPayload(api.Dashboard.Options())))
}
