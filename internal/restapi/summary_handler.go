package restapi

import (
	"net/http"

	"churnboard.telecomx.org/internal/models"
	"churnboard.telecomx.org/internal/utils"
)

func (api *RestAPI) summaryHandler(w http.ResponseWriter, r *http.Request) {
	params, fieldErrors := utils.ParseFilterParams(r)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	payload, err := api.Dashboard.Summary(r.Context(), params.Criteria())
	if err != nil {
		api.serviceErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewOKResponse(payload))
}
