package restapi

import (
	"net/http"

	"churnboard.telecomx.org/internal/churn"
	"churnboard.telecomx.org/internal/models"
	"churnboard.telecomx.org/internal/utils"
)

func (api *RestAPI) tabHandler(w http.ResponseWriter, r *http.Request) {
	tab, err := churn.ParseTabID(utils.ExtractParam(r, "tab"))
	if err != nil {
		api.sendNotFound(w, r)
		return
	}

	params, fieldErrors := utils.ParseFilterParams(r)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	payload, err := api.Dashboard.Tab(r.Context(), tab, params.Criteria())
	if err != nil {
		api.serviceErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewOKResponse(payload))
}
