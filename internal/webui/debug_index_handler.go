package webui

import (
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"churnboard.telecomx.org/internal/churn"
	"churnboard.telecomx.org/internal/logging"
)

const debugHeadRows = 20

type debugData struct {
	Title string
	Pre   string
}

func (webUI *WebUI) writeDebugData(w http.ResponseWriter, r *http.Request, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	err := templates.ExecuteTemplate(w, "debug_index.html", debugData{
		Title: title,
		Pre:   spew.Sdump(data),
	})
	if err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to render debug page", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("dataType")
	data := webUI.Dashboard.Dataset()

	var (
		payload interface{}
		title   string
	)
	switch dataType {
	case "columns":
		payload = map[string][]string{
			"columns": data.Columns(),
			"numeric": data.NumericColumns(),
		}
		title = "Dataset - Columns"
	case "options":
		payload = webUI.Dashboard.Options()
		title = "Dataset - Filter Options"
	case "summary":
		summary, err := churn.Summarize(data)
		if err != nil {
			payload = err
		} else {
			payload = summary
		}
		title = "Dataset - Summary"
	case "head":
		customers := data.Customers()
		if len(customers) > debugHeadRows {
			customers = customers[:debugHeadRows]
		}
		payload = customers
		title = "Dataset - First Rows"
	case "load":
		payload = webUI.LoadStats
		title = "Dataset - Load Statistics"
	default:
		payload = map[string]string{
			"error": "Please use one of the following: columns, options, summary, head, load.",
		}
		title = "Choose a data type"
	}

	webUI.writeDebugData(w, r, title, payload)
}
