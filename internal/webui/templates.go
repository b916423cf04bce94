package webui

import (
	"embed"
	"fmt"
	"html/template"
	"math"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"percent": percent,
	"number":  number,
}).ParseFS(templateFS, "templates/*.html"))

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func number(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
