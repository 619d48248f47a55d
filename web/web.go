// Package web embeds the HTML served to administrators.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Template names.
const (
	HolidayFormTemplate   = "holiday_form.html"
	HolidayResultTemplate = "holiday_result.html"
)

// Templates parses every embedded template.
func Templates() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/*.html")
}
