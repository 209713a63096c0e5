package server

import (
	"embed"
	"html/template"

	"todoweb/internal/display"
	"todoweb/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

func parseTemplates() *template.Template {
	return template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))
}

// page carries the fields every layout needs.
type page struct {
	PageTitle string
	Query     string
}

type todoView struct {
	models.Todo
	DisplayDate string
}

type listPage struct {
	page
	display.Summary
	Todos []todoView
}

type formPage struct {
	page
	Todo *models.Todo
}

type errorPage struct {
	page
	Status  int
	Message string
}
