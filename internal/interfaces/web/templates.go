package web

import (
	"embed"
	"html/template"

	"github.com/example/little-lemon/internal/domain/reservation"
)

//go:embed templates/*.html
var templatesFS embed.FS

func ParseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"time12":  reservation.To12Hour,
		"datekey": reservation.DateKey,
	}).ParseFS(templatesFS, "templates/*.html")
}
