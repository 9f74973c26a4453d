package render

import (
	"embed"
	"html/template"
	"strconv"
)

//go:embed templates/*.html
var templateFS embed.FS

// Funcs are the helpers available to the page templates.
var Funcs = template.FuncMap{
	"fieldClass": func(f Field) string {
		if f.Muted {
			return "value muted"
		}
		return "value"
	},
	"selected": func(current string, option any) bool {
		switch v := option.(type) {
		case int:
			return current == strconv.Itoa(v)
		case string:
			return current == v
		}
		return false
	},
	"longDate":  FormatDate,
	"shortDate": FormatShortDate,
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(templateFS, "templates/*.html")
}
