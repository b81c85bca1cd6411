package render

import (
	"embed"
	"html/template"
	"strings"
	"sync"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	panelTemplates *template.Template
	templatesOnce  sync.Once
	templatesErr   error
)

func execute(name string, data any) (template.HTML, error) {
	templatesOnce.Do(func() {
		funcMap := template.FuncMap{
			"add": func(a, b int) int { return a + b },
		}
		tmpl := template.New("panel").Funcs(funcMap)
		panelTemplates, templatesErr = tmpl.ParseFS(templateFS, "templates/*.tmpl")
	})

	if templatesErr != nil {
		return "", templatesErr
	}

	var builder strings.Builder
	if err := panelTemplates.ExecuteTemplate(&builder, name, data); err != nil {
		return "", err
	}

	// output of html/template is already escaped
	return template.HTML(strings.TrimSpace(builder.String())), nil
}
