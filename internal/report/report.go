package report

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/gookit/event"
)

// templates contains embedded template files for report sections
//
//go:embed templates
var templates embed.FS

// Reporter collects step outcomes during the run and renders a report
// section once the bootstrap has finished.
type Reporter interface {
	event.Subscriber

	RenderTemplate() (string, error)
}

type BasicReport struct {
}

func (r *BasicReport) Render(name string, data any) (string, error) {
	tmpl, err := template.ParseFS(templates, "templates/*.go.tmpl")
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var output bytes.Buffer

	err = tmpl.ExecuteTemplate(&output, name, data)
	if err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return output.String(), nil
}
