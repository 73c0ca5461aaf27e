package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templatesFS embed.FS

// templates is the folder of markdown templates and partials.
var templates, _ = fs.Sub(templatesFS, "templates")

// RenderReport renders the complete report: obligation, bonds and portfolio.
func RenderReport(r *Report) string {
	partials := map[string]string{
		"report_title":     "report_title.md",
		"report_bonds":     "report_bonds.md",
		"report_portfolio": "report_portfolio.md",
		"report_scales":    "report_scales.md",
	}
	return renderTemplate("report", "report.md", partials, r)
}

// RenderMetrics renders the obligation and the bonds metrics only.
func RenderMetrics(r *Report) string {
	partials := map[string]string{
		"report_title": "report_title.md",
		"report_bonds": "report_bonds.md",
	}
	return renderTemplate("metrics", "metrics.md", partials, r)
}

// RenderPortfolio renders the obligation and the immunizing portfolio only.
func RenderPortfolio(r *Report) string {
	partials := map[string]string{
		"report_title":     "report_title.md",
		"report_portfolio": "report_portfolio.md",
		"report_scales":    "report_scales.md",
	}
	return renderTemplate("portfolio", "portfolio.md", partials, r)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
