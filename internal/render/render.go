// Package render fills the certificate HTML template.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"

	"certapi/internal/apperror"
	"certapi/internal/model"
)

//go:embed templates/*
var templates embed.FS

// DefaultTemplate is the path of the built-in certificate template inside the embedded FS.
const DefaultTemplate = "templates/certificate.html"

// Renderer produces a self-contained HTML document from a RenderContext.
type Renderer struct {
	tmpl *template.Template
}

// New parses the built-in certificate template.
func New() (*Renderer, error) {
	return NewFromFS(templates, DefaultTemplate)
}

// NewFromFS parses the template at name inside fsys.
// A missing or malformed template yields a TemplateError.
func NewFromFS(fsys fs.FS, name string) (*Renderer, error) {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindTemplate, "read certificate template", err)
	}

	// missingkey=zero keeps absent fields empty instead of printing "<no value>"
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(string(content))
	if err != nil {
		return nil, apperror.Wrap(apperror.KindTemplate, "parse certificate template", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the template. Output is deterministic for identical input.
func (r *Renderer) Render(rc model.RenderContext) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, rc); err != nil {
		return "", apperror.Wrap(apperror.KindTemplate, "execute certificate template", fmt.Errorf("%s: %w", r.tmpl.Name(), err))
	}
	return buf.String(), nil
}
