// Package web renders the HTML pages of the upload flow.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by Render.
const (
	PageIndex      = "index.html"
	PageProcessing = "processing.html"
	PageResult     = "result.html"
)

// IndexData fills the upload form.
type IndexData struct {
	Accept  string
	Formats []string
	MaxMB   int64
}

// ProcessingData fills the page shown while the job runs.
type ProcessingData struct {
	JobID    string
	Filename string
}

// ResultData fills the finished article page. Article is model-generated
// HTML and is rendered unescaped.
type ResultData struct {
	Article template.HTML
	Images  []string
	Failed  bool
}

type Pages struct {
	tmpl *template.Template
}

func NewPages() (*Pages, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"safeURL": func(s string) template.URL { return template.URL(s) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Pages{tmpl: tmpl}, nil
}

// MustPages is NewPages for callers that cannot proceed without templates.
func MustPages() *Pages {
	p, err := NewPages()
	if err != nil {
		panic(err)
	}
	return p
}

// Render executes the named page into a buffer first so a template error
// never leaves a half-written response.
func (p *Pages) Render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("rendering page", "page", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
