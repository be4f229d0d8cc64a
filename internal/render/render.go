// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render renders the pages the service owns itself, independent of
// the store theme. They are used when the theme cannot render a page.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var pagesFS embed.FS

// ErrorData holds the values shown on an error page.
type ErrorData struct {
	Status    int
	Title     string
	Message   string
	RequestID string
}

// Renderer executes the embedded service pages.
type Renderer struct {
	errorPage *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	tmpl, err := template.ParseFS(pagesFS, "templates/error.html")
	if err != nil {
		return nil, fmt.Errorf("parse error page: %w", err)
	}
	return &Renderer{errorPage: tmpl}, nil
}

// MustNew is New for callers that cannot handle an error. The templates
// are embedded, so a failure is a build defect.
func MustNew() *Renderer {
	rn, err := New()
	if err != nil {
		panic(err)
	}
	return rn
}

// Error writes an error page with data.Status. The page is buffered so a
// template failure still produces a plain-text response.
func (rn *Renderer) Error(w http.ResponseWriter, data ErrorData) {
	if data.Status == 0 {
		data.Status = http.StatusInternalServerError
	}
	if data.Title == "" {
		data.Title = http.StatusText(data.Status)
	}

	var buf bytes.Buffer
	if err := rn.errorPage.Execute(&buf, data); err != nil {
		slog.Error("error page render failed", "error", err)
		http.Error(w, http.StatusText(data.Status), data.Status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(data.Status)
	w.Write(buf.Bytes())
}
