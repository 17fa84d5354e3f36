package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

//go:embed *.tmpl
var FS embed.FS

// Template names.
const (
	VerifyEmail = "verify_email"
	Welcome     = "welcome"
)

// Subject returns the subject line for a template.
func Subject(name string) string {
	switch name {
	case VerifyEmail:
		return "Verify your SportsIn email address"
	case Welcome:
		return "Welcome to SportsIn"
	default:
		return "SportsIn notification"
	}
}

// Render renders both the text and HTML bodies for a template.
func Render(name string, data map[string]any) (text, html string, err error) {
	text, err = renderText(name+".txt.tmpl", data)
	if err != nil {
		return "", "", err
	}
	html, err = renderHTML(name+".html.tmpl", data)
	if err != nil {
		return "", "", err
	}
	return text, html, nil
}

func renderText(filename string, data any) (string, error) {
	t, err := texttpl.ParseFS(FS, filename)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", filename, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", filename, err)
	}
	return buf.String(), nil
}

func renderHTML(filename string, data any) (string, error) {
	t, err := htmpl.ParseFS(FS, filename)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", filename, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", filename, err)
	}
	return buf.String(), nil
}
