// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"maps"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// Rendered is a message ready for the wire.
type Rendered struct {
	Subject string
	HTML    string
}

// Renderer executes the embedded templates.
type Renderer struct {
	siteName  string
	templates map[Template]*template.Template
}

// NewRenderer parses every embedded template.
func NewRenderer(siteName string) (*Renderer, error) {
	renderer := &Renderer{
		siteName:  siteName,
		templates: make(map[Template]*template.Template),
	}

	for _, name := range []Template{
		TemplateVerification,
		TemplateLoginNotification,
		TemplatePasswordReset,
		TemplateResetConfirmation,
	} {
		parsed, err := template.New(string(name)).
			Option("missingkey=error").
			ParseFS(templateFS, "templates/"+string(name)+".html")
		if err != nil {
			return nil, fmt.Errorf("notify: parse template %s: %w", name, err)
		}
		renderer.templates[name] = parsed
	}

	return renderer, nil
}

// Render produces the subject and HTML body of message.
func (renderer *Renderer) Render(message Message) (Rendered, error) {
	parsed, ok := renderer.templates[message.Template]
	if !ok {
		return Rendered{}, fmt.Errorf("notify: unknown template %q", message.Template)
	}

	data := make(map[string]any, len(message.Payload)+1)
	maps.Copy(data, message.Payload)
	data["SiteName"] = renderer.siteName

	var subject, body bytes.Buffer
	if err := parsed.ExecuteTemplate(&subject, "subject", data); err != nil {
		return Rendered{}, fmt.Errorf("notify: render subject %s: %w", message.Template, err)
	}
	if err := parsed.ExecuteTemplate(&body, "body", data); err != nil {
		return Rendered{}, fmt.Errorf("notify: render body %s: %w", message.Template, err)
	}

	// Subjects are headers, not HTML.
	return Rendered{
		Subject: strings.TrimSpace(html.UnescapeString(subject.String())),
		HTML:    body.String(),
	}, nil
}
