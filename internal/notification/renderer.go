package notification

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.txt templates/*.html
var templateFS embed.FS

const (
	TemplateOrderConfirmation = "order_confirmation"
	TemplateOrderAdmin        = "order_admin"
	TemplateContactAdmin      = "contact_admin"
)

// Content is a rendered message before addressing
type Content struct {
	Subject string
	Text    string
	HTML    string
}

// Renderer renders the embedded notification templates.
// Each template has a plain text body <name>.txt, which also defines
// <name>_subject, and an HTML body <name>.html.
type Renderer struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

var templateFuncs = map[string]interface{}{
	"money": formatMoney,
}

// formatMoney renders an amount with two decimals and thousands separators
func formatMoney(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	whole, frac := fixed[:len(fixed)-3], fixed[len(fixed)-2:]

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	text, err := texttemplate.New("notifications").
		Funcs(texttemplate.FuncMap(templateFuncs)).
		ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text templates: %w", err)
	}

	html, err := htmltemplate.New("notifications").
		Funcs(htmltemplate.FuncMap(templateFuncs)).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse html templates: %w", err)
	}

	return &Renderer{text: text, html: html}, nil
}

// Render executes the subject, text and HTML parts of the named template
func (r *Renderer) Render(name string, data interface{}) (Content, error) {
	var subject, text, html bytes.Buffer

	if err := r.text.ExecuteTemplate(&subject, name+"_subject", data); err != nil {
		return Content{}, fmt.Errorf("failed to render %s subject: %w", name, err)
	}
	if err := r.text.ExecuteTemplate(&text, name+".txt", data); err != nil {
		return Content{}, fmt.Errorf("failed to render %s text: %w", name, err)
	}
	if err := r.html.ExecuteTemplate(&html, name+".html", data); err != nil {
		return Content{}, fmt.Errorf("failed to render %s html: %w", name, err)
	}

	return Content{
		Subject: strings.TrimSpace(subject.String()),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
