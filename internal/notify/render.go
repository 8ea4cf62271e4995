package notify

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strconv"
	"text/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.md
var templateFS embed.FS

const brand = "Movie Booking System"

// Rendered is a message ready to be mailed.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

// Renderer turns messages into email content. Bodies are authored as
// Markdown templates; the Markdown itself is the plain text part and its
// goldmark rendering is the HTML part.
type Renderer struct {
	bodies *template.Template
	layout *htmltemplate.Template
	md     goldmark.Markdown
}

var funcs = template.FuncMap{
	"money": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
	"screen": func(n int) string {
		if n <= 0 {
			return "N/A"
		}
		return strconv.Itoa(n)
	},
	"timestamp": func(t time.Time) string {
		if t.IsZero() {
			return "N/A"
		}
		return t.UTC().Format("02 Jan 2006 15:04 UTC")
	},
	"showtime": func(s string) string {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC().Format("Mon, 02 Jan 2006 15:04 UTC")
		}
		return s
	},
}

const layoutHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Subject}}</title>
<style>
  body { font-family: Arial, sans-serif; background: #f9fafb; color: #111827; }
  .container { max-width: 700px; margin: 0 auto; padding: 20px; background: #ffffff; border-radius: 10px; }
  table { width: 100%; border-collapse: collapse; margin: 20px 0; }
  th, td { padding: 10px; text-align: left; border-bottom: 1px solid #e5e7eb; }
  .footer { text-align: center; padding: 20px; color: #6b7280; font-size: 13px; }
</style>
</head>
<body>
<div class="container">
{{.Body}}
</div>
<div class="footer">
<p>&copy; {{.Year}} {{.Brand}}. All rights reserved.</p>
<p>This is an automated email, please do not reply.</p>
</div>
</body>
</html>
`

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	bodies, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.md")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	layout, err := htmltemplate.New("layout").Parse(layoutHTML)
	if err != nil {
		return nil, fmt.Errorf("parse email layout: %w", err)
	}
	return &Renderer{
		bodies: bodies,
		layout: layout,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}, nil
}

// Render builds subject, plain text and HTML for m.
func (r *Renderer) Render(m Message) (Rendered, error) {
	if err := m.Validate(); err != nil {
		return Rendered{}, err
	}

	var text bytes.Buffer
	if err := r.bodies.ExecuteTemplate(&text, string(m.Kind)+".md", m); err != nil {
		return Rendered{}, fmt.Errorf("render %s: %w", m.Kind, err)
	}

	var body bytes.Buffer
	if err := r.md.Convert(text.Bytes(), &body); err != nil {
		return Rendered{}, fmt.Errorf("convert %s: %w", m.Kind, err)
	}

	subject := Subject(m)
	var html bytes.Buffer
	err := r.layout.Execute(&html, struct {
		Subject string
		Body    htmltemplate.HTML
		Year    int
		Brand   string
	}{
		Subject: subject,
		Body:    htmltemplate.HTML(body.String()),
		Year:    time.Now().Year(),
		Brand:   brand,
	})
	if err != nil {
		return Rendered{}, fmt.Errorf("layout %s: %w", m.Kind, err)
	}

	return Rendered{Subject: subject, Text: text.String(), HTML: html.String()}, nil
}

// Subject returns the subject line for m.
func Subject(m Message) string {
	switch m.Kind {
	case KindVerifyEmail:
		return "Verify Your Email - " + brand
	case KindWelcome:
		return "Welcome to " + brand + "!"
	case KindBookingConfirmed:
		return "Booking Confirmed - " + m.Booking.MovieName
	case KindBookingCancelled:
		return "Booking Cancelled - " + m.Booking.MovieName
	}
	return brand
}
