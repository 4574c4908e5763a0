package render

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	"github.com/foliopress/foliopress/internal/portfolio/domain"
)

const portfolioHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.DisplayName}}</title>
  <style>
    :root {
      --primary: {{.Theme.PrimaryColor}};
      --font: "{{.Theme.FontFamily}}", -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
    }
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 40px 20px;
      font-family: var(--font);
      color: #1a1f36;
      background: #f7f9fc;
      -webkit-font-smoothing: antialiased;
    }
    .card {
      background: #ffffff;
      max-width: 760px;
      margin: 0 auto;
      padding: 48px;
      box-shadow: 0 2px 5px rgba(0,0,0,0.04);
      border-radius: 4px;
    }
    h1 {
      margin: 0 0 4px;
      font-size: 28px;
      color: var(--primary);
    }
    .headline {
      color: #8792a2;
      font-size: 16px;
      margin-bottom: 24px;
    }
    .section { margin-top: 32px; }
    .section h2 {
      font-size: 13px;
      text-transform: uppercase;
      letter-spacing: 0.3px;
      color: #8792a2;
      border-bottom: 1px solid #e3e8ee;
      padding-bottom: 6px;
    }
    .about { font-size: 14px; line-height: 1.6; }
    .links a {
      color: var(--primary);
      text-decoration: none;
      margin-right: 16px;
      font-size: 14px;
    }
    .skill {
      display: inline-block;
      background: #f0f3f7;
      border-radius: 12px;
      padding: 4px 12px;
      margin: 0 6px 6px 0;
      font-size: 13px;
    }
    .item { margin-bottom: 18px; }
    .item .title { font-weight: 600; font-size: 15px; }
    .item .meta { color: #8792a2; font-size: 13px; margin: 2px 0; }
    .item .body { font-size: 14px; line-height: 1.5; }
  </style>
</head>
<body>
  <div class="card">
    <h1>{{.DisplayName}}</h1>
    {{if .Headline}}<div class="headline">{{.Headline}}</div>{{end}}

    {{if .About}}
    <div class="section">
      <h2>About</h2>
      <div class="about">{{.About}}</div>
    </div>
    {{end}}

    {{if .Links}}
    <div class="section links">
      <h2>Links</h2>
      {{range .Links}}<a href="{{.URL}}" rel="noopener">{{.Label}}</a>{{end}}
    </div>
    {{end}}

    {{if .Skills}}
    <div class="section">
      <h2>Skills</h2>
      {{range .Skills}}<span class="skill">{{.}}</span>{{end}}
    </div>
    {{end}}

    {{if .Projects}}
    <div class="section">
      <h2>Projects</h2>
      {{range .Projects}}
      <div class="item">
        <div class="title">{{if .URL}}<a href="{{.URL}}" rel="noopener">{{.Name}}</a>{{else}}{{.Name}}{{end}}</div>
        {{if .Description}}<div class="body">{{.Description}}</div>{{end}}
      </div>
      {{end}}
    </div>
    {{end}}

    {{if .Experience}}
    <div class="section">
      <h2>Experience</h2>
      {{range .Experience}}
      <div class="item">
        <div class="title">{{.Role}} · {{.Company}}</div>
        {{if .Start}}<div class="meta">{{.Start}}{{if .End}} – {{.End}}{{else}} – present{{end}}</div>{{end}}
        {{if .Summary}}<div class="body">{{.Summary}}</div>{{end}}
      </div>
      {{end}}
    </div>
    {{end}}

    {{if .Email}}
    <div class="section">
      <h2>Contact</h2>
      <div class="links"><a href="mailto:{{.Email}}">{{.Email}}</a></div>
    </div>
    {{end}}
  </div>
</body>
</html>
`

const notFoundHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Page not found</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; text-align: center; padding: 80px 20px; color: #1a1f36; }
    h1 { font-size: 48px; margin-bottom: 8px; }
    p { color: #8792a2; }
  </style>
</head>
<body>
  <h1>404</h1>
  <p>This page does not exist. Head back to the <a href="/">portfolio</a>.</p>
</body>
</html>
`

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
var fontFamilyFilter = regexp.MustCompile(`^[A-Za-z0-9 \-]+$`)

// Renderer produces the static site files for a portfolio.
type Renderer interface {
	RenderIndex(content domain.Content) (string, error)
	RenderNotFound() string
}

type HTMLRenderer struct {
	tpl *template.Template
}

func NewRenderer() Renderer {
	return &HTMLRenderer{
		tpl: template.Must(template.New("portfolio").Parse(portfolioHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderIndex(content domain.Content) (string, error) {
	content.Theme.PrimaryColor = sanitizeColor(content.Theme.PrimaryColor)
	content.Theme.FontFamily = sanitizeFont(content.Theme.FontFamily)

	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, content); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *HTMLRenderer) RenderNotFound() string {
	return notFoundHTML
}

func sanitizeColor(value string) string {
	trimmed := strings.TrimSpace(value)
	if hexColorPattern.MatchString(trimmed) {
		return trimmed
	}
	return "#111827"
}

func sanitizeFont(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed != "" && fontFamilyFilter.MatchString(trimmed) {
		return trimmed
	}
	return "Inter"
}
