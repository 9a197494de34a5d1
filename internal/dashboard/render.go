package dashboard

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/seenimoa/investdash/pkg/models"
	"github.com/seenimoa/investdash/pkg/utils"
)

// PeriodOption is one entry of the period selector.
type PeriodOption struct {
	Label    string
	Selected bool
}

// PeriodOptions lists every period with selected marked.
func PeriodOptions(selected models.Period) []PeriodOption {
	if selected == "" {
		selected = models.Period1Y
	}
	periods := models.AllPeriods()
	opts := make([]PeriodOption, len(periods))
	for i, p := range periods {
		opts[i] = PeriodOption{Label: p.Label(), Selected: p == selected}
	}
	return opts
}

// PageData is the model of the dashboard page.
type PageData struct {
	Title        string
	Tickers      string
	Periods      []PeriodOption
	Dashboard    *Dashboard
	Warnings     []string
	Error        string
	TotalFailure bool
	Welcome      template.HTML
	FailureHelp  template.HTML
}

// LoginData is the model of the login page.
type LoginData struct {
	Title string
	Error string
}

// Renderer executes the page templates and holds the Markdown copy already
// converted to HTML.
type Renderer struct {
	tmpl        *template.Template
	welcome     template.HTML
	failureHelp template.HTML
}

// NewRenderer parses templates/*.html and converts content/welcome.md and
// content/failure.md from fsys.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	funcs := template.FuncMap{
		"formatTime": func(t time.Time) string { return utils.FormatDateTime(t) },
	}
	tmpl, err := template.New("pages").Funcs(funcs).ParseFS(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	r := &Renderer{tmpl: tmpl}
	if r.welcome, err = markdownFile(md, fsys, "content/welcome.md"); err != nil {
		return nil, err
	}
	if r.failureHelp, err = markdownFile(md, fsys, "content/failure.md"); err != nil {
		return nil, err
	}
	return r, nil
}

func markdownFile(md goldmark.Markdown, fsys fs.FS, name string) (template.HTML, error) {
	src, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("converting %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // embedded, trusted content
}

// RenderDashboard writes the dashboard page.
func (r *Renderer) RenderDashboard(w io.Writer, data PageData) error {
	data.Welcome = r.welcome
	data.FailureHelp = r.failureHelp
	if len(data.Periods) == 0 {
		data.Periods = PeriodOptions(models.Period1Y)
	}
	return r.execute(w, "dashboard.html", data)
}

// RenderLogin writes the login page.
func (r *Renderer) RenderLogin(w io.Writer, data LoginData) error {
	return r.execute(w, "login.html", data)
}

// FailureHelp returns the total-failure explanation as HTML.
func (r *Renderer) FailureHelp() template.HTML {
	return r.failureHelp
}

// execute renders into a buffer first so a template error never leaves a
// half-written page.
func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
