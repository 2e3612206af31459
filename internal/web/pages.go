// Package web implements the dashboard HTTP surface: page routing, HTML
// rendering, Basic auth on pages, and the JSON API.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"io"

	"github.com/rasgroup/bagcapturer/internal/common"
	"github.com/rasgroup/bagcapturer/internal/server/config"
	"github.com/rasgroup/bagcapturer/internal/server/services"
)

//go:embed templates/*.html
var templatesFS embed.FS

// PageProvider renders the content block of one dashboard page.
type PageProvider interface {
	Layout(ctx context.Context) (template.HTML, error)
}

// PageParams carries per-request page inputs (query parameters) down to the
// page providers through the context.
type PageParams struct {
	Table string
	Query string
}

type paramsKeyType struct{}

var paramsKey paramsKeyType

// WithParams attaches page parameters to ctx.
func WithParams(ctx context.Context, p PageParams) context.Context {
	return context.WithValue(ctx, paramsKey, p)
}

// ParamsFrom extracts page parameters from ctx, zero-valued if absent.
func ParamsFrom(ctx context.Context) PageParams {
	if p, ok := ctx.Value(paramsKey).(PageParams); ok {
		return p
	}
	return PageParams{}
}

// Renderer holds the parsed template set shared by all pages.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: t}, nil
}

func (r *Renderer) render(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Index writes the full page document for a resolved view.
func (r *Renderer) Index(w io.Writer, view View) error {
	return r.tmpl.ExecuteTemplate(w, "index.html", view)
}

// ConsolePage shows capture status counts and the most recent recordings.
type ConsolePage struct {
	renderer   *Renderer
	recordings *services.RecordingService
}

func NewConsolePage(renderer *Renderer, recordings *services.RecordingService) *ConsolePage {
	return &ConsolePage{renderer: renderer, recordings: recordings}
}

func (p *ConsolePage) Layout(ctx context.Context) (template.HTML, error) {
	counts, err := p.recordings.Status(ctx)
	if err != nil {
		return "", err
	}
	recent, err := p.recordings.ListRecent(ctx, 20)
	if err != nil {
		return "", err
	}
	return p.renderer.render("console.html", map[string]any{
		"Counts":     counts,
		"Recordings": recent,
	})
}

// SetupPage shows the effective server settings.
type SetupPage struct {
	renderer *Renderer
	config   *config.Config
	accounts *services.AccountService
}

func NewSetupPage(renderer *Renderer, cfg *config.Config, accounts *services.AccountService) *SetupPage {
	return &SetupPage{renderer: renderer, config: cfg, accounts: accounts}
}

func (p *SetupPage) Layout(ctx context.Context) (template.HTML, error) {
	count, err := p.accounts.Count(ctx)
	if err != nil {
		return "", err
	}
	return p.renderer.render("setup.html", map[string]any{
		"Host":           p.config.Host,
		"Port":           p.config.Port,
		"DebugMode":      p.config.DebugMode,
		"AuthEnabled":    p.config.AuthEnabled,
		"AuthActive":     p.config.AuthEnabled && count > 0,
		"AccountCount":   count,
		"TimerSeconds":   int(p.config.SystemTimerInterval.Seconds()),
		"RefreshSeconds": int(p.config.ConsoleRefreshInterval.Seconds()),
		"S3Bucket":       p.config.S3Bucket,
		"S3BaseEndpoint": p.config.S3BaseEndpoint,
	})
}

// SchedulePage lists capture schedules.
type SchedulePage struct {
	renderer  *Renderer
	schedules *services.ScheduleService
}

func NewSchedulePage(renderer *Renderer, schedules *services.ScheduleService) *SchedulePage {
	return &SchedulePage{renderer: renderer, schedules: schedules}
}

func (p *SchedulePage) Layout(ctx context.Context) (template.HTML, error) {
	list, err := p.schedules.List(ctx)
	if err != nil {
		return "", err
	}
	return p.renderer.render("schedule.html", map[string]any{"Schedules": list})
}

// DBBrowserPage lists public tables and pages through the selected one.
type DBBrowserPage struct {
	renderer *Renderer
	dbadmin  *services.DBAdminService
}

func NewDBBrowserPage(renderer *Renderer, dbadmin *services.DBAdminService) *DBBrowserPage {
	return &DBBrowserPage{renderer: renderer, dbadmin: dbadmin}
}

func (p *DBBrowserPage) Layout(ctx context.Context) (template.HTML, error) {
	tables, err := p.dbadmin.ListTables(ctx)
	if err != nil {
		return "", err
	}

	data := map[string]any{"Tables": tables}
	if table := ParamsFrom(ctx).Table; table != "" {
		result, err := p.dbadmin.BrowseTable(ctx, table)
		switch {
		case errors.Is(err, common.ErrorUnknownTable):
			data["Error"] = "unknown table"
		case err != nil:
			return "", err
		default:
			data["Selected"] = table
			data["Result"] = result
		}
	}
	return p.renderer.render("db_browser.html", data)
}

// DBQueryPage runs read-only ad-hoc statements typed into the query form.
type DBQueryPage struct {
	renderer *Renderer
	dbadmin  *services.DBAdminService
}

func NewDBQueryPage(renderer *Renderer, dbadmin *services.DBAdminService) *DBQueryPage {
	return &DBQueryPage{renderer: renderer, dbadmin: dbadmin}
}

func (p *DBQueryPage) Layout(ctx context.Context) (template.HTML, error) {
	data := map[string]any{}
	if query := ParamsFrom(ctx).Query; query != "" {
		data["Query"] = query
		result, err := p.dbadmin.RunQuery(ctx, query)
		switch {
		case errors.Is(err, common.ErrorInvalidQuery):
			data["Error"] = "only SELECT and WITH statements are allowed"
		case err != nil:
			data["Error"] = err.Error()
		default:
			data["Result"] = result
		}
	}
	return p.renderer.render("db_query.html", data)
}
