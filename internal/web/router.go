package web

import (
	"context"
	"fmt"
	"html/template"

	"github.com/rasgroup/bagcapturer/internal/logging"
)

// Navbar names a navbar variant.
type Navbar string

// Navbar variants. Recognized pages and the not-found fallback use the
// menu navbar; the plain one carries only the brand.
const (
	NavbarWithMenu Navbar = "with_menu"
	NavbarPlain    Navbar = "plain"
)

// NotFoundMessage is shown verbatim for paths outside the page table.
const NotFoundMessage = "404 Page Error! Please choose a link"

type navLink struct {
	Name string
	Path string
}

var menuLinks = []navLink{
	{"Console", "/page_console"},
	{"Setup", "/page_setup"},
	{"Schedule", "/page_schedule"},
	{"DB Browser", "/page_db_browser"},
	{"DB Query", "/page_db_query"},
}

// View is a fully resolved page ready to be wrapped in the index document.
type View struct {
	Title          string
	Content        template.HTML
	Navbar         Navbar
	NavbarHTML     template.HTML
	RefreshSeconds int
}

type route struct {
	title          string
	provider       PageProvider
	refreshSeconds int
}

// Pages bundles the dashboard's page providers.
type Pages struct {
	Console   PageProvider
	Setup     PageProvider
	Schedule  PageProvider
	DBBrowser PageProvider
	DBQuery   PageProvider
}

// Router resolves request paths to rendered pages through a fixed lookup
// table. The root path aliases the console page.
type Router struct {
	logger  logging.Logger
	routes  map[string]route
	navbars map[Navbar]template.HTML
}

// NewRouter builds the page table and prerenders both navbar variants.
// consoleRefreshSeconds is embedded into the console page as its
// auto-refresh period.
func NewRouter(renderer *Renderer, logger logging.Logger, pages Pages, consoleRefreshSeconds int) (*Router, error) {
	menu, err := renderer.render("navbar_menu.html", map[string]any{"Links": menuLinks})
	if err != nil {
		return nil, fmt.Errorf("rendering navbar: %w", err)
	}
	plain, err := renderer.render("navbar_plain.html", nil)
	if err != nil {
		return nil, fmt.Errorf("rendering navbar: %w", err)
	}

	console := route{title: "Console", provider: pages.Console, refreshSeconds: consoleRefreshSeconds}

	return &Router{
		logger: logger.With("module", "router"),
		routes: map[string]route{
			"/":                console,
			"/page_console":    console,
			"/page_setup":      {title: "Setup", provider: pages.Setup},
			"/page_schedule":   {title: "Schedule", provider: pages.Schedule},
			"/page_db_browser": {title: "DB Browser", provider: pages.DBBrowser},
			"/page_db_query":   {title: "DB Query", provider: pages.DBQuery},
		},
		navbars: map[Navbar]template.HTML{
			NavbarWithMenu: menu,
			NavbarPlain:    plain,
		},
	}, nil
}

// Display resolves path to a view. Unknown paths get the fixed not-found
// message with the menu navbar. Page render failures are logged and yield
// an empty content block; they never propagate to the caller.
func (r *Router) Display(ctx context.Context, path string) View {
	rt, ok := r.routes[path]
	if !ok {
		return View{
			Title:      "Bagfiles Capturer",
			Content:    template.HTML("<p>" + NotFoundMessage + "</p>"),
			Navbar:     NavbarWithMenu,
			NavbarHTML: r.navbars[NavbarWithMenu],
		}
	}

	return View{
		Title:          rt.title,
		Content:        r.renderPage(ctx, path, rt.provider),
		Navbar:         NavbarWithMenu,
		NavbarHTML:     r.navbars[NavbarWithMenu],
		RefreshSeconds: rt.refreshSeconds,
	}
}

func (r *Router) renderPage(ctx context.Context, path string, p PageProvider) (content template.HTML) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error(ctx, "page render panicked", "path", path, "panic", fmt.Sprintf("%v", rec))
			content = ""
		}
	}()

	c, err := p.Layout(ctx)
	if err != nil {
		r.logger.Error(ctx, "page render failed", "path", path, "error", err.Error())
		return ""
	}
	return c
}
