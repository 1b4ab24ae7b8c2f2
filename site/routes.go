package site

import (
	"errors"
	"fmt"

	"github.com/pevans/pagewire/assets"
)

// Content types served by the static routes.
const (
	ContentTypeHTML = "text/html"
	ContentTypeCSS  = "text/css"
)

// DailyInfoPath is the dynamic headline endpoint.
const DailyInfoPath = "/daily-info"

// Route table errors
var (
	ErrDuplicateRoute = errors.New("duplicate route path")
	ErrInvalidRoute   = errors.New("invalid route")
)

// Route maps a URL path to a static resource.
type Route struct {
	Path        string // exact request path, e.g. "/about"
	Name        string // human-readable name used in PageAccessed events
	ResourceRef string // slash path inside the asset root
	ContentType string
	IsHome      bool
}

// DefaultRoutes returns the pages the site serves.
func DefaultRoutes() []Route {
	routes := []Route{
		{Path: "/", Name: "index", ResourceRef: "index.html", ContentType: ContentTypeHTML, IsHome: true},
	}
	for _, name := range []string{"about", "contact", "subscribe", "overview", "events", "application"} {
		routes = append(routes, Route{
			Path:        "/" + name,
			Name:        name,
			ResourceRef: name + ".html",
			ContentType: ContentTypeHTML,
		})
	}
	routes = append(routes, Route{
		Path:        "/styles.css",
		Name:        "styles",
		ResourceRef: "styles.css",
		ContentType: ContentTypeCSS,
	})
	return routes
}

// RouteTable is the immutable set of static routes plus the dynamic
// headline path. Anything else is not found.
type RouteTable struct {
	routes      []Route
	byPath      map[string]Route
	dynamicPath string
}

// NewRouteTable validates routes and indexes them by path.
func NewRouteTable(routes []Route, dynamicPath string) (*RouteTable, error) {
	t := &RouteTable{
		routes:      make([]Route, 0, len(routes)),
		byPath:      make(map[string]Route, len(routes)),
		dynamicPath: dynamicPath,
	}

	for _, r := range routes {
		if r.Path == "" || r.Path[0] != '/' {
			return nil, fmt.Errorf("%w: path %q must start with /", ErrInvalidRoute, r.Path)
		}
		if r.Name == "" || r.ContentType == "" {
			return nil, fmt.Errorf("%w: %s needs a name and a content type", ErrInvalidRoute, r.Path)
		}
		if !assets.ValidRef(r.ResourceRef) {
			return nil, fmt.Errorf("%w: %s -> %q", assets.ErrInvalidResource, r.Path, r.ResourceRef)
		}
		if _, exists := t.byPath[r.Path]; exists || r.Path == dynamicPath {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoute, r.Path)
		}

		t.byPath[r.Path] = r
		t.routes = append(t.routes, r)
	}

	return t, nil
}

// DefaultRouteTable builds the table from DefaultRoutes and DailyInfoPath.
func DefaultRouteTable() *RouteTable {
	t, err := NewRouteTable(DefaultRoutes(), DailyInfoPath)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the static route for path.
func (t *RouteTable) Lookup(path string) (Route, bool) {
	r, ok := t.byPath[path]
	return r, ok
}

// IsDynamic reports whether path is the headline endpoint.
func (t *RouteTable) IsDynamic(path string) bool {
	return t.dynamicPath != "" && path == t.dynamicPath
}

// DynamicPath returns the headline endpoint path, or "" if there is none.
func (t *RouteTable) DynamicPath() string {
	return t.dynamicPath
}

// Routes returns the static routes in registration order.
func (t *RouteTable) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}
