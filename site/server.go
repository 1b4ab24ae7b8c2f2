// Package site dispatches requests against the route table: static pages,
// the daily headline list, and the plain text 404.
package site

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pevans/pagewire/assets"
	"github.com/pevans/pagewire/events"
	"github.com/pevans/pagewire/headlines"
)

// Plain text bodies for the error responses.
const (
	NotFoundBody      = "404 Not Found"
	InternalErrorBody = assets.InternalErrorBody
)

// Route names reported to the response observer for non-static routes.
const (
	routeDailyInfo = "daily-info"
	routeNotFound  = "not_found"
)

// Server owns the response for every request.
type Server struct {
	table     *RouteTable
	fetcher   *assets.Fetcher
	bus       assets.Publisher
	headlines headlines.Source
	logger    *slog.Logger
	debug     bool
	observe   func(route string, status int)
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the operational logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// WithDebug logs each request URL and its resolved resource, and turns on
// gin's request log.
func WithDebug(debug bool) ServerOption {
	return func(s *Server) { s.debug = debug }
}

// WithResponseObserver is called once per terminal response.
func WithResponseObserver(fn func(route string, status int)) ServerOption {
	return func(s *Server) { s.observe = fn }
}

// NewServer creates a dispatcher. The fetcher should publish to the same bus.
func NewServer(table *RouteTable, fetcher *assets.Fetcher, bus assets.Publisher, source headlines.Source, opts ...ServerOption) *Server {
	s := &Server{
		table:     table,
		fetcher:   fetcher,
		bus:       bus,
		headlines: source,
		logger:    slog.Default(),
		observe:   func(string, int) {},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetupRouter configures the Gin router from the route table.
func (s *Server) SetupRouter() *gin.Engine {
	router := gin.New()

	// Only exact table paths match
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	if s.debug {
		router.Use(gin.Logger())
	}
	router.Use(gin.CustomRecovery(s.handlePanic))

	for _, route := range s.table.Routes() {
		s.handle(router, route.Path, s.HandleStatic)
	}
	if path := s.table.DynamicPath(); path != "" {
		s.handle(router, path, s.HandleDailyInfo)
	}
	router.NoRoute(s.HandleNotFound)

	return router
}

func (s *Server) handle(router *gin.Engine, path string, h gin.HandlerFunc) {
	router.Handle(http.MethodGet, path, h)
	router.Handle(http.MethodHead, path, h)
}

// HandleStatic serves the table entry for the matched path. Access events
// are published before the read starts, so they are recorded even when the
// read fails.
func (s *Server) HandleStatic(c *gin.Context) {
	route, ok := s.table.Lookup(c.FullPath())
	if !ok {
		s.HandleNotFound(c)
		return
	}

	if s.debug {
		s.logger.Debug("request", "url", c.Request.URL.String(), "resource", route.ResourceRef)
	}

	s.bus.Publish(events.New(events.PageAccessed, route.Name))
	if !route.IsHome {
		s.bus.Publish(events.New(events.NonHomeAccess, route.Path))
	}

	result := s.fetcher.Fetch(route.ResourceRef, route.ContentType)
	if result.Err != nil {
		s.logger.Error("failed to read asset", "resource", route.ResourceRef, "error", result.Err)
	}

	s.respond(c, route.Name, result.Status, result.ContentType, result.Body)
}

// HandleDailyInfo handles GET /daily-info. It publishes no events itself.
func (s *Server) HandleDailyInfo(c *gin.Context) {
	if s.debug {
		s.logger.Debug("request", "url", c.Request.URL.String(), "provider", s.headlines.Name())
	}

	items, err := s.headlines.FetchHeadlines(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to fetch headlines", "provider", s.headlines.Name(), "error", err)
		s.respondInternalError(c, routeDailyInfo)
		return
	}

	body, err := headlines.Render(items)
	if err != nil {
		s.logger.Error("failed to render headlines", "error", err)
		s.respondInternalError(c, routeDailyInfo)
		return
	}

	s.respond(c, routeDailyInfo, http.StatusOK, ContentTypeHTML, body)
}

// HandleNotFound answers every path outside the table. Unknown routes are
// not page accesses, so nothing is published.
func (s *Server) HandleNotFound(c *gin.Context) {
	if s.debug {
		s.logger.Debug("route not found", "method", c.Request.Method, "url", c.Request.URL.String())
	}
	s.respond(c, routeNotFound, http.StatusNotFound, assets.ContentTypeText, []byte(NotFoundBody))
}

func (s *Server) handlePanic(c *gin.Context, recovered any) {
	s.logger.Error("request handler panicked", "url", c.Request.URL.String(), "panic", recovered)
	if c.Writer.Written() {
		c.Abort()
		return
	}
	s.respondInternalError(c, s.routeName(c.FullPath()))
	c.Abort()
}

// routeName maps a matched path back to its response label.
func (s *Server) routeName(path string) string {
	if route, ok := s.table.Lookup(path); ok {
		return route.Name
	}
	if s.table.IsDynamic(path) {
		return routeDailyInfo
	}
	return routeNotFound
}

func (s *Server) respondInternalError(c *gin.Context, route string) {
	s.respond(c, route, http.StatusInternalServerError, assets.ContentTypeText, []byte(InternalErrorBody))
}

func (s *Server) respond(c *gin.Context, route string, status int, contentType string, body []byte) {
	c.Data(status, contentType, body)
	s.observe(route, status)
}
