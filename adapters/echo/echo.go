// Package composerecho provides Echo framework integration for the composer
// HTTP host.
//
// Mount the host onto an Echo instance or group:
//
//	e := echo.New()
//	composerecho.Mount(e, srv)
//
// Or mount on a group with middleware:
//
//	g := e.Group("/app", authMiddleware)
//	composerecho.MountGroup(g, srv, composerecho.WithPath("/ui"))
package composerecho

import (
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/composer"
	"github.com/pthm/composer/lib/server"
)

// Option configures the Mount and MountGroup functions.
type Option func(*options)

type options struct {
	path string
}

// WithPath sets the URL path prefix for the host routes.
// Defaults to "/composer".
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// Mount mounts the host's routes on an Echo instance under the path prefix.
//
//	e := echo.New()
//	composerecho.Mount(e, srv)
//
//	// With options:
//	composerecho.Mount(e, srv, composerecho.WithPath("/live"))
func Mount(e *echo.Echo, srv *server.Server, opts ...Option) {
	prefix, h := mounted(srv, opts)
	e.Any(prefix+"/*", h)
	e.Any(prefix, h)
}

// MountGroup mounts the host's routes on an Echo group. This lets the host
// share middleware with the group (auth, logging, etc.).
//
//	g := e.Group("/app", authMiddleware)
//	composerecho.MountGroup(g, srv)
func MountGroup(g *echo.Group, srv *server.Server, opts ...Option) {
	prefix, h := mounted(srv, opts)
	g.Any(prefix+"/*", h)
	g.Any(prefix, h)
}

// mounted rewrites the request path to the part matched by the wildcard,
// so the host sees its own routes ("/", "/events", ...). The stripped prefix,
// including any group prefix, is passed on so the page links back through it.
func mounted(srv *server.Server, opts []Option) (string, echo.HandlerFunc) {
	o := &options{path: "/composer"}
	for _, opt := range opts {
		opt(o)
	}
	prefix := strings.TrimSuffix(o.path, "/")

	handler := srv.Handler()
	return prefix, func(c echo.Context) error {
		rest := c.Param("*")
		base := strings.TrimSuffix(c.Request().URL.Path, rest)
		req := c.Request().Clone(server.ContextWithBasePath(c.Request().Context(), base))
		req.URL.Path = "/" + rest
		req.URL.RawPath = ""
		handler.ServeHTTP(c.Response(), req)
		return nil
	}
}

// Render writes a rendered node to the Echo response. A nil node writes an
// empty body.
//
//	func handler(c echo.Context) error {
//	    return composerecho.Render(c, comp.Render(desc, composer.DefaultKey))
//	}
func Render(c echo.Context, node templ.Component) error {
	return composer.Render(c.Response(), c.Request(), node)
}
