package composer

import (
	"bytes"
	"context"
	"net/http"

	"github.com/a-h/templ"
)

// Render writes a node to the HTTP response as HTML.
//
// A nil node writes an empty body, matching how an unrendered description
// is displayed.
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    composer.Render(w, r, c.Render(desc, composer.DefaultKey))
//	}
func Render(w http.ResponseWriter, r *http.Request, node templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if node == nil {
		return nil
	}
	return node.Render(r.Context(), w)
}

// RenderString renders a node to a string. A nil node renders to "".
func RenderString(ctx context.Context, node templ.Component) (string, error) {
	if node == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := node.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// IsHTMX returns true if the request originated from HTMX.
//
// The HTTP host uses this to answer HTMX polling with the bare fragment and
// browsers with the full page.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
