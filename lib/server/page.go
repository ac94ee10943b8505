package server

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// page is the browser shell around the displayed output. htmx's SSE
// extension swaps every "ui" event into #composer-root. base is the path
// prefix the server is mounted under.
func page(title, base, body string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>`+templ.EscapeString(title)+`</title>
<script src="https://unpkg.com/htmx.org@2.0.4"></script>
<script src="https://unpkg.com/htmx-ext-sse@2.2.2/sse.js"></script>
</head>
<body hx-ext="sse" sse-connect="`+templ.EscapeString(base+"/events")+`">
<main id="composer-root" sse-swap="`+EventUI+`">`+body+`</main>
</body>
</html>
`)
		return err
	})
}
