package views

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
)

// Error renders a failure page with a link back to the games lookup
func Error(status int, message string) templ.Component {
	return Layout("Error", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<h1 class="error">%d</h1><p class="message">%s</p><p><a href="/games">Back to your games</a></p>`,
			status, templ.EscapeString(message))
		return err
	}))
}

// RenderError writes the error page with the given status
func RenderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = Error(status, message).Render(r.Context(), w)
}
