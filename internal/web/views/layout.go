// Package views holds the HTML components of the web interface
package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Layout wraps body in the page chrome
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, templ.EscapeString(title)+" - Mint Works</title></head><body><main>"); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</main></body></html>")
		return err
	})
}
