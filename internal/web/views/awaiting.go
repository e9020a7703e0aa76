package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// AwaitingGame is one row of the awaiting games table
type AwaitingGame struct {
	ID      string
	Version int64
}

// AwaitingData is the data for the awaiting games page
type AwaitingData struct {
	Player string
	Games  []AwaitingGame
}

// Awaiting renders the games waiting on a player, with a lookup form
func Awaiting(data AwaitingData) templ.Component {
	return Layout("Your turn", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<form method="get" action="/games" id="lookup">`)
		b.WriteString(`<label for="player">Player</label>`)
		fmt.Fprintf(&b, `<input type="text" id="player" name="player" value="%s">`, templ.EscapeString(data.Player))
		b.WriteString(`<button type="submit">Show games</button></form>`)

		switch {
		case data.Player == "":
		case len(data.Games) == 0:
			fmt.Fprintf(&b, `<p class="empty">No games are waiting on %s.</p>`, templ.EscapeString(data.Player))
		default:
			fmt.Fprintf(&b, `<h1>Games waiting on %s</h1>`, templ.EscapeString(data.Player))
			b.WriteString(`<table id="games"><thead><tr><th>Game</th><th>Version</th><th>Turns</th></tr></thead><tbody>`)
			for _, g := range data.Games {
				href := templ.URL("/api/" + g.ID + "/turn")
				fmt.Fprintf(&b, `<tr class="game" data-game-id="%s"><td>%s</td><td class="version">%d</td><td><a href="%s">legal turns</a></td></tr>`,
					templ.EscapeString(g.ID), templ.EscapeString(g.ID), g.Version, templ.EscapeString(string(href)))
			}
			b.WriteString(`</tbody></table>`)
		}

		_, err := io.WriteString(w, b.String())
		return err
	}))
}
