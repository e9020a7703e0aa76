package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == OutputJSON {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == OutputJSON {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case GameCreated:
		o.printGameCreated(v)
	case Game:
		o.printGame(v)
	case TurnList:
		o.printTurnList(v)
	case Awaiting:
		o.printAwaiting(v)
	case TurnResult:
		o.printTurnResult(v)
	case AutoplayResult:
		o.printAutoplayResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// GameCreated response type
type GameCreated struct {
	GameID string `json:"gameId"`
}

// Game response type (matches API)
type Game struct {
	GameID      string          `json:"gameId"`
	PlayerToAct string          `json:"playerToAct"`
	Version     int64           `json:"version"`
	Finished    bool            `json:"finished"`
	State       json.RawMessage `json:"state"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TurnList is the set of legal turns for a game
type TurnList struct {
	GameID string            `json:"gameId"`
	Turns  []json.RawMessage `json:"turns"`
}

// Awaiting response type
type Awaiting struct {
	Player  string   `json:"player"`
	GameIDs []string `json:"gameIds"`
}

// TurnResult reports a submitted turn
type TurnResult struct {
	GameID  string          `json:"gameId"`
	Turn    json.RawMessage `json:"turn"`
	Success bool            `json:"success"`
}

// AutoplayResult summarises an autoplay run
type AutoplayResult struct {
	GameID   string `json:"gameId"`
	Played   int    `json:"played"`
	Finished bool   `json:"finished"`
}

// HealthResult is the health response plus client-side timing
type HealthResult struct {
	Status  string `json:"status"`
	Server  string `json:"server"`
	Latency string `json:"latency"`
}

func (o *Output) printGameCreated(g GameCreated) {
	_, _ = fmt.Fprintf(o.w, "Game created: %s\n", g.GameID)
}

func (o *Output) printGame(g Game) {
	_, _ = fmt.Fprintf(o.w, "Game: %s\n", g.GameID)
	_, _ = fmt.Fprintf(o.w, "Version: %d\n", g.Version)
	if g.Finished {
		_, _ = fmt.Fprintln(o.w, "Finished: yes")
	} else {
		_, _ = fmt.Fprintf(o.w, "To act: %s\n", g.PlayerToAct)
	}
	_, _ = fmt.Fprintf(o.w, "Updated: %s\n", g.UpdatedAt.Format(time.RFC3339))
}

func (o *Output) printTurnList(l TurnList) {
	if len(l.Turns) == 0 {
		_, _ = fmt.Fprintf(o.w, "No legal turns, game %s is over\n", l.GameID)
		return
	}
	_, _ = fmt.Fprintf(o.w, "Legal turns (%d):\n", len(l.Turns))
	for i, t := range l.Turns {
		_, _ = fmt.Fprintf(o.w, "  [%d] %s\n", i, describeTurn(t))
	}
}

func (o *Output) printAwaiting(a Awaiting) {
	if len(a.GameIDs) == 0 {
		_, _ = fmt.Fprintf(o.w, "No games waiting on %s\n", a.Player)
		return
	}
	_, _ = fmt.Fprintf(o.w, "Games waiting on %s:\n", a.Player)
	for _, id := range a.GameIDs {
		_, _ = fmt.Fprintf(o.w, "  - %s\n", id)
	}
}

func (o *Output) printTurnResult(r TurnResult) {
	_, _ = fmt.Fprintf(o.w, "Played %s\n", describeTurn(r.Turn))
}

func (o *Output) printAutoplayResult(r AutoplayResult) {
	_, _ = fmt.Fprintf(o.w, "Played %d turns in %s\n", r.Played, r.GameID)
	if r.Finished {
		_, _ = fmt.Fprintln(o.w, "Game over")
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	_, _ = fmt.Fprintf(o.w, "Server: %s (%s)\n", h.Server, h.Latency)
}

// describeTurn renders a turn as "player: action location plan", falling
// back to the raw JSON for turns of an unfamiliar shape
func describeTurn(raw json.RawMessage) string {
	var t struct {
		Player   string `json:"player"`
		Action   string `json:"action"`
		Location string `json:"location"`
		Plan     string `json:"plan"`
	}
	if err := json.Unmarshal(raw, &t); err != nil || t.Action == "" {
		return string(raw)
	}

	parts := []string{t.Action}
	if t.Location != "" {
		parts = append(parts, t.Location)
	}
	if t.Plan != "" {
		parts = append(parts, t.Plan)
	}
	return t.Player + ": " + strings.Join(parts, " ")
}
