package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameShowCmd())
	cmd.AddCommand(newGameAwaitingCmd())

	return cmd
}

// playerSpec is one entry of the create request
type playerSpec struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Tokens int    `json:"tokens"`
}

// parsePlayer parses NAME:AGE:TOKENS
func parsePlayer(s string) (playerSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] == "" {
		return playerSpec{}, fmt.Errorf("invalid player %q, expected NAME:AGE:TOKENS", s)
	}

	age, err := strconv.Atoi(parts[1])
	if err != nil {
		return playerSpec{}, fmt.Errorf("invalid age for %s: %w", parts[0], err)
	}
	tokens, err := strconv.Atoi(parts[2])
	if err != nil {
		return playerSpec{}, fmt.Errorf("invalid tokens for %s: %w", parts[0], err)
	}

	return playerSpec{Name: parts[0], Age: age, Tokens: tokens}, nil
}

func newGameCreateCmd() *cobra.Command {
	var players []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new game",
		Example: `  mwgame game create --player alice:34:5 --player bob:29:5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(players) == 0 {
				return fmt.Errorf("at least one --player is required")
			}

			specs := make([]playerSpec, len(players))
			for i, p := range players {
				spec, err := parsePlayer(p)
				if err != nil {
					return err
				}
				specs[i] = spec
			}

			var result GameCreated
			req := map[string]any{"players": specs}
			if err := client.Post(cmd.Context(), "/api/game", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&players, "player", "p", nil, "Player as NAME:AGE:TOKENS (repeatable)")

	return cmd
}

func newGameShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <game-id>",
		Short: "Show the stored record of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game

			if err := client.Get(cmd.Context(), "/api/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameAwaitingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "awaiting <player>",
		Short: "List the games waiting on a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Awaiting

			path := "/api/games?player=" + url.QueryEscape(args[0])
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
