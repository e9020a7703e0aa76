package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/mintworks-go/internal/dependencies/random"
	"github.com/mcoot/mintworks-go/internal/engine"
)

func newTurnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "turn",
		Short: "Turn commands",
	}

	cmd.AddCommand(newTurnListCmd())
	cmd.AddCommand(newTurnPlayCmd())
	cmd.AddCommand(newTurnAutoplayCmd())

	return cmd
}

func turnPath(gameID string) string {
	return "/api/" + url.PathEscape(gameID) + "/turn"
}

func fetchTurns(ctx context.Context, gameID string) ([]json.RawMessage, error) {
	var turns []json.RawMessage
	if err := client.Get(ctx, turnPath(gameID), &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

func submitTurn(ctx context.Context, gameID string, turn json.RawMessage) error {
	return client.Put(ctx, turnPath(gameID), map[string]json.RawMessage{"turn": turn}, nil)
}

func newTurnListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <game-id>",
		Short: "List the legal turns of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			turns, err := fetchTurns(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(TurnList{GameID: args[0], Turns: turns})
			return nil
		},
	}
}

func newTurnPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <game-id> <index|turn-json>",
		Short: "Submit a turn",
		Long: `Submit a turn to a game.

The turn is either the index of one of the turns printed by "turn list",
or a turn object given as JSON.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID := args[0]

			var turn json.RawMessage
			if idx, err := strconv.Atoi(args[1]); err == nil {
				turns, err := fetchTurns(cmd.Context(), gameID)
				if err != nil {
					return err
				}
				if idx < 0 || idx >= len(turns) {
					return fmt.Errorf("turn index %d out of range, game has %d legal turns", idx, len(turns))
				}
				turn = turns[idx]
			} else {
				if !json.Valid([]byte(args[1])) {
					return fmt.Errorf("turn must be an index or valid JSON")
				}
				turn = json.RawMessage(args[1])
			}

			if err := submitTurn(cmd.Context(), gameID, turn); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(TurnResult{GameID: gameID, Turn: turn, Success: true})
			return nil
		},
	}
}

func newTurnAutoplayCmd() *cobra.Command {
	var (
		maxTurns int
		policy   string
	)

	cmd := &cobra.Command{
		Use:   "autoplay <game-id>",
		Short: "Play turns with a decision policy until the game ends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deciders := engine.Deciders{
				engine.PolicyFirstChoice:  engine.FirstChoice{},
				engine.PolicyRandomChoice: engine.NewRandomChoice(random.New()),
			}
			decider, err := deciders.Lookup(policy)
			if err != nil {
				return err
			}

			result, err := autoplay(cmd, args[0], decider, maxTurns)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxTurns, "max", 200, "Maximum number of turns to play")
	cmd.Flags().StringVar(&policy, "policy", engine.PolicyFirstChoice, "Decision policy: first, random")

	return cmd
}

func autoplay(cmd *cobra.Command, gameID string, decider engine.DecisionProvider, maxTurns int) (AutoplayResult, error) {
	ctx := cmd.Context()
	result := AutoplayResult{GameID: gameID}

	for result.Played < maxTurns {
		turns, err := fetchTurns(ctx, gameID)
		if err != nil {
			return result, err
		}
		if len(turns) == 0 {
			result.Finished = true
			return result, nil
		}

		idx, err := decider.ChooseTurn(ctx, "", turns)
		if err != nil {
			return result, err
		}
		if err := submitTurn(ctx, gameID, turns[idx]); err != nil {
			return result, fmt.Errorf("turn %d: %w", result.Played+1, err)
		}
		result.Played++

		if cfg.Verbose {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "played %s\n", describeTurn(turns[idx]))
		}
	}

	turns, err := fetchTurns(ctx, gameID)
	if err != nil {
		return result, err
	}
	result.Finished = len(turns) == 0
	return result, nil
}
