package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oxgrid/tictactoe/internal/api/response"
	"github.com/oxgrid/tictactoe/internal/dependencies/random"
	"github.com/oxgrid/tictactoe/internal/model"
	"github.com/oxgrid/tictactoe/internal/services/bot"
	"github.com/oxgrid/tictactoe/internal/services/session"
)

func newPlayCmd() *cobra.Command {
	var name, opponent string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play tic-tac-toe in the terminal",
		Long: `Play tic-tac-toe in the terminal as X. Each finished game is reported to the
server for the saved player; a new player is created on first use.

Without --opponent two people take turns at the same keyboard.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g := &terminalGame{
				in:  bufio.NewScanner(cmd.InOrStdin()),
				w:   cmd.OutOrStdout(),
				out: NewOutput("text", cmd.OutOrStdout(), cmd.ErrOrStderr()),
			}

			var opts []session.Option
			if opponent != "" {
				strategy, err := bot.New(opponent, random.New())
				if err != nil {
					return err
				}
				opts = append(opts, session.WithOpponent(strategy))
			}

			player, err := g.ensurePlayer(cmd.Context(), name)
			if err != nil {
				return err
			}
			opts = append(opts, session.WithPlayer(player.ToModel()))

			return g.run(cmd.Context(), session.New(client, opts...))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player name to use when no profile is saved")
	cmd.Flags().StringVar(&opponent, "opponent", "", "Computer opponent: "+strings.Join(bot.Names(), ", "))

	return cmd
}

type terminalGame struct {
	in  *bufio.Scanner
	w   io.Writer
	out *Output
}

// readLine prompts and returns the trimmed answer; false at end of input
func (g *terminalGame) readLine(prompt string) (string, bool) {
	fmt.Fprint(g.w, prompt)
	if !g.in.Scan() {
		fmt.Fprintln(g.w)
		return "", false
	}
	return strings.TrimSpace(g.in.Text()), true
}

// confirm asks a yes/no question; an empty answer takes the default
func (g *terminalGame) confirm(prompt string, def bool) bool {
	answer, ok := g.readLine(prompt)
	if !ok {
		return false
	}
	switch strings.ToLower(answer) {
	case "":
		return def
	case "y", "yes":
		return true
	}
	return false
}

// ensurePlayer loads the saved player, or creates one and saves it
func (g *terminalGame) ensurePlayer(ctx context.Context, name string) (*response.Player, error) {
	profile, err := cfg.LoadProfile()
	if err != nil {
		return nil, err
	}
	if profile != nil {
		player, err := client.GetPlayer(ctx, profile.ID)
		if err == nil {
			fmt.Fprintf(g.w, "Welcome back, %s!\n", player.Name)
			return player, nil
		}
		if !errors.Is(err, model.ErrPlayerNotFound) {
			return nil, err
		}
		fmt.Fprintf(g.w, "Saved player %s no longer exists.\n", profile.Name)
	}

	for strings.TrimSpace(name) == "" {
		var ok bool
		if name, ok = g.readLine("Enter your name: "); !ok {
			return nil, errors.New("no player name given")
		}
	}

	player, err := client.CreatePlayer(ctx, name)
	if errors.Is(err, model.ErrPlayerNameTaken) {
		player, err = client.GetPlayerByName(ctx, strings.TrimSpace(name))
		if err == nil {
			fmt.Fprintf(g.w, "Playing as existing player %s.\n", player.Name)
		}
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.SaveProfile(Profile{ID: player.ID, Name: player.Name}); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	fmt.Fprintf(g.w, "Welcome, %s!\n", player.Name)
	return player, nil
}

// run plays games until the player quits
func (g *terminalGame) run(ctx context.Context, sess *session.Session) error {
	for {
		if !g.playOne(sess) {
			return nil
		}
		g.report(ctx, sess)

		if !g.confirm("Play again? [y/N] ", false) {
			return nil
		}
		if err := sess.Reset(); err != nil {
			return err
		}
	}
}

// playOne reads moves until the game ends; false if the player quit
func (g *terminalGame) playOne(sess *session.Session) bool {
	for sess.State() == session.StatePlaying {
		game := sess.Game()
		fmt.Fprintln(g.w)
		g.out.PrintBoard(game)

		line, ok := g.readLine(fmt.Sprintf("%s to move (1-9, q to quit): ", game.CurrentPlayer))
		if !ok || line == "q" || line == "quit" {
			return false
		}

		n, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(g.w, "Enter a number from 1 to 9.")
			continue
		}
		if err := sess.Move(n - 1); err != nil {
			fmt.Fprintln(g.w, moveProblem(err))
		}
	}

	game := sess.Game()
	fmt.Fprintln(g.w)
	g.out.PrintBoard(game)
	fmt.Fprintln(g.w, outcome(game))
	return true
}

// report sends the result, offering retries while it fails
func (g *terminalGame) report(ctx context.Context, sess *session.Session) {
	state, err := sess.Sync(ctx)
	for err != nil {
		fmt.Fprintf(g.w, "Could not save result: %v\n", err)
		if !g.confirm("Retry? [Y/n] ", true) {
			fmt.Fprintln(g.w, "Result not saved.")
			return
		}
		state, err = sess.Retry(ctx)
	}
	if state != session.StateSynced {
		return
	}

	result, _ := sess.Result()
	p := sess.Player()
	fmt.Fprintf(g.w, "Result saved: %s\n", result)
	fmt.Fprintf(g.w, "Wins: %d | Losses: %d | Ties: %d\n", p.Wins, p.Losses, p.Ties)
}

func outcome(g model.GameState) string {
	if g.Winner == model.Draw {
		return "It's a draw!"
	}
	return "Winner: " + string(g.Winner)
}

func moveProblem(err error) string {
	switch {
	case errors.Is(err, model.ErrCellOccupied):
		return "That square is already taken."
	case errors.Is(err, model.ErrInvalidPosition):
		return "Enter a number from 1 to 9."
	}
	return err.Error()
}
