package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxgrid/tictactoe/internal/model"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player management commands",
	}

	cmd.AddCommand(newPlayerCreateCmd())
	cmd.AddCommand(newPlayerGetCmd())
	cmd.AddCommand(newPlayerFindCmd())
	cmd.AddCommand(newPlayerListCmd())
	cmd.AddCommand(newPlayerStatsCmd())

	return cmd
}

func newPlayerCreateCmd() *cobra.Command {
	var name string
	var save bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a player",
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := client.CreatePlayer(cmd.Context(), name)
			if err != nil {
				return err
			}

			if save {
				if err := cfg.SaveProfile(Profile{ID: player.ID, Name: player.Name}); err != nil {
					return fmt.Errorf("failed to save profile: %w", err)
				}
			}

			output(cmd).Print(player)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player name (required)")
	cmd.Flags().BoolVar(&save, "save", false, "Play as this player from now on")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPlayerGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show a player by id (default: the saved profile)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := playerIDArg(args)
			if err != nil {
				return err
			}

			player, err := client.GetPlayer(cmd.Context(), id)
			if err != nil {
				return err
			}

			output(cmd).Print(player)
			return nil
		},
	}
}

func newPlayerFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <name>",
		Short: "Show a player by exact name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := client.GetPlayerByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			output(cmd).Print(player)
			return nil
		},
	}
}

func newPlayerListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all players, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			players, err := client.ListPlayers(cmd.Context())
			if err != nil {
				return err
			}

			output(cmd).Print(players)
			return nil
		},
	}
}

func newPlayerStatsCmd() *cobra.Command {
	var result string

	cmd := &cobra.Command{
		Use:   "stats [id]",
		Short: "Record a game result for a player (default: the saved profile)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := model.ParseGameResult(result)
			if err != nil {
				return fmt.Errorf("--result must be win, loss or tie")
			}

			id, err := playerIDArg(args)
			if err != nil {
				return err
			}

			out, err := client.RecordResult(cmd.Context(), id, r)
			if err != nil {
				return err
			}

			output(cmd).Print(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&result, "result", "", "Game result: win, loss or tie (required)")
	_ = cmd.MarkFlagRequired("result")

	return cmd
}

// playerIDArg returns the id argument, falling back to the saved profile
func playerIDArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	profile, err := cfg.LoadProfile()
	if err != nil {
		return "", err
	}
	if profile == nil {
		return "", fmt.Errorf("no player id given and no profile at %s", cfg.ProfilePath)
	}
	return profile.ID, nil
}
