package cli

import (
	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Match state commands",
	}

	cmd.AddCommand(newGameStateCmd())
	cmd.AddCommand(newGameStartCmd())

	return cmd
}

func newGameStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the current match phase",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Phase

			if err := client.Get("/game/state", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the match (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/game/start", nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Match starting")
			return nil
		},
	}
}

func newTimerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "timer",
		Short: "Show the remaining time in the current phase",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result TimerResult

			if err := client.Get("/timer", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
