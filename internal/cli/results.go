package cli

import (
	"github.com/spf13/cobra"
)

func newResultsCmd() *cobra.Command {
	var teams bool

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show ranked results",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if teams {
				var result []TeamResult
				if err := client.Get("/api/v1/results/teams", &result); err != nil {
					return err
				}
				out.Print(result)
				return nil
			}

			var result []TimingResult
			if err := client.Get("/api/v1/results", &result); err != nil {
				return err
			}
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&teams, "teams", false, "Show team standings instead of individuals")

	return cmd
}
