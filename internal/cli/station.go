package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newStationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "station",
		Short: "Checkpoint station commands",
	}

	cmd.AddCommand(newStationCodeCmd())

	return cmd
}

func newStationCodeCmd() *cobra.Command {
	var checkpoint string

	cmd := &cobra.Command{
		Use:   "code",
		Short: "Fetch the current scan code for a checkpoint (staff)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result StationCode

			path := "/api/v1/station/code?checkpoint=" + url.QueryEscape(checkpoint)
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&checkpoint, "checkpoint", "", "Checkpoint: START, MID or FINISH (required)")
	_ = cmd.MarkFlagRequired("checkpoint")

	return cmd
}
