package cli

import (
	"github.com/spf13/cobra"
)

func newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Checkpoint recording commands",
	}

	cmd.AddCommand(newRecordScanCmd())
	cmd.AddCommand(newRecordManualCmd())

	return cmd
}

func newRecordScanCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Record a checkpoint from a scanned token (athlete)",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"token": token}
			var result ScanResult

			if err := client.Post("/api/v1/scan", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Scanned checkpoint token (required)")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func newRecordManualCmd() *cobra.Command {
	var id, checkpoint, timestamp string

	cmd := &cobra.Command{
		Use:   "manual",
		Short: "Record a checkpoint manually (staff)",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"participant_id": id,
				"checkpoint":     checkpoint,
			}
			if timestamp != "" {
				req["timestamp"] = timestamp
			}
			var result ScanResult

			if err := client.Post("/api/v1/checkpoints", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Bib number (required)")
	cmd.Flags().StringVar(&checkpoint, "checkpoint", "", "Checkpoint: START, MID or FINISH (required)")
	cmd.Flags().StringVar(&timestamp, "at", "", "Timestamp (RFC3339, default now)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("checkpoint")

	return cmd
}
