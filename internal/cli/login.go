package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var id, passcode string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login as an athlete",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"participant_id": id,
				"passcode":       passcode,
			}
			var result AuthResult

			if err := client.Post("/api/v1/login", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Bib number (required)")
	cmd.Flags().StringVar(&passcode, "passcode", "", "Passcode (required)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("passcode")

	return cmd
}

func newStaffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Staff commands",
	}

	cmd.AddCommand(newStaffLoginCmd())
	cmd.AddCommand(newStaffArchiveCmd())

	return cmd
}

func newStaffLoginCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with the staff key",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"key": key}
			var result AuthResult

			if err := client.Post("/api/v1/staff/login", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Staff key (required)")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

func newStaffArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Archive recorded events and reset timing data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/admin/archive", nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Timing data archived")
			return nil
		},
	}
}
