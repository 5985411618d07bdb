package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newParticipantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "participant",
		Short: "Roster management commands",
	}

	cmd.AddCommand(newParticipantRegisterCmd())
	cmd.AddCommand(newParticipantListCmd())
	cmd.AddCommand(newParticipantGetCmd())
	cmd.AddCommand(newParticipantImportCmd())
	cmd.AddCommand(newParticipantTimesCmd())

	return cmd
}

func newParticipantRegisterCmd() *cobra.Command {
	var id, name, team, passcode string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a participant (staff)",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"participant_id": id,
				"display_name":   name,
			}
			if team != "" {
				req["team"] = team
			}
			if passcode != "" {
				req["passcode"] = passcode
			}
			var result Participant

			if err := client.Post("/api/v1/participants", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Bib number (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&team, "team", "", "Team name")
	cmd.Flags().StringVar(&passcode, "passcode", "", "Login passcode")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newParticipantListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered participants (staff)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Participant

			if err := client.Get("/api/v1/participants", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newParticipantGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <bib>",
		Short: "Show one participant (staff)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Participant

			if err := client.Get("/api/v1/participants/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newParticipantImportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a roster CSV (staff)",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open roster file: %w", err)
			}
			defer func() { _ = f.Close() }()

			var result ImportResult
			if err := client.PostRaw("/api/v1/participants/import", "text/csv", f, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Roster CSV path (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newParticipantTimesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "times <bib>",
		Short: "Show a participant's recorded checkpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []ParticipantTime

			if err := client.Get("/api/v1/participants/"+args[0]+"/times", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
