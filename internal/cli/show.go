package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tusharj03/EMT-AI-Agent/internal/output"
)

func NewShowCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <recording-id>",
		Short: "Show an encounter's transcription and report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			rec, err := deps.App.Store.Get(args[0])
			if err != nil {
				return err
			}

			formatter.RecordingDetail(rec)
			return nil
		},
	}

	return cmd
}
