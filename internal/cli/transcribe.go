package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tusharj03/EMT-AI-Agent/internal/output"
)

func NewTranscribeCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe <recording-id>",
		Short: "Retranscribe an encounter's audio",
		Long:  "Rerun only the transcription step for a recording, replacing the stored transcription. The report is left untouched; regenerate it with 'emtscribe report'.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			formatter.Transcribing()
			if err := deps.App.Pipeline.Retranscribe(cmd.Context(), args[0]); err != nil {
				return err
			}
			formatter.TranscribeDone()
			return nil
		},
	}

	return cmd
}
