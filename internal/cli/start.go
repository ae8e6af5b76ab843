package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tusharj03/EMT-AI-Agent/internal/output"
)

func NewStartCmd(deps *Dependencies) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start recording a patient encounter",
		Long:  "Start capturing audio from the microphone. The capture runs in the background; use 'emtscribe stop' to end it and kick off transcription and report generation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			rec, err := deps.App.StartEncounter.Execute(cmd.Context(), title)
			if err != nil {
				return err
			}

			formatter.RecordingStarted(rec.Title)
			formatter.Info("Run 'emtscribe stop' to finish the encounter")
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Recording title (defaults to the configured encounter title)")

	return cmd
}
