package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/tusharj03/EMT-AI-Agent/internal/domain/encounter"
	"github.com/tusharj03/EMT-AI-Agent/internal/output"
)

func NewStopCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop recording and process the encounter",
		Long:  "Stop the background capture, then transcribe the audio and generate the clinical report according to the auto-transcribe and auto-report settings.",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)
			ctx := cmd.Context()

			rec, audioPath, err := deps.App.StopEncounter.Execute(ctx)
			if err != nil {
				return err
			}
			formatter.RecordingStopped(rec.Duration)

			settings := deps.App.Settings.Get()
			if settings.AutoTranscribe {
				formatter.Transcribing()
			}

			if err := deps.App.Pipeline.Process(ctx, rec.ID, audioPath); err != nil {
				formatter.Error(err.Error())
				formatter.Info("You can retry with 'emtscribe transcribe " + rec.ID + "' or 'emtscribe report " + rec.ID + "'")
				return nil
			}

			final, err := deps.App.Store.Get(rec.ID)
			if err != nil && !errors.Is(err, encounter.ErrNotFound) {
				return err
			}
			if final.Transcription != "" {
				formatter.TranscribeDone()
			}
			if final.Report != nil {
				formatter.ReportDone()
			}
			formatter.Success("Encounter saved: " + rec.ID)
			return nil
		},
	}

	return cmd
}
