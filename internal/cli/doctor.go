package cli

import (
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/tusharj03/EMT-AI-Agent/internal/output"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(os.Stdout)
			ok := true

			if _, err := exec.LookPath("ffmpeg"); err != nil {
				f.SetupCheck("ffmpeg", false, "not found. Install it and make sure it is on PATH")
				ok = false
			} else {
				f.SetupCheck("ffmpeg", true, "installed")
			}

			if deps.Config.TranscribeBaseURL != "" {
				f.SetupCheck("Transcription service", true, deps.Config.TranscribeBaseURL)
			} else {
				f.SetupCheck("Transcription service", false, "not set. Set EMTSCRIBE_TRANSCRIBE_URL or add transcribe_url to config")
				ok = false
			}

			if deps.Config.OfflineMode {
				f.SetupCheck("Report derivation", true, "offline mode (deterministic local extraction)")
			} else if deps.Config.AIEndpointURL != "" {
				f.SetupCheck("Report derivation", true, deps.Config.AIEndpointURL)
			} else {
				f.SetupCheck("Report derivation", false, "not set. Set EMTSCRIBE_AI_ENDPOINT_URL or add ai_endpoint_url to config")
				ok = false
			}

			f.SetupCheck("Storage", true, deps.Config.Storage)
			f.SetupCheck("Data directory", true, deps.Config.DataDir)

			if ok {
				f.Success("\nAll prerequisites met. Ready to record!")
			} else {
				f.Warning("\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}
