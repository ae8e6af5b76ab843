package cli

import (
	"github.com/spf13/cobra"

	"github.com/tusharj03/EMT-AI-Agent/config"
	"github.com/tusharj03/EMT-AI-Agent/internal/app"
	"github.com/tusharj03/EMT-AI-Agent/internal/version"
)

type Dependencies struct {
	App    *app.App
	Config *config.Config
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "emtscribe",
		Short: "Record patient encounters, transcribe, and generate clinical reports",
		Long:  "A tool for EMTs that records patient encounters, transcribes the audio, and derives a structured clinical report (vitals, symptoms, treatments, timeline, SOAP note) with optional FHIR export.",
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.AddCommand(NewStartCmd(deps))
	rootCmd.AddCommand(NewStopCmd(deps))
	rootCmd.AddCommand(NewListCmd(deps))
	rootCmd.AddCommand(NewShowCmd(deps))
	rootCmd.AddCommand(NewTranscribeCmd(deps))
	rootCmd.AddCommand(NewReportCmd(deps))
	rootCmd.AddCommand(NewFHIRCmd(deps))
	rootCmd.AddCommand(NewDeleteCmd(deps))
	rootCmd.AddCommand(NewSettingsCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}
