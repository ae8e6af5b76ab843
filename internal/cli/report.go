package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tusharj03/EMT-AI-Agent/internal/output"
)

func NewReportCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <recording-id>",
		Short: "Generate the clinical report for an encounter",
		Long:  "Rerun only the report derivation step, using whatever transcription is currently stored, including manual edits. An existing report is replaced.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			formatter.GeneratingReport()
			if err := deps.App.Pipeline.GenerateReport(cmd.Context(), args[0]); err != nil {
				return err
			}
			formatter.ReportDone()

			rec, err := deps.App.Store.Get(args[0])
			if err != nil {
				return err
			}
			if rec.Report != nil {
				formatter.Report(*rec.Report)
			}
			return nil
		},
	}

	return cmd
}
