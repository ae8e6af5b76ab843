package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tusharj03/EMT-AI-Agent/internal/output"
)

func NewFHIRCmd(deps *Dependencies) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "fhir <recording-id>",
		Short: "Export an encounter's report as a FHIR DiagnosticReport",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			fhir, err := deps.App.ExportFHIR.Execute(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = filepath.Join(deps.Config.DataDir, "fhir-"+args[0]+".json")
			}
			if err := os.WriteFile(outPath, []byte(fhir), 0o644); err != nil {
				return err
			}
			formatter.FHIRDone(outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output path for the FHIR JSON (defaults into the data directory)")

	return cmd
}
