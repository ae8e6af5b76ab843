package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tusharj03/EMT-AI-Agent/internal/output"
)

func NewSettingsCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change recording settings",
	}

	cmd.AddCommand(newSettingsShowCmd(deps))
	cmd.AddCommand(newSettingsSetCmd(deps))

	return cmd
}

func newSettingsShowCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := deps.App.Settings.Get()
			fmt.Printf("  auto-transcribe:  %v\n", s.AutoTranscribe)
			fmt.Printf("  auto-report:      %v\n", s.AutoGenerateReport)
			fmt.Printf("  default-title:    %s\n", s.DefaultRecordingTitle)
			fmt.Printf("  organization:     %s\n", s.OrganizationName)
			fmt.Printf("  provider-name:    %s\n", s.ProviderName)
			fmt.Printf("  provider-id:      %s\n", s.ProviderID)
			return nil
		},
	}
}

func newSettingsSetCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> [value]",
		Short: "Change a setting",
		Long:  "Keys: auto-transcribe, auto-report (toggles, no value), default-title, organization, provider-name, provider-id.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)
			ctx := cmd.Context()
			settings := deps.App.Settings

			value := ""
			if len(args) == 2 {
				value = args[1]
			}

			var err error
			switch args[0] {
			case "auto-transcribe":
				err = settings.ToggleAutoTranscribe(ctx)
			case "auto-report":
				err = settings.ToggleAutoGenerateReport(ctx)
			case "default-title":
				err = settings.SetDefaultRecordingTitle(ctx, value)
			case "organization":
				err = settings.SetOrganizationName(ctx, value)
			case "provider-name":
				err = settings.SetProviderName(ctx, value)
			case "provider-id":
				err = settings.SetProviderID(ctx, value)
			default:
				return fmt.Errorf("unknown setting %q", args[0])
			}
			if err != nil {
				return err
			}

			formatter.Success("Settings updated")
			return nil
		},
	}
}
