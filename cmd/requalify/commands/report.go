package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/requalify/pkg/report"
)

func newReportCommand(_ *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report <file>",
		Short: "Render a saved run summary",
		Long:  "Render a run summary previously written with run --report (.json, .yaml or .yml).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := report.Load(args[0])
			if err != nil {
				return err
			}

			report.Render(cmd.OutOrStdout(), summary)

			if summary.Failed() {
				return ErrFilesFailed
			}

			return nil
		},
	}
}
