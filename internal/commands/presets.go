package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/mmynk/tipsplit/internal/calculator"
)

func addPresets(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the preset tip percentages.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			bold := color.New(color.Bold)

			tbl := uitable.New()
			tbl.AddRow(bold.Sprint("Preset"))
			for _, p := range calculator.Presets() {
				tbl.AddRow(calculator.FormatPercent(p))
			}
			tbl.RightAlign(0)

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), tbl)
		},
	}
	topLevel.AddCommand(cmd)
}
