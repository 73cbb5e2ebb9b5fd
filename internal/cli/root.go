package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the strafenlog root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "strafenlog",
		Short: "Offline workbook tooling for the penalty fund",
		Long: `strafenlog maintains the offline half of the penalty fund: it generates
the formula-driven Excel workbook handed to the treasurer and flattens a
filled-in copy back into a CSV export.

The workbook works standalone; all amounts are computed by sheet formulas
against the penalty catalog, so no software is needed at the sideline.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newExportCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
