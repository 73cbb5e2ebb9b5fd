package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"strafenkasse/internal/export"
	"strafenkasse/internal/workbook"
)

func newExportCmd() *cobra.Command {
	var (
		input  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Flatten a filled workbook into a CSV export",
		Long: `Export reads the entry sheet of a filled-in workbook, drops the empty
pre-formatted rows, normalizes dates and amounts and writes the result
as a semicolon-separated CSV file. The written file is re-read and
validated before the command reports success.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			header, rows, err := workbook.Flatten(input)
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create export: %w", err)
			}
			if err := export.WriteRows(f, header, rows); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close export: %w", err)
			}

			sum, err := export.Validate(output)
			if err != nil {
				return err
			}

			cmd.Printf("CSV-Export erstellt: %s\n", output)
			cmd.Printf("  Datensätze: %d, Spalten: %d\n", sum.Rows, len(sum.Headers))
			if sum.Rows == 0 {
				cmd.Println("  Hinweis: keine befüllten Zeilen gefunden.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "strafenerfassung.xlsx", "Filled workbook to read")
	cmd.Flags().StringVarP(&output, "output", "o", "erfassung_export.csv", "Path of the CSV file to write")

	return cmd
}
