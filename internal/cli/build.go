package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"strafenkasse/internal/seed"
	"strafenkasse/internal/workbook"
)

func newBuildCmd() *cobra.Command {
	var (
		output     string
		dataDir    string
		rows       int
		seriesDays int
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate the penalty workbook from roster and catalog",
		Long: `Build reads the roster and the penalty catalog from the data directory
and writes a fresh workbook with pre-formatted entry rows, dropdown
validations and a formula-driven statistics sheet.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			players, err := seed.Players(filepath.Join(dataDir, seed.PlayersFile))
			if err != nil {
				return fmt.Errorf("load roster: %w", err)
			}
			catalog, err := seed.Catalog(filepath.Join(dataDir, seed.CatalogFile))
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			if len(players) == 0 {
				return fmt.Errorf("roster in %s is empty", dataDir)
			}
			if len(catalog) == 0 {
				return fmt.Errorf("catalog in %s is empty", dataDir)
			}

			b := workbook.NewBuilder(players, catalog)
			if rows > 0 {
				b.Rows = rows
			}
			if seriesDays > 0 {
				b.SeriesDays = seriesDays
			}

			if err := b.Save(output); err != nil {
				return err
			}

			cmd.Printf("Arbeitsmappe erstellt: %s\n", output)
			cmd.Printf("  Spieler: %d, Vergehen: %d, Erfassungszeilen: %d\n",
				len(players), len(catalog), b.Rows)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "strafenerfassung.xlsx", "Path of the workbook to write")
	cmd.Flags().StringVar(&dataDir, "data", "./data", "Directory holding "+seed.PlayersFile+" and "+seed.CatalogFile)
	cmd.Flags().IntVar(&rows, "rows", 0, "Pre-formatted entry rows (default 1500)")
	cmd.Flags().IntVar(&seriesDays, "series-days", 0, "Length of the statistics time series (default 90)")

	return cmd
}
