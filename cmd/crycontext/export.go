package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/replay"
)

var exportFlags struct {
	last        int
	out         string
	description string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export logged adjustments as a replay fixture",
	Long: `Export turns the most recent adjustment_log records into fixture cases
whose expected label and rules are the ones logged. Output format follows the
--out extension (json or yaml).`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if exportFlags.out == "" {
			return &exitError{code: 2, msg: "usage: crycontext export --out path/to/fixture.json [--last N]"}
		}
		ids, records, err := loadRecords(exportFlags.last)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no adjustments found in adjustment_log")
		}

		desc := exportFlags.description
		if desc == "" {
			desc = fmt.Sprintf("Exported from %s (%d adjustments)", cfg.DBPath, len(records))
		}
		if err := replay.WriteFixture(exportFlags.out, replay.FixtureFromRecords(desc, ids, records)); err != nil {
			return err
		}
		fmt.Printf("Wrote %d cases to %s\n", len(records), exportFlags.out)
		return nil
	},
}

func init() {
	f := exportCmd.Flags()
	f.IntVar(&exportFlags.last, "last", 10, "number of most recent adjustments to export")
	f.StringVar(&exportFlags.out, "out", "", "output fixture path")
	f.StringVar(&exportFlags.description, "description", "", "fixture description")
	rootCmd.AddCommand(exportCmd)
}
