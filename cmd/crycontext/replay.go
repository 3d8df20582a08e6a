package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/logging"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/replay"
)

var replayFlags struct {
	fixture string
	fromLog bool
	last    int
	verbose bool
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Re-run fixture cases or logged adjustments and report divergence",
	Long: `Fixture mode (--fixture) runs each case through the engine with the
configured thresholds and checks the expected label and rules. Log mode
(--from-log) re-runs adjustment_log records with the thresholds stored in
each record and compares against the logged output. Exits 1 on divergence.`,
	Args: cobra.NoArgs,
	RunE: runReplay,
}

func init() {
	f := replayCmd.Flags()
	f.StringVar(&replayFlags.fixture, "fixture", "", "fixture file (json or yaml)")
	f.BoolVar(&replayFlags.fromLog, "from-log", false, "replay adjustment_log records from --db")
	f.IntVar(&replayFlags.last, "last", 100, "number of most recent log records to replay")
	f.BoolVarP(&replayFlags.verbose, "verbose", "v", false, "print the reason for every case")
	rootCmd.AddCommand(replayCmd)
}

// #region run
func runReplay(_ *cobra.Command, _ []string) error {
	if (replayFlags.fixture == "") == !replayFlags.fromLog {
		return &exitError{code: 2, msg: "usage: crycontext replay --fixture path/to/fixture.json\n       crycontext replay --from-log [--db path] [--last N]"}
	}

	var results []replay.ReplayResult
	if replayFlags.fixture != "" {
		f, err := replay.LoadFixture(replayFlags.fixture)
		if err != nil {
			return err
		}
		results = replay.Replay(f.Cases, newEngine(), newHarness())
	} else {
		ids, records, err := loadRecords(replayFlags.last)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return &exitError{code: 2, msg: "no adjustments found in adjustment_log"}
		}
		results = replay.ReplayRecords(ids, records, newHarness())
	}

	summary := printComparison(results, replayFlags.verbose)
	if !summary.OK() {
		return &exitError{code: 1}
	}
	return nil
}

// loadRecords reads the last n logged records, oldest first.
func loadRecords(n int) ([]string, []logging.AdjustmentRecord, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	rows, err := st.ListAdjustments(n)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(rows))
	records := make([]logging.AdjustmentRecord, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		rec, err := logging.DecodeRecord(rows[i].RecordJSON)
		if err != nil {
			logger.Warn("skipping undecodable record", "adjustment_id", rows[i].AdjustmentID, "err", err)
			continue
		}
		ids = append(ids, rows[i].AdjustmentID)
		records = append(records, rec)
	}
	return ids, records, nil
}

// #endregion run

// #region output
func printComparison(results []replay.ReplayResult, verbose bool) replay.ReplaySummary {
	fmt.Printf("%-28s| %-12s| %-11s| %s\n", "Case", "Label", "Result", "Reason")
	fmt.Printf("%-28s+%-13s+%-12s+%s\n",
		"----------------------------", "-------------", "------------", "--------")

	for _, r := range results {
		reason := ""
		if verbose || r.Action != "match" {
			reason = r.Reason
		}
		fmt.Printf("%-28s| %-12s| %-11s| %s\n", truncate(r.Name, 28), r.Output.FinalLabel, r.Action, reason)
	}

	s := replay.Summarize(results)
	fmt.Printf("\nSummary: %d total, %d match, %d mismatch, %d eval fail\n",
		s.Total, s.Matches, s.Mismatches, s.EvalFails)
	return s
}

// #endregion output
