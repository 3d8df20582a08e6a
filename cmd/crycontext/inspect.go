package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/cause"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/logging"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/store"
)

var inspectFlags struct {
	last    int
	id      string
	babyID  string
	jsonOut bool
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List logged adjustments or show one in detail",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		if inspectFlags.id != "" {
			return runDetailMode(st, inspectFlags.id, inspectFlags.jsonOut)
		}
		return runListMode(st, inspectFlags.last, inspectFlags.babyID, inspectFlags.jsonOut)
	},
}

func init() {
	f := inspectCmd.Flags()
	f.IntVar(&inspectFlags.last, "last", 20, "show N most recent adjustments")
	f.StringVar(&inspectFlags.id, "id", "", "show single adjustment detail")
	f.StringVar(&inspectFlags.babyID, "baby", "", "filter the list to one baby")
	f.BoolVar(&inspectFlags.jsonOut, "json", false, "output as JSON instead of table")
	rootCmd.AddCommand(inspectCmd)
}

// #region list-mode

type listRow struct {
	AdjustmentID string  `json:"adjustment_id"`
	BabyID       string  `json:"baby_id,omitempty"`
	Label        string  `json:"final_label"`
	Confidence   float64 `json:"confidence"`
	Rules        string  `json:"rules,omitempty"`
	EvalPassed   bool    `json:"eval_passed"`
	CreatedAt    string  `json:"created_at"`
}

func runListMode(st *store.Store, last int, babyID string, jsonOut bool) error {
	rows, err := st.ListAdjustments(last)
	if err != nil {
		return err
	}

	// store returns DESC, reverse for chronological
	listRows := make([]listRow, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		if babyID != "" && r.BabyID != babyID {
			continue
		}
		listRows = append(listRows, listRow{
			AdjustmentID: r.AdjustmentID,
			BabyID:       r.BabyID,
			Label:        r.FinalLabel,
			Confidence:   r.Confidence,
			Rules:        r.Rules,
			EvalPassed:   r.EvalPassed,
			CreatedAt:    r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	if len(listRows) == 0 {
		fmt.Fprintln(os.Stderr, "no adjustments found")
		return nil
	}

	if jsonOut {
		return printJSON(listRows)
	}

	fmt.Printf("%-10s  %-10s  %-12s  %6s  %-4s  %-20s  %s\n",
		"Adjust", "Baby", "Label", "Conf", "Eval", "Time", "Rules")
	fmt.Printf("%-10s+-%-10s+-%-12s+-%6s+-%-4s+-%-20s+-%s\n",
		"----------", "----------", "------------", "------", "----", "--------------------", "--------")
	for _, r := range listRows {
		evalMark := "ok"
		if !r.EvalPassed {
			evalMark = "FAIL"
		}
		rules := r.Rules
		if rules == "" {
			rules = "-"
		}
		fmt.Printf("%-10s  %-10s  %-12s  %6.2f  %-4s  %-20s  %s\n",
			shortID(r.AdjustmentID), shortID(r.BabyID), r.Label, r.Confidence, evalMark, r.CreatedAt, rules)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	AdjustmentID string                   `json:"adjustment_id"`
	BabyID       string                   `json:"baby_id,omitempty"`
	CreatedAt    string                   `json:"created_at"`
	Record       logging.AdjustmentRecord `json:"record"`
}

func runDetailMode(st *store.Store, id string, jsonOut bool) error {
	row, err := st.GetAdjustment(id)
	if err != nil {
		return err
	}
	rec, err := logging.DecodeRecord(row.RecordJSON)
	if err != nil {
		return err
	}
	out := detailOutput{
		AdjustmentID: row.AdjustmentID,
		BabyID:       row.BabyID,
		CreatedAt:    row.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Record:       rec,
	}
	if jsonOut {
		return printJSON(out)
	}

	o := rec.Output
	fmt.Printf("Adjustment: %s\n", out.AdjustmentID)
	fmt.Printf("Baby:       %s\n", out.BabyID)
	fmt.Printf("Created:    %s\n", out.CreatedAt)
	fmt.Printf("Source:     %s\n", rec.Source)
	fmt.Printf("Evaluated:  %s\n", rec.Input.Now.Format("2006-01-02T15:04:05Z"))
	fmt.Printf("Maturity:   %s\n", rec.Input.Maturity)
	fmt.Printf("Label:      %s (%.2f)\n", o.FinalLabel, o.Confidence)
	fmt.Printf("Suppressed: %.0f%% of belly pain\n", o.Suppression*100)

	fmt.Printf("\nContext:\n")
	fmt.Printf("  Feeding:  %s\n", contextLine(o.Context.FeedingID, o.Context.FeedingRecent))
	fmt.Printf("  Sleep:    %s\n", contextLine(o.Context.SleepID, o.Context.SleepRecent))
	if len(o.Flags.AlertTypes) > 0 {
		fmt.Printf("  Alerts:   %s\n", strings.Join(o.Flags.AlertTypes, ", "))
	}

	fmt.Printf("\n%-12s  %8s  %8s  %8s\n", "Cause", "Raw", "Capped", "Adjusted")
	for i, l := range cause.Canonical {
		fmt.Printf("  %-10s  %8.4f  %8.4f  %8.4f\n", l, o.RawScores[i], o.PreNormalized[i], o.AdjustedScores[i])
	}

	fmt.Printf("\nTrace:\n")
	if len(o.Trace) == 0 {
		fmt.Printf("  (no rules fired)\n")
	}
	for _, s := range o.Trace {
		fmt.Printf("  %-18s %s\n", s.Rule, s.Message)
	}

	if rec.Eval != nil {
		fmt.Printf("\nEval: passed=%v\n", rec.Eval.Passed)
		for _, m := range rec.Eval.Metrics {
			fmt.Printf("  %-18s %8.4f  %v\n", m.Name, m.Value, m.Pass)
		}
	}
	return nil
}

func contextLine(id string, recent bool) string {
	if id == "" {
		return "none"
	}
	if recent {
		return id + " (recent)"
	}
	return id + " (stale)"
}

// #endregion detail-mode
