package replay

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/adjust"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/cause"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/eval"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/logging"
)

// scoreTolerance bounds acceptable per-label drift between a logged and a
// replayed distribution.
const scoreTolerance = 1e-9

// #region types
// ReplayResult captures the outcome of replaying one case.
type ReplayResult struct {
	Name   string
	Action string // "match" | "mismatch" | "eval_fail"
	Reason string

	Output     adjust.Output
	EvalResult eval.EvalResult
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	Total      int
	Matches    int
	Mismatches int
	EvalFails  int
}

// OK reports whether every case matched.
func (s ReplaySummary) OK() bool {
	return s.Matches == s.Total
}

// #endregion types

// #region replay
// Replay runs every fixture case through the engine and checks the output
// invariants and the expected label and rule sequence.
func Replay(cases []FixtureCase, engine *adjust.Engine, harness *eval.EvalHarness) []ReplayResult {
	results := make([]ReplayResult, 0, len(cases))
	for _, c := range cases {
		out := engine.Adjust(c.Input)
		ev := harness.Run(out)

		r := ReplayResult{Name: c.Name, Action: "match", Reason: "matched", Output: out, EvalResult: ev}

		// 1. Invariants
		if !ev.Passed {
			r.Action, r.Reason = "eval_fail", ev.Reason
			results = append(results, r)
			continue
		}

		// 2. Expectations
		if diffs := compareExpected(c.Expected, out); len(diffs) > 0 {
			r.Action, r.Reason = "mismatch", strings.Join(diffs, "; ")
		}
		results = append(results, r)
	}
	return results
}

// ReplayRecords re-runs logged adjustments with the thresholds recorded at
// the time and reports any drift from the logged output.
func ReplayRecords(ids []string, records []logging.AdjustmentRecord, harness *eval.EvalHarness) []ReplayResult {
	results := make([]ReplayResult, 0, len(records))
	for i, rec := range records {
		name := fmt.Sprintf("record-%d", i+1)
		if i < len(ids) {
			name = ids[i]
		}
		out := adjust.New(rec.Config).Adjust(rec.Input)
		ev := harness.Run(out)

		r := ReplayResult{Name: name, Action: "match", Reason: "matched", Output: out, EvalResult: ev}
		if !ev.Passed {
			r.Action, r.Reason = "eval_fail", ev.Reason
		} else if diffs := compareOutputs(rec.Output, out); len(diffs) > 0 {
			r.Action, r.Reason = "mismatch", strings.Join(diffs, "; ")
		}
		results = append(results, r)
	}
	return results
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{Total: len(results)}
	for _, r := range results {
		switch r.Action {
		case "match":
			s.Matches++
		case "mismatch":
			s.Mismatches++
		case "eval_fail":
			s.EvalFails++
		}
	}
	return s
}

// #endregion replay

// #region compare
func compareExpected(want FixtureExpected, out adjust.Output) []string {
	var diffs []string
	if want.Label != "" && want.Label != string(out.FinalLabel) {
		diffs = append(diffs, fmt.Sprintf("label: expected %s, got %s", want.Label, out.FinalLabel))
	}
	if want.Rules != nil {
		got := ruleNames(out)
		if !slices.Equal(want.Rules, got) {
			diffs = append(diffs, fmt.Sprintf("rules: expected [%s], got [%s]",
				strings.Join(want.Rules, ","), strings.Join(got, ",")))
		}
	}
	return diffs
}

func compareOutputs(logged, replayed adjust.Output) []string {
	var diffs []string
	if logged.FinalLabel != replayed.FinalLabel {
		diffs = append(diffs, fmt.Sprintf("label: logged %s, replayed %s", logged.FinalLabel, replayed.FinalLabel))
	}
	for i, l := range cause.Canonical {
		if d := math.Abs(logged.AdjustedScores[i] - replayed.AdjustedScores[i]); d > scoreTolerance {
			diffs = append(diffs, fmt.Sprintf("%s: logged %.6f, replayed %.6f", l, logged.AdjustedScores[i], replayed.AdjustedScores[i]))
		}
	}
	if a, b := ruleNames(logged), ruleNames(replayed); !slices.Equal(a, b) {
		diffs = append(diffs, fmt.Sprintf("rules: logged [%s], replayed [%s]", strings.Join(a, ","), strings.Join(b, ",")))
	}
	return diffs
}

func ruleNames(out adjust.Output) []string {
	names := make([]string, 0, len(out.Trace))
	for _, id := range out.Fired() {
		names = append(names, string(id))
	}
	return names
}

// #endregion compare
