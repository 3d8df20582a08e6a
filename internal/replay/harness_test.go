package replay

import (
	"strings"
	"testing"
	"time"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/adjust"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/cause"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/eval"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/event"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/logging"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// helper: input with a critical feeding alert.
func alertInput() adjust.Input {
	return adjust.Input{
		RawScores: map[string]float64{"hunger": 0.2, "belly_pain": 0.8},
		Alerts:    []event.Event{event.New(event.Alert, map[string]any{"category": "critical_feeding_delay"})},
		Now:       now,
	}
}

func harness() *eval.EvalHarness {
	return eval.NewEvalHarness(eval.DefaultEvalConfig())
}

// 1. Expected label and rules match.
func TestReplay_Match(t *testing.T) {
	cases := []FixtureCase{{
		Name:     "alert",
		Input:    alertInput(),
		Expected: FixtureExpected{Label: "hunger", Rules: []string{"feeding_alert", "belly_pain_cap"}},
	}}

	results := Replay(cases, adjust.New(adjust.DefaultConfig()), harness())

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Action != "match" {
		t.Errorf("expected match, got %s (%s)", results[0].Action, results[0].Reason)
	}
}

// 2. Wrong label and wrong rules are both reported.
func TestReplay_Mismatch(t *testing.T) {
	cases := []FixtureCase{{
		Name:     "alert",
		Input:    alertInput(),
		Expected: FixtureExpected{Label: "tired", Rules: []string{}},
	}}

	r := Replay(cases, adjust.New(adjust.DefaultConfig()), harness())[0]

	if r.Action != "mismatch" {
		t.Fatalf("expected mismatch, got %s", r.Action)
	}
	if !strings.Contains(r.Reason, "label") || !strings.Contains(r.Reason, "rules") {
		t.Errorf("expected label and rules diffs, got %q", r.Reason)
	}
}

// 3. Nil expected rules are not checked.
func TestReplay_RulesUnchecked(t *testing.T) {
	cases := []FixtureCase{{Name: "alert", Input: alertInput(), Expected: FixtureExpected{Label: "hunger"}}}
	if r := Replay(cases, adjust.New(adjust.DefaultConfig()), harness())[0]; r.Action != "match" {
		t.Errorf("expected match, got %s (%s)", r.Action, r.Reason)
	}
}

// 4. A weaker cap breaks the invariant harness.
func TestReplay_EvalFail(t *testing.T) {
	cfg := adjust.DefaultConfig()
	cfg.Finalize.BellyPainCapTrigger = 1
	cases := []FixtureCase{{Name: "alert", Input: alertInput()}}

	r := Replay(cases, adjust.New(cfg), harness())[0]

	if r.Action != "eval_fail" {
		t.Fatalf("expected eval_fail, got %s", r.Action)
	}
	s := Summarize([]ReplayResult{r})
	if s.EvalFails != 1 || s.OK() {
		t.Errorf("unexpected summary: %+v", s)
	}
}

// 5. Logged records replay without drift; tampered records are flagged.
func TestReplayRecords_Drift(t *testing.T) {
	in := alertInput()
	cfg := adjust.DefaultConfig()
	rec := logging.AdjustmentRecord{Input: in, Config: cfg, Output: adjust.New(cfg).Adjust(in)}

	tampered := rec
	tampered.Output.FinalLabel = cause.BellyPain

	results := ReplayRecords([]string{"ok", "bad"}, []logging.AdjustmentRecord{rec, tampered}, harness())

	if results[0].Action != "match" {
		t.Errorf("expected untouched record to match, got %s (%s)", results[0].Action, results[0].Reason)
	}
	if results[1].Action != "mismatch" || !strings.Contains(results[1].Reason, "label") {
		t.Errorf("expected label drift, got %s (%s)", results[1].Action, results[1].Reason)
	}
	if results[1].Name != "bad" {
		t.Errorf("expected name from ids, got %s", results[1].Name)
	}
}

// 6. Records export as fixtures that replay cleanly.
func TestFixtureFromRecords(t *testing.T) {
	in := alertInput()
	cfg := adjust.DefaultConfig()
	rec := logging.AdjustmentRecord{Input: in, Config: cfg, Output: adjust.New(cfg).Adjust(in)}

	f := FixtureFromRecords("exported", nil, []logging.AdjustmentRecord{rec})

	if len(f.Cases) != 1 || f.Cases[0].Name != "record-1" {
		t.Fatalf("unexpected cases: %+v", f.Cases)
	}
	if f.Cases[0].Expected.Label != "hunger" {
		t.Errorf("expected hunger, got %s", f.Cases[0].Expected.Label)
	}
	if r := Replay(f.Cases, adjust.New(cfg), harness())[0]; r.Action != "match" {
		t.Errorf("exported case did not replay: %s", r.Reason)
	}
}
