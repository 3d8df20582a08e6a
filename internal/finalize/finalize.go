// Package finalize turns the ladder's working accumulator into a valid
// probability distribution with a selected label and an explanation trail.
package finalize

import (
	"fmt"
	"math"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/cause"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/ladder"
)

// DefaultExplanation is the single trace entry used when no rule fired.
const DefaultExplanation = "No contextual adjustments applied - using raw AI scores"

// #region config

// Config holds the suppression and cap thresholds.
type Config struct {
	MaxSuppression      float64 `json:"max_suppression" mapstructure:"max_suppression"`
	BellyPainCapTrigger float64 `json:"belly_pain_cap_trigger" mapstructure:"belly_pain_cap_trigger"`
	BellyPainCap        float64 `json:"belly_pain_cap" mapstructure:"belly_pain_cap"`
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		MaxSuppression:      0.80,
		BellyPainCapTrigger: 0.35,
		BellyPainCap:        0.35,
	}
}

// #endregion config

// #region result

// Result is the finalized distribution.
type Result struct {
	Scores      cause.Scores  // normalized, or all zero
	Capped      cause.Scores  // after suppression, cap and clamp; before normalization
	Label       cause.Label
	Confidence  float64
	Suppression float64       // fraction removed from belly pain, in [0, MaxSuppression]
	Steps       []ladder.Step // ladder steps plus the cap step when applied
}

// Explanation returns the trace messages, or the default entry when empty.
func (r Result) Explanation() []string {
	if len(r.Steps) == 0 {
		return []string{DefaultExplanation}
	}
	out := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Message
	}
	return out
}

// #endregion result

// #region finalize

// Finalize applies the suppression budget, caps belly pain when any rule
// fired, clamps, normalizes and selects the label. Inputs are not modified.
func Finalize(acc ladder.Accumulator, steps []ladder.Step, cfg Config) Result {
	scores := acc.Scores
	trace := make([]ladder.Step, len(steps), len(steps)+1)
	copy(trace, steps)

	// 1. Suppression
	factor := math.Max(0, math.Min(acc.Budget, cfg.MaxSuppression))
	bp := cause.BellyPain.Index()
	scores[bp] *= 1 - factor

	// 2. Hard cap
	if len(steps) > 0 && scores[bp] > cfg.BellyPainCapTrigger {
		trace = append(trace, ladder.Step{
			Rule: ladder.RuleBellyPainCap,
			Message: fmt.Sprintf("Belly pain capped at %.2f (was %.2f) - caregiving context explains the cry better",
				cfg.BellyPainCap, scores[bp]),
		})
		scores[bp] = cfg.BellyPainCap
	}

	// 3. Clamp
	scores = scores.Clamp()
	capped := scores

	// 4. Normalize
	if sum := scores.Sum(); sum > 0 {
		for i := range scores {
			scores[i] /= sum
		}
	}

	// 5. Label
	label, confidence := Argmax(scores)

	if len(trace) == 0 {
		trace = nil
	}
	return Result{
		Scores:      scores,
		Capped:      capped,
		Label:       label,
		Confidence:  confidence,
		Suppression: factor,
		Steps:       trace,
	}
}

// Argmax returns the label with the strictly highest score, ties going to the
// earlier canonical label. All-zero scores yield Unknown with confidence 0.
func Argmax(s cause.Scores) (cause.Label, float64) {
	label, best := cause.Unknown, 0.0
	for i, l := range cause.Canonical {
		if s[i] > best {
			label, best = l, s[i]
		}
	}
	return label, best
}

// #endregion finalize
