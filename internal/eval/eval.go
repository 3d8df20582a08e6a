package eval

import (
	"fmt"
	"math"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/adjust"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/cause"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/finalize"
)

// #region eval-harness
// EvalHarness runs post-hoc validation on an adjusted output.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run checks the output invariants. It never modifies out.
func (h *EvalHarness) Run(out adjust.Output) EvalResult {
	var metrics []EvalMetric
	var failReasons []string

	check := func(name string, value float64, pass bool, reason string) {
		metrics = append(metrics, EvalMetric{Name: name, Value: value, Pass: pass})
		if !pass {
			failReasons = append(failReasons, reason)
		}
	}

	// 1. Distribution sums to 1, or is all zero with an unknown label
	sum := out.AdjustedScores.Sum()
	sumPass := math.Abs(sum-1) <= h.config.Tolerance || (sum == 0 && out.FinalLabel == cause.Unknown)
	check("distribution_sum", sum, sumPass, fmt.Sprintf("distribution sums to %.6f", sum))

	// 2. Every score in [0, 1]
	lo, hi := scoreRange(out.AdjustedScores)
	rangePass := lo >= 0 && hi <= 1
	check("score_range", hi, rangePass, fmt.Sprintf("scores span [%.4f, %.4f]", lo, hi))

	// 3. Label is the canonical argmax
	label, conf := finalize.Argmax(out.AdjustedScores)
	labelPass := label == out.FinalLabel && math.Abs(conf-out.Confidence) <= h.config.Tolerance
	check("label_argmax", out.Confidence, labelPass, fmt.Sprintf("label %s does not match argmax %s", out.FinalLabel, label))

	// 4. Suppression stays within its ceiling
	supPass := out.Suppression >= 0 && out.Suppression <= h.config.MaxSuppression+h.config.Tolerance
	check("suppression_floor", 1-out.Suppression, supPass,
		fmt.Sprintf("suppression %.4f exceeds %.4f", out.Suppression, h.config.MaxSuppression))

	// 5. Belly pain respects the hard cap once any rule fired
	bp := out.PreNormalized.Get(cause.BellyPain)
	capPass := len(out.Trace) == 0 || bp <= h.config.BellyPainCap+h.config.Tolerance
	check("belly_pain_cap", bp, capPass, fmt.Sprintf("belly pain %.4f exceeds cap %.4f", bp, h.config.BellyPainCap))

	// 6. Explanation is never empty
	check("explanation", float64(len(out.Explanation)), len(out.Explanation) > 0, "explanation is empty")

	reason := "all checks passed"
	if len(failReasons) > 0 {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{
		Passed:  len(failReasons) == 0,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region helpers
// scoreRange returns the smallest and largest score.
func scoreRange(s cause.Scores) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range s {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// #endregion helpers
