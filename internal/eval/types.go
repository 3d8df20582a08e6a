package eval

// #region eval-config
// EvalConfig holds the bounds an adjusted output must respect.
type EvalConfig struct {
	Tolerance      float64 // allowed drift of the distribution sum from 1
	MaxSuppression float64 // belly-pain suppression fraction ceiling
	BellyPainCap   float64 // pre-normalization belly-pain ceiling once any rule fired
}

// DefaultEvalConfig returns bounds matching the default engine thresholds.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		Tolerance:      1e-6,
		MaxSuppression: 0.80,
		BellyPainCap:   0.35,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the outcome of validating one adjusted output.
type EvalResult struct {
	Passed  bool         `json:"passed"`
	Metrics []EvalMetric `json:"metrics"`
	Reason  string       `json:"reason"`
}

// #endregion eval-result
