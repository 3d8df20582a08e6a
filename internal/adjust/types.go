package adjust

import (
	"time"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/baby"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/cause"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/event"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/finalize"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/ladder"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/signals"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/window"
)

// #region config

// Config bundles every engine threshold. It is immutable once the engine is built.
type Config struct {
	Window   window.Policy           `json:"window" mapstructure:"window"`
	Signals  signals.ExtractorConfig `json:"signals" mapstructure:"signals"`
	Ladder   ladder.Config           `json:"ladder" mapstructure:"ladder"`
	Finalize finalize.Config         `json:"finalize" mapstructure:"finalize"`
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		Window:   window.DefaultPolicy(),
		Signals:  signals.DefaultExtractorConfig(),
		Ladder:   ladder.DefaultConfig(),
		Finalize: finalize.DefaultConfig(),
	}
}

// #endregion config

// #region input

// Input is one immutable snapshot: classifier output plus caregiving context.
type Input struct {
	RawScores map[string]float64 `json:"raw_scores" yaml:"raw_scores"`
	Feeding   []event.Event      `json:"feeding" yaml:"feeding"`
	Sleep     []event.Event      `json:"sleep" yaml:"sleep"`
	Reminders []event.Event      `json:"reminders" yaml:"reminders"`
	Alerts    []event.Event      `json:"alerts" yaml:"alerts"`
	Maturity  baby.Maturity      `json:"maturity" yaml:"maturity"`
	Now       time.Time          `json:"now" yaml:"now"`
}

// #endregion input

// #region output

// Output is the adjusted distribution and its justification.
type Output struct {
	RawScores      cause.Scores   `json:"raw_scores"`
	AdjustedScores cause.Scores   `json:"adjusted_scores"`
	PreNormalized  cause.Scores   `json:"pre_normalized"`
	FinalLabel     cause.Label    `json:"final_label"`
	Confidence     float64        `json:"confidence"`
	Explanation    []string       `json:"explanation"`
	Trace          []ladder.Step  `json:"trace"`
	Suppression    float64        `json:"suppression"`
	Flags          signals.Flags  `json:"flags"`
	Context        ContextSummary `json:"context"`
}

// ContextSummary records which events the ladder saw, for provenance.
type ContextSummary struct {
	FeedingID     string `json:"feeding_id,omitempty"`
	FeedingRecent bool   `json:"feeding_recent"`
	SleepID       string `json:"sleep_id,omitempty"`
	SleepRecent   bool   `json:"sleep_recent"`
}

// Fired returns the ids of the rules in the trace, in order.
func (o Output) Fired() []ladder.RuleID {
	ids := make([]ladder.RuleID, 0, len(o.Trace))
	for _, s := range o.Trace {
		ids = append(ids, s.Rule)
	}
	return ids
}

// #endregion output
