// Package adjust is the entry point of the cry-cause adjustment engine: it
// wires the window selector, flag extractor, rule ladder and finalizer into a
// single pure function of one input snapshot.
package adjust

import (
	"log/slog"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/baby"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/cause"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/finalize"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/ladder"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/signals"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/window"
)

// #region engine

// Engine holds the immutable configuration. Safe for concurrent use.
type Engine struct {
	config    Config
	ladder    *ladder.Ladder
	extractor *signals.Extractor
	logger    *slog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger makes the engine log each fired rule at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine with the given thresholds.
func New(config Config, opts ...Option) *Engine {
	e := &Engine{
		config:    config,
		ladder:    ladder.New(config.Ladder),
		extractor: signals.NewExtractor(config.Signals),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the thresholds the engine was built with.
func (e *Engine) Config() Config {
	return e.config
}

// #endregion engine

// #region adjust

// Adjust corrects the classifier scores with caregiving context. It never
// fails: unresolvable or missing data only prevents rules from firing.
func (e *Engine) Adjust(in Input) Output {
	raw := cause.FromRaw(in.RawScores)
	maturity := baby.ParseMaturity(string(in.Maturity))

	// 1. Context selection
	feeding := window.Select(in.Feeding, in.Now, e.config.Window)
	sleep := window.Select(in.Sleep, in.Now, e.config.Window)

	// 2. Flags
	flags := e.extractor.Extract(signals.ExtractInput{
		Alerts:    in.Alerts,
		Reminders: in.Reminders,
		Now:       in.Now,
	})

	// 3. Ladder
	ctx := ladder.Context{
		Feeding:  feeding,
		Sleep:    sleep,
		Flags:    flags,
		Maturity: maturity,
		Now:      in.Now,
	}
	acc, steps := e.ladder.Run(ctx, ladder.Accumulator{Scores: raw.Clamp()})

	// 4. Finalize
	res := finalize.Finalize(acc, steps, e.config.Finalize)

	for _, s := range res.Steps {
		e.logger.Debug("rule fired", "rule", string(s.Rule), "message", s.Message)
	}
	e.logger.Debug("adjustment complete",
		"label", string(res.Label),
		"confidence", res.Confidence,
		"suppression", res.Suppression,
		"rules", len(res.Steps),
	)

	return Output{
		RawScores:      raw,
		AdjustedScores: res.Scores,
		PreNormalized:  res.Capped,
		FinalLabel:     res.Label,
		Confidence:     res.Confidence,
		Explanation:    res.Explanation(),
		Trace:          res.Steps,
		Suppression:    res.Suppression,
		Flags:          flags,
		Context:        summarize(feeding, sleep),
	}
}

// Adjust runs a default-configured engine once.
func Adjust(in Input) Output {
	return New(DefaultConfig()).Adjust(in)
}

func summarize(feeding, sleep window.Selection) ContextSummary {
	var s ContextSummary
	if feeding.Found() {
		s.FeedingID = feeding.Event.ID
		s.FeedingRecent = feeding.InRecentWindow
	}
	if sleep.Found() {
		s.SleepID = sleep.Event.ID
		s.SleepRecent = sleep.InRecentWindow
	}
	return s
}

// #endregion adjust
