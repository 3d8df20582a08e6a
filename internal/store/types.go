package store

import (
	"errors"
	"time"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/adjust"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/baby"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/event"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// #region snapshot
// Snapshot is everything the engine needs about one baby at one instant.
type Snapshot struct {
	Baby      baby.Profile
	Feeding   []event.Event
	Sleep     []event.Event
	Reminders []event.Event
	Alerts    []event.Event
}

// Input builds the engine input for the given classifier scores.
func (s Snapshot) Input(raw map[string]float64, now time.Time) adjust.Input {
	return adjust.Input{
		RawScores: raw,
		Feeding:   s.Feeding,
		Sleep:     s.Sleep,
		Reminders: s.Reminders,
		Alerts:    s.Alerts,
		Maturity:  s.Baby.Maturity,
		Now:       now,
	}
}

// #endregion snapshot

// #region adjustment-row
// AdjustmentRow is one adjustment_log row as listed by inspection tools.
type AdjustmentRow struct {
	AdjustmentID string
	BabyID       string
	FinalLabel   string
	Confidence   float64
	Rules        string // comma-separated rule ids, in trace order
	RecordJSON   string
	EvalPassed   bool
	CreatedAt    time.Time
}

// #endregion adjustment-row
