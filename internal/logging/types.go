package logging

import (
	"time"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/adjust"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/eval"
)

// #region adjustment-entry
// AdjustmentEntry is a single row in the adjustment_log table.
type AdjustmentEntry struct {
	AdjustmentID string
	BabyID       string
	Record       AdjustmentRecord
	CreatedAt    time.Time
}

// #endregion adjustment-entry

// #region adjustment-record
// AdjustmentRecord captures the complete engine inputs, thresholds and outputs
// for a single call. Serialized as JSON into adjustment_log.record_json for
// deterministic replay.
type AdjustmentRecord struct {
	Source string `json:"source"` // "cli" | "grpc" | "replay"

	// Exact inputs as evaluated at runtime
	Input adjust.Input `json:"input"`

	// Thresholds active at decision time
	Config adjust.Config `json:"config"`

	// Engine output
	Output adjust.Output `json:"output"`

	// Post-hoc invariant checks, nil when not run
	Eval *eval.EvalResult `json:"eval,omitempty"`
}

// Passed reports whether the invariant checks passed, or were not run.
func (r AdjustmentRecord) Passed() bool {
	return r.Eval == nil || r.Eval.Passed
}

// #endregion adjustment-record
