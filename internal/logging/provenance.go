package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// #region log-adjustment
// LogAdjustment writes an entry to the adjustment_log table and returns its id.
func LogAdjustment(db *sql.DB, entry AdjustmentEntry) (string, error) {
	if entry.AdjustmentID == "" {
		entry.AdjustmentID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	recordJSON, err := json.Marshal(entry.Record)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}

	rules := make([]string, 0, len(entry.Record.Output.Trace))
	for _, r := range entry.Record.Output.Fired() {
		rules = append(rules, string(r))
	}

	passed := 0
	if entry.Record.Passed() {
		passed = 1
	}

	_, err = db.Exec(
		`INSERT INTO adjustment_log (adjustment_id, baby_id, final_label, confidence, rules, record_json, eval_passed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.AdjustmentID,
		nullIfEmpty(entry.BabyID),
		string(entry.Record.Output.FinalLabel),
		entry.Record.Output.Confidence,
		nullIfEmpty(strings.Join(rules, ",")),
		string(recordJSON),
		passed,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("log adjustment: %w", err)
	}
	return entry.AdjustmentID, nil
}

// DecodeRecord parses an adjustment_log.record_json value.
func DecodeRecord(recordJSON string) (AdjustmentRecord, error) {
	var rec AdjustmentRecord
	if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
		return AdjustmentRecord{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// #endregion log-adjustment

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
