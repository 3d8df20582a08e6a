package signals

import (
	"time"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/event"
)

// #region flags

// Flags reduces active alerts and due reminders to the signals the rule ladder reads.
type Flags struct {
	HasCriticalFeedingAlert bool     `json:"has_critical_feeding_alert"`
	HasLowFeedingAlert      bool     `json:"has_low_feeding_alert"`
	HasFrequentFeedingAlert bool     `json:"has_frequent_feeding_alert"`
	HasSleepAlert           bool     `json:"has_sleep_alert"`
	AlertTypes              []string `json:"alert_types"`
}

// #endregion flags

// #region config

// ExtractorConfig holds the status vocabularies used to filter inputs.
type ExtractorConfig struct {
	InactiveAlertStatuses []string `json:"inactive_alert_statuses" mapstructure:"inactive_alert_statuses"` // alerts in these states are ignored
	LiveReminderStatuses  []string `json:"live_reminder_statuses" mapstructure:"live_reminder_statuses"`   // reminders count only in these states ("" always counts)
	HighSeverities        []string `json:"high_severities" mapstructure:"high_severities"`                 // severities treated as high
}

// DefaultExtractorConfig returns sensible defaults.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		InactiveAlertStatuses: []string{"resolved", "dismissed", "inactive", "closed", "cleared"},
		LiveReminderStatuses:  []string{"pending", "overdue", "missed"},
		HighSeverities:        []string{"high", "critical"},
	}
}

// #endregion config

// #region input

// ExtractInput bundles the alert and reminder snapshots for flag extraction.
type ExtractInput struct {
	Alerts    []event.Event
	Reminders []event.Event
	Now       time.Time
}

// #endregion input
