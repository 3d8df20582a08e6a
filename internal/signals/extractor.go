package signals

import (
	"slices"
	"strings"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/event"
)

// #region extractor

// Extractor scans alerts and reminders for feeding and sleep signals.
type Extractor struct {
	config ExtractorConfig
}

// NewExtractor creates an Extractor.
func NewExtractor(config ExtractorConfig) *Extractor {
	return &Extractor{config: config}
}

// #endregion extractor

// #region extract

// Extract computes Flags. A single alert may set several flags.
func (x *Extractor) Extract(input ExtractInput) Flags {
	var flags Flags
	seen := map[string]bool{}

	scan := func(ev event.Event) {
		category := strings.ToLower(strings.TrimSpace(ev.Category()))
		text := category + " " + strings.ToLower(ev.Title())
		high := slices.Contains(x.config.HighSeverities, ev.Severity())

		mentionsFeed := containsAny(text, "feed")
		if containsAny(text, "feed", "hunger") && (containsAny(text, "critical", "low", "delay") || high) {
			flags.HasCriticalFeedingAlert = true
		}
		if mentionsFeed && containsAny(text, "frequent") {
			flags.HasFrequentFeedingAlert = true
		}
		if mentionsFeed && containsAny(text, "low") {
			flags.HasLowFeedingAlert = true
		}
		if containsAny(text, "sleep", "tired") {
			flags.HasSleepAlert = true
		}

		if category != "" && !seen[category] {
			seen[category] = true
			flags.AlertTypes = append(flags.AlertTypes, category)
		}
	}

	for _, a := range input.Alerts {
		if x.alertActive(a) {
			scan(a)
		}
	}
	for _, r := range input.Reminders {
		if x.reminderDue(r, input) {
			scan(r)
		}
	}
	return flags
}

// #endregion extract

// #region filters

// alertActive drops alerts the caregiver already handled.
func (x *Extractor) alertActive(a event.Event) bool {
	return !slices.Contains(x.config.InactiveAlertStatuses, a.Status())
}

// reminderDue keeps live reminders whose due time has passed.
// Reminders without a resolvable time count as due.
func (x *Extractor) reminderDue(r event.Event, input ExtractInput) bool {
	status := r.Status()
	if status != "" && !slices.Contains(x.config.LiveReminderStatuses, status) {
		return false
	}
	due, ok := event.ResolveTime(r)
	if !ok {
		return true
	}
	return !due.After(input.Now)
}

// #endregion filters

// #region helpers

// containsAny reports whether s contains any of subs.
func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// #endregion helpers
