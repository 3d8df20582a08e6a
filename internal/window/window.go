// Package window picks the single most relevant caregiving event of one kind
// using a tiered recency policy: recent window, extended window, then any.
package window

import (
	"sort"
	"time"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/event"
)

// #region policy

// Policy bounds the recency tiers, measured backwards from now.
type Policy struct {
	Recent   time.Duration `json:"recent" mapstructure:"recent"`     // fresh evidence: now-ts <= Recent
	Extended time.Duration `json:"extended" mapstructure:"extended"` // stale fallback: Recent < now-ts <= Extended
}

// DefaultPolicy returns the 2h / 6h tiers.
func DefaultPolicy() Policy {
	return Policy{
		Recent:   2 * time.Hour,
		Extended: 6 * time.Hour,
	}
}

// #endregion policy

// #region selection

// Selection is the representative event for one log type.
type Selection struct {
	Event          *event.Event
	At             time.Time // resolved timestamp; zero when HasTime is false
	HasTime        bool
	InRecentWindow bool
}

// Found reports whether any event was selected.
func (s Selection) Found() bool {
	return s.Event != nil
}

// Since returns now minus the selected event's timestamp.
// ok is false when nothing was selected or its time is unresolvable.
func (s Selection) Since(now time.Time) (time.Duration, bool) {
	if s.Event == nil || !s.HasTime {
		return 0, false
	}
	return now.Sub(s.At), true
}

// #endregion selection

// #region select

type timed struct {
	ev      event.Event
	at      time.Time
	hasTime bool
}

// Select applies the tiered policy to events. events is not modified.
func Select(events []event.Event, now time.Time, p Policy) Selection {
	if len(events) == 0 {
		return Selection{}
	}

	sorted := make([]timed, len(events))
	for i, ev := range events {
		at, ok := event.ResolveTime(ev)
		sorted[i] = timed{ev: ev, at: at, hasTime: ok}
	}
	// Newest first; unresolvable timestamps sink. Stable keeps input order for ties.
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.hasTime != b.hasTime {
			return a.hasTime
		}
		return a.at.After(b.at)
	})

	// Tier 1: recent window
	for _, t := range sorted {
		if t.hasTime && now.Sub(t.at) <= p.Recent {
			return pick(t, true)
		}
	}

	// Tier 2: extended window
	for _, t := range sorted {
		if !t.hasTime {
			continue
		}
		age := now.Sub(t.at)
		if age > p.Recent && age <= p.Extended {
			return pick(t, false)
		}
	}

	// Tier 3: newest of whatever exists
	return pick(sorted[0], false)
}

func pick(t timed, recent bool) Selection {
	ev := t.ev
	return Selection{
		Event:          &ev,
		At:             t.at,
		HasTime:        t.hasTime,
		InRecentWindow: recent,
	}
}

// #endregion select

// #region sleep

// SleepStart returns the explicit start field, else the resolved timestamp.
func SleepStart(ev event.Event) (time.Time, bool) {
	if t, ok := ev.TimeField("start_time", "startTime", "sleep_start", "started_at"); ok {
		return t, true
	}
	return event.ResolveTime(ev)
}

// Wake returns when the baby woke: an explicit wake field, else start + duration minutes.
func Wake(ev event.Event) (time.Time, bool) {
	if t, ok := ev.TimeField("woke_at", "wokeAt", "end_time", "endTime"); ok {
		return t, true
	}
	start, ok := SleepStart(ev)
	if !ok {
		return time.Time{}, false
	}
	mins, ok := ev.DurationMinutes()
	if !ok || mins <= 0 {
		return time.Time{}, false
	}
	return start.Add(time.Duration(mins * float64(time.Minute))), true
}

// #endregion sleep
