package event

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// #region candidates

// commonTimeFields are tried first for every kind, in order.
var commonTimeFields = []string{"timestamp", "createdAt", "loggedAt", "time", "date"}

// kindTimeFields are tried after the common fields.
var kindTimeFields = map[Kind][]string{
	Feeding:  {"fed_at", "fedAt"},
	Sleep:    {"start_time", "startTime", "woke_at", "wokeAt"},
	Reminder: {"due_at", "dueAt"},
	Alert:    {"triggered_at", "triggeredAt"},
}

// candidateFields returns the ordered timestamp fields for kind.
func candidateFields(kind Kind) []string {
	extra := kindTimeFields[kind]
	out := make([]string, 0, len(commonTimeFields)+len(extra))
	out = append(out, commonTimeFields...)
	return append(out, extra...)
}

// #endregion candidates

// #region resolve

// ResolveTimestamp extracts the event's timestamp in epoch milliseconds.
// The first candidate field that any strategy can read wins. Never panics.
func ResolveTimestamp(e Event) (int64, bool) {
	for _, field := range candidateFields(e.Kind) {
		v, ok := e.Fields[field]
		if !ok || v == nil {
			continue
		}
		if ms, ok := ResolveValue(v); ok {
			return ms, true
		}
	}
	return 0, false
}

// ResolveTime is ResolveTimestamp as a UTC time.Time.
func ResolveTime(e Event) (time.Time, bool) {
	ms, ok := ResolveTimestamp(e)
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

// TimeField resolves the first of keys that holds a readable time.
func (e Event) TimeField(keys ...string) (time.Time, bool) {
	for _, k := range keys {
		v, ok := e.Fields[k]
		if !ok || v == nil {
			continue
		}
		if ms, ok := ResolveValue(v); ok {
			return time.UnixMilli(ms).UTC(), true
		}
	}
	return time.Time{}, false
}

// #endregion resolve

// #region strategies

// strategy reads one timestamp encoding.
type strategy func(v any) (int64, bool)

// strategies run in order: date-like object, {seconds} structure, numeric epoch, string.
var strategies = []strategy{fromDateLike, fromSecondsStruct, fromEpoch, fromString}

// ResolveValue applies every strategy to a single field value.
// A panicking strategy is treated as a miss.
func ResolveValue(v any) (ms int64, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ms, ok = 0, false
		}
	}()
	for _, s := range strategies {
		if got, hit := s(v); hit {
			return got, true
		}
	}
	return 0, false
}

// asTimer covers *timestamppb.Timestamp and similar wrapped dates.
type asTimer interface {
	AsTime() time.Time
}

func fromDateLike(v any) (int64, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return 0, false
		}
		return t.UnixMilli(), true
	case *time.Time:
		if t == nil || t.IsZero() {
			return 0, false
		}
		return t.UnixMilli(), true
	case asTimer:
		if validator, ok := v.(interface{ IsValid() bool }); ok && !validator.IsValid() {
			return 0, false
		}
		at := t.AsTime()
		if at.IsZero() || at.Unix() == 0 {
			return 0, false
		}
		return at.UnixMilli(), true
	}
	return 0, false
}

func fromSecondsStruct(v any) (int64, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return 0, false
	}
	var secs float64
	found := false
	for _, k := range []string{"seconds", "_seconds"} {
		if raw, present := m[k]; present {
			if f, ok := toFloat(raw); ok {
				secs, found = f, true
				break
			}
		}
	}
	if !found || secs <= 0 {
		return 0, false
	}
	var nanos float64
	for _, k := range []string{"nanoseconds", "_nanoseconds", "nanos"} {
		if raw, present := m[k]; present {
			if f, ok := toFloat(raw); ok {
				nanos = f
				break
			}
		}
	}
	return int64(math.Floor(secs*1000 + nanos/1e6)), true
}

func fromEpoch(v any) (int64, bool) {
	switch v.(type) {
	case string, bool:
		return 0, false
	}
	f, ok := toFloat(v)
	if !ok || f <= 0 {
		return 0, false
	}
	return int64(f), true
}

// isoLayouts are tried in order; zone-less layouts parse as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func fromString(v any) (int64, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case json.Number:
		s = t.String()
	default:
		return 0, false
	}
	if s == "" {
		return 0, false
	}
	if isDigits(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// #endregion strategies
