package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// #region kind

// Kind classifies a caregiving record.
type Kind string

const (
	Feeding  Kind = "feeding"
	Sleep    Kind = "sleep"
	Reminder Kind = "reminder"
	Alert    Kind = "alert"
)

// #endregion kind

// #region event

// Event is an immutable snapshot of a caregiving record as the caller stored it.
// Fields keeps the raw shape; typed accessors read the payload.
type Event struct {
	ID     string
	Kind   Kind
	Fields map[string]any
}

// New builds an event from a copy of fields.
func New(kind Kind, fields map[string]any) Event {
	cp := make(map[string]any, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Event{Kind: kind, Fields: cp}
}

// #endregion event

// #region accessors

// Float returns the first field among keys that holds a number.
func (e Event) Float(keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := e.Fields[k]; ok {
			if f, ok := toFloat(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// Text returns the first non-empty string field among keys.
func (e Event) Text(keys ...string) string {
	for _, k := range keys {
		if v, ok := e.Fields[k].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Amount is the feed volume in volume units.
func (e Event) Amount() (float64, bool) {
	return e.Float("amount", "amount_ml", "amountMl", "quantity", "volume")
}

// DurationMinutes is the logged sleep duration.
func (e Event) DurationMinutes() (float64, bool) {
	return e.Float("duration", "duration_minutes", "durationMinutes", "duration_min")
}

// Category is the reminder/alert category string.
func (e Event) Category() string {
	return e.Text("category", "type", "alert_type", "alertType", "rule")
}

// Title is the human-facing heading of a reminder/alert.
func (e Event) Title() string {
	return e.Text("title", "name", "message")
}

// Status is the lifecycle state of a reminder/alert.
func (e Event) Status() string {
	return strings.ToLower(e.Text("status", "state"))
}

// Severity is the reminder/alert severity.
func (e Event) Severity() string {
	return strings.ToLower(e.Text("severity", "priority", "level"))
}

// #endregion accessors

// #region encoding

// MarshalJSON flattens the event back into its stored shape.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.flatten())
}

// MarshalYAML flattens the event the same way for fixture files. json.Number
// values are emitted as YAML numbers rather than quoted strings.
func (e Event) MarshalYAML() (any, error) {
	return plainNumbers(e.flatten()), nil
}

func plainNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, nv := range x {
			out[k] = plainNumbers(nv)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, nv := range x {
			out[i] = plainNumbers(nv)
		}
		return out
	}
	return v
}

func (e Event) flatten() map[string]any {
	out := make(map[string]any, len(e.Fields)+2)
	for k, v := range e.Fields {
		out[k] = v
	}
	if e.ID != "" {
		out["id"] = e.ID
	}
	if e.Kind != "" {
		out["kind"] = string(e.Kind)
	}
	return out
}

// UnmarshalJSON keeps numbers as json.Number so epoch values stay exact.
func (e *Event) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	*e = fromFields(fields)
	return nil
}

// UnmarshalYAML decodes seed and fixture files.
func (e *Event) UnmarshalYAML(node *yaml.Node) error {
	var fields map[string]any
	if err := node.Decode(&fields); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	*e = fromFields(fields)
	return nil
}

func fromFields(fields map[string]any) Event {
	ev := Event{Fields: fields}
	if ev.Fields == nil {
		ev.Fields = map[string]any{}
	}
	if id, ok := ev.Fields["id"].(string); ok {
		ev.ID = id
		delete(ev.Fields, "id")
	}
	if k, ok := ev.Fields["kind"].(string); ok {
		ev.Kind = Kind(strings.ToLower(k))
		delete(ev.Fields, "kind")
	}
	return ev
}

// #endregion encoding

// #region helpers

// toFloat reads the numeric shapes JSON, YAML and Go callers produce.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// #endregion helpers
