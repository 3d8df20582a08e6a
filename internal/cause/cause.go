package cause

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// #region label

// Label is one of the fixed candidate explanations for a cry.
type Label string

const (
	Hunger     Label = "hunger"
	BellyPain  Label = "belly_pain"
	Tired      Label = "tired"
	Burping    Label = "burping"
	Discomfort Label = "discomfort"

	// Unknown is only ever a final label, when every score is zero.
	Unknown Label = "unknown"
)

// NumLabels is the size of the closed label set.
const NumLabels = 5

// Canonical lists the labels in tie-break order.
var Canonical = [NumLabels]Label{Hunger, BellyPain, Tired, Burping, Discomfort}

// Index returns the canonical position of l, or -1 for labels outside the set.
func (l Label) Index() int {
	for i, c := range Canonical {
		if c == l {
			return i
		}
	}
	return -1
}

// #endregion label

// #region alias

// aliases maps lower-cased classifier keys onto canonical labels.
var aliases = map[string]Label{
	"hunger":     Hunger,
	"hungry":     Hunger,
	"belly_pain": BellyPain,
	"bellypain":  BellyPain,
	"tired":      Tired,
	"sleepy":     Tired,
	"burping":    Burping,
	"discomfort": Discomfort,
}

// Parse maps a raw classifier key onto a Label. Unmapped keys report false.
func Parse(key string) (Label, bool) {
	l, ok := aliases[strings.ToLower(strings.TrimSpace(key))]
	return l, ok
}

// #endregion alias

// #region scores

// Scores holds one value per label, indexed by canonical order.
type Scores [NumLabels]float64

// FromRaw canonicalizes a classifier map. Unknown keys are dropped; negative,
// NaN and infinite values count as 0; when two aliases hit the same label the
// larger value wins.
func FromRaw(raw map[string]float64) Scores {
	var s Scores
	for k, v := range raw {
		l, ok := Parse(k)
		if !ok {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			v = 0
		}
		i := l.Index()
		if v > s[i] {
			s[i] = v
		}
	}
	return s
}

// Get returns the score for l (0 for labels outside the set).
func (s Scores) Get(l Label) float64 {
	i := l.Index()
	if i < 0 {
		return 0
	}
	return s[i]
}

// With returns a copy of s with l set to v.
func (s Scores) With(l Label, v float64) Scores {
	if i := l.Index(); i >= 0 {
		s[i] = v
	}
	return s
}

// Raise returns a copy of s with l lifted to at least floor. Never lowers.
func (s Scores) Raise(l Label, floor float64) Scores {
	if s.Get(l) >= floor {
		return s
	}
	return s.With(l, floor)
}

// Sum adds every score.
func (s Scores) Sum() float64 {
	var total float64
	for _, v := range s {
		total += v
	}
	return total
}

// Clamp restricts every score to [0, 1].
func (s Scores) Clamp() Scores {
	for i, v := range s {
		s[i] = Clamp01(v)
	}
	return s
}

// Map converts to a label-keyed map.
func (s Scores) Map() map[string]float64 {
	m := make(map[string]float64, NumLabels)
	for i, l := range Canonical {
		m[string(l)] = s[i]
	}
	return m
}

// MarshalJSON writes an object with keys in canonical order.
func (s Scores) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, l := range Canonical {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:%s", l, strconv.FormatFloat(s[i], 'g', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts any classifier-style object and canonicalizes it.
func (s *Scores) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode scores: %w", err)
	}
	*s = FromRaw(raw)
	return nil
}

// #endregion scores

// #region helpers

// Clamp01 restricts v to [0, 1]; NaN becomes 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
