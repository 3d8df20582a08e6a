package cause

import (
	"encoding/json"
	"math"
	"testing"
)

// #region parse-tests

func TestParse_Aliases(t *testing.T) {
	tests := []struct {
		in   string
		want Label
	}{
		{"hunger", Hunger},
		{"Hungry", Hunger},
		{"  SLEEPY ", Tired},
		{"bellypain", BellyPain},
		{"Belly_Pain", BellyPain},
		{"burping", Burping},
		{"discomfort", Discomfort},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if !ok {
			t.Errorf("Parse(%q): expected ok", tt.in)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParse_Unknown(t *testing.T) {
	for _, in := range []string{"", "scared", "unknown", "belly pain"} {
		if _, ok := Parse(in); ok {
			t.Errorf("Parse(%q): expected unmapped key to be rejected", in)
		}
	}
}

// #endregion parse-tests

// #region scores-tests

func TestFromRaw_DropsAndSanitizes(t *testing.T) {
	s := FromRaw(map[string]float64{
		"hungry":  0.4,
		"scared":  0.9,
		"sleepy":  -0.2,
		"burping": math.NaN(),
	})
	if s.Get(Hunger) != 0.4 {
		t.Errorf("expected hunger 0.4, got %f", s.Get(Hunger))
	}
	if s.Get(Tired) != 0 {
		t.Errorf("expected negative tired to become 0, got %f", s.Get(Tired))
	}
	if s.Get(Burping) != 0 {
		t.Errorf("expected NaN burping to become 0, got %f", s.Get(Burping))
	}
	if s.Sum() != 0.4 {
		t.Errorf("expected unknown key dropped, sum=%f", s.Sum())
	}
}

func TestFromRaw_DuplicateAliasTakesLarger(t *testing.T) {
	s := FromRaw(map[string]float64{"hunger": 0.2, "hungry": 0.6})
	if s.Get(Hunger) != 0.6 {
		t.Errorf("expected larger alias value 0.6, got %f", s.Get(Hunger))
	}
}

func TestRaise_NeverLowers(t *testing.T) {
	s := Scores{}.With(Tired, 0.7)
	if got := s.Raise(Tired, 0.5).Get(Tired); got != 0.7 {
		t.Errorf("expected 0.7 preserved, got %f", got)
	}
	if got := s.Raise(Tired, 0.9).Get(Tired); got != 0.9 {
		t.Errorf("expected raise to 0.9, got %f", got)
	}
	if s.Get(Tired) != 0.7 {
		t.Error("Raise must not mutate the receiver")
	}
}

func TestClamp(t *testing.T) {
	s := Scores{-0.5, 0.3, 1.7, 0, 1}.Clamp()
	want := Scores{0, 0.3, 1, 0, 1}
	if s != want {
		t.Errorf("Clamp() = %v, want %v", s, want)
	}
}

func TestScoresJSON_CanonicalOrder(t *testing.T) {
	s := Scores{0.5, 0.25, 0, 0.125, 0.125}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"hunger":0.5,"belly_pain":0.25,"tired":0,"burping":0.125,"discomfort":0.125}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	var back Scores
	if err := json.Unmarshal([]byte(`{"Hungry":0.9,"bogus":1}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Get(Hunger) != 0.9 || back.Sum() != 0.9 {
		t.Errorf("unexpected decoded scores: %v", back)
	}
}

// #endregion scores-tests
