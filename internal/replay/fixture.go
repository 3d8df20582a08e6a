package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/adjust"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/logging"
)

// #region fixture-types

// Fixture is the top-level structure of a replay fixture file.
type Fixture struct {
	Description string        `json:"description" yaml:"description"`
	Cases       []FixtureCase `json:"cases" yaml:"cases"`
}

// FixtureCase is one engine input with its expected outcome.
type FixtureCase struct {
	Name     string          `json:"name" yaml:"name"`
	Input    adjust.Input    `json:"input" yaml:"input"`
	Expected FixtureExpected `json:"expected" yaml:"expected"`
}

// FixtureExpected captures the expected label and fired rules, in order.
// A nil Rules list is not checked; an empty list means "no rule fires".
type FixtureExpected struct {
	Label string   `json:"label" yaml:"label"`
	Rules []string `json:"rules" yaml:"rules"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON or YAML fixture file, chosen by extension.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if isYAML(path) {
		err = yaml.Unmarshal(data, &f)
	} else {
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// WriteFixture writes f as JSON or YAML, chosen by extension.
func WriteFixture(path string, f *Fixture) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(f)
	} else {
		data, err = json.MarshalIndent(f, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// FixtureFromRecords turns logged adjustments into regression cases whose
// expectations are the outputs recorded at the time.
func FixtureFromRecords(description string, ids []string, records []logging.AdjustmentRecord) *Fixture {
	f := &Fixture{Description: description, Cases: make([]FixtureCase, 0, len(records))}
	for i, rec := range records {
		name := fmt.Sprintf("record-%d", i+1)
		if i < len(ids) && ids[i] != "" {
			name = ids[i]
		}
		rules := make([]string, 0, len(rec.Output.Trace))
		for _, r := range rec.Output.Fired() {
			rules = append(rules, string(r))
		}
		f.Cases = append(f.Cases, FixtureCase{
			Name:  name,
			Input: rec.Input,
			Expected: FixtureExpected{
				Label: string(rec.Output.FinalLabel),
				Rules: rules,
			},
		})
	}
	return f
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// #endregion fixture-loader
