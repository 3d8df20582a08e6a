package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/adjust"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/cause"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/codec"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/eval"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/logging"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/store"
)

var adjustFlags struct {
	input    string
	babyID   string
	scores   map[string]string
	audio    string
	mimeType string
	now      string
	record   bool
	jsonOut  bool
}

var adjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Adjust one set of classifier scores",
	Long: `Adjust runs the engine once. The input comes either from a JSON/YAML file
holding the full engine input (--input) or from the stored history of a baby
(--baby). Scores come from the file, from --score flags, or from the
classifier when --audio is given.`,
	Example: `  crycontext adjust --input case.yaml
  crycontext adjust --baby 3f2c... --score hunger=0.3 --score belly_pain=0.5 --record
  crycontext adjust --baby 3f2c... --audio clip.wav --classifier localhost:50051`,
	Args: cobra.NoArgs,
	RunE: runAdjust,
}

func init() {
	f := adjustCmd.Flags()
	f.StringVar(&adjustFlags.input, "input", "", "engine input file (json or yaml)")
	f.StringVar(&adjustFlags.babyID, "baby", "", "baby id whose stored history is used")
	f.StringToStringVar(&adjustFlags.scores, "score", nil, "raw score label=value, repeatable")
	f.StringVar(&adjustFlags.audio, "audio", "", "audio clip to send to the classifier")
	f.StringVar(&adjustFlags.mimeType, "mime-type", "", "audio mime type (default from extension)")
	f.StringVar(&adjustFlags.now, "now", "", "evaluation time, RFC3339 (default: now)")
	f.BoolVar(&adjustFlags.record, "record", false, "write the adjustment to adjustment_log")
	f.BoolVar(&adjustFlags.jsonOut, "json", false, "output as JSON instead of text")
	f.String("classifier", "", "classifier gRPC address")
	f.String("lookback", "", "feeding/sleep history loaded with --baby")
	rootCmd.AddCommand(adjustCmd)
}

// #region run
type adjustOutput struct {
	AdjustmentID string          `json:"adjustment_id,omitempty"`
	Output       adjust.Output   `json:"output"`
	Eval         eval.EvalResult `json:"eval"`
}

func runAdjust(cmd *cobra.Command, _ []string) error {
	if (adjustFlags.input == "") == (adjustFlags.babyID == "") {
		return fmt.Errorf("exactly one of --input or --baby is required")
	}

	now := time.Now().UTC()
	if adjustFlags.now != "" {
		t, err := time.Parse(time.RFC3339, adjustFlags.now)
		if err != nil {
			return fmt.Errorf("parse --now: %w", err)
		}
		now = t
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()

	raw, err := flagScores(ctx)
	if err != nil {
		return err
	}

	var st *store.Store
	if adjustFlags.babyID != "" || adjustFlags.record {
		if st, err = openStore(); err != nil {
			return err
		}
		defer st.Close()
	}

	var input adjust.Input
	babyID := adjustFlags.babyID
	if adjustFlags.input != "" {
		if input, err = loadInput(adjustFlags.input); err != nil {
			return err
		}
		if raw != nil {
			input.RawScores = raw
		}
		if adjustFlags.now != "" || input.Now.IsZero() {
			input.Now = now
		}
	} else {
		if raw == nil {
			return fmt.Errorf("--baby needs --score or --audio")
		}
		snap, err := st.Snapshot(ctx, babyID, now, cfg.Lookback)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		input = snap.Input(raw, now)
	}

	engine := newEngine()
	out := engine.Adjust(input)
	ev := newHarness().Run(out)
	if !ev.Passed {
		logger.Warn("adjustment failed invariant checks", "reason", ev.Reason)
	}

	result := adjustOutput{Output: out, Eval: ev}
	if adjustFlags.record {
		result.AdjustmentID, err = logging.LogAdjustment(st.DB(), logging.AdjustmentEntry{
			BabyID: babyID,
			Record: logging.AdjustmentRecord{
				Source: "cli",
				Input:  input,
				Config: engine.Config(),
				Output: out,
				Eval:   &ev,
			},
		})
		if err != nil {
			return err
		}
	}

	if adjustFlags.jsonOut {
		return printJSON(result)
	}
	printAdjustment(result)
	return nil
}

// flagScores returns --score values, or the classifier's scores for --audio,
// or nil when neither is given.
func flagScores(ctx context.Context) (map[string]float64, error) {
	if len(adjustFlags.scores) > 0 && adjustFlags.audio != "" {
		return nil, fmt.Errorf("--score and --audio are mutually exclusive")
	}
	if len(adjustFlags.scores) > 0 {
		raw := make(map[string]float64, len(adjustFlags.scores))
		for label, s := range adjustFlags.scores {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("--score %s: %w", label, err)
			}
			raw[label] = v
		}
		return raw, nil
	}
	if adjustFlags.audio == "" {
		return nil, nil
	}
	if cfg.ClassifierAddr == "" {
		return nil, fmt.Errorf("--audio needs a classifier address (--classifier or classifier_addr)")
	}
	audio, err := os.ReadFile(adjustFlags.audio)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	client, err := codec.NewClassifierClient(cfg.ClassifierAddr)
	if err != nil {
		return nil, err
	}
	defer client.Close()
	return client.Classify(ctx, audio, audioMimeType(adjustFlags.audio, adjustFlags.mimeType), adjustFlags.babyID)
}

func loadInput(path string) (adjust.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return adjust.Input{}, fmt.Errorf("read input %s: %w", path, err)
	}
	var in adjust.Input
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &in)
	default:
		err = json.Unmarshal(data, &in)
	}
	if err != nil {
		return adjust.Input{}, fmt.Errorf("parse input %s: %w", path, err)
	}
	return in, nil
}

func audioMimeType(path, explicit string) string {
	if explicit != "" {
		return explicit
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".ogg", ".opus":
		return "audio/ogg"
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	case ".webm":
		return "audio/webm"
	default:
		return "application/octet-stream"
	}
}

// #endregion run

// #region output
func printAdjustment(r adjustOutput) {
	if r.AdjustmentID != "" {
		fmt.Printf("Adjustment: %s\n", r.AdjustmentID)
	}
	fmt.Printf("Label:      %s (%.2f)\n", r.Output.FinalLabel, r.Output.Confidence)
	fmt.Printf("Suppressed: %.0f%% of belly pain\n", r.Output.Suppression*100)

	fmt.Printf("\n%-12s  %8s  %8s\n", "Cause", "Raw", "Adjusted")
	fmt.Printf("%-12s+-%8s+-%8s\n", "------------", "--------", "--------")
	for i, l := range cause.Canonical {
		fmt.Printf("%-12s  %8.4f  %8.4f\n", l, r.Output.RawScores[i], r.Output.AdjustedScores[i])
	}

	fmt.Printf("\nExplanation:\n")
	for _, line := range r.Output.Explanation {
		fmt.Printf("  - %s\n", line)
	}
	if !r.Eval.Passed {
		fmt.Printf("\nEval: FAIL (%s)\n", r.Eval.Reason)
	}
}

// #endregion output
