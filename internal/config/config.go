// Package config loads service and engine settings through viper. Precedence
// is flag, then BABYCARE_* environment, then config file, then defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/adjust"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/eval"
)

// EnvPrefix prefixes every environment override, e.g. BABYCARE_DB_PATH or
// BABYCARE_ENGINE_LADDER_BURP_FLOOR.
const EnvPrefix = "BABYCARE"

// #region types
// Config is the full runtime configuration.
type Config struct {
	DBPath         string        `mapstructure:"db_path"`
	ListenAddr     string        `mapstructure:"listen_addr"`
	ClassifierAddr string        `mapstructure:"classifier_addr"` // empty disables audio requests
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Lookback       time.Duration `mapstructure:"lookback"`
	Log            LogConfig     `mapstructure:"log"`
	Engine         adjust.Config `mapstructure:"engine"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath:         "babycare.db",
		ListenAddr:     "127.0.0.1:7070",
		RequestTimeout: 5 * time.Second,
		Lookback:       24 * time.Hour,
		Log:            LogConfig{Level: "info", Format: "text"},
		Engine:         adjust.DefaultConfig(),
	}
}

// EvalConfig derives invariant bounds from the engine thresholds.
func (c Config) EvalConfig() eval.EvalConfig {
	ec := eval.DefaultEvalConfig()
	ec.MaxSuppression = c.Engine.Finalize.MaxSuppression
	ec.BellyPainCap = c.Engine.Finalize.BellyPainCap
	return ec
}

// #endregion types

// #region flags
// flagKeys maps CLI flag names onto config keys.
var flagKeys = map[string]string{
	"db":         "db_path",
	"listen":     "listen_addr",
	"classifier": "classifier_addr",
	"timeout":    "request_timeout",
	"lookback":   "lookback",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// #endregion flags

// #region load
// Load reads path (any format viper understands, picked by extension) over the
// defaults. An empty path searches ./crycontext.* and ~/.config/babycare/;
// finding nothing there is not an error. Flags present in flags override.
func Load(path string, flags *pflag.FlagSet) (Config, *viper.Viper, error) {
	v, err := newViper()
	if err != nil {
		return Config{}, nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("crycontext")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "babycare"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, nil, err
	}
	return cfg, v, nil
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults, err := Settings(Default())
	if err != nil {
		return nil, err
	}
	for key, value := range flatten("", defaults) {
		v.SetDefault(key, value)
	}
	return v, nil
}

// #endregion load

// #region validate
// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	var problems []string
	if c.RequestTimeout <= 0 {
		problems = append(problems, "request_timeout must be positive")
	}
	w := c.Engine.Window
	if w.Recent <= 0 || w.Extended < w.Recent {
		problems = append(problems, "engine.window needs 0 < recent <= extended")
	}
	f := c.Engine.Finalize
	if f.MaxSuppression < 0 || f.MaxSuppression > 1 {
		problems = append(problems, "engine.finalize.max_suppression must be within [0,1]")
	}
	if f.BellyPainCap < 0 || f.BellyPainCap > f.BellyPainCapTrigger {
		problems = append(problems, "engine.finalize.belly_pain_cap must be within [0, belly_pain_cap_trigger]")
	}
	if c.Engine.Ladder.BurpWindowEnd < c.Engine.Ladder.BurpWindowStart {
		problems = append(problems, "engine.ladder.burp_window_end precedes burp_window_start")
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q is not text or json", c.Log.Format))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// #endregion validate

// #region save
// Settings renders cfg as the nested key map viper works with. Durations
// become strings such as "3h0m0s" so files stay readable.
func Settings(cfg Config) (map[string]any, error) {
	out := map[string]any{}
	if err := mapstructure.Decode(cfg, &out); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return readable(out), nil
}

// Save writes cfg to path as TOML. Existing files are not overwritten unless
// force is set.
func Save(path string, cfg Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("save config: %s: %w", path, fs.ErrExist)
		}
	}
	settings, err := Settings(cfg)
	if err != nil {
		return err
	}
	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func readable(m map[string]any) map[string]any {
	for k, val := range m {
		switch x := val.(type) {
		case time.Duration:
			m[k] = x.String()
		case map[string]any:
			m[k] = readable(x)
		}
	}
	return m
}

func flatten(prefix string, m map[string]any) map[string]any {
	out := map[string]any{}
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]any); ok {
			for nk, nv := range flatten(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[key] = val
	}
	return out
}

// #endregion save
