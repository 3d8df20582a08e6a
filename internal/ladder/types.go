package ladder

import (
	"time"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/baby"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/cause"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/signals"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/window"
)

// #region rule-id

// RuleID names a rule in the ladder.
type RuleID string

const (
	RuleFeedingAlert    RuleID = "feeding_alert"    // critical or low feeding alert
	RuleStaleFeeding    RuleID = "stale_feeding"    // no feed in the recent window
	RuleFeedOverdue     RuleID = "feed_overdue"     // past the maturity feed interval
	RulePostFeedBurp    RuleID = "post_feed_burp"   // large feed 5-45 min ago
	RuleFrequentFeeding RuleID = "frequent_feeding" // frequent feeding alert
	RuleStaleSleep      RuleID = "stale_sleep"      // no sleep in the recent window
	RuleLongSinceSleep  RuleID = "long_since_sleep" // sleep started > 3h ago
	RuleRecentWake      RuleID = "recent_wake"      // just woke up
	RuleLongAwake       RuleID = "long_awake"       // awake > 10h
	RuleBellyPainCap    RuleID = "belly_pain_cap"   // applied by the finalizer
)

// #endregion rule-id

// #region step

// Step is one trace entry: which rule fired and what it did.
type Step struct {
	Rule    RuleID `json:"rule"`
	Message string `json:"message"`
}

// #endregion step

// #region accumulator

// Accumulator is the working state threaded through the ladder by value.
type Accumulator struct {
	Scores cause.Scores
	Budget float64 // belly-pain suppression, never negative, capped
}

// Suppress adds amount to the budget, capped at max. Negative amounts are ignored.
func (a Accumulator) Suppress(amount, max float64) Accumulator {
	if amount <= 0 {
		return a
	}
	a.Budget += amount
	if a.Budget > max {
		a.Budget = max
	}
	return a
}

// #endregion accumulator

// #region context

// Context is the read-only evidence every rule sees.
type Context struct {
	Feeding  window.Selection
	Sleep    window.Selection
	Flags    signals.Flags
	Maturity baby.Maturity
	Now      time.Time
}

// #endregion context

// #region config

// Config holds every ladder threshold. Floors are "raise to at least" values;
// Suppression fields add to the belly-pain budget.
type Config struct {
	MaxSuppression float64 `json:"max_suppression" mapstructure:"max_suppression"`

	AlertHungerFloor float64 `json:"alert_hunger_floor" mapstructure:"alert_hunger_floor"`
	AlertSuppression float64 `json:"alert_suppression" mapstructure:"alert_suppression"`

	StaleFeedHungerFloor float64 `json:"stale_feed_hunger_floor" mapstructure:"stale_feed_hunger_floor"`
	StaleFeedSuppression float64 `json:"stale_feed_suppression" mapstructure:"stale_feed_suppression"`

	FullTermFeedInterval  time.Duration `json:"full_term_feed_interval" mapstructure:"full_term_feed_interval"`
	PrematureFeedInterval time.Duration `json:"premature_feed_interval" mapstructure:"premature_feed_interval"`
	OverdueHungerBase     float64       `json:"overdue_hunger_base" mapstructure:"overdue_hunger_base"`
	OverdueHungerSlope    float64       `json:"overdue_hunger_slope" mapstructure:"overdue_hunger_slope"`
	OverdueRatioCap       float64       `json:"overdue_ratio_cap" mapstructure:"overdue_ratio_cap"`
	OverdueHungerCeiling  float64       `json:"overdue_hunger_ceiling" mapstructure:"overdue_hunger_ceiling"`
	OverdueSuppression    float64       `json:"overdue_suppression" mapstructure:"overdue_suppression"`

	BurpWindowStart time.Duration `json:"burp_window_start" mapstructure:"burp_window_start"`
	BurpWindowEnd   time.Duration `json:"burp_window_end" mapstructure:"burp_window_end"`
	BurpMinAmount   float64       `json:"burp_min_amount" mapstructure:"burp_min_amount"`
	BurpFloor       float64       `json:"burp_floor" mapstructure:"burp_floor"`
	BurpSuppression float64       `json:"burp_suppression" mapstructure:"burp_suppression"`

	FrequentBurpFloor       float64 `json:"frequent_burp_floor" mapstructure:"frequent_burp_floor"`
	FrequentDiscomfortFloor float64 `json:"frequent_discomfort_floor" mapstructure:"frequent_discomfort_floor"`
	FrequentSuppression     float64 `json:"frequent_suppression" mapstructure:"frequent_suppression"`

	StaleSleepTiredFloor  float64 `json:"stale_sleep_tired_floor" mapstructure:"stale_sleep_tired_floor"`
	StaleSleepSuppression float64 `json:"stale_sleep_suppression" mapstructure:"stale_sleep_suppression"`

	SleepStartThreshold   time.Duration `json:"sleep_start_threshold" mapstructure:"sleep_start_threshold"`
	SleepStartTiredFloor  float64       `json:"sleep_start_tired_floor" mapstructure:"sleep_start_tired_floor"`
	SleepStartSuppression float64       `json:"sleep_start_suppression" mapstructure:"sleep_start_suppression"`

	RecentWakeWindow          time.Duration `json:"recent_wake_window" mapstructure:"recent_wake_window"`
	RecentWakeDiscomfortFloor float64       `json:"recent_wake_discomfort_floor" mapstructure:"recent_wake_discomfort_floor"`
	RecentWakeSuppression     float64       `json:"recent_wake_suppression" mapstructure:"recent_wake_suppression"`

	LongAwakeThreshold       time.Duration `json:"long_awake_threshold" mapstructure:"long_awake_threshold"`
	LongAwakeTiredFloor      float64       `json:"long_awake_tired_floor" mapstructure:"long_awake_tired_floor"`
	LongAwakeDiscomfortFloor float64       `json:"long_awake_discomfort_floor" mapstructure:"long_awake_discomfort_floor"`
	LongAwakeSuppression     float64       `json:"long_awake_suppression" mapstructure:"long_awake_suppression"`
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		MaxSuppression: 0.80,

		AlertHungerFloor: 0.70,
		AlertSuppression: 0.50,

		StaleFeedHungerFloor: 0.55,
		StaleFeedSuppression: 0.35,

		FullTermFeedInterval:  3 * time.Hour,
		PrematureFeedInterval: 150 * time.Minute,
		OverdueHungerBase:     0.40,
		OverdueHungerSlope:    0.15,
		OverdueRatioCap:       3,
		OverdueHungerCeiling:  0.80,
		OverdueSuppression:    0.40,

		BurpWindowStart: 5 * time.Minute,
		BurpWindowEnd:   45 * time.Minute,
		BurpMinAmount:   60,
		BurpFloor:       0.45,
		BurpSuppression: 0.35,

		FrequentBurpFloor:       0.35,
		FrequentDiscomfortFloor: 0.25,
		FrequentSuppression:     0.30,

		StaleSleepTiredFloor:  0.45,
		StaleSleepSuppression: 0.25,

		SleepStartThreshold:   3 * time.Hour,
		SleepStartTiredFloor:  0.50,
		SleepStartSuppression: 0.30,

		RecentWakeWindow:          45 * time.Minute,
		RecentWakeDiscomfortFloor: 0.30,
		RecentWakeSuppression:     0.20,

		LongAwakeThreshold:       10 * time.Hour,
		LongAwakeTiredFloor:      0.55,
		LongAwakeDiscomfortFloor: 0.40,
		LongAwakeSuppression:     0.40,
	}
}

// FeedInterval returns the overdue threshold for a maturity class.
func (c Config) FeedInterval(m baby.Maturity) time.Duration {
	if m == baby.Premature {
		return c.PrematureFeedInterval
	}
	return c.FullTermFeedInterval
}

// #endregion config
