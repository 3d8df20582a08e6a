package ladder

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/cause"
	"github.com/SakshiKukreja04/BabyCare-sub002/internal/window"
)

// #region feeding-rules

// feedingAlert: a critical or low feeding alert makes hunger the leading explanation.
func feedingAlert(cfg Config, ctx Context, acc Accumulator) (Accumulator, string, bool) {
	f := ctx.Flags
	if !f.HasCriticalFeedingAlert && !f.HasLowFeedingAlert {
		return acc, "", false
	}
	acc.Scores = acc.Scores.Raise(cause.Hunger, cfg.AlertHungerFloor)
	before := acc.Budget
	acc = acc.Suppress(cfg.AlertSuppression, cfg.MaxSuppression)

	what := "Critical feeding alert active"
	if !f.HasCriticalFeedingAlert {
		what = "Low feeding alert active"
	}
	if len(f.AlertTypes) > 0 {
		what += " (" + strings.Join(f.AlertTypes, ", ") + ")"
	}
	return acc, what + " - " + effect(acc, before, cause.Hunger), true
}

// staleFeeding: feeds exist but none inside the recent window.
func staleFeeding(cfg Config, ctx Context, acc Accumulator) (Accumulator, string, bool) {
	if !ctx.Feeding.Found() || ctx.Feeding.InRecentWindow {
		return acc, "", false
	}
	acc.Scores = acc.Scores.Raise(cause.Hunger, cfg.StaleFeedHungerFloor)
	before := acc.Budget
	acc = acc.Suppress(cfg.StaleFeedSuppression, cfg.MaxSuppression)

	last := "time unknown"
	if since, ok := ctx.Feeding.Since(ctx.Now); ok {
		last = humanDuration(since) + " ago"
	}
	msg := fmt.Sprintf("No recent feeding logged (last feed %s) - %s", last, effect(acc, before, cause.Hunger))
	return acc, msg, true
}

// feedOverdue: time since the last feed exceeds the maturity-specific interval.
// Hunger scales with the overdue ratio up to a ceiling.
func feedOverdue(cfg Config, ctx Context, acc Accumulator) (Accumulator, string, bool) {
	since, ok := ctx.Feeding.Since(ctx.Now)
	interval := cfg.FeedInterval(ctx.Maturity)
	if !ok || interval <= 0 || since <= interval {
		return acc, "", false
	}
	ratio := float64(since) / float64(interval)
	target := math.Min(cfg.OverdueHungerCeiling, cfg.OverdueHungerBase+cfg.OverdueHungerSlope*math.Min(ratio, cfg.OverdueRatioCap))
	acc.Scores = acc.Scores.Raise(cause.Hunger, target)
	before := acc.Budget
	acc = acc.Suppress(cfg.OverdueSuppression, cfg.MaxSuppression)

	msg := fmt.Sprintf("Last feed %s ago exceeds the %s %s feeding interval (%.2fx) - %s",
		humanDuration(since), humanDuration(interval), maturityLabel(ctx), ratio,
		effect(acc, before, cause.Hunger))
	return acc, msg, true
}

// postFeedBurp: a large fresh feed 5-45 minutes ago points at trapped air.
func postFeedBurp(cfg Config, ctx Context, acc Accumulator) (Accumulator, string, bool) {
	if !ctx.Feeding.InRecentWindow {
		return acc, "", false
	}
	since, ok := ctx.Feeding.Since(ctx.Now)
	if !ok || since < cfg.BurpWindowStart || since > cfg.BurpWindowEnd {
		return acc, "", false
	}
	amount, ok := ctx.Feeding.Event.Amount()
	if !ok || amount < cfg.BurpMinAmount {
		return acc, "", false
	}
	acc.Scores = acc.Scores.Raise(cause.Burping, cfg.BurpFloor)
	before := acc.Budget
	acc = acc.Suppress(cfg.BurpSuppression, cfg.MaxSuppression)

	msg := fmt.Sprintf("Fed %.0f units %s ago - %s", amount, humanDuration(since), effect(acc, before, cause.Burping))
	return acc, msg, true
}

// frequentFeeding: an alert for frequent feeds suggests air or overfeeding.
func frequentFeeding(cfg Config, ctx Context, acc Accumulator) (Accumulator, string, bool) {
	if !ctx.Flags.HasFrequentFeedingAlert {
		return acc, "", false
	}
	acc.Scores = acc.Scores.Raise(cause.Burping, cfg.FrequentBurpFloor)
	acc.Scores = acc.Scores.Raise(cause.Discomfort, cfg.FrequentDiscomfortFloor)
	before := acc.Budget
	acc = acc.Suppress(cfg.FrequentSuppression, cfg.MaxSuppression)

	return acc, "Frequent feeding alert active - " + effect(acc, before, cause.Burping, cause.Discomfort), true
}

// #endregion feeding-rules

// #region sleep-rules

// staleSleep: sleeps exist but none inside the recent window.
func staleSleep(cfg Config, ctx Context, acc Accumulator) (Accumulator, string, bool) {
	if !ctx.Sleep.Found() || ctx.Sleep.InRecentWindow {
		return acc, "", false
	}
	acc.Scores = acc.Scores.Raise(cause.Tired, cfg.StaleSleepTiredFloor)
	before := acc.Budget
	acc = acc.Suppress(cfg.StaleSleepSuppression, cfg.MaxSuppression)

	last := "time unknown"
	if since, ok := ctx.Sleep.Since(ctx.Now); ok {
		last = humanDuration(since) + " ago"
	}
	msg := fmt.Sprintf("No recent sleep logged (last sleep %s) - %s", last, effect(acc, before, cause.Tired))
	return acc, msg, true
}

// longSinceSleep: the last sleep started more than the threshold ago.
func longSinceSleep(cfg Config, ctx Context, acc Accumulator) (Accumulator, string, bool) {
	if !ctx.Sleep.Found() {
		return acc, "", false
	}
	start, ok := window.SleepStart(*ctx.Sleep.Event)
	if !ok {
		return acc, "", false
	}
	since := ctx.Now.Sub(start)
	if since <= cfg.SleepStartThreshold {
		return acc, "", false
	}
	acc.Scores = acc.Scores.Raise(cause.Tired, cfg.SleepStartTiredFloor)
	before := acc.Budget
	acc = acc.Suppress(cfg.SleepStartSuppression, cfg.MaxSuppression)

	msg := fmt.Sprintf("Last sleep started %s ago - %s", humanDuration(since), effect(acc, before, cause.Tired))
	return acc, msg, true
}

// recentWake: fussiness right after waking.
func recentWake(cfg Config, ctx Context, acc Accumulator) (Accumulator, string, bool) {
	awake, ok := sinceWake(ctx)
	if !ok || awake <= 0 || awake > cfg.RecentWakeWindow {
		return acc, "", false
	}
	acc.Scores = acc.Scores.Raise(cause.Discomfort, cfg.RecentWakeDiscomfortFloor)
	before := acc.Budget
	acc = acc.Suppress(cfg.RecentWakeSuppression, cfg.MaxSuppression)

	msg := fmt.Sprintf("Woke up %s ago - %s", humanDuration(awake), effect(acc, before, cause.Discomfort))
	return acc, msg, true
}

// longAwake: an overtired baby.
func longAwake(cfg Config, ctx Context, acc Accumulator) (Accumulator, string, bool) {
	awake, ok := sinceWake(ctx)
	if !ok || awake <= cfg.LongAwakeThreshold {
		return acc, "", false
	}
	acc.Scores = acc.Scores.Raise(cause.Tired, cfg.LongAwakeTiredFloor)
	acc.Scores = acc.Scores.Raise(cause.Discomfort, cfg.LongAwakeDiscomfortFloor)
	before := acc.Budget
	acc = acc.Suppress(cfg.LongAwakeSuppression, cfg.MaxSuppression)

	msg := fmt.Sprintf("Awake for %s since last sleep - %s", humanDuration(awake), effect(acc, before, cause.Tired, cause.Discomfort))
	return acc, msg, true
}

// sinceWake is now minus the selected sleep's end time.
func sinceWake(ctx Context) (time.Duration, bool) {
	if !ctx.Sleep.Found() {
		return 0, false
	}
	wake, ok := window.Wake(*ctx.Sleep.Event)
	if !ok {
		return 0, false
	}
	return ctx.Now.Sub(wake), true
}

// #endregion sleep-rules

// #region helpers

// effect renders the numeric outcome of a rule for the trace.
func effect(acc Accumulator, before float64, labels ...cause.Label) string {
	parts := make([]string, 0, len(labels)+1)
	for _, l := range labels {
		parts = append(parts, fmt.Sprintf("%s raised to %.2f", displayName(l), acc.Scores.Get(l)))
	}
	if added := acc.Budget - before; added > 0 {
		parts = append(parts, fmt.Sprintf("belly pain suppression +%.2f", added))
	} else {
		parts = append(parts, fmt.Sprintf("belly pain suppression already at %.2f", acc.Budget))
	}
	return strings.Join(parts, ", ")
}

func displayName(l cause.Label) string {
	return strings.ReplaceAll(string(l), "_", " ")
}

func maturityLabel(ctx Context) string {
	return strings.ReplaceAll(string(ctx.Maturity), "_", "-")
}

// humanDuration formats d at minute resolution: "20m", "3h40m".
func humanDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	h := int(d.Hours())
	m := int(d.Minutes()) - h*60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%dm", h, m)
}

// #endregion helpers
