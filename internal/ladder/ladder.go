// Package ladder implements the ordered heuristic rule ladder that corrects
// classifier scores with caregiving context. Each rule is a pure step over an
// Accumulator value; later rules see the cumulative effect of earlier ones.
package ladder

// #region rule

// applyFunc evaluates one rule. fired=false means the accumulator is untouched.
type applyFunc func(cfg Config, ctx Context, acc Accumulator) (next Accumulator, message string, fired bool)

// Rule is one named, independently evaluable step of the ladder.
type Rule struct {
	ID    RuleID
	apply applyFunc
}

// Apply runs the rule in isolation. step is nil when the rule did not fire.
func (r Rule) Apply(cfg Config, ctx Context, acc Accumulator) (Accumulator, *Step) {
	next, msg, fired := r.apply(cfg, ctx, acc)
	if !fired {
		return acc, nil
	}
	return next, &Step{Rule: r.ID, Message: msg}
}

// #endregion rule

// #region ladder

// Ladder runs its rules in a fixed order.
type Ladder struct {
	config Config
	rules  []Rule
}

// New creates a ladder with the standard rule order.
func New(config Config) *Ladder {
	return &Ladder{config: config, rules: StandardRules()}
}

// Config returns the thresholds the ladder was built with.
func (l *Ladder) Config() Config {
	return l.config
}

// Rules returns a copy of the ordered rule list.
func (l *Ladder) Rules() []Rule {
	out := make([]Rule, len(l.rules))
	copy(out, l.rules)
	return out
}

// Run folds acc through every rule, collecting one Step per fired rule.
func (l *Ladder) Run(ctx Context, acc Accumulator) (Accumulator, []Step) {
	var steps []Step
	for _, r := range l.rules {
		var step *Step
		acc, step = r.Apply(l.config, ctx, acc)
		if step != nil {
			steps = append(steps, *step)
		}
	}
	return acc, steps
}

// #endregion ladder

// #region order

// StandardRules returns the rules in evaluation order.
func StandardRules() []Rule {
	return []Rule{
		{ID: RuleFeedingAlert, apply: feedingAlert},
		{ID: RuleStaleFeeding, apply: staleFeeding},
		{ID: RuleFeedOverdue, apply: feedOverdue},
		{ID: RulePostFeedBurp, apply: postFeedBurp},
		{ID: RuleFrequentFeeding, apply: frequentFeeding},
		{ID: RuleStaleSleep, apply: staleSleep},
		{ID: RuleLongSinceSleep, apply: longSinceSleep},
		{ID: RuleRecentWake, apply: recentWake},
		{ID: RuleLongAwake, apply: longAwake},
	}
}

// #endregion order
