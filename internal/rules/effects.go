package rules

import "github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"

// EffectKind names the variant of an Effect
type EffectKind string

// EffectKind constants
const (
	KindScored      EffectKind = "scored"
	KindConditional EffectKind = "conditional"
	KindReminder    EffectKind = "reminder"
	KindCommand     EffectKind = "command"
	KindReduce      EffectKind = "reduce"
	KindPassive     EffectKind = "passive"
)

// Effect is one behavior attached to a specialty or item. The concrete
// types are Scored, Conditional, Reminder, Command, Reduce and Passive.
type Effect interface {
	Kind() EffectKind
}

// Scored adds flat per-axis deltas
type Scored struct {
	Mods Mods
}

// Kind implements Effect
func (Scored) Kind() EffectKind { return KindScored }

// Conditional adds Value to Axis when the condition holds. Conflict is
// reported when it does not.
type Conditional struct {
	Axis     sheet.Axis
	Value    float64
	When     Condition
	Conflict string
}

// Kind implements Effect
func (Conditional) Kind() EffectKind { return KindConditional }

// Reminder is free text surfaced to the player
type Reminder struct {
	Text string
}

// Kind implements Effect
func (Reminder) Kind() EffectKind { return KindReminder }

// Command appends a keyword to the generated roll command
type Command struct {
	Keyword string
}

// Kind implements Effect
func (Command) Kind() EffectKind { return KindCommand }

// Reduce steps the severity of a debuff or disability before scoring.
// Levels maps a severity to the one below it; an empty target clears it.
type Reduce struct {
	Field  string
	Levels map[string]string
}

// Kind implements Effect
func (Reduce) Kind() EffectKind { return KindReduce }

// Step returns the reduced severity and whether sev is reducible
func (r Reduce) Step(sev string) (string, bool) {
	next, ok := r.Levels[sev]
	return next, ok
}

// Passive marks a recognized entry that has no scoring behavior
type Passive struct{}

// Kind implements Effect
func (Passive) Kind() EffectKind { return KindPassive }

// Effects is an ordered effect list
type Effects []Effect

// Mods merges the flat modifiers of every Scored effect
func (e Effects) Mods() Mods {
	var out Mods
	for _, eff := range e {
		if s, ok := eff.(Scored); ok {
			out = append(out, s.Mods...)
		}
	}
	return out
}

// Conditionals returns the conditional effects in order
func (e Effects) Conditionals() []Conditional {
	var out []Conditional
	for _, eff := range e {
		if c, ok := eff.(Conditional); ok {
			out = append(out, c)
		}
	}
	return out
}

// Reminders returns the reminder texts in order
func (e Effects) Reminders() []string {
	var out []string
	for _, eff := range e {
		if r, ok := eff.(Reminder); ok {
			out = append(out, r.Text)
		}
	}
	return out
}

// Keywords returns the command keywords in order
func (e Effects) Keywords() []string {
	var out []string
	for _, eff := range e {
		if c, ok := eff.(Command); ok {
			out = append(out, c.Keyword)
		}
	}
	return out
}

// Reductions returns the severity reductions in order
func (e Effects) Reductions() []Reduce {
	var out []Reduce
	for _, eff := range e {
		if r, ok := eff.(Reduce); ok {
			out = append(out, r)
		}
	}
	return out
}

// Passive reports whether the list marks a passive entry
func (e Effects) Passive() bool {
	for _, eff := range e {
		if eff.Kind() == KindPassive {
			return true
		}
	}
	return false
}

// Requirement is the state a condition field must be in
type Requirement string

// Requirement constants
const (
	MustBeEmpty    Requirement = "empty"
	MustBeFilled   Requirement = "filled"
	MustBeUnderCap Requirement = "under_cap"
)

// Condition is a predicate over one field of a parsed record
type Condition struct {
	Field  string
	MustBe Requirement
}

// Target is the record view a condition is evaluated against
type Target interface {
	Filled(field string) bool
	Count(field string) (int, bool)
}

var _ Target = (*sheet.Record)(nil)
