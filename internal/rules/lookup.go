package rules

import (
	"strings"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
)

// Names returns the modifier names in table order
func Names(list []Modifier) []string {
	out := make([]string, len(list))
	for i, m := range list {
		out[i] = m.Name
	}
	return out
}

// Find returns the modifier with the given name, ignoring case
func Find(list []Modifier, name string) (Modifier, bool) {
	for _, m := range list {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return Modifier{}, false
}

// Size returns the size entry for the form
func (r *Rules) Size(f sheet.Form, name string) (Modifier, bool) {
	return Find(r.Table(f).Sizes, name)
}

// Build returns the build entry for the form
func (r *Rules) Build(f sheet.Form, name string) (Modifier, bool) {
	return Find(r.Table(f).Builds, name)
}

// Age returns the age bracket
func (r *Rules) Age(name string) (Modifier, bool) {
	return Find(r.Ages, name)
}

// Debuff returns the debuff entry for a severity
func (r *Rules) Debuff(severity string) (Modifier, bool) {
	return Find(r.Debuffs, severity)
}

// Disability returns the disability entry for a severity
func (r *Rules) Disability(severity string) (Modifier, bool) {
	return Find(r.Disabilities, severity)
}

// LevelNames returns the skill ranks in progression order
func (r *Rules) LevelNames() []string {
	out := make([]string, len(r.Levels))
	for i, l := range r.Levels {
		out[i] = l.Name
	}
	return out
}

// Skill returns the skill with the given canonical name
func (r *Rules) Skill(name string) (*Skill, bool) {
	for i := range r.Skills {
		if strings.EqualFold(r.Skills[i].Name, name) {
			return &r.Skills[i], true
		}
	}
	return nil, false
}

// FormatSkills renders skills with their display names, e.g.
// "Master Hunter & Novice Fighter"
func (r *Rules) FormatSkills(skills sheet.SkillSet, sep string) string {
	parts := make([]string, 0, len(skills))
	for _, e := range skills {
		name := e.Name
		if s, ok := r.Skill(e.Name); ok && s.Display != "" {
			name = s.Display
		}
		if e.Ranked() {
			name = e.Rank + " " + name
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, sep)
}

// SkillNames returns the canonical skill names in table order
func (r *Rules) SkillNames() []string {
	out := make([]string, len(r.Skills))
	for i, s := range r.Skills {
		out[i] = s.Name
	}
	return out
}

// SkillDefines reports whether the skill has the rank
func (r *Rules) SkillDefines(skill, rank string) bool {
	_, ok := r.SkillValue(skill, rank)
	return ok
}

// SkillValue returns the value of a skill at a rank. It is false when the
// skill is unknown or does not define the rank.
func (r *Rules) SkillValue(skill, rank string) (float64, bool) {
	s, ok := r.Skill(skill)
	if !ok {
		return 0, false
	}
	for _, ex := range s.Excludes {
		if strings.EqualFold(ex, rank) {
			return 0, false
		}
	}
	for lvl, v := range s.Overrides {
		if strings.EqualFold(lvl, rank) {
			return v, true
		}
	}
	for _, l := range r.Levels {
		if strings.EqualFold(l.Name, rank) {
			return l.Value, true
		}
	}
	return 0, false
}

// LevelIndex returns the position of a rank in the progression, or -1
func (r *Rules) LevelIndex(rank string) int {
	for i, l := range r.Levels {
		if strings.EqualFold(l.Name, rank) {
			return i
		}
	}
	return -1
}

// Specialty returns the specialty with the given name
func (r *Rules) Specialty(name string) (*Specialty, bool) {
	for i := range r.Specialties {
		if strings.EqualFold(r.Specialties[i].Name, name) {
			return &r.Specialties[i], true
		}
	}
	return nil, false
}

// SpecialtyNames returns every specialty name in table order
func (r *Rules) SpecialtyNames() []string {
	out := make([]string, len(r.Specialties))
	for i, s := range r.Specialties {
		out[i] = s.Name
	}
	return out
}

// Item returns the item with the given label for the form
func (r *Rules) Item(f sheet.Form, label string) (*Item, bool) {
	items := r.Items[f]
	for i := range items {
		if strings.EqualFold(items[i].Label, label) {
			return &items[i], true
		}
	}
	return nil, false
}

// ItemLabels returns the item labels of the form in table order
func (r *Rules) ItemLabels(f sheet.Form) []string {
	items := r.Items[f]
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

// Buff returns the buff with the given label
func (r *Rules) Buff(label string) (Buff, bool) {
	for _, b := range r.Buffs {
		if strings.EqualFold(b.Label, label) {
			return b, true
		}
	}
	return Buff{}, false
}

// BuffLabels returns every buff label in table order
func (r *Rules) BuffLabels() []string {
	out := make([]string, len(r.Buffs))
	for i, b := range r.Buffs {
		out[i] = b.Label
	}
	return out
}

// RacingAccessory returns the racing accessory with the given label
func (r *Rules) RacingAccessory(label string) (LabeledBonus, bool) {
	for _, a := range r.Accessories.Racing {
		if strings.EqualFold(a.Label, label) {
			return a, true
		}
	}
	return LabeledBonus{}, false
}

// MutationAxis returns the axis of a mutation type
func (r *Rules) MutationAxis(kind string) (sheet.Axis, bool) {
	return typeAxis(r.Mutations.Types, kind)
}

// CompanionAxis returns the axis of a companion type
func (r *Rules) CompanionAxis(kind string) (sheet.Axis, bool) {
	return typeAxis(r.Companions.Types, kind)
}

// MutationTypes returns the mutation type keywords in table order
func (r *Rules) MutationTypes() []string {
	return typeNames(r.Mutations.Types)
}

// CompanionTypes returns the companion type keywords in table order
func (r *Rules) CompanionTypes() []string {
	return typeNames(r.Companions.Types)
}

// QuickRoll returns the preset with the given name
func (r *Rules) QuickRoll(name string) (*QuickRoll, bool) {
	for i := range r.QuickRolls {
		if strings.EqualFold(r.QuickRolls[i].Name, name) {
			return &r.QuickRolls[i], true
		}
	}
	return nil, false
}

// Holds evaluates a condition against a record
func (r *Rules) Holds(c Condition, t Target) bool {
	switch c.MustBe {
	case MustBeEmpty:
		return !t.Filled(c.Field)
	case MustBeFilled:
		return t.Filled(c.Field)
	case MustBeUnderCap:
		n, isList := t.Count(c.Field)
		limit := r.Caps.For(c.Field)
		return !isList || limit == 0 || n < limit
	}
	return false
}

func typeAxis(types []TypeAxis, kind string) (sheet.Axis, bool) {
	for _, t := range types {
		if strings.EqualFold(t.Name, kind) {
			return t.Axis, true
		}
	}
	return "", false
}

func typeNames(types []TypeAxis) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.Name
	}
	return out
}
