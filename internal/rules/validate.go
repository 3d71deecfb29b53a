package rules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/errors"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/pkg/fuzzy"
)

func (r *Rules) validate(vb *errors.ValidationBuilder) {
	if r.placeholder == nil {
		vb.RequiredField("placeholder_pattern")
	}
	if len(r.FieldNames) == 0 {
		vb.RequiredField("field_names")
	}
	for _, f := range sheet.Forms {
		if r.Commands[f] == "" {
			vb.RequiredField("commands." + f.String())
		}
	}
	if r.Caps.Mutations < 0 || r.Caps.Companions < 0 || r.Caps.Accessories < 0 {
		vb.Field("caps", "must not be negative")
	}

	r.validateModifiers(vb)
	r.validateSkills(vb)
	r.validateSpecialties(vb)
	r.validateItems(vb)
	r.validateAliases(vb)

	checkAxes(vb, "mutations.types", r.Mutations.Types, sheet.FormFight)
	checkAxes(vb, "companions.types", r.Companions.Types, sheet.FormFight)
	checkUnique(vb, "mutations.types", typeNames(r.Mutations.Types))
	checkUnique(vb, "companions.types", typeNames(r.Companions.Types))

	if r.Accessories.Rare.Pattern == nil {
		vb.RequiredField("accessories.rare.pattern")
	}
	for _, a := range r.Accessories.Racing {
		if !a.Axis.ValidFor(sheet.FormRace) {
			vb.Fieldf("accessories.racing["+a.Label+"]", "axis %s is not a movement axis", a.Axis)
		}
	}

	var quick []string
	for _, q := range r.QuickRolls {
		quick = append(quick, q.Name)
		if q.Command == "" {
			vb.RequiredField("quick_rolls[" + q.Name + "].command")
		}
	}
	checkUnique(vb, "quick_rolls", quick)
}

func (r *Rules) validateModifiers(vb *errors.ValidationBuilder) {
	tables := []struct {
		field string
		list  []Modifier
		form  sheet.Form
	}{
		{"ages", r.Ages, sheet.FormRace},
		{"fight.sizes", r.Fight.Sizes, sheet.FormFight},
		{"fight.builds", r.Fight.Builds, sheet.FormFight},
		{"movement.sizes", r.Movement.Sizes, sheet.FormRace},
		{"movement.builds", r.Movement.Builds, sheet.FormRace},
		{"debuffs", r.Debuffs, sheet.FormFight},
		{"disabilities", r.Disabilities, sheet.FormFight},
	}
	for _, t := range tables {
		if len(t.list) == 0 {
			vb.RequiredField(t.field)
		}
		checkUnique(vb, t.field, Names(t.list))
		for _, m := range t.list {
			checkMods(vb, t.field+"["+m.Name+"]", m.Mods, t.form)
		}
	}
	if n := len(r.Ages); n > 0 && n < 3 {
		vb.Fieldf("ages", "need at least 3 age brackets, got %d", n)
	}
	for _, m := range r.Ages {
		for _, mod := range m.Mods {
			if mod.Axis != sheet.AxisTotal {
				vb.Fieldf("ages["+m.Name+"]", "age modifiers must use TOTAL, got %s", mod.Axis)
			}
		}
	}

	if len(r.Severities) == 0 {
		vb.RequiredField("severities")
	}
	for _, sev := range r.Severities {
		if _, ok := r.Debuff(sev); !ok {
			vb.Fieldf("debuffs", "missing severity %q", sev)
		}
		if _, ok := r.Disability(sev); !ok {
			vb.Fieldf("disabilities", "missing severity %q", sev)
		}
	}
}

func (r *Rules) validateSkills(vb *errors.ValidationBuilder) {
	if len(r.Levels) == 0 {
		vb.RequiredField("skill_levels")
	}
	checkUnique(vb, "skill_levels", r.LevelNames())
	checkUnique(vb, "skills", r.SkillNames())
	for _, s := range r.Skills {
		field := "skills[" + s.Name + "]"
		if !s.Axis.ValidFor(sheet.FormFight) {
			vb.Fieldf(field, "axis %s is not a fight axis", s.Axis)
		}
		for lvl := range s.Overrides {
			if r.LevelIndex(lvl) < 0 {
				vb.Fieldf(field+".overrides", "unknown rank %q", lvl)
			}
		}
		for _, lvl := range s.Excludes {
			if r.LevelIndex(lvl) < 0 {
				vb.Fieldf(field+".excludes", "unknown rank %q", lvl)
			}
		}
	}
	if r.LevelIndex(r.SpecialtyRank) < 0 {
		vb.Fieldf("specialty_rank", "unknown rank %q", r.SpecialtyRank)
	}
	if _, ok := r.Skill(r.MovementSkill); !ok {
		vb.Fieldf("movement.skill", "unknown skill %q", r.MovementSkill)
	}
}

func (r *Rules) validateSpecialties(vb *errors.ValidationBuilder) {
	checkUnique(vb, "specialties", r.SpecialtyNames())
	for _, s := range r.Specialties {
		field := "specialties[" + s.Name + "]"
		if s.Effects.Passive() {
			if len(s.Forms) > 0 {
				vb.Field(field, "passive specialties must not list forms")
			}
			continue
		}
		if s.Requires != "" {
			if _, ok := r.Skill(s.Requires); !ok {
				vb.Fieldf(field+".requires", "unknown skill %q", s.Requires)
			}
		}
		for _, f := range s.Forms {
			checkMods(vb, field+".mods", s.Effects.Mods(), f)
			for _, c := range s.Effects.Conditionals() {
				r.checkConditional(vb, field+".effect", c, f)
			}
		}
	}
}

func (r *Rules) validateItems(vb *errors.ValidationBuilder) {
	checkUnique(vb, "buffs", r.BuffLabels())
	for _, f := range sheet.Forms {
		checkUnique(vb, "items."+f.String(), r.ItemLabels(f))
		for _, it := range r.Items[f] {
			field := fmt.Sprintf("items.%s[%s]", f, it.Label)
			checkMods(vb, field, it.Effects.Mods(), f)
			for _, c := range it.Effects.Conditionals() {
				r.checkConditional(vb, field+".effect", c, f)
			}
			for _, red := range it.Effects.Reductions() {
				if red.Field != sheet.FieldDebuff && red.Field != sheet.FieldDisability {
					vb.Fieldf(field+".reduce.field", "must be %s or %s", sheet.FieldDebuff, sheet.FieldDisability)
				}
				for from, to := range red.Levels {
					if !slices.Contains(r.Severities, from) {
						vb.Fieldf(field+".reduce.levels", "unknown severity %q", from)
					}
					if to != "" && !slices.Contains(r.Severities, to) {
						vb.Fieldf(field+".reduce.levels", "unknown severity %q", to)
					}
				}
			}
		}
	}
}

func (r *Rules) validateAliases(vb *errors.ValidationBuilder) {
	var itemTargets []string
	for _, f := range sheet.Forms {
		itemTargets = append(itemTargets, r.ItemLabels(f)...)
	}
	itemTargets = append(itemTargets, r.BuffLabels()...)

	sizes := append(Names(r.Fight.Sizes), Names(r.Movement.Sizes)...)
	builds := append(Names(r.Fight.Builds), Names(r.Movement.Builds)...)

	checkAliases(vb, "item_aliases", r.ItemAliases, itemTargets)
	checkAliases(vb, "size_aliases", r.SizeAliases, sizes)
	checkAliases(vb, "build_aliases", r.BuildAliases, builds)
	checkAliases(vb, "skill_aliases", r.SkillAliases, r.SkillNames())
}

func (r *Rules) checkConditional(vb *errors.ValidationBuilder, field string, c Conditional, f sheet.Form) {
	if !c.Axis.ValidFor(f) {
		vb.Fieldf(field, "axis %s is not valid for %s", c.Axis, f)
	}
	if !slices.Contains(sheet.ConditionFields, c.When.Field) {
		vb.Fieldf(field+".when.field", "unknown field %q", c.When.Field)
	}
	switch c.When.MustBe {
	case MustBeEmpty, MustBeFilled:
	case MustBeUnderCap:
		if r.Caps.For(c.When.Field) == 0 {
			vb.Fieldf(field+".when", "field %q has no cap", c.When.Field)
		}
	default:
		vb.Fieldf(field+".when.must_be", "must be one of: empty, filled, under_cap (got %q)", c.When.MustBe)
	}
}

func checkMods(vb *errors.ValidationBuilder, field string, mods Mods, f sheet.Form) {
	for _, m := range mods {
		if m.Axis.Order() >= 0 && !m.Axis.ValidFor(f) {
			vb.Fieldf(field, "axis %s is not valid for %s", m.Axis, f)
		}
	}
}

func checkAxes(vb *errors.ValidationBuilder, field string, types []TypeAxis, f sheet.Form) {
	for _, t := range types {
		if t.Axis.Order() >= 0 && !t.Axis.ValidFor(f) {
			vb.Fieldf(field+"["+t.Name+"]", "axis %s is not valid for %s", t.Axis, f)
		}
	}
}

func checkUnique(vb *errors.ValidationBuilder, field string, names []string) {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "" {
			vb.Field(field, "contains an empty name")
			continue
		}
		if seen[key] {
			vb.Fieldf(field, "duplicate key %q", n)
		}
		seen[key] = true
	}
}

func checkAliases(vb *errors.ValidationBuilder, field string, aliases []fuzzy.Alias, targets []string) {
	seen := make(map[string]bool, len(aliases))
	for _, a := range aliases {
		switch {
		case a.Phrase == "":
			vb.Field(field, "contains an empty phrase")
		case a.Phrase != strings.ToLower(a.Phrase):
			vb.Fieldf(field, "phrase %q must be lower case", a.Phrase)
		case seen[a.Phrase]:
			vb.Fieldf(field, "duplicate phrase %q", a.Phrase)
		}
		seen[a.Phrase] = true

		if a.Target == "" {
			vb.Fieldf(field, "phrase %q maps to an empty key", a.Phrase)
			continue
		}
		if !slices.ContainsFunc(targets, func(t string) bool { return strings.EqualFold(t, a.Target) }) {
			vb.Fieldf(field, "phrase %q maps to unknown key %q", a.Phrase, a.Target)
		}
	}
}
