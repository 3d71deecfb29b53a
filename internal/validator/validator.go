// Package validator runs the cross-field checks on a parsed sheet: caps,
// accessory conflicts, specialty requirements, skill count and the
// consolidated missing and unfilled notices.
package validator

import (
	"slices"
	"strings"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/rules"
)

// requiredSkills is the exact number of ranked skills a fight sheet lists
const requiredSkills = 2

// Validator checks parsed records against one rule table
type Validator struct {
	rules *rules.Rules
}

// New creates a validator for the rule table
func New(r *rules.Rules) *Validator {
	return &Validator{rules: r}
}

// Validate appends the record's cross-field alerts to rep. The record is
// not modified.
func (v *Validator) Validate(rec *sheet.Record, rep *sheet.Report) {
	if rec == nil || rep == nil {
		return
	}
	if rec.Form == sheet.FormFight {
		v.validateFight(rec, rep)
		return
	}
	v.validateMovement(rec, rep)
}

func (v *Validator) validateFight(rec *sheet.Record, rep *sheet.Report) {
	v.checkSpecialtySkills(rec, rep)
	v.checkActiveSpecialty(rec, rep)

	var missing []string
	if !rec.HasIdentity {
		missing = append(missing, "VS line")
	}
	missing = append(missing, v.missingCore(rec)...)
	if !rec.Skills.HasUnranked() && len(rec.Skills) == 0 {
		missing = append(missing, "Skills")
	}
	reportMissing(rep, missing)

	if len(rec.Unfilled) > 0 {
		rep.Warnf(sheet.CategoryForm, "%s%s.", sheet.UnfilledPrefix, strings.Join(rec.Unfilled, ", "))
	}

	if !rec.Skills.HasUnranked() {
		switch n := len(rec.Skills); {
		case n == 1:
			rep.Errorf(sheet.CategorySkills, "Only 1 skill found, exactly %d required.", requiredSkills)
		case n > 0 && n != requiredSkills:
			rep.Errorf(sheet.CategorySkills, "%d skills found, exactly %d required.", n, requiredSkills)
		}
	}

	v.checkCompanions(rec, rep)
	v.checkMutations(rec, rep)
	v.checkAccessories(rec, rep)
	v.checkItems(rec, rep)
}

func (v *Validator) validateMovement(rec *sheet.Record, rep *sheet.Report) {
	v.checkSpecialtySkills(rec, rep)
	v.checkActiveSpecialty(rec, rep)
	v.checkItems(rec, rep)
	reportMissing(rep, v.missingCore(rec))
}

// missingCore lists the absent age, size and build fields for the form.
// A field that was written but not recognized already has its own alert and
// is not reported again.
func (v *Validator) missingCore(rec *sheet.Record) []string {
	var missing []string
	if rec.Form != sheet.FormFlee && rec.AgeRaw == "" {
		missing = append(missing, "Age")
	}
	if rec.SizeRaw == "" {
		missing = append(missing, "Size")
	}
	if rec.BuildRaw == "" {
		missing = append(missing, "Build")
	}
	return missing
}

var missingCategories = []struct {
	field string
	cat   sheet.Category
}{
	{"Age", sheet.CategoryAge},
	{"Size", sheet.CategorySize},
	{"Build", sheet.CategoryBuild},
	{"Skills", sheet.CategorySkills},
}

func reportMissing(rep *sheet.Report, missing []string) {
	if len(missing) == 0 {
		return
	}
	cat := sheet.CategoryForm
	for _, mc := range missingCategories {
		if slices.Contains(missing, mc.field) {
			cat = mc.cat
			break
		}
	}
	rep.Errorf(cat, "%s%s.", sheet.MissingPrefix, strings.Join(missing, ", "))
}

// checkSpecialtySkills cross-checks specialties against the skill list. The
// check is skipped entirely while any skill has no rank.
func (v *Validator) checkSpecialtySkills(rec *sheet.Record, rep *sheet.Report) {
	if rec.Skills.HasUnranked() {
		return
	}
	for _, name := range specialtiesToCheck(rec) {
		spec, ok := v.rules.Specialty(name)
		if !ok || spec.Requires == "" {
			continue
		}
		rank, listed := rec.Skills.Rank(spec.Requires)
		switch {
		case !listed:
			rep.Errorf(sheet.CategorySpecialties, "%q requires %s skill.", spec.Name, spec.Requires)
		case !strings.EqualFold(rank, v.rules.SpecialtyRank):
			rep.Warnf(sheet.CategorySpecialties, "%q usually needs %s %s (has %s).",
				spec.Name, v.rules.SpecialtyRank, spec.Requires, rank)
		}
	}
}

// specialtiesToCheck returns the override alone when one was selected,
// otherwise every parsed match followed by the active specialty, deduplicated.
func specialtiesToCheck(rec *sheet.Record) []string {
	if rec.Override != "" {
		return sheet.AppendUnique(nil, rec.Specialties...)
	}
	return sheet.AppendUnique(sheet.AppendUnique(nil, rec.ParsedSpecialties...), rec.Specialties...)
}

// checkActiveSpecialty reports a failed condition as a warning, or the
// specialty's reminder when nothing failed.
func (v *Validator) checkActiveSpecialty(rec *sheet.Record, rep *sheet.Report) {
	for _, name := range rec.Specialties {
		spec, ok := v.rules.Specialty(name)
		if !ok {
			continue
		}
		conflict := false
		for _, c := range spec.Effects.Conditionals() {
			if c.Conflict != "" && !v.rules.Holds(c.When, rec) {
				rep.Warnf(sheet.CategorySpecialties, "%s: %s", spec.Name, c.Conflict)
				conflict = true
			}
		}
		if conflict {
			continue
		}
		for _, text := range spec.Effects.Reminders() {
			rep.Remindf(sheet.CategorySpecialties, "%s: %s", spec.Name, text)
		}
	}
}

func (v *Validator) checkCompanions(rec *sheet.Record, rep *sheet.Report) {
	for i, c := range rec.Companions {
		if c.Name == "" || v.rules.IsPlaceholder(c.Name) {
			rep.Errorf(sheet.CategoryCompanions, "Companion %d missing name.", i+1)
		}
		if c.Type == "" {
			rep.Errorf(sheet.CategoryCompanions, "Companion %d %q missing type.", i+1, c.Name)
		}
	}
	if limit := v.rules.Caps.Companions; limit > 0 && len(rec.Companions) > limit {
		rep.Errorf(sheet.CategoryCompanions, "Too many companions (max %d).", limit)
	}
}

func (v *Validator) checkMutations(rec *sheet.Record, rep *sheet.Report) {
	typed := 0
	for i, m := range rec.Mutations {
		if m.Name == "" || v.rules.IsPlaceholder(m.Name) {
			rep.Errorf(sheet.CategoryMutations, "Mutation %d missing name.", i+1)
		}
		if m.Type == "" {
			rep.Errorf(sheet.CategoryMutations, "Mutation %d %q missing type.", i+1, m.Name)
			continue
		}
		typed++
	}
	if limit := v.rules.Caps.Mutations; limit > 0 && typed > limit {
		rep.Errorf(sheet.CategoryMutations, "%d mutations exceeds cap of %d.", typed, limit)
	}
}

func (v *Validator) checkAccessories(rec *sheet.Record, rep *sheet.Report) {
	offensive := len(rec.AccessoriesIn(sheet.SlotOffensive))
	defensive := len(rec.AccessoriesIn(sheet.SlotDefensive))
	rare := len(rec.AccessoriesIn(sheet.SlotRare))

	if offensive > 1 {
		rep.Errorf(sheet.CategoryAccessories, "Multiple offensive accessories (max 1).")
	}
	if defensive > 1 {
		rep.Errorf(sheet.CategoryAccessories, "Multiple defensive accessories (max 1).")
	}
	if rare > 1 {
		rep.Errorf(sheet.CategoryAccessories, "%s listed %d times (max 1).", v.rules.Accessories.Rare.Label, rare)
	}
	if limit := v.rules.Caps.Accessories; limit > 0 && offensive+defensive+rare > limit {
		rep.Errorf(sheet.CategoryAccessories, "Too many accessories (max %d).", limit)
	}

	off := rec.AccessoryName(sheet.SlotOffensive)
	if off != "" && strings.EqualFold(off, rec.AccessoryName(sheet.SlotDefensive)) {
		rep.Errorf(sheet.CategoryAccessories, "Same accessory %q in both offensive and defensive slots.", off)
	}
}

// checkItems enforces the per-form item cap. Under the cap, special items
// raise their reminder and conditional items whose condition fails raise
// their conflict as an error.
func (v *Validator) checkItems(rec *sheet.Record, rep *sheet.Report) {
	if limit := v.rules.Caps.Items[rec.Form]; limit > 0 && len(rec.Items) > limit {
		rep.Errorf(sheet.CategoryItems, "Too many items (max %d).", limit)
		return
	}
	for _, label := range rec.Items {
		item, ok := v.rules.Item(rec.Form, label)
		if !ok {
			continue
		}
		for _, text := range item.Effects.Reminders() {
			rep.Remindf(sheet.CategoryItems, "%s: %s", item.Label, text)
		}
		for _, c := range item.Effects.Conditionals() {
			if c.Conflict != "" && !v.rules.Holds(c.When, rec) {
				rep.Errorf(sheet.CategoryItems, "%s: %s", item.Label, c.Conflict)
			}
		}
	}
}
