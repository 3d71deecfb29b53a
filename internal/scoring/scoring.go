// Package scoring applies rule modifiers to a parsed record and produces an
// ordered ledger of per-source axis deltas.
//
// Sources are applied in a fixed order: severity reductions, age, size,
// build, accessories, companions, mutations, skills, the active specialty,
// debuff and disability, items, then buffs. Movement forms use the shorter
// sequence of age, size, build, racing accessories, the movement skill, the
// specialty and items.
package scoring

import (
	"fmt"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/rules"
)

// Engine scores records against one rule table
type Engine struct {
	rules *rules.Rules
}

// New creates a scoring engine
func New(r *rules.Rules) *Engine {
	return &Engine{rules: r}
}

// Score runs one pass over a copy of the record. The input is not modified.
func (e *Engine) Score(rec *sheet.Record) *Ledger {
	eff := rec.Clone()
	l := newLedger(eff)
	l.Items = e.activeItems(eff)

	if eff.Form.IsMovement() {
		e.scoreMovement(l)
		return l
	}
	e.scoreFight(l)
	return l
}

func (e *Engine) scoreFight(l *Ledger) {
	rec := l.Record
	reduced := e.applyReductions(l)

	e.addModifier(l, "Age ("+rec.Age+")", rec.Age, e.rules.Age)
	e.addTable(l)
	e.addBattleAccessories(l)
	e.addCompanions(l)
	e.addMutations(l)

	for _, s := range rec.Skills {
		if !s.Ranked() {
			continue
		}
		skill, ok := e.rules.Skill(s.Name)
		if !ok {
			continue
		}
		v, ok := e.rules.SkillValue(s.Name, s.Rank)
		if !ok {
			continue
		}
		l.add(s.Rank+" "+skill.Name, skill.Axis, v)
	}

	e.addSpecialties(l)

	if sev := rec.Debuff.Severity; sev != "" {
		e.addModifier(l, afflictionLabel("Debuff", sev, reduced[sheet.FieldDebuff]), sev, e.rules.Debuff)
	}
	if sev := rec.Disability.Severity; sev != "" {
		e.addModifier(l, afflictionLabel("Disability", sev, reduced[sheet.FieldDisability]), sev, e.rules.Disability)
	}

	e.addItems(l)

	for _, label := range rec.Buffs {
		if b, ok := e.rules.Buff(label); ok {
			l.add(b.Label, sheet.AxisTotal, b.Value)
		}
	}
}

func (e *Engine) scoreMovement(l *Ledger) {
	rec := l.Record
	if rec.Form == sheet.FormRace {
		e.addModifier(l, "Age ("+rec.Age+")", rec.Age, e.rules.Age)
	}
	e.addTable(l)

	for _, a := range rec.AccessoriesIn(sheet.SlotRacing) {
		if acc, ok := e.rules.RacingAccessory(a.Name); ok {
			l.add(acc.Label, acc.Axis, acc.Value)
		}
	}

	if rank, ok := rec.Skills.Rank(e.rules.MovementSkill); ok && rank != "" {
		if v, ok := e.rules.SkillValue(e.rules.MovementSkill, rank); ok {
			l.add(fmt.Sprintf("%s (%s)", e.rules.MovementSkill, rank), sheet.AxisTotal, v)
		}
	}

	e.addSpecialties(l)
	e.addItems(l)
}

// activeItems returns the checked items that fit under the form's cap
func (e *Engine) activeItems(rec *sheet.Record) []string {
	items := rec.Items
	if limit := e.rules.Caps.Items[rec.Form]; limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return append([]string(nil), items...)
}

// applyReductions steps debuff and disability severities down before any
// lookup. The first reducing item for a field wins.
func (e *Engine) applyReductions(l *Ledger) map[string]bool {
	rec := l.Record
	reduced := map[string]bool{}
	seen := map[string]bool{}
	for _, it := range e.stattedItems(l) {
		for _, red := range it.Effects.Reductions() {
			if seen[red.Field] {
				continue
			}
			seen[red.Field] = true

			target := &rec.Debuff
			if red.Field == sheet.FieldDisability {
				target = &rec.Disability
			}
			next, ok := red.Step(target.Severity)
			if !target.Present() || !ok {
				continue
			}
			target.Severity = next
			target.Raw = ""
			if next != "" {
				target.Raw = "(reduced) " + next
			}
			reduced[red.Field] = true
		}
	}
	return reduced
}

func afflictionLabel(kind, sev string, reduced bool) string {
	if reduced {
		return fmt.Sprintf("%s (%s, reduced)", kind, sev)
	}
	return fmt.Sprintf("%s (%s)", kind, sev)
}

func (e *Engine) addModifier(l *Ledger, source, name string, lookup func(string) (rules.Modifier, bool)) {
	if name == "" {
		return
	}
	m, ok := lookup(name)
	if !ok {
		return
	}
	for _, mod := range m.Mods {
		l.add(source, mod.Axis, mod.Value)
	}
}

func (e *Engine) addTable(l *Ledger) {
	rec := l.Record
	e.addModifier(l, "Size", rec.Size, func(n string) (rules.Modifier, bool) { return e.rules.Size(rec.Form, n) })
	e.addModifier(l, "Build", rec.Build, func(n string) (rules.Modifier, bool) { return e.rules.Build(rec.Form, n) })
}

// addBattleAccessories grants each slot's bonus once, however many times it
// is listed, and stops at the accessory slot cap.
func (e *Engine) addBattleAccessories(l *Ledger) {
	rec := l.Record
	acc := e.rules.Accessories
	slots := []struct {
		slot  sheet.AccessorySlot
		label string
		bonus rules.Bonus
	}{
		{sheet.SlotOffensive, "Off. Accessory", acc.Offensive},
		{sheet.SlotDefensive, "Def. Accessory", acc.Defensive},
		{sheet.SlotRare, acc.Rare.Label, acc.Rare.Bonus},
	}
	used := 0
	for _, s := range slots {
		if len(rec.AccessoriesIn(s.slot)) == 0 {
			continue
		}
		if limit := e.rules.Caps.Accessories; limit > 0 && used >= limit {
			return
		}
		used++
		l.add(s.label, s.bonus.Axis, s.bonus.Value)
	}
}

func (e *Engine) addCompanions(l *Ledger) {
	comps := e.rules.Companions
	for i, c := range l.Record.Companions {
		if limit := e.rules.Caps.Companions; limit > 0 && i >= limit {
			return
		}
		axis, ok := e.rules.CompanionAxis(c.Type)
		if !ok {
			continue
		}
		source := fmt.Sprintf("Companion %d", i+1)
		value := comps.Value
		if c.Boosted {
			source += " (boosted)"
			value *= comps.BoostMultiplier
		}
		l.add(source, axis, value)
	}
}

// addMutations grants the first bonus to the first mutation of each type and
// the extra bonus to every later one, counting typed mutations up to the cap.
func (e *Engine) addMutations(l *Ledger) {
	muts := e.rules.Mutations
	perType := map[string]int{}
	counted := 0
	for i, m := range l.Record.Mutations {
		if m.Type == "" {
			continue
		}
		if limit := e.rules.Caps.Mutations; limit > 0 && counted >= limit {
			return
		}
		axis, ok := e.rules.MutationAxis(m.Type)
		if !ok {
			continue
		}
		perType[m.Type]++
		value := muts.Extra
		if perType[m.Type] == 1 {
			value = muts.First
		}
		l.add(fmt.Sprintf("Mutation %d", i+1), axis, value)
		counted++
	}
}

// addSpecialties adds the flat modifiers of every active specialty, then the
// conditional effects whose condition holds.
func (e *Engine) addSpecialties(l *Ledger) {
	rec := l.Record
	var active []*rules.Specialty
	for _, name := range rec.Specialties {
		if s, ok := e.rules.Specialty(name); ok && s.AppliesTo(rec.Form) {
			active = append(active, s)
		}
	}
	for _, s := range active {
		for _, mod := range s.Effects.Mods() {
			l.add(s.Name, mod.Axis, mod.Value)
		}
	}
	for _, s := range active {
		for _, c := range s.Effects.Conditionals() {
			if e.rules.Holds(c.When, rec) {
				l.add(s.Name, c.Axis, c.Value)
			}
		}
	}
}

// addItems adds conditional stat items first, then flat stat items
func (e *Engine) addItems(l *Ledger) {
	items := e.stattedItems(l)
	for _, it := range items {
		for _, c := range it.Effects.Conditionals() {
			if e.rules.Holds(c.When, l.Record) {
				l.add(it.Label, c.Axis, c.Value)
			}
		}
	}
	for _, it := range items {
		for _, mod := range it.Effects.Mods() {
			l.add(it.Label, mod.Axis, mod.Value)
		}
	}
}

func (e *Engine) stattedItems(l *Ledger) []*rules.Item {
	var out []*rules.Item
	for _, label := range l.Items {
		if it, ok := e.rules.Item(l.Form, label); ok && it.Type == rules.ItemStat {
			out = append(out, it)
		}
	}
	return out
}
