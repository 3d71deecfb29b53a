package parser

import (
	"regexp"
	"strings"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
)

var (
	vsLine      = regexp.MustCompile(`(?i)^\*?\s*(.+?)\s+vs\s+(.+?)\s+for\s+(.+)$`)
	unfilledRnd = regexp.MustCompile(`(?i)^\s*x\s*/\s*x\s*$`)
	fleeNoise   = regexp.MustCompile(`(?i)\s*-?\s*(flee|attempt|round\s*\d+.*)`)
	raceNoise   = regexp.MustCompile(`(?i)\s*-?\s*(race|round\s*\d+.*|vs\s.*)`)
)

// Result is the outcome of parsing one sheet
type Result struct {
	Record *sheet.Record
	Report *sheet.Report
	// Duplicate is set when two sheets were pasted together. Parsing stops
	// before any field is read and Record is nil.
	Duplicate bool
}

// Parse reads a sheet for the form and merges the caller's selection with
// what the text names. The selection's specialty always wins over the text.
func (p *Parser) Parse(form sheet.Form, raw string, sel sheet.Selection) *Result {
	rep := &sheet.Report{}
	raw = strings.TrimSpace(raw)
	if p.DetectDuplicateForm(raw, rep) {
		return &Result{Report: rep, Duplicate: true}
	}

	p.DetectWrongForm(form, raw, rep)

	rec := sheet.NewRecord(form)
	lines := p.PreProcess(raw)
	p.parseIdentity(rec, lines)

	var text Matches
	var textAccessories []string
	for _, line := range lines {
		key, val, ok := splitLine(line)
		if !ok {
			continue
		}
		if strings.HasPrefix(key, "round") {
			if form == sheet.FormFight {
				p.parseRound(rec, val)
			}
			continue
		}
		if val == "" || p.rules.IsPlaceholder(val) {
			continue
		}
		p.parseField(rec, rep, key, val, &text, &textAccessories)
	}

	if form == sheet.FormFight && !rec.RoundFound {
		rec.Unfilled = append(rec.Unfilled, "Round")
	}

	p.applySelection(rec, rep, sel, text, textAccessories)
	return &Result{Record: rec, Report: rep}
}

func (p *Parser) parseIdentity(rec *sheet.Record, lines []string) {
	if len(lines) == 0 {
		return
	}
	first := lines[0]

	if rec.Form == sheet.FormFight {
		m := vsLine.FindStringSubmatch(first)
		if m == nil {
			return
		}
		rec.HasIdentity = true
		rec.Name = strings.TrimSpace(m[1])
		rec.Opponent = strings.TrimSpace(m[2])
		rec.Context = strings.TrimSpace(m[3])
		if p.rules.IsPlaceholder(rec.Opponent) {
			rec.Unfilled = append(rec.Unfilled, "Opponent")
		}
		if p.rules.IsPlaceholder(rec.Context) {
			rec.Unfilled = append(rec.Unfilled, "Fight type")
		}
		return
	}

	if strings.Contains(first, ":") {
		return
	}
	if _, _, isField := splitLine(first); isField {
		return
	}
	noise := fleeNoise
	if rec.Form == sheet.FormRace {
		noise = raceNoise
	}
	rec.Name = strings.TrimSpace(noise.ReplaceAllString(first, ""))
	rec.HasIdentity = rec.Name != ""
}

// parseRound records the round marker. A placeholder round counts as absent;
// an empty or "x/x" round counts as found but unfilled.
func (p *Parser) parseRound(rec *sheet.Record, val string) {
	if p.rules.IsPlaceholder(val) {
		return
	}
	rec.RoundFound = true
	rec.Round = val
	if val == "" || unfilledRnd.MatchString(val) {
		rec.Unfilled = append(rec.Unfilled, "Round")
	}
}

func (p *Parser) parseField(rec *sheet.Record, rep *sheet.Report, key, val string, text *Matches, accessories *[]string) {
	form := rec.Form
	fight := form == sheet.FormFight

	switch {
	case key == "age" && form != sheet.FormFlee:
		rec.AgeRaw = val
		rec.Age = p.ParseAge(val)
		if rec.Age == "" {
			rep.Errorf(sheet.CategoryAge, "Age %q not recognized.", val)
		}

	case key == "size":
		rec.SizeRaw = val
		rec.Size = p.ResolveSize(form, val, rep)
		if rec.Size == "" {
			rep.Errorf(sheet.CategorySize, "Size %q not recognized.", val)
		}

	case key == "build":
		rec.BuildRaw = val
		rec.Build = p.ResolveBuild(form, val, rep)
		if rec.Build == "" {
			rep.Errorf(sheet.CategoryBuild, "Build %q not recognized.", val)
		}

	case key == "offensive battle accessory" && fight:
		rec.Accessories = append(rec.Accessories, p.battleAccessory(sheet.SlotOffensive, val))

	case key == "defensive battle accessory" && fight:
		rec.Accessories = append(rec.Accessories, p.battleAccessory(sheet.SlotDefensive, val))

	case key == "racing accessory" && !fight:
		*accessories = sheet.AppendUnique(*accessories, p.MatchAccessories(val)...)

	case strings.HasPrefix(key, "companion") && fight:
		rec.Companions = append(rec.Companions, p.ParseCompanion(val, rep))

	case strings.HasPrefix(key, "mutation") && fight:
		rec.Mutations = append(rec.Mutations, p.ParseMutation(val, rep))

	case key == "skills" || key == "skill":
		rec.Skills = p.ParseSkills(val, rep)

	case key == "specialty" || key == "specialties":
		rec.ParsedSpecialties = p.ParseSpecialties(form, val, rep)

	case key == "item" || key == "items":
		m := p.MatchItems(form, val)
		if m.Empty() {
			rep.Warnf(sheet.CategoryItems, "Item %q not recognized.", val)
			return
		}
		text.Items = sheet.AppendUnique(text.Items, m.Items...)
		text.Buffs = sheet.AppendUnique(text.Buffs, m.Buffs...)

	case (key == "debuff" || key == "debuffs" || key == "injury") && fight:
		rec.Debuff = sheet.Affliction{Severity: p.ParseSeverity(val), Raw: val}
		if !rec.Debuff.Present() {
			rep.Errorf(sheet.CategoryForm, "Debuff %q missing severity.", val)
		}

	case key == "disability" && fight:
		rec.Disability = sheet.Affliction{Severity: p.ParseSeverity(val), Raw: val}
		if !rec.Disability.Present() {
			rep.Errorf(sheet.CategoryForm, "Disability %q missing severity.", val)
		}
	}
}

func (p *Parser) battleAccessory(slot sheet.AccessorySlot, val string) sheet.Accessory {
	rare := p.rules.Accessories.Rare
	if rare.Pattern != nil && rare.Pattern.MatchString(val) {
		return sheet.Accessory{Slot: sheet.SlotRare, Name: rare.Label}
	}
	return sheet.Accessory{Slot: slot, Name: val}
}

// applySelection merges caller selections with text matches, caller first,
// and resolves the active specialty.
func (p *Parser) applySelection(rec *sheet.Record, rep *sheet.Report, sel sheet.Selection, text Matches, textAccessories []string) {
	form := rec.Form

	for _, label := range sel.Items {
		if it, ok := p.rules.Item(form, label); ok {
			rec.Items = sheet.AppendUnique(rec.Items, it.Label)
			continue
		}
		rep.Warnf(sheet.CategoryItems, "Item %q not recognized.", label)
	}
	rec.Items = sheet.AppendUnique(rec.Items, text.Items...)

	if form == sheet.FormFight {
		for _, label := range sel.Buffs {
			if b, ok := p.rules.Buff(label); ok {
				rec.Buffs = sheet.AppendUnique(rec.Buffs, b.Label)
				continue
			}
			rep.Warnf(sheet.CategoryItems, "Buff %q not recognized.", label)
		}
		rec.Buffs = sheet.AppendUnique(rec.Buffs, text.Buffs...)
	} else {
		for _, label := range sel.Accessories {
			if a, ok := p.rules.RacingAccessory(label); ok {
				rec.Accessories = appendRacing(rec.Accessories, a.Label)
				continue
			}
			rep.Warnf(sheet.CategoryAccessories, "Accessory %q not recognized.", label)
		}
		for _, label := range textAccessories {
			rec.Accessories = appendRacing(rec.Accessories, label)
		}
	}

	for k, v := range sel.Notes {
		if v = strings.TrimSpace(v); v != "" {
			rec.Notes[k] = v
		}
	}

	if sel.Specialty != "" {
		spec, ok := p.rules.Specialty(sel.Specialty)
		switch {
		case !ok:
			rep.Errorf(sheet.CategorySpecialties, "Specialty %q not recognized.", sel.Specialty)
		case !spec.AppliesTo(form):
			rep.Infof(sheet.CategorySpecialties, "Specialty %q has no %s bonuses, ignored.", spec.Name, form)
		default:
			rec.Override = spec.Name
			rec.Specialties = []string{spec.Name}
		}
		return
	}
	if len(rec.ParsedSpecialties) == 1 {
		rec.Specialties = []string{rec.ParsedSpecialties[0]}
	}
}

func appendRacing(list []sheet.Accessory, label string) []sheet.Accessory {
	for _, a := range list {
		if a.Slot == sheet.SlotRacing && strings.EqualFold(a.Name, label) {
			return list
		}
	}
	return append(list, sheet.Accessory{Slot: sheet.SlotRacing, Name: label})
}
