package parser

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
)

// SpecialtyGroup is a block of specialty choices that share a required skill
type SpecialtyGroup struct {
	// Label is "RANK SKILL" with a note when the rank is below the
	// requirement; empty when skills are unknown
	Label       string
	Disabled    bool
	Specialties []string
}

// ScanResult is what a sheet would auto-select before it is scored
type ScanResult struct {
	Items       []string
	Buffs       []string
	Accessories []string
	Skills      sheet.SkillSet
	// SkillSummary reads like "Master Hunter, Novice Fighter"
	SkillSummary string
	// Specialty is set when exactly one applicable specialty was named
	Specialty     string
	SpecialtyNote string
	Options       []SpecialtyGroup
}

// Scan reads the selection-relevant fields without validating or scoring
func (p *Parser) Scan(form sheet.Form, raw string) *ScanResult {
	res := &ScanResult{}
	discard := &sheet.Report{}

	for _, line := range p.PreProcess(strings.TrimSpace(raw)) {
		key, val, ok := splitLine(line)
		if !ok || val == "" || p.rules.IsPlaceholder(val) {
			continue
		}
		switch {
		case key == "item" || key == "items":
			m := p.MatchItems(form, val)
			res.Items = sheet.AppendUnique(res.Items, m.Items...)
			res.Buffs = sheet.AppendUnique(res.Buffs, m.Buffs...)
		case key == "racing accessory" && form.IsMovement():
			res.Accessories = sheet.AppendUnique(res.Accessories, p.MatchAccessories(val)...)
		case key == "skills" || key == "skill":
			if skills := p.ParseSkills(val, discard); len(skills) > 0 {
				res.Skills = skills
				res.SkillSummary = p.SkillSummary(skills, ", ")
			}
		case key == "specialty" || key == "specialties":
			usable := p.ParseSpecialties(form, val, discard)
			res.Specialty, res.SpecialtyNote = "", ""
			switch {
			case len(usable) == 1:
				res.Specialty = usable[0]
			case len(usable) > 1:
				res.SpecialtyNote = fmt.Sprintf("%d specialties found. Edit the field or manually select one.", len(usable))
			}
		}
	}

	res.Options = p.SpecialtyOptions(form, res.Skills)
	return res
}

// SkillSummary formats skills with their display names, e.g. "Master Hunter"
func (p *Parser) SkillSummary(skills sheet.SkillSet, sep string) string {
	return p.rules.FormatSkills(skills, sep)
}

// SpecialtyOptions lists the specialties selectable for the form. With known
// skills the list is grouped by required skill and a group is disabled unless
// the skill is at the required rank.
func (p *Parser) SpecialtyOptions(form sheet.Form, skills sheet.SkillSet) []SpecialtyGroup {
	if len(skills) == 0 {
		all := SpecialtyGroup{}
		for _, s := range p.rules.Specialties {
			if s.AppliesTo(form) {
				all.Specialties = append(all.Specialties, s.Name)
			}
		}
		return []SpecialtyGroup{all}
	}

	var groups []SpecialtyGroup
	index := map[string]int{}
	for _, s := range p.rules.Specialties {
		if !s.AppliesTo(form) || s.Requires == "" {
			continue
		}
		rank, ok := skills.Rank(s.Requires)
		if !ok || rank == "" {
			continue
		}
		i, seen := index[s.Requires]
		if !seen {
			g := SpecialtyGroup{Label: rank + " " + s.Requires}
			if !strings.EqualFold(rank, p.rules.SpecialtyRank) {
				g.Label += fmt.Sprintf(" (requires %s)", p.rules.SpecialtyRank)
				g.Disabled = true
			}
			i = len(groups)
			index[s.Requires] = i
			groups = append(groups, g)
		}
		groups[i].Specialties = append(groups[i].Specialties, s.Name)
	}
	return groups
}
