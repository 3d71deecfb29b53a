package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/pkg/fuzzy"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/rules"
)

const typeThreshold = 2

var (
	ageUnder6  = regexp.MustCompile(`(?i)under\s*6`)
	ageUnder1  = regexp.MustCompile(`(?i)under\s*1(?:[^0-9]|$)`)
	ageSeasons = regexp.MustCompile(`(?i)(\d+)\s*season`)
	ageYears   = regexp.MustCompile(`(?i)\d+\s*year`)

	boosted       = regexp.MustCompile(`(?i)\bboosted\b`)
	nameSeparator = regexp.MustCompile(`\s*[-–,()]\s*`)
	mutationSplit = regexp.MustCompile(`[\s\-–:,()]+`)
	conjunction   = regexp.MustCompile(`(?i)\band\b`)
	listSplit     = regexp.MustCompile(`[&,]+`)
)

// ParseAge resolves an age phrase to a bracket name, or "" when unresolved.
// Keywords win over numbers: "under 6" is the youngest bracket and "under 1"
// the middle one. Seasons map 1 to youngest, 2-3 to middle, more to oldest.
func (p *Parser) ParseAge(val string) string {
	ages := p.rules.Ages
	if len(ages) < 3 {
		return ""
	}
	youngest, middle, oldest := ages[0].Name, ages[1].Name, ages[len(ages)-1].Name

	switch {
	case ageUnder6.MatchString(val):
		return youngest
	case ageUnder1.MatchString(val):
		return middle
	}
	if m := ageSeasons.FindStringSubmatch(val); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return ""
		}
		switch {
		case n <= 1:
			return youngest
		case n <= 3:
			return middle
		}
		return oldest
	}
	if ageYears.MatchString(val) {
		return oldest
	}
	return ""
}

// ResolveSize resolves a size for the form: exact alias, then fuzzy match on
// size names, then fuzzy match on alias phrases. A typo note is recorded when
// a fuzzy match changed the text.
func (p *Parser) ResolveSize(form sheet.Form, val string, rep *sheet.Report) string {
	return p.resolveCategory("Size", val, rules.Names(p.rules.Table(form).Sizes), p.rules.SizeAliases, rep)
}

// ResolveBuild resolves a build the same way as ResolveSize
func (p *Parser) ResolveBuild(form sheet.Form, val string, rep *sheet.Report) string {
	return p.resolveCategory("Build", val, rules.Names(p.rules.Table(form).Builds), p.rules.BuildAliases, rep)
}

func (p *Parser) resolveCategory(label, val string, names []string, aliases []fuzzy.Alias, rep *sheet.Report) string {
	if target, ok := fuzzy.Lookup(val, aliases); ok {
		return target
	}
	matched := fuzzy.Match(val, names, fuzzy.DefaultThreshold)
	if matched == "" {
		matched = fuzzy.MatchAlias(val, aliases, fuzzy.DefaultThreshold)
	}
	if matched != "" && !strings.EqualFold(matched, strings.TrimSpace(val)) {
		rep.Typof("%s %q → %q", label, val, matched)
	}
	return matched
}

// ParseCompanion parses "NAME TYPE [boosted]" in any word order
func (p *Parser) ParseCompanion(val string, rep *sheet.Report) sheet.Companion {
	var comp sheet.Companion
	remaining := val

	if loc := boosted.FindStringIndex(remaining); loc != nil {
		comp.Boosted = true
		remaining = remaining[:loc[0]] + remaining[loc[1]:]
	}

	for _, t := range p.rules.CompanionTypes() {
		if loc := p.companionWord[t].FindStringIndex(remaining); loc != nil {
			comp.Type = t
			remaining = remaining[:loc[0]] + remaining[loc[1]:]
			break
		}
		if loc := p.companionTail[t].FindStringIndex(remaining); loc != nil {
			comp.Type = t
			remaining = remaining[:loc[0]]
			break
		}
	}

	if comp.Type == "" {
		words := strings.Fields(remaining)
		for i, w := range words {
			clean := lettersOnly(w)
			if matched := fuzzy.Match(clean, p.rules.CompanionTypes(), typeThreshold); matched != "" {
				rep.Typof("Companion type %q → %q", clean, matched)
				comp.Type = strings.ToLower(matched)
				remaining = strings.Join(append(words[:i:i], words[i+1:]...), " ")
				break
			}
		}
	}

	comp.Name = collapse(nameSeparator.ReplaceAllString(remaining, " "))
	return comp
}

// ParseMutation parses "NAME TYPE", looking for the type at the end
func (p *Parser) ParseMutation(val string, rep *sheet.Report) sheet.Mutation {
	for _, t := range p.rules.MutationTypes() {
		re := p.mutationTail[t]
		if !re.MatchString(val) {
			continue
		}
		if name := strings.TrimSpace(re.ReplaceAllString(val, "")); name != "" {
			return sheet.Mutation{Name: name, Type: strings.ToLower(t)}
		}
	}

	var words []string
	for _, w := range mutationSplit.Split(val, -1) {
		if w != "" {
			words = append(words, w)
		}
	}
	for i := len(words) - 1; i >= 0; i-- {
		clean := lettersOnly(words[i])
		if matched := fuzzy.Match(clean, p.rules.MutationTypes(), typeThreshold); matched != "" {
			rep.Typof("Mutation type %q → %q", words[i], matched)
			rest := append(words[:i:i], words[i+1:]...)
			return sheet.Mutation{Name: strings.TrimSpace(strings.Join(rest, " ")), Type: strings.ToLower(matched)}
		}
	}

	return sheet.Mutation{Name: strings.TrimSpace(val)}
}

// ParseSkills parses "LEVEL SKILL & LEVEL SKILL". Skills named without a rank
// are kept with an empty rank so later stages can block on them.
func (p *Parser) ParseSkills(val string, rep *sheet.Report) sheet.SkillSet {
	var set sheet.SkillSet
	normalized := val
	if conjunction.MatchString(val) {
		rep.Warnf(sheet.CategorySkills, `Skills uses "and" instead of "&".`)
		normalized = conjunction.ReplaceAllString(val, "&")
	}

	title := cases.Title(language.English)
	for _, part := range listSplit.Split(normalized, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		m := p.rank.FindStringSubmatch(part)
		if m == nil {
			skill := p.matchSkill(part)
			if skill == "" {
				rep.Errorf(sheet.CategorySkills, "Skill %q not recognized.", part)
				continue
			}
			rep.Errorf(sheet.CategorySkills, "%q is missing a skill rank.", part)
			set.Set(skill, "")
			continue
		}

		level := title.String(m[1])
		rawSkill := strings.TrimSpace(m[2])
		skill := p.matchSkill(rawSkill)
		if skill == "" {
			rep.Errorf(sheet.CategorySkills, "Skill %q not recognized.", rawSkill)
			continue
		}
		if !p.rules.SkillDefines(skill, level) {
			rep.Errorf(sheet.CategorySkills, "%s doesn't have %q rank.", skill, level)
			continue
		}
		if !strings.EqualFold(skill, rawSkill) {
			if _, aliased := fuzzy.Lookup(rawSkill, p.rules.SkillAliases); !aliased {
				rep.Typof("Skill %q → %q", rawSkill, skill)
			}
		}
		set.Set(skill, level)
	}
	return set
}

// matchSkill resolves a skill by exact name, then alias, then the nearest of
// skill names and alias phrases together.
func (p *Parser) matchSkill(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	for _, s := range p.rules.SkillNames() {
		if strings.EqualFold(s, input) {
			return s
		}
	}
	if target, ok := fuzzy.Lookup(input, p.rules.SkillAliases); ok {
		return target
	}

	lower := strings.ToLower(input)
	best, bestDist := "", -1
	for _, s := range p.rules.SkillNames() {
		if d := fuzzy.Distance(lower, strings.ToLower(s)); bestDist < 0 || d < bestDist {
			best, bestDist = s, d
		}
	}
	for _, a := range p.rules.SkillAliases {
		if d := fuzzy.Distance(lower, a.Phrase); bestDist < 0 || d < bestDist {
			best, bestDist = a.Target, d
		}
	}
	if bestDist < 0 || bestDist > fuzzy.DefaultThreshold {
		return ""
	}
	return best
}

// ParseSpecialties resolves a specialty list for the form and returns the
// matches that apply to it. More than one match is an error whether or not
// the matches apply.
func (p *Parser) ParseSpecialties(form sheet.Form, val string, rep *sheet.Report) []string {
	var usable, ignored []string
	for _, part := range listSplit.Split(conjunction.ReplaceAllString(val, "&"), -1) {
		part = strings.TrimSpace(part)
		if part == "" || p.rules.IsPlaceholder(part) {
			continue
		}
		matched := fuzzy.Match(part, p.rules.SpecialtyNames(), fuzzy.DefaultThreshold)
		if matched == "" {
			rep.Errorf(sheet.CategorySpecialties, "Specialty %q not recognized.", part)
			continue
		}
		if !strings.EqualFold(matched, part) {
			rep.Typof("Specialty %q → %q", part, matched)
		}
		if spec, _ := p.rules.Specialty(matched); spec.AppliesTo(form) {
			usable = append(usable, matched)
		} else {
			ignored = append(ignored, matched)
		}
	}

	total := len(usable) + len(ignored)
	switch {
	case total > 1 && len(ignored) == total:
		rep.Errorf(sheet.CategorySpecialties, "%d specialties found (%s), max 1. None have %s bonuses, all ignored.",
			total, strings.Join(append(usable, ignored...), ", "), form)
	case total > 1:
		rep.Errorf(sheet.CategorySpecialties, "%d specialties found (%s), max 1.",
			total, strings.Join(append(append([]string(nil), usable...), ignored...), ", "))
	case len(ignored) == 1:
		rep.Infof(sheet.CategorySpecialties, "Specialty %q has no %s bonuses, ignored.", ignored[0], form)
	}
	return usable
}

// ParseSeverity returns the first configured severity keyword found in val
func (p *Parser) ParseSeverity(val string) string {
	lower := strings.ToLower(val)
	for _, sev := range p.rules.Severities {
		if strings.Contains(lower, strings.ToLower(sev)) {
			return sev
		}
	}
	return ""
}

func lettersOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII && unicode.IsLetter(r) {
			return r
		}
		return -1
	}, s)
}

func collapse(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}
