package parser

import (
	"strings"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
)

// Matches holds the item and buff labels found in a piece of text
type Matches struct {
	Items []string
	Buffs []string
}

// Empty reports whether nothing matched
func (m Matches) Empty() bool {
	return len(m.Items) == 0 && len(m.Buffs) == 0
}

// MatchItems finds item labels (and for fight, buff labels) contained in the
// text. Alias phrases are consulted only when no label matched.
func (p *Parser) MatchItems(form sheet.Form, text string) Matches {
	lower := strings.ToLower(text)
	items := p.rules.ItemLabels(form)
	var buffs []string
	if form == sheet.FormFight {
		buffs = p.rules.BuffLabels()
	}

	var m Matches
	for _, label := range buffs {
		if strings.Contains(lower, strings.ToLower(label)) {
			m.Buffs = sheet.AppendUnique(m.Buffs, label)
		}
	}
	for _, label := range items {
		if strings.Contains(lower, strings.ToLower(label)) {
			m.Items = sheet.AppendUnique(m.Items, label)
		}
	}
	if !m.Empty() {
		return m
	}

	for _, a := range p.rules.ItemAliases {
		if !strings.Contains(lower, a.Phrase) {
			continue
		}
		switch {
		case containsFold(buffs, a.Target):
			m.Buffs = sheet.AppendUnique(m.Buffs, canonical(buffs, a.Target))
		case containsFold(items, a.Target):
			m.Items = sheet.AppendUnique(m.Items, canonical(items, a.Target))
		}
	}
	return m
}

// MatchAccessories finds racing accessory labels contained in the text
func (p *Parser) MatchAccessories(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, a := range p.rules.Accessories.Racing {
		if strings.Contains(lower, strings.ToLower(a.Label)) {
			out = sheet.AppendUnique(out, a.Label)
		}
	}
	return out
}

func containsFold(list []string, v string) bool {
	return canonical(list, v) != ""
}

func canonical(list []string, v string) string {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return s
		}
	}
	return ""
}
