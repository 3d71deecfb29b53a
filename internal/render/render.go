// Package render turns a scored record into the text a player pastes back:
// the field summary, the roll command, the breakdown table and the grouped
// alert lists.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/rules"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/scoring"
)

// Renderer formats output for one rule table
type Renderer struct {
	rules *rules.Rules
}

// New creates a renderer
func New(r *rules.Rules) *Renderer {
	return &Renderer{rules: r}
}

// Summary restates the scored record one labeled line per populated field,
// followed by a blank line and the axis totals
func (r *Renderer) Summary(l *scoring.Ledger) string {
	var lines []string
	if l.Form.IsMovement() {
		lines = r.movementLines(l)
	} else {
		lines = r.fightLines(l)
	}

	lines = append(lines, "")
	for _, axis := range l.Form.Axes() {
		lines = append(lines, fmt.Sprintf("%s: %s", axis.Label(), Percent(l.Total(axis))))
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) fightLines(l *scoring.Ledger) []string {
	rec := l.Record
	var b lineBuilder
	b.raw(rec.Name)
	b.field("Age", firstOf(rec.AgeRaw, rec.Age))
	b.field("Size", rec.Size)
	b.field("Build", rec.Build)
	b.field("Offensive Battle Accessory", rec.AccessoryName(sheet.SlotOffensive))
	b.field("Defensive Battle Accessory", rec.AccessoryName(sheet.SlotDefensive))
	if len(rec.AccessoriesIn(sheet.SlotRare)) > 0 {
		b.field(r.rules.Accessories.Rare.Label, "Yes")
	}
	for i, c := range rec.Companions {
		parts := []string{c.Name, c.Type}
		if c.Boosted {
			parts = append(parts, "boosted")
		}
		b.field(fmt.Sprintf("Companion %d", i+1), joinNonEmpty(parts, " - "))
	}
	for i, m := range rec.Mutations {
		b.field(fmt.Sprintf("Mutation %d", i+1), joinNonEmpty([]string{m.Name, m.Type}, " - "))
	}
	b.field("Skills", r.rules.FormatSkills(rec.Skills, " & "))
	b.field("Specialty", strings.Join(rec.Specialties, " & "))
	b.field("Debuff", rec.Debuff.Raw)
	b.field("Disability", rec.Disability.Raw)
	b.field("Item", withNotes(l.Items, rec.Notes))
	b.field("Buff", withNotes(rec.Buffs, rec.Notes))
	return b.lines
}

func (r *Renderer) movementLines(l *scoring.Ledger) []string {
	rec := l.Record
	var b lineBuilder
	b.raw(rec.Name)
	if l.Form == sheet.FormRace {
		b.field("Age", firstOf(rec.AgeRaw, rec.Age, "-"))
	}
	b.field("Size", firstOf(rec.Size, "-"))
	b.field("Build", firstOf(rec.Build, "-"))

	var racing []string
	for _, a := range rec.AccessoriesIn(sheet.SlotRacing) {
		racing = append(racing, a.Name)
	}
	b.field("Accessories", strings.Join(racing, ", "))
	b.field("Skills", r.rules.FormatSkills(rec.Skills, " & "))
	b.field("Specialty", strings.Join(rec.Specialties, " & "))
	b.field("Item", withNotes(l.Items, rec.Notes))
	return b.lines
}

// Command builds the roll invocation: the form's command with the axis
// totals in positional order, then item keywords in checked order, then
// the specialty keyword
func (r *Renderer) Command(l *scoring.Ledger) string {
	totals := l.Totals()
	values := make([]string, len(totals))
	for i, v := range totals {
		values[i] = formatNumber(v)
	}
	parts := []string{fmt.Sprintf("%s(%s)", r.rules.Commands[l.Form], strings.Join(values, ","))}

	for _, label := range l.Items {
		if it, ok := r.rules.Item(l.Form, label); ok {
			parts = append(parts, it.Effects.Keywords()...)
		}
	}
	for _, name := range l.Record.Specialties {
		if s, ok := r.rules.Specialty(name); ok && s.AppliesTo(l.Form) {
			parts = append(parts, s.Effects.Keywords()...)
		}
	}
	return strings.Join(parts, " ")
}

// Percent formats a value as "17.5%" with no trailing zeros
func Percent(v float64) string {
	return formatNumber(v) + "%"
}

// signedPercent formats a breakdown cell: "-" for zero, "+5%" or "-15%"
func signedPercent(v float64) string {
	switch {
	case v == 0:
		return "-"
	case v > 0:
		return "+" + Percent(v)
	}
	return Percent(v)
}

func formatNumber(v float64) string {
	if v == 0 || math.IsNaN(v) {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type lineBuilder struct {
	lines []string
}

func (b *lineBuilder) raw(s string) {
	if s != "" {
		b.lines = append(b.lines, s)
	}
}

func (b *lineBuilder) field(label, value string) {
	if value != "" {
		b.lines = append(b.lines, label+": "+value)
	}
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(parts []string, sep string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// withNotes joins labels, showing a note as "Label (note)"
func withNotes(labels []string, notes map[string]string) string {
	out := make([]string, len(labels))
	for i, label := range labels {
		out[i] = label
		if note := strings.TrimSpace(notes[label]); note != "" {
			out[i] = fmt.Sprintf("%s (%s)", label, note)
		}
	}
	return strings.Join(out, ", ")
}
