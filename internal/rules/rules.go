// Package rules holds the immutable rule configuration: the recognized
// vocabulary of a character sheet, its scoring modifiers, caps and aliases.
//
// A Rules value is built once by Load, LoadFile or Default and is safe for
// concurrent use because nothing mutates it afterwards.
package rules

import (
	"regexp"
	"strings"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/pkg/fuzzy"
)

// Mod is a delta applied to one axis
type Mod struct {
	Axis  sheet.Axis
	Value float64
}

// Mods is an ordered modifier list
type Mods []Mod

// Modifier is a named category with its modifiers, such as a size or an age
type Modifier struct {
	Name string
	Mods Mods
}

// Level is a skill rank and its standard value
type Level struct {
	Name  string
	Value float64
}

// Skill is a scored skill
type Skill struct {
	Name    string
	Axis    sheet.Axis
	Display string
	// Overrides replaces the standard value for a rank
	Overrides map[string]float64
	// Excludes lists ranks the skill does not define
	Excludes []string
}

// TypeAxis maps a companion or mutation type keyword to an axis
type TypeAxis struct {
	Name string
	Axis sheet.Axis
}

// Bonus is a flat delta on one axis
type Bonus struct {
	Axis  sheet.Axis
	Value float64
}

// LabeledBonus is a named flat bonus
type LabeledBonus struct {
	Label string
	Bonus
}

// RareAccessory is the accessory recognized by pattern in either battle slot
type RareAccessory struct {
	Label   string
	Pattern *regexp.Regexp
	Bonus
}

// AccessoryRules holds accessory bonuses
type AccessoryRules struct {
	Offensive Bonus
	Defensive Bonus
	Rare      RareAccessory
	Racing    []LabeledBonus
}

// MutationRules holds mutation scoring
type MutationRules struct {
	First float64
	Extra float64
	Types []TypeAxis
}

// CompanionRules holds companion scoring
type CompanionRules struct {
	Value           float64
	BoostMultiplier float64
	Types           []TypeAxis
}

// Caps bounds list lengths. Zero means unbounded.
type Caps struct {
	Mutations   int
	Companions  int
	Accessories int
	Items       map[sheet.Form]int
}

// For returns the cap of a list condition field
func (c Caps) For(field string) int {
	switch field {
	case sheet.FieldCompanions:
		return c.Companions
	case sheet.FieldMutations:
		return c.Mutations
	}
	return 0
}

// Specialty is a character trait
type Specialty struct {
	Name     string
	Requires string
	Forms    []sheet.Form
	// Aura is granted to allies and never scored for the bearer
	Aura    float64
	Effects Effects
}

// AppliesTo reports whether the specialty has behavior for the form
func (s *Specialty) AppliesTo(f sheet.Form) bool {
	for _, form := range s.Forms {
		if form == f {
			return true
		}
	}
	return false
}

// ItemType is how an item takes part in a roll
type ItemType string

// ItemType constants
const (
	ItemStat    ItemType = "stat"
	ItemSpecial ItemType = "special"
	ItemAppend  ItemType = "append"
)

// Item is a checkable item for one form
type Item struct {
	Label   string
	Type    ItemType
	Effects Effects
}

// Buff is a flat TOTAL bonus
type Buff struct {
	Label string
	Value float64
}

// QuickOption is one selectable keyword of a quick roll
type QuickOption struct {
	Label string
	Cmd   string
}

// QuickSection groups quick-roll options
type QuickSection struct {
	Title   string
	Options []QuickOption
}

// QuickRoll is a named preset command
type QuickRoll struct {
	Name     string
	Command  string
	Sections []QuickSection
}

// Table holds the per-form-family size and build tables
type Table struct {
	Sizes  []Modifier
	Builds []Modifier
}

// Rules is the complete rule configuration
type Rules struct {
	Caps            Caps
	FieldNames      []string
	DuplicateFields []string
	SpecialtyRank   string
	Commands        map[sheet.Form]string

	Ages          []Modifier
	Fight         Table
	Movement      Table
	MovementSkill string

	Severities   []string
	Debuffs      []Modifier
	Disabilities []Modifier

	Levels      []Level
	Skills      []Skill
	Mutations   MutationRules
	Companions  CompanionRules
	Accessories AccessoryRules
	Specialties []Specialty
	Buffs       []Buff
	Items       map[sheet.Form][]Item

	ItemAliases  []fuzzy.Alias
	SizeAliases  []fuzzy.Alias
	BuildAliases []fuzzy.Alias
	SkillAliases []fuzzy.Alias

	QuickRolls []QuickRoll

	placeholder *regexp.Regexp
}

// IsPlaceholder reports whether a value is an "empty" sentinel such as
// "n/a" or "(optional)"
func (r *Rules) IsPlaceholder(value string) bool {
	value = strings.TrimSpace(value)
	return r.placeholder != nil && r.placeholder.MatchString(value)
}

// Table returns the size/build table for the form
func (r *Rules) Table(f sheet.Form) Table {
	if f.IsMovement() {
		return r.Movement
	}
	return r.Fight
}
