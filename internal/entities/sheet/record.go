package sheet

import "strings"

// AccessorySlot identifies where an accessory was listed
type AccessorySlot string

// AccessorySlot constants
const (
	SlotOffensive AccessorySlot = "offensive"
	SlotDefensive AccessorySlot = "defensive"
	// SlotRare is the rare accessory that may occupy either battle slot
	SlotRare   AccessorySlot = "rare"
	SlotRacing AccessorySlot = "racing"
)

// Accessory is one listed accessory
type Accessory struct {
	Slot AccessorySlot
	Name string
}

// Companion is a parsed companion line
type Companion struct {
	Name    string
	Type    string
	Boosted bool
}

// Mutation is a parsed mutation line
type Mutation struct {
	Name string
	Type string
}

// Affliction is a debuff or disability with its detected severity
type Affliction struct {
	// Severity is the detected severity, empty when none was found
	Severity string
	// Raw is the text as written on the sheet
	Raw string
}

// Present reports whether a severity was resolved
func (a Affliction) Present() bool {
	return a.Severity != ""
}

// Condition fields that rule predicates may test
const (
	FieldOffensiveAccessory = "off_acc"
	FieldDefensiveAccessory = "def_acc"
	FieldCompanions         = "companions"
	FieldMutations          = "mutations"
	FieldDebuff             = "debuff"
	FieldDisability         = "disability"
)

// ConditionFields lists every field a predicate may reference
var ConditionFields = []string{
	FieldOffensiveAccessory,
	FieldDefensiveAccessory,
	FieldCompanions,
	FieldMutations,
	FieldDebuff,
	FieldDisability,
}

// Selection carries the option identifiers chosen outside the sheet text
type Selection struct {
	Items       []string
	Buffs       []string
	Accessories []string
	// Specialty is a manual override and always wins over text matches
	Specialty string
	// Notes holds free text shown next to a selected item or buff
	Notes map[string]string
}

// Record is the structured result of parsing one sheet. It is owned by a
// single evaluation and rebuilt on every parse.
type Record struct {
	Form Form

	// Identity
	Name        string
	Opponent    string
	Context     string
	HasIdentity bool
	Round       string
	RoundFound  bool

	Age      string
	AgeRaw   string
	Size     string
	SizeRaw  string
	Build    string
	BuildRaw string

	Accessories []Accessory
	Companions  []Companion
	Mutations   []Mutation
	Skills      SkillSet

	// ParsedSpecialties are the text matches applicable to the form
	ParsedSpecialties []string
	// Specialties holds the active specialty, at most one
	Specialties []string
	// Override is the manually selected specialty, if any
	Override string

	Debuff     Affliction
	Disability Affliction

	Items []string
	Buffs []string
	Notes map[string]string

	// Unfilled lists fields present with placeholder content
	Unfilled []string
}

// NewRecord creates an empty record for the form
func NewRecord(form Form) *Record {
	return &Record{
		Form:  form,
		Notes: map[string]string{},
	}
}

// AccessoriesIn returns the accessories listed in a slot, in order
func (r *Record) AccessoriesIn(slot AccessorySlot) []Accessory {
	var out []Accessory
	for _, a := range r.Accessories {
		if a.Slot == slot {
			out = append(out, a)
		}
	}
	return out
}

// AccessoryName returns the last accessory named for a slot, or empty
func (r *Record) AccessoryName(slot AccessorySlot) string {
	name := ""
	for _, a := range r.Accessories {
		if a.Slot == slot {
			name = a.Name
		}
	}
	return name
}

// Filled reports whether a condition field holds a value
func (r *Record) Filled(field string) bool {
	switch field {
	case FieldOffensiveAccessory:
		return r.AccessoryName(SlotOffensive) != ""
	case FieldDefensiveAccessory:
		return r.AccessoryName(SlotDefensive) != ""
	case FieldCompanions:
		return len(r.Companions) > 0
	case FieldMutations:
		return len(r.Mutations) > 0
	case FieldDebuff:
		return r.Debuff.Present()
	case FieldDisability:
		return r.Disability.Present()
	}
	return false
}

// Count returns the number of entries in a list field. The second value is
// false when the field is not a list.
func (r *Record) Count(field string) (int, bool) {
	switch field {
	case FieldCompanions:
		return len(r.Companions), true
	case FieldMutations:
		return len(r.Mutations), true
	}
	return 0, false
}

// HasItem reports whether the label is in the effective item selection
func (r *Record) HasItem(label string) bool {
	return containsFold(r.Items, label)
}

// Clone returns a copy that can be modified without touching r
func (r *Record) Clone() *Record {
	c := *r
	c.Accessories = append([]Accessory(nil), r.Accessories...)
	c.Companions = append([]Companion(nil), r.Companions...)
	c.Mutations = append([]Mutation(nil), r.Mutations...)
	c.Skills = append(SkillSet(nil), r.Skills...)
	c.ParsedSpecialties = append([]string(nil), r.ParsedSpecialties...)
	c.Specialties = append([]string(nil), r.Specialties...)
	c.Items = append([]string(nil), r.Items...)
	c.Buffs = append([]string(nil), r.Buffs...)
	c.Unfilled = append([]string(nil), r.Unfilled...)
	c.Notes = make(map[string]string, len(r.Notes))
	for k, v := range r.Notes {
		c.Notes[k] = v
	}
	return &c
}

// SkillEntry is one skill with its rank. An empty rank means the skill was
// named without a rank, which blocks requirement checks and scoring.
type SkillEntry struct {
	Name string
	Rank string
}

// Ranked reports whether a rank was given
func (e SkillEntry) Ranked() bool {
	return e.Rank != ""
}

// SkillSet is an insertion-ordered skill map
type SkillSet []SkillEntry

// Set records a rank, replacing an earlier entry for the same skill in place
func (s *SkillSet) Set(name, rank string) {
	for i := range *s {
		if (*s)[i].Name == name {
			(*s)[i].Rank = rank
			return
		}
	}
	*s = append(*s, SkillEntry{Name: name, Rank: rank})
}

// Rank returns the rank for a skill and whether the skill is listed
func (s SkillSet) Rank(name string) (string, bool) {
	for _, e := range s {
		if e.Name == name {
			return e.Rank, true
		}
	}
	return "", false
}

// HasUnranked reports whether any listed skill lacks a rank
func (s SkillSet) HasUnranked() bool {
	for _, e := range s {
		if !e.Ranked() {
			return true
		}
	}
	return false
}

// RankedCount returns the number of skills with a rank
func (s SkillSet) RankedCount() int {
	n := 0
	for _, e := range s {
		if e.Ranked() {
			n++
		}
	}
	return n
}

// AppendUnique appends values not already present (case-insensitive)
func AppendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if v == "" || containsFold(list, v) {
			continue
		}
		list = append(list, v)
	}
	return list
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
