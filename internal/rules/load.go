package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/errors"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/pkg/fuzzy"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var defaultRules = sync.OnceValues(func() (*Rules, error) {
	return Load(defaultsYAML)
})

// Default returns the embedded rule table. It is loaded once per process.
func Default() (*Rules, error) {
	return defaultRules()
}

// MustDefault is Default for callers that cannot proceed without rules
func MustDefault() *Rules {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultYAML returns a copy of the embedded rule document
func DefaultYAML() []byte {
	return append([]byte(nil), defaultsYAML...)
}

// LoadFile reads and validates a rule table from disk
func LoadFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("rules file %s not found", path)
		}
		return nil, errors.Wrapf(err, "failed to read rules file %s", path)
	}
	r, err := Load(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid rules file %s", path)
	}
	return r, nil
}

// Load decodes and validates a YAML rule table. Every invariant violation is
// reported in one InvalidArgument error.
func Load(data []byte) (*Rules, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to decode rule table")
	}

	vb := errors.NewValidationBuilder()
	r := doc.build(vb)
	r.validate(vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}
	return r, nil
}

type document struct {
	Caps struct {
		Mutations   int            `yaml:"mutations"`
		Companions  int            `yaml:"companions"`
		Accessories int            `yaml:"accessories"`
		Items       map[string]int `yaml:"items"`
	} `yaml:"caps"`
	PlaceholderPattern string            `yaml:"placeholder_pattern"`
	FieldNames         []string          `yaml:"field_names"`
	DuplicateFields    []string          `yaml:"duplicate_fields"`
	SpecialtyRank      string            `yaml:"specialty_rank"`
	Commands           map[string]string `yaml:"commands"`
	Ages               []modifierDoc     `yaml:"ages"`
	Fight              tableDoc          `yaml:"fight"`
	Movement           tableDoc          `yaml:"movement"`
	Severities         []string          `yaml:"severities"`
	Debuffs            []modifierDoc     `yaml:"debuffs"`
	Disabilities       []modifierDoc     `yaml:"disabilities"`
	SkillLevels        []levelDoc        `yaml:"skill_levels"`
	Skills             []skillDoc        `yaml:"skills"`
	Mutations          struct {
		First float64   `yaml:"first"`
		Extra float64   `yaml:"extra"`
		Types []typeDoc `yaml:"types"`
	} `yaml:"mutations"`
	Companions struct {
		Value           float64   `yaml:"value"`
		BoostMultiplier float64   `yaml:"boost_multiplier"`
		Types           []typeDoc `yaml:"types"`
	} `yaml:"companions"`
	Accessories struct {
		Offensive bonusDoc   `yaml:"offensive"`
		Defensive bonusDoc   `yaml:"defensive"`
		Rare      rareDoc    `yaml:"rare"`
		Racing    []bonusDoc `yaml:"racing"`
	} `yaml:"accessories"`
	Specialties  []specialtyDoc       `yaml:"specialties"`
	Buffs        []buffDoc            `yaml:"buffs"`
	Items        map[string][]itemDoc `yaml:"items"`
	ItemAliases  aliasList            `yaml:"item_aliases"`
	SizeAliases  aliasList            `yaml:"size_aliases"`
	BuildAliases aliasList            `yaml:"build_aliases"`
	SkillAliases aliasList            `yaml:"skill_aliases"`
	QuickRolls   []quickRollDoc       `yaml:"quick_rolls"`
}

type modifierDoc struct {
	Name string  `yaml:"name"`
	Mods axisMap `yaml:"mods"`
}

type tableDoc struct {
	Skill  string        `yaml:"skill"`
	Sizes  []modifierDoc `yaml:"sizes"`
	Builds []modifierDoc `yaml:"builds"`
}

type levelDoc struct {
	Name  string  `yaml:"name"`
	Value float64 `yaml:"value"`
}

type skillDoc struct {
	Name      string             `yaml:"name"`
	Axis      string             `yaml:"axis"`
	Display   string             `yaml:"display"`
	Overrides map[string]float64 `yaml:"overrides"`
	Excludes  []string           `yaml:"excludes"`
}

type typeDoc struct {
	Name string `yaml:"name"`
	Axis string `yaml:"axis"`
}

type bonusDoc struct {
	Label string  `yaml:"label"`
	Axis  string  `yaml:"axis"`
	Value float64 `yaml:"value"`
}

type rareDoc struct {
	Label   string  `yaml:"label"`
	Pattern string  `yaml:"pattern"`
	Axis    string  `yaml:"axis"`
	Value   float64 `yaml:"value"`
}

type conditionalDoc struct {
	Axis  string  `yaml:"axis"`
	Value float64 `yaml:"value"`
	When  struct {
		Field  string `yaml:"field"`
		MustBe string `yaml:"must_be"`
	} `yaml:"when"`
	Conflict string `yaml:"conflict"`
}

type reduceDoc struct {
	Field  string            `yaml:"field"`
	Levels map[string]string `yaml:"levels"`
}

type specialtyDoc struct {
	Name     string          `yaml:"name"`
	Requires string          `yaml:"requires"`
	Forms    []string        `yaml:"forms"`
	Mods     axisMap         `yaml:"mods"`
	Aura     float64         `yaml:"aura"`
	Reminder string          `yaml:"reminder"`
	Cmd      string          `yaml:"cmd"`
	Effect   *conditionalDoc `yaml:"effect"`
	Passive  bool            `yaml:"passive"`
}

type buffDoc struct {
	Label string  `yaml:"label"`
	Value float64 `yaml:"value"`
}

type itemDoc struct {
	Label    string          `yaml:"label"`
	Type     string          `yaml:"type"`
	Axis     string          `yaml:"axis"`
	Value    float64         `yaml:"value"`
	Effect   *conditionalDoc `yaml:"effect"`
	Reduce   *reduceDoc      `yaml:"reduce"`
	Reminder string          `yaml:"reminder"`
	Cmd      string          `yaml:"cmd"`
}

type quickRollDoc struct {
	Name     string `yaml:"name"`
	Command  string `yaml:"command"`
	Sections []struct {
		Title   string `yaml:"title"`
		Options []struct {
			Label string `yaml:"label"`
			Cmd   string `yaml:"cmd"`
		} `yaml:"options"`
	} `yaml:"sections"`
}

type axisValue struct {
	Axis  string
	Value float64
}

// axisMap is a YAML mapping of axis to delta decoded in document order
type axisMap []axisValue

func (m *axisMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: modifiers must be a mapping", node.Line)
	}
	out := make(axisMap, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var v float64
		if err := node.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("line %d: modifier %q: %w", node.Content[i].Line, node.Content[i].Value, err)
		}
		out = append(out, axisValue{Axis: node.Content[i].Value, Value: v})
	}
	*m = out
	return nil
}

// aliasList is a YAML mapping of phrase to target decoded in document order
type aliasList []fuzzy.Alias

func (a *aliasList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: aliases must be a mapping", node.Line)
	}
	out := make(aliasList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		out = append(out, fuzzy.Alias{
			Phrase: node.Content[i].Value,
			Target: node.Content[i+1].Value,
		})
	}
	*a = out
	return nil
}

func (d *document) build(vb *errors.ValidationBuilder) *Rules {
	r := &Rules{
		Caps: Caps{
			Mutations:   d.Caps.Mutations,
			Companions:  d.Caps.Companions,
			Accessories: d.Caps.Accessories,
			Items:       map[sheet.Form]int{},
		},
		FieldNames:      d.FieldNames,
		DuplicateFields: d.DuplicateFields,
		SpecialtyRank:   d.SpecialtyRank,
		Commands:        map[sheet.Form]string{},
		MovementSkill:   d.Movement.Skill,
		Severities:      d.Severities,
		Items:           map[sheet.Form][]Item{},
		ItemAliases:     d.ItemAliases,
		SizeAliases:     d.SizeAliases,
		BuildAliases:    d.BuildAliases,
		SkillAliases:    d.SkillAliases,
	}

	for form, n := range d.Caps.Items {
		r.Caps.Items[parseForm(vb, "caps.items", form)] = n
	}
	for form, cmd := range d.Commands {
		r.Commands[parseForm(vb, "commands", form)] = cmd
	}

	if d.PlaceholderPattern != "" {
		re, err := regexp.Compile(d.PlaceholderPattern)
		if err != nil {
			vb.InvalidField("placeholder_pattern", err.Error())
		}
		r.placeholder = re
	}

	r.Ages = buildModifiers(vb, "ages", d.Ages)
	r.Fight = Table{
		Sizes:  buildModifiers(vb, "fight.sizes", d.Fight.Sizes),
		Builds: buildModifiers(vb, "fight.builds", d.Fight.Builds),
	}
	r.Movement = Table{
		Sizes:  buildModifiers(vb, "movement.sizes", d.Movement.Sizes),
		Builds: buildModifiers(vb, "movement.builds", d.Movement.Builds),
	}
	r.Debuffs = buildModifiers(vb, "debuffs", d.Debuffs)
	r.Disabilities = buildModifiers(vb, "disabilities", d.Disabilities)

	for _, l := range d.SkillLevels {
		r.Levels = append(r.Levels, Level(l))
	}
	for _, s := range d.Skills {
		r.Skills = append(r.Skills, Skill{
			Name:      s.Name,
			Axis:      parseAxis(vb, "skills["+s.Name+"].axis", s.Axis),
			Display:   s.Display,
			Overrides: s.Overrides,
			Excludes:  s.Excludes,
		})
	}

	r.Mutations = MutationRules{
		First: d.Mutations.First,
		Extra: d.Mutations.Extra,
		Types: buildTypes(vb, "mutations.types", d.Mutations.Types),
	}
	r.Companions = CompanionRules{
		Value:           d.Companions.Value,
		BoostMultiplier: d.Companions.BoostMultiplier,
		Types:           buildTypes(vb, "companions.types", d.Companions.Types),
	}

	acc := d.Accessories
	r.Accessories.Offensive = Bonus{Axis: parseAxis(vb, "accessories.offensive.axis", acc.Offensive.Axis), Value: acc.Offensive.Value}
	r.Accessories.Defensive = Bonus{Axis: parseAxis(vb, "accessories.defensive.axis", acc.Defensive.Axis), Value: acc.Defensive.Value}
	r.Accessories.Rare = RareAccessory{
		Label: acc.Rare.Label,
		Bonus: Bonus{Axis: parseAxis(vb, "accessories.rare.axis", acc.Rare.Axis), Value: acc.Rare.Value},
	}
	if acc.Rare.Pattern != "" {
		re, err := regexp.Compile(acc.Rare.Pattern)
		if err != nil {
			vb.InvalidField("accessories.rare.pattern", err.Error())
		}
		r.Accessories.Rare.Pattern = re
	}
	for _, b := range acc.Racing {
		r.Accessories.Racing = append(r.Accessories.Racing, LabeledBonus{
			Label: b.Label,
			Bonus: Bonus{Axis: parseAxis(vb, "accessories.racing["+b.Label+"].axis", b.Axis), Value: b.Value},
		})
	}

	for _, s := range d.Specialties {
		r.Specialties = append(r.Specialties, s.build(vb))
	}
	for _, b := range d.Buffs {
		r.Buffs = append(r.Buffs, Buff(b))
	}
	for form, items := range d.Items {
		f := parseForm(vb, "items", form)
		for _, it := range items {
			r.Items[f] = append(r.Items[f], it.build(vb, fmt.Sprintf("items.%s[%s]", form, it.Label)))
		}
	}

	for _, q := range d.QuickRolls {
		qr := QuickRoll{Name: q.Name, Command: q.Command}
		for _, s := range q.Sections {
			sec := QuickSection{Title: s.Title}
			for _, o := range s.Options {
				sec.Options = append(sec.Options, QuickOption(o))
			}
			qr.Sections = append(qr.Sections, sec)
		}
		r.QuickRolls = append(r.QuickRolls, qr)
	}
	return r
}

func (s specialtyDoc) build(vb *errors.ValidationBuilder) Specialty {
	field := "specialties[" + s.Name + "]"
	sp := Specialty{Name: s.Name, Requires: s.Requires, Aura: s.Aura}
	for _, f := range s.Forms {
		sp.Forms = append(sp.Forms, parseForm(vb, field+".forms", f))
	}
	if s.Passive {
		sp.Effects = append(sp.Effects, Passive{})
	}
	if mods := buildMods(vb, field+".mods", s.Mods); len(mods) > 0 {
		sp.Effects = append(sp.Effects, Scored{Mods: mods})
	}
	if s.Effect != nil {
		sp.Effects = append(sp.Effects, s.Effect.build(vb, field+".effect"))
	}
	if s.Reminder != "" {
		sp.Effects = append(sp.Effects, Reminder{Text: s.Reminder})
	}
	if s.Cmd != "" {
		sp.Effects = append(sp.Effects, Command{Keyword: s.Cmd})
	}
	return sp
}

func (it itemDoc) build(vb *errors.ValidationBuilder, field string) Item {
	item := Item{Label: it.Label, Type: ItemType(it.Type)}
	switch item.Type {
	case ItemStat, ItemSpecial, ItemAppend:
	default:
		vb.Fieldf(field+".type", "must be one of: stat, special, append (got %q)", it.Type)
	}
	if it.Axis != "" {
		item.Effects = append(item.Effects, Scored{Mods: Mods{{
			Axis:  parseAxis(vb, field+".axis", it.Axis),
			Value: it.Value,
		}}})
	}
	if it.Effect != nil {
		item.Effects = append(item.Effects, it.Effect.build(vb, field+".effect"))
	}
	if it.Reduce != nil {
		item.Effects = append(item.Effects, Reduce{Field: it.Reduce.Field, Levels: it.Reduce.Levels})
	}
	if it.Reminder != "" {
		item.Effects = append(item.Effects, Reminder{Text: it.Reminder})
	}
	if it.Cmd != "" {
		item.Effects = append(item.Effects, Command{Keyword: it.Cmd})
	}
	return item
}

func (c *conditionalDoc) build(vb *errors.ValidationBuilder, field string) Conditional {
	return Conditional{
		Axis:     parseAxis(vb, field+".axis", c.Axis),
		Value:    c.Value,
		When:     Condition{Field: c.When.Field, MustBe: Requirement(c.When.MustBe)},
		Conflict: c.Conflict,
	}
}

func buildModifiers(vb *errors.ValidationBuilder, field string, docs []modifierDoc) []Modifier {
	out := make([]Modifier, 0, len(docs))
	for _, d := range docs {
		out = append(out, Modifier{
			Name: d.Name,
			Mods: buildMods(vb, field+"["+d.Name+"]", d.Mods),
		})
	}
	return out
}

func buildMods(vb *errors.ValidationBuilder, field string, m axisMap) Mods {
	var out Mods
	for _, av := range m {
		out = append(out, Mod{Axis: parseAxis(vb, field, av.Axis), Value: av.Value})
	}
	return out
}

func buildTypes(vb *errors.ValidationBuilder, field string, docs []typeDoc) []TypeAxis {
	out := make([]TypeAxis, 0, len(docs))
	for _, d := range docs {
		out = append(out, TypeAxis{Name: d.Name, Axis: parseAxis(vb, field+"["+d.Name+"]", d.Axis)})
	}
	return out
}

func parseAxis(vb *errors.ValidationBuilder, field, s string) sheet.Axis {
	a := sheet.Axis(strings.ToUpper(strings.TrimSpace(s)))
	if a.Order() < 0 {
		vb.Fieldf(field, "unknown axis %q", s)
	}
	return a
}

func parseForm(vb *errors.ValidationBuilder, field, s string) sheet.Form {
	f := sheet.Form(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		vb.Fieldf(field, "unknown form %q", s)
	}
	return f
}
