package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/parser"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/rules"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/validator"
)

// validFight returns a complete fight record with no problems
func validFight() *sheet.Record {
	rec := sheet.NewRecord(sheet.FormFight)
	rec.HasIdentity = true
	rec.Name, rec.Opponent, rec.Context = "Rex", "Mika", "Spar"
	rec.RoundFound, rec.Round = true, "1"
	rec.Age, rec.AgeRaw = "1y+", "2 years"
	rec.Size, rec.SizeRaw = "Medium", "Medium"
	rec.Build, rec.BuildRaw = "Balanced", "Balanced"
	rec.Skills = sheet.SkillSet{{Name: "Hunting", Rank: "Master"}, {Name: "Fighting", Rank: "Novice"}}
	return rec
}

func validate(rec *sheet.Record) *sheet.Report {
	rep := &sheet.Report{}
	validator.New(rules.MustDefault()).Validate(rec, rep)
	return rep
}

func messages(rep *sheet.Report) []string {
	var out []string
	for _, a := range rep.Alerts {
		out = append(out, a.Message)
	}
	return out
}

func TestValidate_ParsedScenario(t *testing.T) {
	p, err := parser.New(rules.MustDefault())
	require.NoError(t, err)

	raw := "Rex vs Mika for Spar\nRound 1\nAge: 2 years\nSize: Medium\nBuild: Balanced\nSkills: Master Hunting & Novice Fighting"
	res := p.Parse(sheet.FormFight, raw, sheet.Selection{})
	validator.New(p.Rules()).Validate(res.Record, res.Report)

	assert.Empty(t, res.Report.Alerts)
	assert.False(t, res.Report.HasErrors())
}

func TestValidate_Fight(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(rec *sheet.Record)
		want   []string
	}{
		{
			name:   "complete sheet",
			modify: func(rec *sheet.Record) {},
		},
		{
			name: "single skill",
			modify: func(rec *sheet.Record) {
				rec.Skills = sheet.SkillSet{{Name: "Fighting", Rank: "Master"}}
			},
			want: []string{"Only 1 skill found, exactly 2 required."},
		},
		{
			name: "three skills",
			modify: func(rec *sheet.Record) {
				rec.Skills.Set("Healing", "Novice")
			},
			want: []string{"3 skills found, exactly 2 required."},
		},
		{
			name: "rankless skill blocks the count and requirement checks",
			modify: func(rec *sheet.Record) {
				rec.Skills = sheet.SkillSet{{Name: "Hunting"}}
				rec.Specialties = []string{"Berserker"}
				rec.ParsedSpecialties = []string{"Berserker"}
			},
		},
		{
			name: "everything missing",
			modify: func(rec *sheet.Record) {
				*rec = *sheet.NewRecord(sheet.FormFight)
				rec.RoundFound = true
			},
			want: []string{"Missing: VS line, Age, Size, Build, Skills."},
		},
		{
			name: "unrecognized values are not missing",
			modify: func(rec *sheet.Record) {
				rec.Size, rec.SizeRaw = "", "gargantuan"
				rec.Age, rec.AgeRaw = "", "old"
			},
		},
		{
			name: "unfilled fields",
			modify: func(rec *sheet.Record) {
				rec.Unfilled = []string{"Opponent", "Round"}
			},
			want: []string{"Unfilled: Opponent, Round."},
		},
		{
			name: "specialty without its skill",
			modify: func(rec *sheet.Record) {
				rec.Specialties = []string{"Berserker"}
				rec.ParsedSpecialties = []string{"Berserker"}
				rec.Skills = sheet.SkillSet{{Name: "Hunting", Rank: "Master"}, {Name: "Healing", Rank: "Master"}}
			},
			want: []string{`"Berserker" requires Fighting skill.`},
		},
		{
			name: "every parsed specialty is checked",
			modify: func(rec *sheet.Record) {
				rec.ParsedSpecialties = []string{"Bulwark", "Hawk-Eyed"}
			},
			want: []string{`"Bulwark" usually needs Master Fighting (has Novice).`},
		},
		{
			name: "override replaces the parsed specialties",
			modify: func(rec *sheet.Record) {
				rec.ParsedSpecialties = []string{"Bulwark"}
				rec.Override = "Bloodletter"
				rec.Specialties = []string{"Bloodletter"}
			},
		},
		{
			name: "conditional specialty without its condition",
			modify: func(rec *sheet.Record) {
				rec.Skills = sheet.SkillSet{{Name: "Hunting", Rank: "Master"}, {Name: "Fighting", Rank: "Master"}}
				rec.Specialties = []string{"Weaponsmaster"}
			},
			want: []string{"Weaponsmaster: No offensive accessory equipped, +20% ATK won't apply."},
		},
		{
			name: "conditional specialty with its condition shows the reminder",
			modify: func(rec *sheet.Record) {
				rec.Skills = sheet.SkillSet{{Name: "Hunting", Rank: "Master"}, {Name: "Fighting", Rank: "Master"}}
				rec.Specialties = []string{"Weaponsmaster"}
				rec.Accessories = []sheet.Accessory{{Slot: sheet.SlotOffensive, Name: "Tiger Claw"}}
			},
			want: []string{"Weaponsmaster: Applies +20% ATK if an offensive accessory is equipped."},
		},
		{
			name: "companion problems",
			modify: func(rec *sheet.Record) {
				rec.Companions = []sheet.Companion{{Type: "battle"}, {Name: "Sky"}}
			},
			want: []string{"Companion 1 missing name.", `Companion 2 "Sky" missing type.`},
		},
		{
			name: "too many companions",
			modify: func(rec *sheet.Record) {
				for _, n := range []string{"A", "B", "C", "D"} {
					rec.Companions = append(rec.Companions, sheet.Companion{Name: n, Type: "battle"})
				}
			},
			want: []string{"Too many companions (max 3)."},
		},
		{
			name: "untyped mutations do not count toward the cap",
			modify: func(rec *sheet.Record) {
				rec.Mutations = []sheet.Mutation{
					{Name: "A", Type: "offensive"},
					{Name: "B", Type: "offensive"},
					{Name: "C", Type: "defensive"},
					{Name: "D"},
				}
			},
			want: []string{`Mutation 4 "D" missing type.`},
		},
		{
			name: "too many mutations",
			modify: func(rec *sheet.Record) {
				for _, n := range []string{"A", "B", "C", "D"} {
					rec.Mutations = append(rec.Mutations, sheet.Mutation{Name: n, Type: "agility"})
				}
			},
			want: []string{"4 mutations exceeds cap of 3."},
		},
		{
			name: "accessory conflicts",
			modify: func(rec *sheet.Record) {
				rec.Accessories = []sheet.Accessory{
					{Slot: sheet.SlotOffensive, Name: "Claw"},
					{Slot: sheet.SlotOffensive, Name: "Horn"},
					{Slot: sheet.SlotRare, Name: "Creepy Contacts"},
					{Slot: sheet.SlotRare, Name: "Creepy Contacts"},
				}
			},
			want: []string{
				"Multiple offensive accessories (max 1).",
				"Creepy Contacts listed 2 times (max 1).",
				"Too many accessories (max 2).",
			},
		},
		{
			name: "same accessory in both slots",
			modify: func(rec *sheet.Record) {
				rec.Accessories = []sheet.Accessory{
					{Slot: sheet.SlotOffensive, Name: "Bone Collar"},
					{Slot: sheet.SlotDefensive, Name: "bone collar"},
				}
			},
			want: []string{`Same accessory "Bone Collar" in both offensive and defensive slots.`},
		},
		{
			name: "item conflict",
			modify: func(rec *sheet.Record) {
				rec.Items = []string{"Tiger Mask"}
				rec.Accessories = []sheet.Accessory{{Slot: sheet.SlotOffensive, Name: "Tiger Claw"}}
			},
			want: []string{"Tiger Mask: Already has offensive accessory."},
		},
		{
			name: "special item reminder",
			modify: func(rec *sheet.Record) {
				rec.Items = []string{"Equalizer"}
			},
			want: []string{"Equalizer: Equalizer found! Don't forget to yoink the other opponent's fight form!"},
		},
		{
			name: "too many items skips item checks",
			modify: func(rec *sheet.Record) {
				rec.Items = []string{"Equalizer", "Tiger Mask"}
				rec.Accessories = []sheet.Accessory{{Slot: sheet.SlotOffensive, Name: "Tiger Claw"}}
			},
			want: []string{"Too many items (max 1)."},
		},
		{
			name: "buffs are not capped",
			modify: func(rec *sheet.Record) {
				rec.Buffs = []string{"Bard", "Trespass Boost"}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := validFight()
			tc.modify(rec)
			assert.Equal(t, tc.want, messages(validate(rec)))
		})
	}
}

func TestValidate_AlertDetails(t *testing.T) {
	t.Run("missing takes the category of the first core field", func(t *testing.T) {
		rec := validFight()
		rec.HasIdentity = false
		rec.SizeRaw, rec.Size = "", ""
		rep := validate(rec)

		require.Len(t, rep.Alerts, 1)
		assert.Equal(t, "Missing: VS line, Size.", rep.Alerts[0].Message)
		assert.Equal(t, sheet.CategorySize, rep.Alerts[0].Category)
		assert.True(t, rep.Alerts[0].IsError())
	})

	t.Run("unfilled is a warning", func(t *testing.T) {
		rec := validFight()
		rec.Unfilled = []string{"Round"}
		rep := validate(rec)

		require.Len(t, rep.Alerts, 1)
		assert.True(t, rep.Alerts[0].IsUnfilled())
		assert.False(t, rep.HasErrors())
	})

	t.Run("reminders are flagged", func(t *testing.T) {
		rec := validFight()
		rec.Items = []string{"Mushroom Based Acid"}
		rep := validate(rec)

		require.Len(t, rep.Alerts, 1)
		assert.True(t, rep.Alerts[0].Reminder)
		assert.Equal(t, sheet.CategoryItems, rep.Alerts[0].Category)
	})

	t.Run("shortfall is a warning and does not block", func(t *testing.T) {
		rec := validFight()
		rec.Skills = sheet.SkillSet{{Name: "Navigation", Rank: "Intermediate"}, {Name: "Hunting", Rank: "Master"}}
		rec.ParsedSpecialties = []string{"Fleet-footed"}
		rec.Specialties = []string{"Fleet-footed"}
		rep := validate(rec)

		assert.Equal(t, []string{`"Fleet-footed" usually needs Master Navigation (has Intermediate).`}, messages(rep))
		assert.False(t, rep.HasErrors())
	})

	t.Run("nil input is ignored", func(t *testing.T) {
		v := validator.New(rules.MustDefault())
		assert.NotPanics(t, func() { v.Validate(nil, &sheet.Report{}) })
	})
}

func TestValidate_Movement(t *testing.T) {
	t.Run("flee needs size and build only", func(t *testing.T) {
		rep := validate(sheet.NewRecord(sheet.FormFlee))
		assert.Equal(t, []string{"Missing: Size, Build."}, messages(rep))
		assert.Equal(t, sheet.CategorySize, rep.Alerts[0].Category)
	})

	t.Run("race needs age too", func(t *testing.T) {
		rep := validate(sheet.NewRecord(sheet.FormRace))
		assert.Equal(t, []string{"Missing: Age, Size, Build."}, messages(rep))
		assert.Equal(t, sheet.CategoryAge, rep.Alerts[0].Category)
	})

	t.Run("no skill count rule", func(t *testing.T) {
		rec := sheet.NewRecord(sheet.FormFlee)
		rec.SizeRaw, rec.BuildRaw = "Small", "Light"
		rec.Skills = sheet.SkillSet{{Name: "Navigation", Rank: "Master"}}
		rec.Specialties = []string{"Speedy"}
		rec.ParsedSpecialties = []string{"Speedy"}
		assert.Empty(t, validate(rec).Alerts)
	})

	t.Run("specialty reminder and requirement", func(t *testing.T) {
		rec := sheet.NewRecord(sheet.FormFlee)
		rec.SizeRaw, rec.BuildRaw = "Small", "Light"
		rec.Skills = sheet.SkillSet{{Name: "Navigation", Rank: "Advanced"}}
		rec.Specialties = []string{"Escape Artist"}
		rep := validate(rec)

		assert.Equal(t, []string{
			`"Escape Artist" usually needs Master Navigation (has Advanced).`,
			"Escape Artist: Allows one extra flee attempt.",
		}, messages(rep))
	})

	t.Run("item cap", func(t *testing.T) {
		rec := sheet.NewRecord(sheet.FormRace)
		rec.AgeRaw, rec.SizeRaw, rec.BuildRaw = "2 years", "Toy", "Light"
		rec.Items = []string{"Go Fast Juice", "Serious Steroids"}
		assert.Equal(t, []string{"Too many items (max 1)."}, messages(validate(rec)))
	})
}
