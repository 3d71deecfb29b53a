package render_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/render"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/rules"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/scoring"
)

type RenderTestSuite struct {
	suite.Suite
	rules    *rules.Rules
	renderer *render.Renderer
	engine   *scoring.Engine
}

func (s *RenderTestSuite) SetupSuite() {
	s.rules = rules.MustDefault()
	s.renderer = render.New(s.rules)
	s.engine = scoring.New(s.rules)
}

func (s *RenderTestSuite) fightRecord() *sheet.Record {
	rec := sheet.NewRecord(sheet.FormFight)
	rec.Name = "Rex"
	rec.Age, rec.AgeRaw = "1y+", "2 years"
	rec.Size, rec.SizeRaw = "Medium", "Medium"
	rec.Build, rec.BuildRaw = "Balanced", "Balanced"
	rec.Skills = sheet.SkillSet{{Name: "Hunting", Rank: "Master"}, {Name: "Fighting", Rank: "Novice"}}
	return rec
}

func (s *RenderTestSuite) TestFightSummary() {
	rec := s.fightRecord()
	rec.Accessories = []sheet.Accessory{{Slot: sheet.SlotOffensive, Name: "Tiger Claw"}}
	rec.Companions = []sheet.Companion{{Name: "Rex", Type: "battle", Boosted: true}}
	rec.Items = []string{"Lucky Rabbit's Foot"}
	rec.Buffs = []string{"Bard"}
	rec.Notes["Bard"] = "Lark"

	got := s.renderer.Summary(s.engine.Score(rec))

	s.Equal(`Rex
Age: 2 years
Size: Medium
Build: Balanced
Offensive Battle Accessory: Tiger Claw
Companion 1: Rex - battle - boosted
Skills: Master Hunter & Novice Fighter
Item: Lucky Rabbit's Foot
Buff: Bard (Lark)

Attack bonus: 60%
Defense bonus: 0%
Agility bonus: 0%
Perception bonus: 0%
Total score bonus: 10%`, got)
}

func (s *RenderTestSuite) TestFightSummaryShowsReducedDisability() {
	rec := s.fightRecord()
	rec.Disability = sheet.Affliction{Severity: "Major", Raw: "Major broken leg"}
	rec.Mutations = []sheet.Mutation{{Name: "Horns", Type: "offensive"}}
	rec.Accessories = []sheet.Accessory{{Slot: sheet.SlotRare, Name: "Creepy Contacts"}}
	rec.Items = []string{"Snake Oil"}

	got := s.renderer.Summary(s.engine.Score(rec))

	s.Contains(got, "Creepy Contacts: Yes\n")
	s.Contains(got, "Mutation 1: Horns - offensive\n")
	s.Contains(got, "Disability: (reduced) Moderate\n")
	s.Contains(got, "Total score bonus: -15%")
	s.Equal("Major broken leg", rec.Disability.Raw, "input record must not change")
}

func (s *RenderTestSuite) TestMovementSummary() {
	rec := sheet.NewRecord(sheet.FormRace)
	rec.Name = "Zip"
	rec.Age, rec.AgeRaw = "Under1y", "8 months"
	rec.Size = "Medium"
	rec.Accessories = []sheet.Accessory{{Slot: sheet.SlotRacing, Name: "Racing Shoes"}}
	rec.Skills = sheet.SkillSet{{Name: "Navigation", Rank: "Master"}}

	l := s.engine.Score(rec)

	s.Equal(`Zip
Age: 8 months
Size: Medium
Build: -
Accessories: Racing Shoes
Skills: Master Navigator

Speed bonus: 10%
Stamina bonus: 0%
Balance bonus: 5%
Total score bonus: 5%`, s.renderer.Summary(l))
	s.Equal("!roll race(10,0,5,5)", s.renderer.Command(l))
}

func (s *RenderTestSuite) TestFleeSummaryHasNoAge() {
	rec := sheet.NewRecord(sheet.FormFlee)
	rec.Name = "Zip"
	rec.Age = "Under1y"

	s.Equal(`Zip
Size: -
Build: -

Speed bonus: 0%
Stamina bonus: 0%
Balance bonus: 0%
Total score bonus: 0%`, s.renderer.Summary(s.engine.Score(rec)))
}

func (s *RenderTestSuite) TestCommand() {
	testCases := []struct {
		name   string
		modify func(rec *sheet.Record)
		want   string
	}{
		{
			name:   "axes only",
			modify: func(*sheet.Record) {},
			want:   "!roll fight(30,0,0,0,0)",
		},
		{
			name: "item keyword before specialty keyword",
			modify: func(rec *sheet.Record) {
				rec.Items = []string{"Lucky Rabbit's Foot"}
				rec.Specialties = []string{"Chaotic"}
			},
			want: "!roll fight(30,0,0,0,0) luckyrabbit chaotic",
		},
		{
			name: "buffs add to the total",
			modify: func(rec *sheet.Record) {
				rec.Skills = sheet.SkillSet{{Name: "Fighting", Rank: "Master"}, {Name: "Healing", Rank: "Novice"}}
				rec.Buffs = []string{"Trespass Boost"}
			},
			want: "!roll fight(10,4,0,0,25)",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			rec := s.fightRecord()
			tc.modify(rec)
			s.Equal(tc.want, s.renderer.Command(s.engine.Score(rec)))
		})
	}
}

func (s *RenderTestSuite) TestBreakdown() {
	rec := s.fightRecord()
	rec.Age = "Under1y"
	rec.Accessories = []sheet.Accessory{{Slot: sheet.SlotRare, Name: "Creepy Contacts"}}

	b := s.renderer.Breakdown(s.engine.Score(rec))

	s.Equal([]string{"Source", "ATK", "DEF", "AGI", "PER", "TOTAL"}, b.Header())
	s.Equal([]render.BreakdownRow{
		{Source: "Age (Under1y)", Cells: []string{"-", "-", "-", "-", "-15%"}, Negative: true},
		{Source: "Size", Cells: []string{"+5%", "-", "-", "-", "-"}},
		{Source: "Build", Cells: []string{"+5%", "-", "-", "-", "-"}},
		{Source: "Creepy Contacts", Cells: []string{"-", "-", "-", "+10%", "-"}},
		{Source: "Master Hunting", Cells: []string{"+20%", "-", "-", "-", "-"}},
	}, b.Rows)
	s.Equal([]string{"30%", "0%", "0%", "10%", "-15%"}, b.Totals)
}

func (s *RenderTestSuite) TestPercent() {
	testCases := []struct {
		in   float64
		want string
	}{
		{17.5, "17.5%"},
		{35, "35%"},
		{0, "0%"},
		{math.Copysign(0, -1), "0%"},
		{-15, "-15%"},
	}
	for _, tc := range testCases {
		s.Equal(tc.want, render.Percent(tc.in))
	}
}

func (s *RenderTestSuite) TestGroupAlerts() {
	rep := &sheet.Report{}
	rep.Infof(sheet.CategorySpecialties, "info")
	rep.Warnf(sheet.CategorySkills, "warning")
	rep.Remindf(sheet.CategoryItems, "reminder")
	rep.Errorf(sheet.CategoryAge, "first error")
	rep.Warnf(sheet.CategoryForm, "%sRound.", sheet.UnfilledPrefix)
	rep.Errorf(sheet.CategorySize, "second error")
	rep.Typof("Corrected %q to %q.", "Meduim", "Medium")

	g := s.renderer.GroupAlerts(rep)

	var messages []string
	for _, a := range g.Alerts {
		messages = append(messages, a.Message)
	}
	s.Equal([]string{"first error", "second error", "Unfilled: Round.", "warning", "info"}, messages)
	s.Require().Len(g.Reminders, 1)
	s.Equal("reminder", g.Reminders[0].Message)
	s.Equal([]string{`Corrected "Meduim" to "Medium".`}, g.Typos)
	s.False(g.Clean())
	s.Equal("info", rep.Alerts[0].Message, "report order must not change")
}

func (s *RenderTestSuite) TestGroupAlertsClean() {
	s.True(s.renderer.GroupAlerts(&sheet.Report{}).Clean())
	s.True(s.renderer.GroupAlerts(nil).Clean())
}

func (s *RenderTestSuite) TestIssues() {
	rep := &sheet.Report{}
	s.Empty(s.renderer.Issues(rep))

	rep.Warnf(sheet.CategoryItems, "not an error")
	rep.Errorf(sheet.CategoryAge, "Age not recognized.")
	rep.Errorf(sheet.CategorySkills, "Only 1 skill found, exactly 2 required.")
	rep.Errorf(sheet.CategoryAge, "Missing: Age.")
	rep.Errorf("", "uncategorized")

	s.Equal("Issues found: age, skills, form", s.renderer.Issues(rep))
}

func TestRenderSuite(t *testing.T) {
	suite.Run(t, new(RenderTestSuite))
}
