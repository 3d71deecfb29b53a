package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/errors"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/handlers/cli"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/orchestrators/form"
	formmock "github.com/KirkDiggler/rpg-sheet-calc/internal/orchestrators/form/mock"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/orchestrators/quickroll"
	quickrollmock "github.com/KirkDiggler/rpg-sheet-calc/internal/orchestrators/quickroll/mock"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/parser"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/render"
	formsession "github.com/KirkDiggler/rpg-sheet-calc/internal/repositories/form_session"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/rules"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/testutils"
)

type HandlerTestSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockForm      *formmock.MockService
	mockQuickRoll *quickrollmock.MockService
	out           *bytes.Buffer
	handler       *cli.Handler
	ctx           context.Context
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockForm = formmock.NewMockService(s.ctrl)
	s.mockQuickRoll = quickrollmock.NewMockService(s.ctrl)
	s.out = &bytes.Buffer{}
	s.ctx = context.Background()

	handler, err := cli.NewHandler(&cli.HandlerConfig{
		FormService:      s.mockForm,
		QuickRollService: s.mockQuickRoll,
		IDGenerator:      idgen.NewSequential("sess"),
		Out:              s.out,
	})
	s.Require().NoError(err)
	s.handler = handler
}

func (s *HandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerTestSuite) TestEval_PrintsOutput() {
	s.mockForm.EXPECT().
		Evaluate(s.ctx, &form.EvaluateInput{
			Form: sheet.FormFight,
			Text: testutils.FightSheet,
			Selection: sheet.Selection{
				Buffs: []string{"Bard"},
				Notes: map[string]string{"Bard": "Lark"},
			},
			Mode:    sheet.ModeButton,
			Trigger: true,
		}).
		Return(&form.EvaluateOutput{
			Mode:    sheet.ModeButton,
			Summary: "Rex\nAge: 2 years",
			Command: "!roll fight(30,0,0,0,0)",
			Breakdown: &render.Breakdown{
				Axes: sheet.FightAxes,
				Rows: []render.BreakdownRow{
					{Source: "Size", Cells: []string{"+5%", "-", "-", "-", "-"}},
					{Source: "Age (Under1y)", Cells: []string{"-", "-", "-", "-", "-15%"}, Negative: true},
				},
				Totals: []string{"5%", "0%", "0%", "0%", "-15%"},
			},
		}, nil)

	err := s.handler.Eval(s.ctx, &cli.EvalRequest{
		Form:    "Fight",
		Text:    testutils.FightSheet,
		Buffs:   []string{"Bard"},
		Notes:   map[string]string{"Bard": "Lark"},
		Mode:    "button",
		Trigger: true,
	})
	s.Require().NoError(err)

	got := s.out.String()
	s.Contains(got, render.CleanMessage)
	s.Contains(got, "Rex\nAge: 2 years")
	s.Contains(got, "!roll fight(30,0,0,0,0)")
	s.Contains(got, "Source")
	s.Contains(got, "Age (Under1y)")
	s.Contains(got, render.TotalLabel)
	s.Contains(got, "-15%")
}

func (s *HandlerTestSuite) TestEval_IssuesFailPrecondition() {
	rep := &sheet.Report{}
	rep.Errorf(sheet.CategorySkills, "Only 1 skill found, exactly 2 required.")
	rep.Remindf(sheet.CategorySpecialties, "Traitor: Only applies against blood relatives.")

	s.mockForm.EXPECT().
		Evaluate(s.ctx, gomock.Any()).
		Return(&form.EvaluateOutput{
			Report:   rep,
			Alerts:   render.New(rules.MustDefault()).GroupAlerts(rep),
			Issues:   "Issues found: skills",
			Withheld: true,
		}, nil)

	err := s.handler.Eval(s.ctx, &cli.EvalRequest{Form: "fight", Text: testutils.FightSheetOneSkill})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))

	got := s.out.String()
	s.Contains(got, render.AlertsTitle)
	s.Contains(got, "Only 1 skill found, exactly 2 required.")
	s.Contains(got, render.RemindersTitle)
	s.Contains(got, "Issues found: skills")
	s.NotContains(got, "!roll")
}

func (s *HandlerTestSuite) TestEval_WithheldInButtonMode() {
	s.mockForm.EXPECT().
		Evaluate(s.ctx, gomock.Any()).
		Return(&form.EvaluateOutput{Mode: sheet.ModeButton, Withheld: true}, nil)

	s.Require().NoError(s.handler.Eval(s.ctx, &cli.EvalRequest{Form: "race", Text: testutils.RaceSheet}))
	s.Contains(s.out.String(), "--trigger")
}

func (s *HandlerTestSuite) TestEval_NewSession() {
	s.mockForm.EXPECT().
		Evaluate(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input *form.EvaluateInput) (*form.EvaluateOutput, error) {
			s.Equal("sess_1", input.SessionID)
			return &form.EvaluateOutput{Skipped: true}, nil
		})

	s.Require().NoError(s.handler.Eval(s.ctx, &cli.EvalRequest{
		Form:      "flee",
		Text:      testutils.FleeSheet,
		SessionID: cli.NewSessionID,
	}))
	s.Contains(s.out.String(), "Session: sess_1")
	s.Contains(s.out.String(), "skipped")
}

func (s *HandlerTestSuite) TestEval_RequiresText() {
	err := s.handler.Eval(s.ctx, &cli.EvalRequest{Form: "fight", Text: "  \n"})
	s.True(errors.IsInvalidArgument(err))
}

func (s *HandlerTestSuite) TestEval_PassesServiceErrors() {
	s.mockForm.EXPECT().
		Evaluate(s.ctx, gomock.Any()).
		Return(nil, errors.InvalidArgumentf("unknown form %q", "joust"))

	err := s.handler.Eval(s.ctx, &cli.EvalRequest{Form: "joust", Text: "x"})
	s.True(errors.IsInvalidArgument(err))
	s.Equal(2, errors.GetCode(err).ExitCode())
}

func (s *HandlerTestSuite) TestScan() {
	s.mockForm.EXPECT().
		Scan(s.ctx, &form.ScanInput{Form: sheet.FormFight, Text: testutils.FightSheetItems}).
		Return(&form.ScanOutput{Result: &parser.ScanResult{
			Items:        []string{"Lucky Rabbit's Foot"},
			Buffs:        []string{"Trespass Boost"},
			SkillSummary: "Master Hunter, Novice Fighter",
			Options: []parser.SpecialtyGroup{
				{Label: "Master Intellect", Specialties: []string{"Bard", "Chaotic"}},
				{Label: "Novice Healing (needs Master)", Disabled: true, Specialties: []string{"Medic"}},
			},
		}}, nil)

	s.Require().NoError(s.handler.Scan(s.ctx, &cli.ScanRequest{Form: "fight", Text: testutils.FightSheetItems}))

	got := s.out.String()
	s.Contains(got, "Lucky Rabbit's Foot")
	s.Contains(got, "Trespass Boost")
	s.Contains(got, "Master Hunter, Novice Fighter")
	s.Contains(got, "Bard, Chaotic")
	s.Contains(got, "Medic")
	s.NotContains(got, "Accessories:")
}

func (s *HandlerTestSuite) TestQuickRoll() {
	s.mockQuickRoll.EXPECT().
		Build(s.ctx, &quickroll.BuildInput{Name: "Trespass", Options: []string{"Infiltrator"}}).
		Return(&quickroll.BuildOutput{Command: "!roll trespass infiltrator"}, nil)

	s.Require().NoError(s.handler.QuickRoll(s.ctx, &cli.QuickRollRequest{Name: "Trespass", Options: []string{"Infiltrator"}}))
	s.Contains(s.out.String(), "!roll trespass infiltrator")
}

func (s *HandlerTestSuite) TestQuickRollList() {
	s.mockQuickRoll.EXPECT().
		List(s.ctx, &quickroll.ListInput{}).
		Return(&quickroll.ListOutput{QuickRolls: rules.MustDefault().QuickRolls}, nil)

	s.Require().NoError(s.handler.QuickRoll(s.ctx, &cli.QuickRollRequest{}))
	s.Contains(s.out.String(), "Trespass")
	s.Contains(s.out.String(), "Items: Lucky Rabbit's Foot, Black Cat's Foot")
}

func (s *HandlerTestSuite) TestSetMode() {
	s.mockForm.EXPECT().
		SetMode(s.ctx, &form.SetModeInput{SessionID: "sess-9", Mode: sheet.ModeLive}).
		Return(&form.SetModeOutput{Session: &formsession.Session{ID: "sess-9", Mode: sheet.ModeLive}}, nil)

	s.Require().NoError(s.handler.SetMode(s.ctx, "sess-9", "LIVE"))
	s.Contains(s.out.String(), "Mode for session sess-9: live")

	s.True(errors.IsInvalidArgument(s.handler.SetMode(s.ctx, "", "live")))
}

func (s *HandlerTestSuite) TestShowSession() {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.mockForm.EXPECT().
		GetSession(s.ctx, &form.GetSessionInput{SessionID: "sess-9"}).
		Return(&form.GetSessionOutput{Session: &formsession.Session{
			ID: "sess-9",
			Drafts: map[sheet.Form]*formsession.Draft{
				sheet.FormRace:  {Text: testutils.RaceSheet, UpdatedAt: at},
				sheet.FormFight: {Text: testutils.FightSheet, UpdatedAt: at},
			},
			ExpiresAt: at.Add(12 * time.Hour),
		}}, nil)

	s.Require().NoError(s.handler.ShowSession(s.ctx, "sess-9"))

	got := s.out.String()
	s.Contains(got, "Mode: default")
	s.Contains(got, "2025-03-02T00:00:00Z")
	fight := bytes.Index(s.out.Bytes(), []byte("Rex vs Mika for Spar"))
	race := bytes.Index(s.out.Bytes(), []byte("Zip - race"))
	s.Greater(race, fight, "drafts are listed in form order")
}

func (s *HandlerTestSuite) TestClearSession() {
	s.mockForm.EXPECT().
		ClearSession(s.ctx, &form.ClearSessionInput{SessionID: "sess-9", Form: sheet.FormFight}).
		Return(&form.ClearSessionOutput{Cleared: true}, nil)
	s.mockForm.EXPECT().
		ClearSession(s.ctx, &form.ClearSessionInput{SessionID: "sess-9"}).
		Return(&form.ClearSessionOutput{}, nil)

	s.Require().NoError(s.handler.ClearSession(s.ctx, "sess-9", "fight"))
	s.Require().NoError(s.handler.ClearSession(s.ctx, "sess-9", ""))
	s.Equal("Cleared.\nNothing to clear.\n", s.out.String())
}

func (s *HandlerTestSuite) TestValidateRules() {
	dir := s.T().TempDir()

	good := filepath.Join(dir, "rules.yaml")
	s.Require().NoError(os.WriteFile(good, rules.DefaultYAML(), 0o600))
	s.Require().NoError(s.handler.ValidateRules(good))
	s.Contains(s.out.String(), "Rules OK:")

	bad := filepath.Join(dir, "bad.yaml")
	s.Require().NoError(os.WriteFile(bad, []byte("skills: [unclosed"), 0o600))
	s.Error(s.handler.ValidateRules(bad))

	s.Error(s.handler.ValidateRules(filepath.Join(dir, "missing.yaml")))
}

func TestNewHandler_Config(t *testing.T) {
	_, err := cli.NewHandler(&cli.HandlerConfig{Out: &bytes.Buffer{}})
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}
