// Package form runs the sheet pipeline for the fight, flee and race forms:
// parse, validate, score and render, with session drafts and the
// live/button scheduling preference.
package form

//go:generate mockgen -destination=mock/mock_service.go -package=formmock github.com/KirkDiggler/rpg-sheet-calc/internal/orchestrators/form Service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/errors"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/parser"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/render"
	formsession "github.com/KirkDiggler/rpg-sheet-calc/internal/repositories/form_session"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/rules"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/scoring"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/validator"
)

// Service defines the sheet operations
type Service interface {
	// Evaluate runs the full pipeline on one form's text
	Evaluate(ctx context.Context, input *EvaluateInput) (*EvaluateOutput, error)
	// Scan reports what the text would auto-select, without scoring
	Scan(ctx context.Context, input *ScanInput) (*ScanOutput, error)

	SetMode(ctx context.Context, input *SetModeInput) (*SetModeOutput, error)
	GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error)
	ClearSession(ctx context.Context, input *ClearSessionInput) (*ClearSessionOutput, error)
}

// Config holds the dependencies for the form orchestrator
type Config struct {
	Rules       *rules.Rules
	SessionRepo formsession.Repository
	Clock       clock.Clock

	// SessionTTL is the sliding lifetime of a session
	SessionTTL time.Duration
	// DefaultMode applies when neither the call nor the session names one
	DefaultMode sheet.Mode
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Rules == nil {
		vb.RequiredField("Rules")
	}
	if c.SessionRepo == nil {
		vb.RequiredField("SessionRepo")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.SessionTTL <= 0 {
		vb.InvalidField("SessionTTL", "must be positive")
	}
	if c.DefaultMode != "" && !c.DefaultMode.IsValid() {
		vb.InvalidField("DefaultMode", string(c.DefaultMode))
	}

	return vb.Build()
}

type orchestrator struct {
	parser    *parser.Parser
	validator *validator.Validator
	scorer    *scoring.Engine
	renderer  *render.Renderer

	sessionRepo formsession.Repository
	clock       clock.Clock
	sessionTTL  time.Duration
	defaultMode sheet.Mode

	// guards hold one lock per form; an evaluation that cannot take its
	// form's lock is skipped, not queued
	guards map[sheet.Form]*sync.Mutex
}

// NewOrchestrator creates a new form orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	p, err := parser.New(cfg.Rules)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create parser")
	}

	mode := cfg.DefaultMode
	if mode == "" {
		mode = sheet.ModeButton
	}

	guards := make(map[sheet.Form]*sync.Mutex, len(sheet.Forms))
	for _, f := range sheet.Forms {
		guards[f] = &sync.Mutex{}
	}

	return &orchestrator{
		parser:      p,
		validator:   validator.New(cfg.Rules),
		scorer:      scoring.New(cfg.Rules),
		renderer:    render.New(cfg.Rules),
		sessionRepo: cfg.SessionRepo,
		clock:       cfg.Clock,
		sessionTTL:  cfg.SessionTTL,
		defaultMode: mode,
		guards:      guards,
	}, nil
}

// Evaluate parses, validates and, unless withheld, scores and renders a
// sheet. Sheet problems are reported as alerts, never as errors.
func (o *orchestrator) Evaluate(ctx context.Context, input *EvaluateInput) (*EvaluateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if !input.Form.IsValid() {
		return nil, errors.InvalidArgumentf("unknown form %q", input.Form)
	}
	if input.Mode != "" && !input.Mode.IsValid() {
		return nil, errors.InvalidArgumentf("unknown mode %q", input.Mode)
	}

	guard := o.guards[input.Form]
	if !guard.TryLock() {
		slog.DebugContext(ctx, "evaluation already running, skipped", "form", input.Form)
		return &EvaluateOutput{Skipped: true}, nil
	}
	defer guard.Unlock()

	var session *formsession.Session
	if input.SessionID != "" {
		var err error
		session, err = o.loadOrCreate(ctx, input.SessionID)
		if err != nil {
			return nil, err
		}
	}

	out := &EvaluateOutput{Mode: o.resolveMode(input.Mode, session)}
	o.run(input, out)

	if session != nil {
		if err := o.saveDraft(ctx, session, input, out.Selection); err != nil {
			return nil, err
		}
	}

	slog.InfoContext(ctx, "sheet evaluated",
		"form", input.Form,
		"mode", out.Mode,
		"errors", len(out.Report.Errors()),
		"alerts", len(out.Report.Alerts),
		"withheld", out.Withheld,
	)
	return out, nil
}

func (o *orchestrator) run(input *EvaluateInput, out *EvaluateOutput) {
	res := o.parser.Parse(input.Form, input.Text, input.Selection)
	out.Report = res.Report
	out.Record = res.Record

	if res.Duplicate {
		out.Selection = input.Selection
		out.Alerts = o.renderer.GroupAlerts(out.Report)
		out.Issues = o.renderer.Issues(out.Report)
		out.Withheld = true
		return
	}

	o.validator.Validate(out.Record, out.Report)
	out.Selection = effectiveSelection(out.Record)
	out.Alerts = o.renderer.GroupAlerts(out.Report)

	if out.Report.HasErrors() {
		out.Issues = o.renderer.Issues(out.Report)
		out.Withheld = true
		return
	}
	if out.Mode == sheet.ModeButton && !input.Trigger {
		out.Withheld = true
		return
	}

	out.Ledger = o.scorer.Score(out.Record)
	out.Summary = o.renderer.Summary(out.Ledger)
	out.Command = o.renderer.Command(out.Ledger)
	out.Breakdown = o.renderer.Breakdown(out.Ledger)
}

func (o *orchestrator) resolveMode(requested sheet.Mode, session *formsession.Session) sheet.Mode {
	if requested != "" {
		return requested
	}
	if session != nil && session.Mode.IsValid() {
		return session.Mode
	}
	return o.defaultMode
}

// effectiveSelection is what the UI would show checked after the text was
// read: caller choices plus text matches
func effectiveSelection(rec *sheet.Record) sheet.Selection {
	sel := sheet.Selection{
		Items:     append([]string(nil), rec.Items...),
		Buffs:     append([]string(nil), rec.Buffs...),
		Specialty: rec.Override,
	}
	for _, a := range rec.AccessoriesIn(sheet.SlotRacing) {
		sel.Accessories = append(sel.Accessories, a.Name)
	}
	if len(rec.Notes) > 0 {
		sel.Notes = make(map[string]string, len(rec.Notes))
		for k, v := range rec.Notes {
			sel.Notes[k] = v
		}
	}
	return sel
}

// Scan reports the auto-selections for a sheet
func (o *orchestrator) Scan(_ context.Context, input *ScanInput) (*ScanOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if !input.Form.IsValid() {
		return nil, errors.InvalidArgumentf("unknown form %q", input.Form)
	}

	return &ScanOutput{Result: o.parser.Scan(input.Form, input.Text)}, nil
}

// SetMode saves the live/button preference, creating the session if needed
func (o *orchestrator) SetMode(ctx context.Context, input *SetModeInput) (*SetModeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}
	if !input.Mode.IsValid() {
		return nil, errors.InvalidArgumentf("unknown mode %q", input.Mode)
	}

	session, err := o.loadOrCreate(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	session.Mode = input.Mode

	if err := o.store(ctx, session); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "mode updated", "session_id", session.ID, "mode", session.Mode)
	return &SetModeOutput{Session: session}, nil
}

// GetSession returns a live session
func (o *orchestrator) GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	out, err := o.sessionRepo.Get(ctx, formsession.GetInput{ID: input.SessionID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get session %s", input.SessionID)
	}
	return &GetSessionOutput{Session: out.Session}, nil
}

// ClearSession removes a form's draft, or the whole session
func (o *orchestrator) ClearSession(ctx context.Context, input *ClearSessionInput) (*ClearSessionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.SessionID == "" {
		return nil, errors.InvalidArgument("session ID is required")
	}

	if input.Form == "" {
		out, err := o.sessionRepo.Delete(ctx, formsession.DeleteInput{ID: input.SessionID})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to delete session %s", input.SessionID)
		}
		slog.InfoContext(ctx, "session cleared", "session_id", input.SessionID, "deleted", out.Deleted)
		return &ClearSessionOutput{Cleared: out.Deleted}, nil
	}

	if !input.Form.IsValid() {
		return nil, errors.InvalidArgumentf("unknown form %q", input.Form)
	}

	got, err := o.sessionRepo.Get(ctx, formsession.GetInput{ID: input.SessionID})
	if errors.IsNotFound(err) {
		return &ClearSessionOutput{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get session %s", input.SessionID)
	}

	session := got.Session
	if session.Draft(input.Form) == nil {
		return &ClearSessionOutput{}, nil
	}
	delete(session.Drafts, input.Form)
	if err := o.store(ctx, session); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "draft cleared", "session_id", session.ID, "form", input.Form)
	return &ClearSessionOutput{Cleared: true}, nil
}

func (o *orchestrator) loadOrCreate(ctx context.Context, id string) (*formsession.Session, error) {
	got, err := o.sessionRepo.Get(ctx, formsession.GetInput{ID: id})
	if err == nil {
		return got.Session, nil
	}
	if !errors.IsNotFound(err) {
		return nil, errors.Wrapf(err, "failed to get session %s", id)
	}

	created, err := o.sessionRepo.Create(ctx, formsession.CreateInput{ID: id, TTL: o.sessionTTL})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create session %s", id)
	}
	slog.InfoContext(ctx, "session created", "session_id", id)
	return created.Session, nil
}

func (o *orchestrator) saveDraft(ctx context.Context, session *formsession.Session, input *EvaluateInput, sel sheet.Selection) error {
	if session.Drafts == nil {
		session.Drafts = map[sheet.Form]*formsession.Draft{}
	}
	session.Drafts[input.Form] = &formsession.Draft{
		Text:      input.Text,
		Selection: sel,
		UpdatedAt: o.clock.Now(),
	}
	return o.store(ctx, session)
}

// store writes the session back, sliding its expiry forward
func (o *orchestrator) store(ctx context.Context, session *formsession.Session) error {
	session.ExpiresAt = o.clock.Now().Add(o.sessionTTL)
	if _, err := o.sessionRepo.Update(ctx, formsession.UpdateInput{Session: session}); err != nil {
		return errors.Wrapf(err, "failed to save session %s", session.ID)
	}
	return nil
}
