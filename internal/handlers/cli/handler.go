// Package cli presents the sheet orchestrators on a terminal: it turns
// command requests into orchestrator inputs and writes styled output.
package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/errors"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/orchestrators/form"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/orchestrators/quickroll"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/rules"
)

// NewSessionID asks for a freshly generated session
const NewSessionID = "new"

// HandlerConfig holds dependencies for the CLI handler
type HandlerConfig struct {
	FormService      form.Service
	QuickRollService quickroll.Service
	IDGenerator      idgen.Generator
	Out              io.Writer
}

// Validate ensures all required dependencies are present
func (c *HandlerConfig) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.FormService == nil {
		vb.RequiredField("FormService")
	}
	if c.QuickRollService == nil {
		vb.RequiredField("QuickRollService")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.Out == nil {
		vb.RequiredField("Out")
	}

	return vb.Build()
}

// Handler runs CLI requests against the orchestrators
type Handler struct {
	formService      form.Service
	quickRollService quickroll.Service
	idGen            idgen.Generator
	out              io.Writer
	styles           Styles
}

// NewHandler creates a new CLI handler with the given configuration
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Handler{
		formService:      cfg.FormService,
		quickRollService: cfg.QuickRollService,
		idGen:            cfg.IDGenerator,
		out:              cfg.Out,
		styles:           NewStyles(lipgloss.NewRenderer(cfg.Out)),
	}, nil
}

// EvalRequest is one sheet evaluation from the command line
type EvalRequest struct {
	Form        string
	Text        string
	Items       []string
	Buffs       []string
	Accessories []string
	Specialty   string
	Notes       map[string]string
	SessionID   string
	Mode        string
	Trigger     bool
}

// Eval evaluates a sheet and prints alerts, then the summary, command and
// breakdown when output was produced. A sheet with errors is reported as a
// FailedPrecondition after its alerts are printed.
func (h *Handler) Eval(ctx context.Context, req *EvalRequest) error {
	if req == nil {
		return errors.InvalidArgument("request is required")
	}
	if strings.TrimSpace(req.Text) == "" {
		return errors.InvalidArgument("sheet text is required")
	}

	sessionID := h.resolveSession(req.SessionID)

	out, err := h.formService.Evaluate(ctx, &form.EvaluateInput{
		Form: sheet.Form(strings.ToLower(req.Form)),
		Text: req.Text,
		Selection: sheet.Selection{
			Items:       req.Items,
			Buffs:       req.Buffs,
			Accessories: req.Accessories,
			Specialty:   req.Specialty,
			Notes:       req.Notes,
		},
		SessionID: sessionID,
		Mode:      sheet.Mode(strings.ToLower(req.Mode)),
		Trigger:   req.Trigger,
	})
	if err != nil {
		return err
	}

	if out.Skipped {
		h.printf("%s\n", h.styles.Muted.Render("Evaluation already running, skipped."))
		return nil
	}

	h.printf("%s", h.styles.alertGroups(out.Alerts))

	if out.Issues != "" {
		h.printf("\n%s\n", h.styles.Error.Render(out.Issues))
		return errors.FailedPrecondition(out.Issues)
	}
	if out.Withheld {
		h.printf("\n%s\n", h.styles.Muted.Render("Output withheld in button mode; run again with --trigger."))
		return nil
	}

	h.printf("\n%s\n\n%s\n\n%s", out.Summary, h.styles.Bold.Render(out.Command), h.styles.breakdownTable(out.Breakdown))
	return nil
}

func (h *Handler) resolveSession(id string) string {
	if id != NewSessionID {
		return id
	}
	id = h.idGen.Generate()
	h.printf("%s\n", h.styles.Muted.Render("Session: "+id))
	return id
}

// ScanRequest asks what a sheet would auto-select
type ScanRequest struct {
	Form string
	Text string
}

// Scan prints the selections the text implies
func (h *Handler) Scan(ctx context.Context, req *ScanRequest) error {
	if req == nil {
		return errors.InvalidArgument("request is required")
	}

	out, err := h.formService.Scan(ctx, &form.ScanInput{
		Form: sheet.Form(strings.ToLower(req.Form)),
		Text: req.Text,
	})
	if err != nil {
		return err
	}

	res := out.Result
	h.field("Items", strings.Join(res.Items, ", "))
	h.field("Buffs", strings.Join(res.Buffs, ", "))
	h.field("Accessories", strings.Join(res.Accessories, ", "))
	h.field("Skills", res.SkillSummary)
	h.field("Specialty", res.Specialty)
	if res.SpecialtyNote != "" {
		h.printf("%s\n", h.styles.Info.Render(res.SpecialtyNote))
	}

	for _, group := range res.Options {
		names := strings.Join(group.Specialties, ", ")
		label := group.Label
		if label == "" {
			label = "Specialties"
		}
		if group.Disabled {
			h.printf("%s %s\n", h.styles.Muted.Render(label+":"), h.styles.Muted.Render(names))
			continue
		}
		h.printf("%s %s\n", h.styles.Bold.Render(label+":"), names)
	}
	return nil
}

// QuickRollRequest builds a preset command; an empty Name lists the presets
type QuickRollRequest struct {
	Name    string
	Options []string
}

// QuickRoll prints a preset command or the preset catalog
func (h *Handler) QuickRoll(ctx context.Context, req *QuickRollRequest) error {
	if req == nil {
		return errors.InvalidArgument("request is required")
	}

	if req.Name == "" {
		out, err := h.quickRollService.List(ctx, &quickroll.ListInput{})
		if err != nil {
			return err
		}
		for _, qr := range out.QuickRolls {
			h.printQuickRoll(qr)
		}
		return nil
	}

	out, err := h.quickRollService.Build(ctx, &quickroll.BuildInput{Name: req.Name, Options: req.Options})
	if err != nil {
		return err
	}
	h.printf("%s\n", h.styles.Bold.Render(out.Command))
	return nil
}

func (h *Handler) printQuickRoll(qr rules.QuickRoll) {
	h.printf("%s  %s\n", h.styles.Title.Render(qr.Name), h.styles.Muted.Render(qr.Command))
	for _, section := range qr.Sections {
		labels := make([]string, len(section.Options))
		for i, opt := range section.Options {
			labels[i] = opt.Label
		}
		h.printf("  %s: %s\n", section.Title, strings.Join(labels, ", "))
	}
}

// SetMode saves the live/button preference for a session
func (h *Handler) SetMode(ctx context.Context, sessionID, mode string) error {
	if sessionID == "" {
		return errors.InvalidArgument("session is required")
	}

	out, err := h.formService.SetMode(ctx, &form.SetModeInput{
		SessionID: h.resolveSession(sessionID),
		Mode:      sheet.Mode(strings.ToLower(mode)),
	})
	if err != nil {
		return err
	}
	h.printf("Mode for session %s: %s\n", out.Session.ID, out.Session.Mode)
	return nil
}

// ShowSession prints a session's preference and drafts
func (h *Handler) ShowSession(ctx context.Context, sessionID string) error {
	out, err := h.formService.GetSession(ctx, &form.GetSessionInput{SessionID: sessionID})
	if err != nil {
		return err
	}

	s := out.Session
	mode := string(s.Mode)
	if mode == "" {
		mode = "default"
	}
	h.field("Session", s.ID)
	h.field("Mode", mode)
	h.field("Expires", s.ExpiresAt.Format(time.RFC3339))

	forms := make([]sheet.Form, 0, len(s.Drafts))
	for f := range s.Drafts {
		forms = append(forms, f)
	}
	slices.SortFunc(forms, func(a, b sheet.Form) int {
		return slices.Index(sheet.Forms, a) - slices.Index(sheet.Forms, b)
	})

	for _, f := range forms {
		d := s.Drafts[f]
		first, _, _ := strings.Cut(d.Text, "\n")
		h.printf("%s  %s  %s\n",
			h.styles.Title.Render(string(f)),
			h.styles.Muted.Render(d.UpdatedAt.Format(time.RFC3339)),
			first)
	}
	return nil
}

// ClearSession removes one form's draft, or the whole session when form is
// empty
func (h *Handler) ClearSession(ctx context.Context, sessionID, formName string) error {
	out, err := h.formService.ClearSession(ctx, &form.ClearSessionInput{
		SessionID: sessionID,
		Form:      sheet.Form(strings.ToLower(formName)),
	})
	if err != nil {
		return err
	}
	if !out.Cleared {
		h.printf("Nothing to clear.\n")
		return nil
	}
	h.printf("Cleared.\n")
	return nil
}

// ValidateRules loads a rule file and reports every problem in it
func (h *Handler) ValidateRules(path string) error {
	r, err := rules.LoadFile(path)
	if err != nil {
		return err
	}
	h.printf("%s %d skills, %d specialties, %d quick rolls\n",
		h.styles.Success.Render("Rules OK:"),
		len(r.Skills), len(r.Specialties), len(r.QuickRolls))
	return nil
}

func (h *Handler) field(label, value string) {
	if value != "" {
		h.printf("%s %s\n", h.styles.Bold.Render(label+":"), value)
	}
}

func (h *Handler) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(h.out, format, args...)
}
