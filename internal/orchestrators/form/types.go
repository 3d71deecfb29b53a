package form

import (
	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/parser"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/render"
	formsession "github.com/KirkDiggler/rpg-sheet-calc/internal/repositories/form_session"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/scoring"
)

// EvaluateInput is one run of the sheet pipeline
type EvaluateInput struct {
	Form      sheet.Form
	Text      string
	Selection sheet.Selection

	// SessionID saves the draft and supplies the mode preference when set
	SessionID string
	// Mode overrides the session preference and the default
	Mode sheet.Mode
	// Trigger is the explicit request for output in button mode
	Trigger bool
}

// EvaluateOutput carries everything the presentation layer shows
type EvaluateOutput struct {
	// Skipped is set when an evaluation of the same form was already
	// running. Nothing else is filled in.
	Skipped bool

	Mode   sheet.Mode
	Record *sheet.Record
	Report *sheet.Report
	Alerts render.AlertGroups
	// Issues is the short summary shown when there are errors
	Issues string
	// Selection is the caller's selection merged with what the text named
	Selection sheet.Selection

	// Withheld is set when scoring and output were suppressed, by errors
	// or by button mode without a trigger
	Withheld  bool
	Ledger    *scoring.Ledger
	Summary   string
	Command   string
	Breakdown *render.Breakdown
}

// ScanInput asks what a sheet would auto-select
type ScanInput struct {
	Form sheet.Form
	Text string
}

// ScanOutput wraps the parser's scan result
type ScanOutput struct {
	Result *parser.ScanResult
}

// SetModeInput saves a session's mode preference
type SetModeInput struct {
	SessionID string
	Mode      sheet.Mode
}

// SetModeOutput returns the updated session
type SetModeOutput struct {
	Session *formsession.Session
}

// GetSessionInput identifies a session
type GetSessionInput struct {
	SessionID string
}

// GetSessionOutput returns the session
type GetSessionOutput struct {
	Session *formsession.Session
}

// ClearSessionInput removes one form's draft, or the whole session when
// Form is empty
type ClearSessionInput struct {
	SessionID string
	Form      sheet.Form
}

// ClearSessionOutput reports whether anything was removed
type ClearSessionOutput struct {
	Cleared bool
}
