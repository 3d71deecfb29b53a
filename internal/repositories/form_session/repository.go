// Package formsession stores per-session drafts: the text and selections of
// each form and the live/button preference. Sessions expire after a TTL.
package formsession

import (
	"context"
	"time"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=formsessionmock github.com/KirkDiggler/rpg-sheet-calc/internal/repositories/form_session Repository

// Draft is the last evaluated input for one form
type Draft struct {
	Text      string          `json:"text"`
	Selection sheet.Selection `json:"selection"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Session groups the drafts of one user session
type Session struct {
	ID string `json:"id"`

	// Mode is the saved scheduling preference, empty when never set
	Mode sheet.Mode `json:"mode,omitempty"`

	Drafts map[sheet.Form]*Draft `json:"drafts,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Draft returns the saved draft for a form, or nil
func (s *Session) Draft(form sheet.Form) *Draft {
	if s == nil || s.Drafts == nil {
		return nil
	}
	return s.Drafts[form]
}

// CreateInput contains parameters for creating a session
type CreateInput struct {
	ID  string
	TTL time.Duration
}

// CreateOutput contains the created session
type CreateOutput struct {
	Session *Session
}

// GetInput contains parameters for retrieving a session
type GetInput struct {
	ID string
}

// GetOutput contains the retrieved session
type GetOutput struct {
	Session *Session
}

// UpdateInput replaces a stored session. The session's ExpiresAt sets the
// remaining lifetime.
type UpdateInput struct {
	Session *Session
}

// UpdateOutput contains the stored session
type UpdateOutput struct {
	Session *Session
}

// DeleteInput contains parameters for deleting a session
type DeleteInput struct {
	ID string
}

// DeleteOutput reports whether a live session was removed
type DeleteOutput struct {
	Deleted bool
}

// Repository defines the interface for session storage
type Repository interface {
	// Create stores a new empty session; AlreadyExists when the ID is taken
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get returns a live session; NotFound when missing or expired
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update replaces a live session; NotFound when missing or expired
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a session; deleting a missing session is not an error
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

const (
	// DefaultTTL applies when CreateInput.TTL is zero
	DefaultTTL = 12 * time.Hour

	errIDEmpty      = "session ID cannot be empty"
	errSessionNil   = "session cannot be nil"
	errNotFound     = "session not found"
	errExpired      = "session has expired"
	errAlreadyTaken = "session already exists"
)
