package formsession

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/errors"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/pkg/clock"
)

// InMemoryRepository keeps sessions in process memory. Stored sessions are
// copied on the way in and out so callers never share state.
type InMemoryRepository struct {
	mu    sync.RWMutex
	clock clock.Clock
	store map[string][]byte
}

// Ensure InMemoryRepository implements Repository
var _ Repository = (*InMemoryRepository)(nil)

// NewInMemory creates an in-memory repository. A nil clock uses real time.
func NewInMemory(c clock.Clock) *InMemoryRepository {
	if c == nil {
		c = clock.New()
	}
	return &InMemoryRepository{
		clock: c,
		store: make(map[string][]byte),
	}
}

// Create stores a new empty session
func (r *InMemoryRepository) Create(_ context.Context, input CreateInput) (*CreateOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	ttl := input.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.load(input.ID); err == nil {
		return nil, errors.AlreadyExists(errAlreadyTaken).WithMeta("session_id", input.ID)
	}

	now := r.clock.Now()
	session := &Session{ID: input.ID, CreatedAt: now, ExpiresAt: now.Add(ttl)}
	if err := r.save(session); err != nil {
		return nil, err
	}
	return &CreateOutput{Session: session}, nil
}

// Get retrieves a live session
func (r *InMemoryRepository) Get(_ context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, err := r.load(input.ID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Session: session}, nil
}

// Update replaces a live session
func (r *InMemoryRepository) Update(_ context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Session == nil {
		return nil, errors.InvalidArgument(errSessionNil)
	}
	if input.Session.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.load(input.Session.ID); err != nil {
		return nil, err
	}
	if !r.clock.Now().Before(input.Session.ExpiresAt) {
		delete(r.store, input.Session.ID)
		return nil, errors.NotFound(errExpired).WithMeta("session_id", input.Session.ID)
	}
	if err := r.save(input.Session); err != nil {
		return nil, err
	}
	return &UpdateOutput{Session: input.Session}, nil
}

// Delete removes a session
func (r *InMemoryRepository) Delete(_ context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.load(input.ID)
	delete(r.store, input.ID)
	return &DeleteOutput{Deleted: err == nil}, nil
}

// load decodes a live session. Expired entries read as NotFound and are
// dropped on the next write.
func (r *InMemoryRepository) load(id string) (*Session, error) {
	data, ok := r.store[id]
	if !ok {
		return nil, errors.NotFound(errNotFound).WithMeta("session_id", id)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal session")
	}
	if !r.clock.Now().Before(session.ExpiresAt) {
		return nil, errors.NotFound(errExpired).WithMeta("session_id", id)
	}
	return &session, nil
}

func (r *InMemoryRepository) save(session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "failed to marshal session")
	}
	r.store[session.ID] = data
	return nil
}
