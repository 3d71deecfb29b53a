package formsession

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/errors"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/rpg-sheet-calc/internal/redis"
)

// Key pattern: form_session:{id}
const sessionKeyPrefix = "form_session:"

// Config holds the configuration for the Redis repository
type Config struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Client == nil {
		vb.RequiredField("Client")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	return vb.Build()
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// NewRedisRepository creates a Redis-backed session repository
func NewRedisRepository(cfg *Config) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  cfg.Clock,
	}, nil
}

// Ensure redisRepository implements Repository
var _ Repository = (*redisRepository)(nil)

// Create stores a new empty session with the given TTL
func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	ttl := input.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := r.clock.Now()
	session := &Session{
		ID:        input.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal session")
	}

	ok, err := r.client.SetNX(ctx, buildKey(input.ID), data, ttl).Result()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to store session in Redis")
	}
	if !ok {
		return nil, errors.AlreadyExists(errAlreadyTaken).WithMeta("session_id", input.ID)
	}

	slog.DebugContext(ctx, "session created", "session_id", input.ID, "ttl", ttl)
	return &CreateOutput{Session: session}, nil
}

// Get retrieves a live session
func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	key := buildKey(input.ID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redisclient.Nil {
			return nil, errors.NotFound(errNotFound).WithMeta("session_id", input.ID)
		}
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to get session from Redis")
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal session")
	}

	// The stored deadline wins over a key TTL that outlives it
	if !r.clock.Now().Before(session.ExpiresAt) {
		_ = r.client.Del(ctx, key)
		slog.DebugContext(ctx, "session expired", "session_id", input.ID)
		return nil, errors.NotFound(errExpired).WithMeta("session_id", input.ID)
	}

	return &GetOutput{Session: &session}, nil
}

// Update replaces a live session, keeping the key alive until ExpiresAt
func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	session := input.Session
	if session == nil {
		return nil, errors.InvalidArgument(errSessionNil)
	}
	if session.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	remaining := session.ExpiresAt.Sub(r.clock.Now())
	if remaining <= 0 {
		return nil, errors.NotFound(errExpired).WithMeta("session_id", session.ID)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal session")
	}

	// SetXX fails on a key Redis has already evicted
	ok, err := r.client.SetXX(ctx, buildKey(session.ID), data, remaining).Result()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to update session in Redis")
	}
	if !ok {
		return nil, errors.NotFound(errNotFound).WithMeta("session_id", session.ID)
	}

	return &UpdateOutput{Session: session}, nil
}

// Delete removes a session
func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	n, err := r.client.Del(ctx, buildKey(input.ID)).Result()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to delete session from Redis")
	}

	return &DeleteOutput{Deleted: n > 0}, nil
}

func buildKey(id string) string {
	return sessionKeyPrefix + id
}
