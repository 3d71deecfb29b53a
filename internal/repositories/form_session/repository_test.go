package formsession_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/errors"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/pkg/clock"
	formsession "github.com/KirkDiggler/rpg-sheet-calc/internal/repositories/form_session"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/testutils"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// RepositoryTestSuite runs the same contract against every implementation
type RepositoryTestSuite struct {
	suite.Suite
	newRepo func(t testing.TB, c clock.Clock) formsession.Repository
	clock   *clock.Fixed
	repo    formsession.Repository
	ctx     context.Context
}

func (s *RepositoryTestSuite) SetupTest() {
	s.clock = &clock.Fixed{T: epoch}
	s.repo = s.newRepo(s.T(), s.clock)
	s.ctx = context.Background()
}

func (s *RepositoryTestSuite) create(id string, ttl time.Duration) *formsession.Session {
	out, err := s.repo.Create(s.ctx, formsession.CreateInput{ID: id, TTL: ttl})
	s.Require().NoError(err)
	return out.Session
}

func (s *RepositoryTestSuite) TestCreate() {
	session := s.create("s-1", time.Hour)

	s.Equal("s-1", session.ID)
	s.Equal(epoch, session.CreatedAt)
	s.Equal(epoch.Add(time.Hour), session.ExpiresAt)
	s.Empty(session.Drafts)
}

func (s *RepositoryTestSuite) TestCreateDefaultTTL() {
	session := s.create("s-1", 0)
	s.Equal(epoch.Add(formsession.DefaultTTL), session.ExpiresAt)
}

func (s *RepositoryTestSuite) TestCreateRejects() {
	_, err := s.repo.Create(s.ctx, formsession.CreateInput{})
	s.True(errors.IsInvalidArgument(err))

	s.create("s-1", time.Hour)
	_, err = s.repo.Create(s.ctx, formsession.CreateInput{ID: "s-1"})
	s.True(errors.IsAlreadyExists(err))
}

func (s *RepositoryTestSuite) TestUpdateAndGet() {
	session := s.create("s-1", time.Hour)
	session.Mode = sheet.ModeButton
	session.Drafts = map[sheet.Form]*formsession.Draft{
		sheet.FormFight: {
			Text: testutils.FightSheet,
			Selection: sheet.Selection{
				Items: []string{"Tiger Mask"},
				Notes: map[string]string{"Bard": "Lark"},
			},
			UpdatedAt: epoch,
		},
	}

	_, err := s.repo.Update(s.ctx, formsession.UpdateInput{Session: session})
	s.Require().NoError(err)

	out, err := s.repo.Get(s.ctx, formsession.GetInput{ID: "s-1"})
	s.Require().NoError(err)
	s.Equal(sheet.ModeButton, out.Session.Mode)
	draft := out.Session.Draft(sheet.FormFight)
	s.Require().NotNil(draft)
	s.Equal(testutils.FightSheet, draft.Text)
	s.Equal([]string{"Tiger Mask"}, draft.Selection.Items)
	s.Equal("Lark", draft.Selection.Notes["Bard"])
	s.True(epoch.Equal(draft.UpdatedAt))
	s.Nil(out.Session.Draft(sheet.FormRace))
}

func (s *RepositoryTestSuite) TestGetReturnsCopy() {
	s.create("s-1", time.Hour)

	out, err := s.repo.Get(s.ctx, formsession.GetInput{ID: "s-1"})
	s.Require().NoError(err)
	out.Session.Mode = sheet.ModeLive

	again, err := s.repo.Get(s.ctx, formsession.GetInput{ID: "s-1"})
	s.Require().NoError(err)
	s.Empty(again.Session.Mode)
}

func (s *RepositoryTestSuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, formsession.GetInput{ID: "nope"})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Get(s.ctx, formsession.GetInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RepositoryTestSuite) TestExpiry() {
	session := s.create("s-1", time.Hour)

	s.clock.Advance(time.Hour)

	_, err := s.repo.Get(s.ctx, formsession.GetInput{ID: "s-1"})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Update(s.ctx, formsession.UpdateInput{Session: session})
	s.True(errors.IsNotFound(err))

	// An expired ID can be reused
	s.create("s-1", time.Hour)
}

func (s *RepositoryTestSuite) TestUpdateExtendsDeadline() {
	session := s.create("s-1", time.Hour)

	s.clock.Advance(50 * time.Minute)
	session.ExpiresAt = s.clock.Now().Add(time.Hour)
	_, err := s.repo.Update(s.ctx, formsession.UpdateInput{Session: session})
	s.Require().NoError(err)

	s.clock.Advance(30 * time.Minute)
	_, err = s.repo.Get(s.ctx, formsession.GetInput{ID: "s-1"})
	s.NoError(err)
}

func (s *RepositoryTestSuite) TestUpdateMissing() {
	_, err := s.repo.Update(s.ctx, formsession.UpdateInput{Session: &formsession.Session{
		ID:        "ghost",
		ExpiresAt: epoch.Add(time.Hour),
	}})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Update(s.ctx, formsession.UpdateInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RepositoryTestSuite) TestDelete() {
	s.create("s-1", time.Hour)

	out, err := s.repo.Delete(s.ctx, formsession.DeleteInput{ID: "s-1"})
	s.Require().NoError(err)
	s.True(out.Deleted)

	out, err = s.repo.Delete(s.ctx, formsession.DeleteInput{ID: "s-1"})
	s.Require().NoError(err)
	s.False(out.Deleted)

	_, err = s.repo.Get(s.ctx, formsession.GetInput{ID: "s-1"})
	s.True(errors.IsNotFound(err))
}

func TestInMemoryRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{
		newRepo: func(_ testing.TB, c clock.Clock) formsession.Repository {
			return formsession.NewInMemory(c)
		},
	})
}

func TestRedisRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{
		newRepo: func(t testing.TB, c clock.Clock) formsession.Repository {
			client, _ := testutils.CreateTestRedisClient(t)
			repo, err := formsession.NewRedisRepository(&formsession.Config{Client: client, Clock: c})
			require.NoError(t, err)
			return repo
		},
	})
}

func TestRedisRepository_KeyTTL(t *testing.T) {
	client, mr := testutils.CreateTestRedisClient(t)
	c := &clock.Fixed{T: epoch}
	repo, err := formsession.NewRedisRepository(&formsession.Config{Client: client, Clock: c})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = repo.Create(ctx, formsession.CreateInput{ID: "s-1", TTL: 2 * time.Hour})
	require.NoError(t, err)
	assert.True(t, mr.Exists("form_session:s-1"))
	assert.Equal(t, 2*time.Hour, mr.TTL("form_session:s-1"))

	mr.FastForward(2 * time.Hour)
	_, err = repo.Get(ctx, formsession.GetInput{ID: "s-1"})
	assert.True(t, errors.IsNotFound(err))
}

func TestRedisRepository_Unreachable(t *testing.T) {
	client, mr := testutils.CreateTestRedisClient(t)
	repo, err := formsession.NewRedisRepository(&formsession.Config{Client: client, Clock: &clock.Fixed{T: epoch}})
	require.NoError(t, err)
	mr.Close()

	_, err = repo.Get(context.Background(), formsession.GetInput{ID: "s-1"})
	assert.True(t, errors.IsUnavailable(err))
}

func TestNewRedisRepository_Config(t *testing.T) {
	_, err := formsession.NewRedisRepository(&formsession.Config{})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "Client: is required")
	assert.Contains(t, err.Error(), "Clock: is required")

	_, err = formsession.NewRedisRepository(nil)
	assert.True(t, errors.IsInvalidArgument(err))
}
