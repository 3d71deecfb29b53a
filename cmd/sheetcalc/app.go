package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/config"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/entities/sheet"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/errors"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/handlers/cli"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/orchestrators/form"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/orchestrators/quickroll"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/redis"
	formsession "github.com/KirkDiggler/rpg-sheet-calc/internal/repositories/form_session"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/rules"
)

const pingTimeout = 2 * time.Second

// app is the wired dependency graph for one CLI invocation
type app struct {
	handler *cli.Handler
	closer  func() error
}

func newApp(ctx context.Context, out io.Writer, cfg *config.Config) (*app, error) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))

	r, err := loadRules(cfg.RulesFile)
	if err != nil {
		return nil, err
	}

	clk := clock.New()
	repo, closer, err := newSessionRepo(ctx, cfg, clk)
	if err != nil {
		return nil, err
	}

	mode := sheet.ModeButton
	if cfg.LiveMode {
		mode = sheet.ModeLive
	}

	formSvc, err := form.NewOrchestrator(&form.Config{
		Rules:       r,
		SessionRepo: repo,
		Clock:       clk,
		SessionTTL:  cfg.SessionTTL,
		DefaultMode: mode,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create form orchestrator")
	}

	quickRollSvc, err := quickroll.NewOrchestrator(&quickroll.Config{Rules: r})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create quick roll orchestrator")
	}

	handler, err := cli.NewHandler(&cli.HandlerConfig{
		FormService:      formSvc,
		QuickRollService: quickRollSvc,
		IDGenerator:      idgen.NewUUID("sheet"),
		Out:              out,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create handler")
	}

	return &app{handler: handler, closer: closer}, nil
}

func loadRules(path string) (*rules.Rules, error) {
	if path == "" {
		return rules.Default()
	}
	slog.Debug("loading rules", "path", path)
	return rules.LoadFile(path)
}

// newSessionRepo picks Redis when an address is configured. In-memory
// sessions last only as long as the process.
func newSessionRepo(ctx context.Context, cfg *config.Config, clk clock.Clock) (formsession.Repository, func() error, error) {
	if cfg.RedisAddr == "" {
		return formsession.NewInMemory(clk), func() error { return nil }, nil
	}

	client, err := redis.NewClient(cfg.RedisAddr, nil)
	if err != nil {
		return nil, nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to create redis client")
	}
	if err := redis.Ping(ctx, client, pingTimeout); err != nil {
		_ = client.Close()
		return nil, nil, errors.WrapWithCodef(err, errors.CodeUnavailable, "redis at %s is unreachable", cfg.RedisAddr)
	}

	repo, err := formsession.NewRedisRepository(&formsession.Config{Client: client, Clock: clk})
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	slog.Debug("using redis sessions", "addr", cfg.RedisAddr)
	return repo, client.Close, nil
}
