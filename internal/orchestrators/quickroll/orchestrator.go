// Package quickroll builds preset roll commands from a name and a set of
// checked options.
package quickroll

//go:generate mockgen -destination=mock/mock_service.go -package=quickrollmock github.com/KirkDiggler/rpg-sheet-calc/internal/orchestrators/quickroll Service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/errors"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/rules"
)

// Service defines the quick-roll operations
type Service interface {
	List(ctx context.Context, input *ListInput) (*ListOutput, error)
	Build(ctx context.Context, input *BuildInput) (*BuildOutput, error)
}

// Config holds the dependencies for the quick-roll orchestrator
type Config struct {
	Rules *rules.Rules
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Rules == nil {
		vb.RequiredField("Rules")
	}

	return vb.Build()
}

type orchestrator struct {
	rules *rules.Rules
}

// NewOrchestrator creates a new quick-roll orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{rules: cfg.Rules}, nil
}

// List returns every preset
func (o *orchestrator) List(_ context.Context, _ *ListInput) (*ListOutput, error) {
	return &ListOutput{QuickRolls: o.rules.QuickRolls}, nil
}

// Build appends the keyword of each checked option to the preset command.
// Keywords follow section order, not the order the options were given in.
func (o *orchestrator) Build(ctx context.Context, input *BuildInput) (*BuildOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Name == "" {
		return nil, errors.InvalidArgument("quick roll name is required")
	}

	qr, ok := o.rules.QuickRoll(input.Name)
	if !ok {
		return nil, errors.NotFoundf("quick roll %q not found", input.Name)
	}

	checked := make(map[string]bool, len(input.Options))
	for _, label := range input.Options {
		checked[strings.ToLower(strings.TrimSpace(label))] = true
	}

	parts := []string{qr.Command}
	for _, section := range qr.Sections {
		for _, opt := range section.Options {
			key := strings.ToLower(opt.Label)
			if !checked[key] {
				continue
			}
			delete(checked, key)
			if opt.Cmd != "" {
				parts = append(parts, opt.Cmd)
			}
		}
	}

	if len(checked) > 0 {
		vb := errors.NewValidationBuilder()
		for _, label := range input.Options {
			if checked[strings.ToLower(strings.TrimSpace(label))] {
				vb.InvalidField("Options", label)
			}
		}
		return nil, errors.Wrapf(vb.Build(), "unknown options for quick roll %s", qr.Name)
	}

	cmd := strings.Join(parts, " ")
	slog.DebugContext(ctx, "quick roll built", "name", qr.Name, "command", cmd)
	return &BuildOutput{Command: cmd}, nil
}
