package quickroll

import "github.com/KirkDiggler/rpg-sheet-calc/internal/rules"

// ListInput is empty; every preset is returned
type ListInput struct{}

// ListOutput holds the presets in rule-table order
type ListOutput struct {
	QuickRolls []rules.QuickRoll
}

// BuildInput names a preset and the options checked for it
type BuildInput struct {
	Name string
	// Options are option labels, matched case-insensitively
	Options []string
}

// BuildOutput is the finished command
type BuildOutput struct {
	Command string
}
