// Package main is the entry point for the sheetcalc CLI
package main

import (
	"fmt"
	"os"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(errors.GetCode(err).ExitCode())
	}
}
