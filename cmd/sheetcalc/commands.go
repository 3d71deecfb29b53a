package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/config"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/errors"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/handlers/cli"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sheetcalc",
		Short: "Character sheet parser and bonus calculator",
		Long: `sheetcalc reads pasted fight, flee and race sheets, checks them against the
rule table and prints the bonus summary, roll command and breakdown.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(
		newEvalCmd(),
		newScanCmd(),
		newQuickRollCmd(),
		newModeCmd(),
		newSessionCmd(),
		newRulesCmd(),
	)
	return root
}

// run loads configuration, wires the app and hands the handler to fn. The
// context is canceled on interrupt.
func run(cmd *cobra.Command, fn func(ctx context.Context, h *cli.Handler) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return runWith(ctx, cmd.OutOrStdout(), cfg, fn)
}

func runWith(ctx context.Context, out io.Writer, cfg *config.Config, fn func(ctx context.Context, h *cli.Handler) error) error {
	a, err := newApp(ctx, out, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.closer() }()

	if err := fn(ctx, a.handler); err != nil {
		if ctx.Err() != nil {
			return errors.Canceled("interrupted")
		}
		return err
	}
	return nil
}

// readSheet reads the sheet from a file argument, or stdin when there is
// none or it is "-"
func readSheet(cmd *cobra.Command, args []string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			if os.IsNotExist(err) {
				return "", errors.NotFoundf("sheet file %s not found", args[0])
			}
			return "", errors.Wrapf(err, "failed to open %s", args[0])
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "failed to read sheet")
	}
	return string(data), nil
}

func newEvalCmd() *cobra.Command {
	req := &cli.EvalRequest{}

	cmd := &cobra.Command{
		Use:   "eval [FILE]",
		Short: "Evaluate a sheet",
		Long: `Evaluate a sheet read from FILE or stdin. Alerts are printed first. When the
sheet has no errors, the summary, roll command and breakdown follow.

Exit status is 4 when the sheet has errors.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readSheet(cmd, args)
			if err != nil {
				return err
			}
			req.Text = text
			return run(cmd, func(ctx context.Context, h *cli.Handler) error {
				return h.Eval(ctx, req)
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&req.Form, "form", "f", "fight", "sheet form: fight, flee or race")
	f.StringSliceVar(&req.Items, "item", nil, "checked item label (repeatable)")
	f.StringSliceVar(&req.Buffs, "buff", nil, "checked buff label (repeatable)")
	f.StringSliceVar(&req.Accessories, "accessory", nil, "checked racing accessory (repeatable)")
	f.StringVar(&req.Specialty, "specialty", "", "specialty override")
	f.StringToStringVar(&req.Notes, "note", nil, "note shown next to an item or buff, as LABEL=TEXT")
	f.StringVarP(&req.SessionID, "session", "s", "", `session ID to save the draft in; "new" generates one`)
	f.StringVar(&req.Mode, "mode", "", "live or button; defaults to the session preference")
	f.BoolVarP(&req.Trigger, "trigger", "t", false, "produce output in button mode")

	return cmd
}

func newScanCmd() *cobra.Command {
	req := &cli.ScanRequest{}

	cmd := &cobra.Command{
		Use:   "scan [FILE]",
		Short: "Show what a sheet would auto-select",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readSheet(cmd, args)
			if err != nil {
				return err
			}
			req.Text = text
			return run(cmd, func(ctx context.Context, h *cli.Handler) error {
				return h.Scan(ctx, req)
			})
		},
	}

	cmd.Flags().StringVarP(&req.Form, "form", "f", "fight", "sheet form: fight, flee or race")
	return cmd
}

func newQuickRollCmd() *cobra.Command {
	var options []string

	cmd := &cobra.Command{
		Use:   "quickroll [NAME]",
		Short: "Build a preset roll command, or list the presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &cli.QuickRollRequest{Options: options}
			if len(args) > 0 {
				req.Name = args[0]
			}
			return run(cmd, func(ctx context.Context, h *cli.Handler) error {
				return h.QuickRoll(ctx, req)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&options, "option", "o", nil, "checked option label (repeatable)")
	return cmd
}

func newModeCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:       "mode live|button",
		Short:     "Save the live/button preference for a session",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"live", "button"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, h *cli.Handler) error {
				return h.SetMode(ctx, sessionID, args[0])
			})
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", `session ID; "new" generates one`)
	_ = cmd.MarkFlagRequired("session")
	return cmd
}

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or clear saved drafts",
	}

	show := &cobra.Command{
		Use:   "show SESSION",
		Short: "Show a session's mode and drafts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, h *cli.Handler) error {
				return h.ShowSession(ctx, args[0])
			})
		},
	}

	var form string
	clearCmd := &cobra.Command{
		Use:   "clear SESSION",
		Short: "Clear one form's draft, or the whole session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, h *cli.Handler) error {
				return h.ClearSession(ctx, args[0], form)
			})
		},
	}
	clearCmd.Flags().StringVarP(&form, "form", "f", "", "form whose draft to clear; empty clears the session")

	cmd.AddCommand(show, clearCmd)
	return cmd
}

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Work with rule files",
	}

	validate := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a rule file and report every problem in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// the file under test must not be the one the app loads
			cfg.RulesFile = ""
			cfg.RedisAddr = ""
			return runWith(cmd.Context(), cmd.OutOrStdout(), cfg, func(_ context.Context, h *cli.Handler) error {
				return h.ValidateRules(args[0])
			})
		},
	}

	cmd.AddCommand(validate)
	return cmd
}
