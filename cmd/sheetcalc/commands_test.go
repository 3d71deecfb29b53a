package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/errors"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/testutils"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestEval_LiveMode(t *testing.T) {
	t.Setenv("SHEETCALC_LIVE_MODE", "true")

	out, err := execute(t, testutils.FightSheet, "eval", "--form", "fight")
	require.NoError(t, err)
	assert.Contains(t, out, "All fields parsed.")
	assert.Contains(t, out, "!roll fight(")
	assert.Contains(t, out, "Total score bonus:")
}

func TestEval_ButtonModeNeedsTrigger(t *testing.T) {
	out, err := execute(t, testutils.RaceSheet, "eval", "-f", "race")
	require.NoError(t, err)
	assert.NotContains(t, out, "!roll")

	out, err = execute(t, testutils.RaceSheet, "eval", "-f", "race", "--trigger")
	require.NoError(t, err)
	assert.Contains(t, out, "!roll race(")
}

func TestEval_SheetErrorsSetExitCode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheet.txt")
	require.NoError(t, os.WriteFile(path, []byte(testutils.FightSheetOneSkill), 0o600))

	out, err := execute(t, "", "eval", path, "--mode", "live")
	require.Error(t, err)
	assert.Equal(t, 4, errors.GetCode(err).ExitCode())
	assert.Contains(t, out, "Issues found: skills")

	_, err = execute(t, "", "eval", filepath.Join(dir, "missing.txt"))
	assert.True(t, errors.IsNotFound(err))
}

func TestEval_UnknownForm(t *testing.T) {
	_, err := execute(t, testutils.FightSheet, "eval", "--form", "joust")
	require.Error(t, err)
	assert.Equal(t, 2, errors.GetCode(err).ExitCode())
}

func TestSessions_RedisBacked(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("SHEETCALC_REDIS_ADDR", mr.Addr())

	out, err := execute(t, "", "mode", "live", "--session", "sess-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Mode for session sess-1: live")

	out, err = execute(t, testutils.FleeSheet, "eval", "-f", "flee", "-s", "sess-1")
	require.NoError(t, err)
	assert.Contains(t, out, "!roll flee(", "the saved live preference applies")

	out, err = execute(t, "", "session", "show", "sess-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Mode: live")
	assert.Contains(t, out, "Zip - flee attempt")

	out, err = execute(t, "", "session", "clear", "sess-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared.")

	_, err = execute(t, "", "session", "show", "sess-1")
	assert.True(t, errors.IsNotFound(err))
}

func TestSessions_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	t.Setenv("SHEETCALC_REDIS_ADDR", addr)

	_, err := execute(t, "", "session", "show", "sess-1")
	require.Error(t, err)
	assert.Equal(t, 5, errors.GetCode(err).ExitCode())
}

func TestQuickRoll(t *testing.T) {
	out, err := execute(t, "", "quickroll", "trespass", "-o", "Black Cat's Foot", "-o", "Infiltrator")
	require.NoError(t, err)
	assert.Contains(t, out, "!roll trespass infiltrator blackcat")
}

func TestRulesValidate(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("skills: [unclosed"), 0o600))

	_, err := execute(t, "", "rules", "validate", bad)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestConfigErrors(t *testing.T) {
	t.Setenv("SHEETCALC_LOG_LEVEL", "loud")

	_, err := execute(t, testutils.FightSheet, "eval")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
}
