package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.sl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRunCheckAcceptsWellTypedProgram(t *testing.T) {
	path := writeSource(t, "1 2 + dump 0 exit")
	assert.Equal(t, 0, runCheck([]string{path}))
}

func TestRunCheckRejectsTypeError(t *testing.T) {
	path := writeSource(t, "1 true + 0 exit")
	assert.Equal(t, 1, runCheck([]string{path}))
}

func TestRunCheckRejectsMissingArg(t *testing.T) {
	assert.Equal(t, 2, runCheck(nil))
}

func TestRunRunExecutesAndReturnsExitCode(t *testing.T) {
	path := writeSource(t, "5 exit")
	assert.Equal(t, 5, runRun([]string{path}))
}

func TestRunRunForwardsArgv(t *testing.T) {
	path := writeSource(t, "argc dump 0 exit")
	assert.Equal(t, 0, runRun([]string{path, "a", "b"}))
}

func TestRunRunFailsOnParseError(t *testing.T) {
	path := writeSource(t, "if 1 0 exit")
	assert.Equal(t, 1, runRun([]string{path}))
}
