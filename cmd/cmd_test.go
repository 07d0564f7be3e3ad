package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estuda/estuda/internal/planner"
	"github.com/estuda/estuda/internal/session"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func sandbox(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("ESTUDA_DB", filepath.Join(dir, "estuda.db"))
	t.Setenv("ESTUDA_LLM_PROVIDER", "mock")
	return dir
}

func TestVersion(t *testing.T) {
	assert.Contains(t, run(t, "version"), "estuda")
}

func TestPlanCommand(t *testing.T) {
	dir := sandbox(t)
	req := filepath.Join(dir, "req.yaml")
	require.NoError(t, os.WriteFile(req, []byte(`
target_count: 4
topics:
  - {name: A, weight: 3}
  - {name: B, weight: 1}
source_styles: [ENARE]
difficulties: [medium]
formats: [multiple_choice]
`), 0o644))

	var units []planner.WorkUnit
	require.NoError(t, json.Unmarshal([]byte(run(t, "plan", req, "--json")), &units))
	assert.Equal(t, map[string]int{"A": 3, "B": 1}, planner.Counts(units))
}

func TestSessionCommands(t *testing.T) {
	sandbox(t)

	var s session.Session
	require.NoError(t, json.Unmarshal([]byte(run(t, "session", "start", "Cardiologia", "--method", "reading", "--owner", "ana", "--json")), &s))
	assert.Equal(t, session.StatusActive, s.Status)

	var res session.Result
	require.NoError(t, json.Unmarshal([]byte(run(t, "session", "finish", s.ID, "--attempted", "4", "--correct", "3", "--owner", "ana", "--json")), &res))
	assert.Equal(t, session.StatusFinished, res.Session.Status)
	assert.Nil(t, res.Revision)
}
