package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSummarize_RequiresUser(t *testing.T) {
	_, err := run(t, "summarize", "--user=", "--granularity=day")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--user is required")
}

func TestSummarize_RejectsBadUser(t *testing.T) {
	_, err := run(t, "summarize", "--user=not-a-uuid", "--granularity=day")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --user")
}

func TestSummarize_RejectsBadGranularity(t *testing.T) {
	_, err := run(t, "summarize", "--user=8b9cad0e-1f7e-4a34-9a53-3f1d2b1f4c11", "--granularity=year")
	require.Error(t, err)
}

func TestResetDaily_RejectsBadUser(t *testing.T) {
	_, err := run(t, "reset-daily", "--user=42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --user")
}

func TestMigrate_RequiresPath(t *testing.T) {
	t.Setenv("DB_MIGRATIONS_PATH", "")
	_, err := run(t, "migrate", "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_MIGRATIONS_PATH")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"reset-daily", "reset-weekly", "summarize", "migrate"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
