package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		tasksStatus, tasksExternal, configPath = "", "", ""
		rootCmd.SetArgs(nil)
	})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "seed", "tasks"} {
		require.True(t, names[want], "missing %s", want)
	}
}

func TestTasksListRejectsBadExternalFlag(t *testing.T) {
	_, err := run(t, "tasks", "list", "--external", "maybe")
	if !errors.Is(err, errInvalidExternal) {
		t.Fatalf("expected errInvalidExternal, got %v", err)
	}
}

func TestSeedRequiresReadableFile(t *testing.T) {
	_, err := run(t, "seed", filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSeedRequiresExactlyOneArg(t *testing.T) {
	_, err := run(t, "seed")
	require.Error(t, err)
}
