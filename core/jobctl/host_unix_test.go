//go:build linux

package jobctl

import (
	"os/exec"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestUnixHostSpawnNotFound(t *testing.T) {
	cases := map[string]struct {
		searchPath bool
		argv       []string
	}{
		"path-search":  {true, []string{"definitely-not-a-real-command-jobsh"}},
		"literal-path": {false, []string{"/does/not/exist"}},
		"empty":        {true, nil},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			host := NewUnixHost(tc.searchPath)
			_, err := host.Spawn(tc.argv)
			assert.ErrorIs(t, err, ErrCommandNotFound)
		})
	}
}

func TestUnixHostWaitExit(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns processes")
	}
	requireBinary(t, "true")

	host := NewUnixHost(true)
	host.Stdin, host.Stdout, host.Stderr = nil, nil, nil

	pid, err := host.Spawn([]string{"true"})
	require.NoError(t, err)

	pgid, err := syscall.Getpgid(pid)
	if err == nil {
		assert.Equal(t, pid, pgid, "job should lead its own process group")
	}

	n, err := host.Wait(pid)
	require.NoError(t, err)
	assert.Equal(t, Notification{PID: pid, State: Exited}, n)
}

func TestUnixHostStopContinueKill(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns processes")
	}
	requireBinary(t, "sleep")

	host := NewUnixHost(true)
	host.Stdin, host.Stdout, host.Stderr = nil, nil, nil

	pid, err := host.Spawn([]string{"sleep", "30"})
	require.NoError(t, err)

	require.NoError(t, host.Signal(pid, syscall.SIGSTOP))
	n, err := host.Wait(pid)
	require.NoError(t, err)
	assert.Equal(t, Stopped, n.State)
	assert.Equal(t, syscall.SIGSTOP, n.Signal)

	require.NoError(t, host.Signal(pid, syscall.SIGKILL))
	n, err = host.Wait(pid)
	require.NoError(t, err)
	assert.Equal(t, Signaled, n.State)
	assert.Equal(t, syscall.SIGKILL, n.Signal)

	// Nothing else is pending and no children remain.
	_, ok, err := host.Collect()
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, host.Signal(pid, syscall.SIGCONT), syscall.ESRCH)
}
