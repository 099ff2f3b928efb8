//go:build unix

package jobctl_test

import (
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/josephlewis42/jobsh/core/jobctl"
	"github.com/josephlewis42/jobsh/core/jobctl/jobctltest"
	"github.com/josephlewis42/jobsh/core/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelayWithoutForeground(t *testing.T) {
	ctl, host, _ := newTestController(t, 10)
	spawn(t, ctl, "sleep")

	require.NoError(t, ctl.Relay(syscall.SIGINT))
	assert.Empty(t, host.Signals)
}

func TestRelayForwardsToForeground(t *testing.T) {
	ctl, host, _ := newTestController(t, 10)

	var relayErr error
	host.OnWait = func(pid int) {
		relayErr = ctl.Relay(syscall.SIGTSTP)
	}
	host.Script(jobctltest.FirstPID, jobctl.Notification{State: jobctl.Stopped, Signal: syscall.SIGTSTP})

	err := ctl.Evaluate(func() error {
		return ctl.RunForeground(spawn(t, ctl, "cat"))
	})
	require.NoError(t, err)
	require.NoError(t, relayErr)

	assert.Equal(t, []jobctltest.Sent{{PGID: jobctltest.FirstPID, Signal: syscall.SIGTSTP}}, host.Signals)

	// The relay never touches the table, only the orchestrator registered
	// the stop.
	assert.Len(t, ctl.Table().Live(), 1)
}

func TestRelayVanishedForegroundIsFault(t *testing.T) {
	ctl, host, _ := newTestController(t, 10)

	var relayErr error
	host.OnWait = func(pid int) {
		host.Vanish(pid)
		relayErr = ctl.Relay(syscall.SIGINT)
	}

	err := ctl.Evaluate(func() error {
		return ctl.RunForeground(spawn(t, ctl, "cat"))
	})
	require.NoError(t, err)

	var fault *jobctl.ConsistencyFault
	require.True(t, errors.As(relayErr, &fault), "got %v", relayErr)
	assert.ErrorIs(t, relayErr, syscall.ESRCH)
	assert.Equal(t, "forward SIGINT", fault.Op)
}

func TestRelayOtherSignalError(t *testing.T) {
	ctl, host, _ := newTestController(t, 10)
	host.SignalErr = syscall.EPERM

	var relayErr error
	host.OnWait = func(pid int) {
		relayErr = ctl.Relay(syscall.SIGINT)
	}
	require.NoError(t, ctl.Evaluate(func() error {
		return ctl.RunForeground(spawn(t, ctl, "cat"))
	}))

	var failure *jobctl.PrimitiveFailure
	require.True(t, errors.As(relayErr, &failure))
	assert.Equal(t, "forward SIGINT", failure.Op)
}

func TestReapQueuesUntilEvaluation(t *testing.T) {
	ctl, host, _ := newTestController(t, 10)

	var pids []int
	require.NoError(t, ctl.Evaluate(func() error {
		for i := 0; i < 3; i++ {
			pid := spawn(t, ctl, "sleep")
			pids = append(pids, pid)
			if err := ctl.RunBackground(pid, "sleep &"); err != nil {
				return err
			}
		}
		return nil
	}))

	host.Notify(
		jobctl.Notification{PID: pids[0], State: jobctl.Exited},
		jobctl.Notification{PID: pids[1], State: jobctl.Stopped, Signal: syscall.SIGTSTP},
		jobctl.Notification{PID: pids[2], State: jobctl.Signaled, Signal: syscall.SIGKILL},
		// Untracked pids are tolerated.
		jobctl.Notification{PID: 4242, State: jobctl.Exited},
	)
	require.NoError(t, ctl.Reap())
	assert.Equal(t, 4, ctl.Pending())

	var live []jobs.Job
	require.NoError(t, ctl.Evaluate(func() error {
		live = ctl.Table().Live()
		return nil
	}))

	assert.Equal(t, []jobs.Job{{PID: pids[1], JID: 2, Status: jobs.Stopped}}, live)
	assert.Equal(t, 0, ctl.Pending())

	host.Notify(jobctl.Notification{PID: pids[1], State: jobctl.Continued, Signal: syscall.SIGCONT})
	require.NoError(t, ctl.Reap())
	require.NoError(t, ctl.Evaluate(func() error {
		live = ctl.Table().Live()
		return nil
	}))
	assert.Equal(t, []jobs.Job{{PID: pids[1], JID: 2, Status: jobs.Running}}, live)
}

func TestReapCollectFailureIsFault(t *testing.T) {
	ctl, host, _ := newTestController(t, 10)
	host.CollectErr = syscall.EINVAL

	err := ctl.Reap()

	var fault *jobctl.ConsistencyFault
	assert.True(t, errors.As(err, &fault))
	assert.True(t, jobctl.IsFatal(err))
}

func TestReapWaitsForEvaluation(t *testing.T) {
	ctl, host, _ := newTestController(t, 10)

	started := make(chan struct{})
	release := make(chan struct{})
	evalDone := make(chan error)
	go func() {
		evalDone <- ctl.Evaluate(func() error {
			pid, err := ctl.Spawn([]string{"true"})
			if err != nil {
				return err
			}
			// The job exits before it is registered.
			host.Notify(jobctl.Notification{PID: pid, State: jobctl.Exited})
			close(started)
			<-release
			return ctl.RunBackground(pid, "true &")
		})
	}()

	<-started
	reaped := make(chan error)
	go func() { reaped <- ctl.Reap() }()

	select {
	case <-reaped:
		t.Fatal("reaper ran during evaluation")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-evalDone)
	require.NoError(t, <-reaped)

	var live []jobs.Job
	require.NoError(t, ctl.Evaluate(func() error {
		live = ctl.Table().Live()
		return nil
	}))
	assert.Empty(t, live, "exit applied after registration")
}
