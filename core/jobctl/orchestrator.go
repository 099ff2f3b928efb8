package jobctl

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/josephlewis42/jobsh/core/jobs"
	"github.com/josephlewis42/jobsh/core/logger"
	"go.uber.org/zap"
)

// RunForeground makes pid the foreground job and blocks until it exits, is
// killed or stops. A stopped job is registered so it can be resumed later.
// The child mask must be held.
func (c *Controller) RunForeground(pid int) error {
	c.setForeground(pid)
	n, err := c.host.Wait(pid)
	c.setForeground(0)
	if err != nil {
		return &PrimitiveFailure{Op: "waitpid", Err: err}
	}

	switch n.State {
	case Stopped:
		jid, err := c.table.Register(pid, jobs.Stopped)
		if err != nil {
			return err
		}
		c.log.Info(logger.MsgJobRegistered, zap.Int("pid", pid), zap.Int("jid", jid), zap.Stringer("status", jobs.Stopped))
		fmt.Fprintf(c.out, "Job [%d] %d stopped by signal: %s\n", jid, pid, n.Signal)

	case Signaled:
		jid := c.markTerminated(pid)
		c.log.Info(logger.MsgForegroundExit, zap.Int("pid", pid), zap.Stringer("signal", n.Signal))
		fmt.Fprintf(c.out, "Job [%s] %d terminated by signal: %s\n", jid, pid, n.Signal)

	default:
		c.markTerminated(pid)
		c.log.Info(logger.MsgForegroundExit, zap.Int("pid", pid), zap.Int("exit_code", n.ExitCode))
	}

	return nil
}

// RunBackground registers pid as a running job and returns immediately.
// The child mask must be held.
func (c *Controller) RunBackground(pid int, cmdline string) error {
	c.setForeground(0)

	jid, err := c.table.Register(pid, jobs.Running)
	if err != nil {
		return err
	}

	c.log.Info(logger.MsgJobRegistered, zap.Int("pid", pid), zap.Int("jid", jid), zap.Stringer("status", jobs.Running))
	fmt.Fprintf(c.out, "[%d] %d %s\n", jid, pid, cmdline)
	return nil
}

// markTerminated retires the record for pid if one exists and returns its
// job id for display, "-" for jobs that were never tracked.
func (c *Controller) markTerminated(pid int) string {
	jid, err := c.table.SetStatus(pid, jobs.Terminated)
	if errors.Is(err, jobs.ErrNotFound) {
		return "-"
	}
	return strconv.Itoa(jid)
}
