//go:build unix

package jobctl

import (
	"errors"
	"syscall"

	"github.com/josephlewis42/jobsh/core/logger"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Relay forwards an interactive signal (SIGINT, SIGTSTP) to the foreground
// process group. Without a foreground job the signal is dropped.
//
// Relay never changes the job table, the reaper observes the resulting state
// change.
func (c *Controller) Relay(sig syscall.Signal) error {
	pgid := c.Foreground()
	if pgid == 0 {
		c.log.Debug("signal ignored", zap.Stringer("signal", sig))
		return nil
	}

	c.log.Info(logger.MsgSignal, zap.Int("pid", pgid), zap.Stringer("signal", sig))
	err := c.host.Signal(pgid, sig)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, syscall.ESRCH):
		// The foreground owner is cleared as soon as its wait returns, so the
		// group can't legitimately be gone here.
		return &ConsistencyFault{Op: "forward " + signalName(sig), Err: err}
	default:
		return &PrimitiveFailure{Op: "forward " + signalName(sig), Err: err}
	}
}

func signalName(sig syscall.Signal) string {
	if name := unix.SignalName(sig); name != "" {
		return name
	}
	return sig.String()
}
