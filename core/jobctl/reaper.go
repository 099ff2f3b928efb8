package jobctl

import (
	"go.uber.org/zap"
)

// Reap collects every pending child state change without blocking and
// queues it for the next evaluation. It waits for the child mask, so it
// never runs while a command is being evaluated.
func (c *Controller) Reap() error {
	c.mask.Lock()
	defer c.mask.Unlock()

	for {
		n, ok, err := c.host.Collect()
		if err != nil {
			return &ConsistencyFault{Op: "waitpid", Err: err}
		}
		if !ok {
			return nil
		}

		c.log.Debug("child reaped",
			zap.Int("pid", n.PID),
			zap.Stringer("state", n.State),
			zap.Int("exit_code", n.ExitCode))
		c.pending = append(c.pending, StatusEvent{
			PID:    n.PID,
			Status: n.JobStatus(),
			Signal: n.Signal,
		})
	}
}
