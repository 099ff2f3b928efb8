package jobctl

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/josephlewis42/jobsh/core/jobs"
	"github.com/josephlewis42/jobsh/core/logger"
	"go.uber.org/zap"
)

// StatusEvent is a reaped state change waiting to be applied to the table.
type StatusEvent struct {
	PID    int
	Status jobs.Status
	Signal syscall.Signal
}

// Controller owns the job table and the foreground owner and coordinates the
// control goroutine with the asynchronous signal handlers.
//
// The child mask stands in for blocking SIGCHLD: the control goroutine holds
// it for the whole evaluation of a command and the reaper holds it while
// collecting. The job table is only touched by the control goroutine, reaped
// events are queued under the mask and drained when the next evaluation
// starts.
type Controller struct {
	host  Host
	table *jobs.Table
	out   io.Writer
	log   *zap.Logger

	// foreground holds the process group that receives forwarded signals,
	// 0 if there is none.
	foreground atomic.Int64

	mask    sync.Mutex
	pending []StatusEvent
}

// Option configures a Controller.
type Option func(*Controller)

// WithTable sets the job table, by default a table of jobs.DefaultTableSize
// is used.
func WithTable(table *jobs.Table) Option {
	return func(c *Controller) {
		c.table = table
	}
}

// WithOutput sets where job notices are written.
func WithOutput(w io.Writer) Option {
	return func(c *Controller) {
		c.out = w
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// NewController creates a controller driving host.
func NewController(host Host, opts ...Option) *Controller {
	c := &Controller{
		host:  host,
		table: jobs.NewTable(jobs.DefaultTableSize),
		out:   io.Discard,
		log:   zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Table returns the job table. It must only be used from inside Evaluate.
func (c *Controller) Table() *jobs.Table {
	return c.table
}

// Foreground returns the process group currently in the foreground, or 0.
func (c *Controller) Foreground() int {
	return int(c.foreground.Load())
}

func (c *Controller) setForeground(pgid int) {
	c.foreground.Store(int64(pgid))
}

// Evaluate runs fn with the child mask held after applying every status
// change reaped since the last evaluation.
func (c *Controller) Evaluate(fn func() error) error {
	c.mask.Lock()
	defer c.mask.Unlock()

	c.drain()
	return fn()
}

// drain applies queued status events. The mask must be held.
func (c *Controller) drain() {
	for _, ev := range c.pending {
		jid, err := c.table.SetStatus(ev.PID, ev.Status)
		if errors.Is(err, jobs.ErrNotFound) {
			c.log.Debug("untracked status change", zap.Int("pid", ev.PID), zap.Stringer("status", ev.Status))
			continue
		}
		c.log.Info(logger.MsgJobStatus,
			zap.Int("pid", ev.PID),
			zap.Int("jid", jid),
			zap.Stringer("status", ev.Status),
			zap.Stringer("signal", ev.Signal))
	}
	c.pending = c.pending[:0]
}

// Pending returns the number of reaped events not yet applied.
func (c *Controller) Pending() int {
	c.mask.Lock()
	defer c.mask.Unlock()
	return len(c.pending)
}

// Spawn starts argv as a new job in its own process group.
func (c *Controller) Spawn(argv []string) (int, error) {
	pid, err := c.host.Spawn(argv)
	switch {
	case errors.Is(err, ErrCommandNotFound):
		c.log.Debug("command not found", zap.Strings("command", argv), zap.Error(err))
		return 0, err
	case err != nil:
		return 0, &PrimitiveFailure{Op: "fork", Err: err}
	}

	c.log.Info(logger.MsgJobSpawned, zap.Int("pid", pid), zap.Strings("command", argv))
	return pid, nil
}

// Resume sends SIGCONT to the job's process group.
func (c *Controller) Resume(pid int) error {
	if err := c.host.Signal(pid, syscall.SIGCONT); err != nil {
		return &PrimitiveFailure{Op: "forward SIGCONT", Err: err}
	}
	return nil
}
