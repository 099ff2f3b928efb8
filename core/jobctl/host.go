// Package jobctl implements job control: the foreground/background
// orchestrator, the signal relay and the child reaper.
package jobctl

import (
	"fmt"
	"syscall"

	"github.com/josephlewis42/jobsh/core/jobs"
)

// State is the kind of process state change the operating system reported.
type State int

const (
	// Exited means the process called exit.
	Exited State = iota + 1
	// Signaled means the process was killed by a signal.
	Signaled
	// Stopped means the process honored a stop request.
	Stopped
	// Continued means the process resumed after a stop.
	Continued
)

func (s State) String() string {
	switch s {
	case Exited:
		return "exited"
	case Signaled:
		return "signaled"
	case Stopped:
		return "stopped"
	case Continued:
		return "continued"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Notification is a single process state change.
type Notification struct {
	PID   int
	State State
	// Signal holds the terminating or stopping signal.
	Signal syscall.Signal
	// ExitCode is set when State is Exited.
	ExitCode int
}

// JobStatus maps the notification to the job status it implies.
func (n Notification) JobStatus() jobs.Status {
	switch n.State {
	case Stopped:
		return jobs.Stopped
	case Continued:
		return jobs.Running
	default:
		return jobs.Terminated
	}
}

// Host abstracts the operating system primitives job control relies on.
type Host interface {
	// Spawn starts argv in a new process group whose id equals the returned
	// pid. It returns an error wrapping ErrCommandNotFound if the program
	// image can't be loaded.
	Spawn(argv []string) (int, error)

	// Signal delivers sig to every process in the process group pgid.
	Signal(pgid int, sig syscall.Signal) error

	// Wait blocks until pid exits, is killed or stops. Notifications for
	// other processes are never consumed.
	Wait(pid int) (Notification, error)

	// Collect returns one pending notification for any child without
	// blocking. ok is false when nothing is pending or there are no
	// children left.
	Collect() (n Notification, ok bool, err error)
}
