package jobctl

import (
	"errors"
	"fmt"

	"github.com/josephlewis42/jobsh/core/jobs"
)

// ErrCommandNotFound is returned by Host.Spawn when the program image can't
// be loaded. It is a user error, the shell keeps running.
var ErrCommandNotFound = errors.New("command not found")

// PrimitiveFailure is an operating system primitive (spawn, wait, signal)
// failing in a way the job table can't recover from.
type PrimitiveFailure struct {
	Op  string
	Err error
}

func (e *PrimitiveFailure) Error() string {
	return fmt.Sprintf("%s error: %v", e.Op, e.Err)
}

func (e *PrimitiveFailure) Unwrap() error {
	return e.Err
}

// ConsistencyFault means the job table and the operating system disagree,
// e.g. a foreground process vanished without being reaped.
type ConsistencyFault struct {
	Op  string
	Err error
}

func (e *ConsistencyFault) Error() string {
	return fmt.Sprintf("internal consistency fault in %s: %v", e.Op, e.Err)
}

func (e *ConsistencyFault) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err must terminate the shell.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var primitive *PrimitiveFailure
	var fault *ConsistencyFault
	return errors.Is(err, jobs.ErrJobTableFull) ||
		errors.As(err, &primitive) ||
		errors.As(err, &fault)
}
