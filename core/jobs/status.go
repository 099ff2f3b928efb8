package jobs

import "fmt"

// Status is the lifecycle state of a job.
type Status int

const (
	// Uninitialized marks an empty slot.
	Uninitialized Status = iota
	Running
	Stopped
	// Terminated jobs exited or were killed, their slot may be reused.
	Terminated
)

// String returns the name shown by the jobs builtin.
func (s Status) String() string {
	switch s {
	case Uninitialized:
		return "UNINIT"
	case Running:
		return "RUNNING"
	case Stopped:
		return "STOPPED"
	case Terminated:
		return "TERMINATED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Live reports whether a record in this state refers to a tracked process.
func (s Status) Live() bool {
	return s == Running || s == Stopped
}

// Reclaimable reports whether a slot in this state may hold a new job.
func (s Status) Reclaimable() bool {
	return s == Uninitialized || s == Terminated
}
