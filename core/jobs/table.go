// Package jobs holds the job table used by the shell to track child
// processes.
package jobs

import (
	"errors"
	"fmt"
	"sort"
)

// DefaultTableSize is the number of slots in a table created with size 0.
const DefaultTableSize = 100

var (
	// ErrJobTableFull is returned when a new job has no slot to live in.
	ErrJobTableFull = errors.New("job table full")
	// ErrNotFound is returned when no live job matches a pid.
	ErrNotFound = errors.New("no such job")
)

// Job is a single record in the table.
type Job struct {
	PID    int
	JID    int
	Status Status
}

func (j Job) String() string {
	return fmt.Sprintf("[%d] %d %s", j.JID, j.PID, j.Status)
}

// Table is a fixed capacity registry of jobs.
//
// Slots are kept in table order and scanned linearly. Reclaimable slots are
// tracked in a free list sorted by index so the lowest free slot is always
// reused first.
//
// Table is not safe for concurrent use, callers serialize access.
type Table struct {
	slots   []Job
	free    []int
	nextJID int
}

// NewTable creates a table with size slots, or DefaultTableSize if size is
// not positive.
func NewTable(size int) *Table {
	if size <= 0 {
		size = DefaultTableSize
	}

	t := &Table{
		slots: make([]Job, size),
		free:  make([]int, size),
	}
	for i := range t.free {
		t.free[i] = i
	}
	return t
}

// Cap returns the number of slots.
func (t *Table) Cap() int {
	return len(t.slots)
}

// Len returns the number of live jobs.
func (t *Table) Len() int {
	return len(t.slots) - len(t.free)
}

// Register records pid with the given status and returns its job id.
//
// If a live job already exists for pid only its status changes and the
// existing job id is returned. Otherwise the lowest reclaimable slot receives
// a freshly minted job id.
func (t *Table) Register(pid int, status Status) (int, error) {
	if idx := t.indexOfPID(pid); idx >= 0 {
		t.setStatusAt(idx, status)
		return t.slots[idx].JID, nil
	}

	if len(t.free) == 0 {
		return 0, ErrJobTableFull
	}

	idx := t.free[0]
	t.free = t.free[1:]

	t.nextJID++
	t.slots[idx] = Job{PID: pid, JID: t.nextJID, Status: status}
	if !status.Live() {
		// Registering straight into a reclaimable state gives the slot back.
		t.release(idx)
	}
	return t.nextJID, nil
}

// SetStatus updates the live job for pid and returns its job id. It returns
// ErrNotFound and leaves the table untouched if pid isn't tracked.
func (t *Table) SetStatus(pid int, status Status) (int, error) {
	idx := t.indexOfPID(pid)
	if idx < 0 {
		return 0, ErrNotFound
	}

	t.setStatusAt(idx, status)
	return t.slots[idx].JID, nil
}

// FindByPID returns the live job for pid.
func (t *Table) FindByPID(pid int) (Job, bool) {
	if idx := t.indexOfPID(pid); idx >= 0 {
		return t.slots[idx], true
	}
	return Job{}, false
}

// FindByJID returns the live job with the given job id. Terminated and
// uninitialized slots never match.
func (t *Table) FindByJID(jid int) (Job, bool) {
	if jid <= 0 {
		return Job{}, false
	}
	for _, j := range t.slots {
		if j.JID == jid && j.Status.Live() {
			return j, true
		}
	}
	return Job{}, false
}

// Live returns all live jobs in table order.
func (t *Table) Live() []Job {
	var out []Job
	for _, j := range t.slots {
		if j.Status.Live() {
			out = append(out, j)
		}
	}
	return out
}

func (t *Table) indexOfPID(pid int) int {
	if pid <= 0 {
		return -1
	}
	for i, j := range t.slots {
		if j.PID == pid && j.Status.Live() {
			return i
		}
	}
	return -1
}

func (t *Table) setStatusAt(idx int, status Status) {
	t.slots[idx].Status = status
	if status.Reclaimable() {
		t.release(idx)
	}
}

// release puts a slot back on the free list, keeping it sorted.
func (t *Table) release(idx int) {
	pos := sort.SearchInts(t.free, idx)
	if pos < len(t.free) && t.free[pos] == idx {
		return
	}
	t.free = append(t.free, 0)
	copy(t.free[pos+1:], t.free[pos:])
	t.free[pos] = idx
}
