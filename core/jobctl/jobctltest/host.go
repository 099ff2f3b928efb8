// Package jobctltest provides a deterministic in-memory jobctl.Host.
package jobctltest

import (
	"fmt"
	"sync"
	"syscall"

	"github.com/josephlewis42/jobsh/core/jobctl"
)

// FirstPID is the pid handed to the first spawned process.
const FirstPID = 1000

// Sent records a signal delivered through the host.
type Sent struct {
	PGID   int
	Signal syscall.Signal
}

// Host simulates child processes. Foreground waits return scripted
// notifications, defaulting to a clean exit, and Collect drains whatever was
// queued with Notify.
type Host struct {
	mu sync.Mutex

	nextPID int
	alive   map[int]bool
	waits   map[int][]jobctl.Notification
	pending []jobctl.Notification

	// Spawned holds the argv of every started process.
	Spawned [][]string
	// Signals holds every signal sent, in order.
	Signals []Sent

	// NotFound lists commands that fail to load.
	NotFound map[string]bool
	// SpawnErr, WaitErr, SignalErr and CollectErr are returned by the
	// respective primitives when set.
	SpawnErr   error
	WaitErr    error
	SignalErr  error
	CollectErr error

	// OnWait is called with the pid when a foreground wait starts, before
	// the scripted notification is returned.
	OnWait func(pid int)
}

var _ jobctl.Host = (*Host)(nil)

// NewHost creates an empty host.
func NewHost() *Host {
	return &Host{
		nextPID:  FirstPID,
		alive:    make(map[int]bool),
		waits:    make(map[int][]jobctl.Notification),
		NotFound: make(map[string]bool),
	}
}

// NextPID returns the pid the next Spawn will return.
func (h *Host) NextPID() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.nextPID
}

// Script queues the results of future Wait calls for pid.
func (h *Host) Script(pid int, ns ...jobctl.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, n := range ns {
		n.PID = pid
		h.waits[pid] = append(h.waits[pid], n)
	}
}

// Notify queues notifications for Collect.
func (h *Host) Notify(ns ...jobctl.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, n := range ns {
		if n.State == jobctl.Exited || n.State == jobctl.Signaled {
			delete(h.alive, n.PID)
		}
		h.pending = append(h.pending, n)
	}
}

// Vanish forgets pid as if it had been reaped elsewhere.
func (h *Host) Vanish(pid int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.alive, pid)
}

// Alive reports whether pid is a live simulated process.
func (h *Host) Alive(pid int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.alive[pid]
}

func (h *Host) Spawn(argv []string) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.SpawnErr != nil {
		return 0, h.SpawnErr
	}
	if len(argv) == 0 || h.NotFound[argv[0]] {
		return 0, fmt.Errorf("%w: %q", jobctl.ErrCommandNotFound, argv)
	}

	pid := h.nextPID
	h.nextPID++
	h.alive[pid] = true
	h.Spawned = append(h.Spawned, append([]string(nil), argv...))
	return pid, nil
}

func (h *Host) Signal(pgid int, sig syscall.Signal) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.SignalErr != nil {
		return h.SignalErr
	}
	if !h.alive[pgid] {
		return syscall.ESRCH
	}
	h.Signals = append(h.Signals, Sent{PGID: pgid, Signal: sig})
	return nil
}

func (h *Host) Wait(pid int) (jobctl.Notification, error) {
	if h.OnWait != nil {
		h.OnWait(pid)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.WaitErr != nil {
		return jobctl.Notification{}, h.WaitErr
	}

	n := jobctl.Notification{PID: pid, State: jobctl.Exited}
	if queue := h.waits[pid]; len(queue) > 0 {
		n = queue[0]
		h.waits[pid] = queue[1:]
	}
	if n.State == jobctl.Exited || n.State == jobctl.Signaled {
		delete(h.alive, pid)
	}
	return n, nil
}

func (h *Host) Collect() (jobctl.Notification, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.CollectErr != nil {
		return jobctl.Notification{}, false, h.CollectErr
	}
	if len(h.pending) == 0 {
		return jobctl.Notification{}, false, nil
	}
	n := h.pending[0]
	h.pending = h.pending[1:]
	return n, true, nil
}
