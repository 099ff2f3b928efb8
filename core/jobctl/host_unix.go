//go:build unix

package jobctl

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// UnixHost runs real child processes.
type UnixHost struct {
	// SearchPath resolves commands without a slash through $PATH. When false
	// the command is loaded from the literal path given.
	SearchPath bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

var _ Host = (*UnixHost)(nil)

// NewUnixHost creates a host wired to the process's standard streams.
func NewUnixHost(searchPath bool) *UnixHost {
	return &UnixHost{
		SearchPath: searchPath,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

func (h *UnixHost) Spawn(argv []string) (int, error) {
	if len(argv) == 0 {
		return 0, fmt.Errorf("%w: empty command", ErrCommandNotFound)
	}

	path := argv[0]
	if h.SearchPath {
		resolved, err := exec.LookPath(argv[0])
		switch {
		case errors.Is(err, exec.ErrDot):
			// Found relative to a "." entry in PATH, run it anyway like sh does.
		case err != nil:
			return 0, fmt.Errorf("%w: %v", ErrCommandNotFound, err)
		}
		path = resolved
	}

	cmd := &exec.Cmd{
		Path:   path,
		Args:   argv,
		Stdin:  h.Stdin,
		Stdout: h.Stdout,
		Stderr: h.Stderr,
		// Each job gets its own process group so signals can target it
		// without hitting the shell.
		SysProcAttr: &syscall.SysProcAttr{Setpgid: true},
	}

	if err := cmd.Start(); err != nil {
		if isLoadError(err) {
			return 0, fmt.Errorf("%w: %v", ErrCommandNotFound, err)
		}
		return 0, err
	}

	pid := cmd.Process.Pid
	// Children are reaped with wait4, the os.Process handle isn't needed.
	_ = cmd.Process.Release()
	return pid, nil
}

func (h *UnixHost) Signal(pgid int, sig syscall.Signal) error {
	return unix.Kill(-pgid, sig)
}

func (h *UnixHost) Wait(pid int) (Notification, error) {
	for {
		var ws unix.WaitStatus
		wpid, err := unix.Wait4(pid, &ws, unix.WUNTRACED, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return Notification{}, err
		}
		return decodeWaitStatus(wpid, ws), nil
	}
}

func (h *UnixHost) Collect() (Notification, bool, error) {
	for {
		var ws unix.WaitStatus
		wpid, err := unix.Wait4(-1, &ws, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.ECHILD:
			return Notification{}, false, nil
		case err != nil:
			return Notification{}, false, err
		case wpid == 0:
			return Notification{}, false, nil
		}
		return decodeWaitStatus(wpid, ws), true, nil
	}
}

func decodeWaitStatus(pid int, ws unix.WaitStatus) Notification {
	n := Notification{PID: pid}
	switch {
	case ws.Exited():
		n.State = Exited
		n.ExitCode = ws.ExitStatus()
	case ws.Signaled():
		n.State = Signaled
		n.Signal = syscall.Signal(ws.Signal())
	case ws.Stopped():
		n.State = Stopped
		n.Signal = syscall.Signal(ws.StopSignal())
	default:
		n.State = Continued
		n.Signal = syscall.SIGCONT
	}
	return n
}

func isLoadError(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, exec.ErrNotFound) ||
		errors.Is(err, syscall.ENOEXEC) ||
		errors.Is(err, syscall.EISDIR)
}
