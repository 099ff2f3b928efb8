package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/jobsh/core/config"
	"github.com/josephlewis42/jobsh/core/jobctl"
	"github.com/josephlewis42/jobsh/core/jobs"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// LineReader supplies command lines, *readline.Instance implements it.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

var _ LineReader = (*readline.Instance)(nil)

// Shell reads command lines and dispatches them to built-ins or the job
// controller.
type Shell struct {
	Input  LineReader
	Stdout io.Writer
	Stderr io.Writer

	Controller *jobctl.Controller
	Config     *config.Configuration
	Log        *zap.Logger

	// Color enables colored job statuses.
	Color bool

	// Exit ends the process once a signal handler reports a fatal fault.
	// The control goroutine may be blocked waiting for a foreground job, so
	// the fault can't wait for Run to return.
	Exit func(code int)

	quit       bool
	faults     chan error
	reportOnce sync.Once
}

// NewShell creates a shell for the given configuration.
func NewShell(input LineReader, stdout, stderr io.Writer, ctl *jobctl.Controller, cfg *config.Configuration, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	return &Shell{
		Input:      input,
		Stdout:     stdout,
		Stderr:     stderr,
		Controller: ctl,
		Config:     cfg,
		Log:        log,
		Exit:       os.Exit,
		faults:     make(chan error, 1),
	}
}

// ColorEnabled resolves a color mode for output written to f.
func ColorEnabled(mode string, f *os.File) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorAuto:
		return f != nil && term.IsTerminal(int(f.Fd()))
	default:
		return false
	}
}

// Eval parses and runs one command line with the child mask held. It returns
// only errors that must terminate the shell.
func (s *Shell) Eval(line string) error {
	cmd, err := Parse(line)
	if err != nil {
		fmt.Fprintf(s.Stderr, "jobsh: syntax error: %v\n", err)
		return nil
	}

	return s.Controller.Evaluate(func() error {
		if len(cmd.Args) == 0 {
			return nil
		}
		return s.dispatch(cmd)
	})
}

func (s *Shell) dispatch(cmd Command) error {
	if builtin, ok := AllBuiltins[cmd.Args[0]]; ok {
		return builtin.Main(s, cmd.Args)
	}

	pid, err := s.Controller.Spawn(cmd.Args)
	switch {
	case errors.Is(err, jobctl.ErrCommandNotFound):
		fmt.Fprintf(s.Stdout, "%s: Command not found.\n", cmd.Args[0])
		return nil
	case err != nil:
		return err
	}

	if cmd.Background {
		return s.Controller.RunBackground(pid, cmd.Line)
	}
	return s.Controller.RunForeground(pid)
}

// Run is the read-eval loop. It returns nil when input ends or the user
// quits and the fatal error otherwise, after reporting it.
func (s *Shell) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	handlersDone := make(chan struct{})
	go func() {
		defer close(handlersDone)
		s.Controller.HandleSignals(ctx, s.fault)
	}()
	defer func() {
		cancel()
		<-handlersDone
	}()

	for !s.quit {
		s.Input.SetPrompt(s.Config.Prompt)
		line, err := s.Input.Readline()
		if fault := s.pendingFault(); fault != nil {
			return s.report(fault)
		}

		switch {
		case err == io.EOF:
			return nil

		case err == readline.ErrInterrupt:
			continue // Ctrl+C at the prompt discards the line.

		case err != nil:
			return err
		}

		if err := s.Eval(line); err != nil {
			return s.report(err)
		}
		if fault := s.pendingFault(); fault != nil {
			return s.report(fault)
		}
	}

	return nil
}

// fault is called from the signal handlers. The fault is reported and the
// process exits with status 0. If Exit returns, the first fault is kept and
// the input is closed so Run returns it after the pending read.
func (s *Shell) fault(err error) {
	select {
	case s.faults <- err:
	default:
	}
	s.report(err)
	_ = s.Log.Sync()
	s.Input.Close()
	s.Exit(0)
}

func (s *Shell) pendingFault() error {
	select {
	case err := <-s.faults:
		return err
	default:
		return nil
	}
}

// report prints the first fatal error, later calls only return err.
func (s *Shell) report(err error) error {
	s.reportOnce.Do(func() {
		if errors.Is(err, jobs.ErrJobTableFull) {
			fmt.Fprintln(s.Stdout, "Could not add new job")
		}
		fmt.Fprintf(s.Stderr, "jobsh: %v\n", err)
		s.Log.Error("fatal", zap.Error(err))
	})
	return err
}

// Quit makes Run return after the current command.
func (s *Shell) Quit() {
	s.quit = true
}
