package cmd

import (
	"io"
	"os"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/jobsh/core/config"
	"github.com/josephlewis42/jobsh/core/jobctl"
	"github.com/josephlewis42/jobsh/core/jobs"
	"github.com/josephlewis42/jobsh/core/logger"
	"github.com/josephlewis42/jobsh/core/shell"
	"github.com/josephlewis42/jobsh/core/ttylog"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// runSession runs an interactive shell on the process's terminal until the
// user quits, input ends or a fatal fault occurs. Fatal faults are reported
// by the shell and don't fail the command, the process exits 0.
func runSession(cmd *cobra.Command, cfg *config.Configuration) error {
	var appLog io.Writer
	logFd, err := cfg.OpenAppLog()
	if err != nil {
		return err
	}
	if logFd != nil {
		defer logFd.Close()
		appLog = logFd
	}

	log, err := logger.NewJSONLinesLogger(appLog, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()
	log, sessionID := logger.NewSession(log)

	var (
		stdin  io.ReadCloser  = os.Stdin
		stdout io.WriteCloser = os.Stdout
		stderr io.WriteCloser = os.Stderr
	)

	if cfg.RecordSessions {
		transcript, err := cfg.CreateSessionLog(sessionID + "." + ttylog.AsciicastFileExt)
		if err != nil {
			return err
		}
		defer transcript.Close()

		width, height, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			width, height = defaultWidth, defaultHeight
		}
		recorder := ttylog.NewRecorder(stdin, stdout, stderr, ttylog.NewAsciicastLogSink(transcript, width, height), log)
		stdin, stdout, stderr = recorder.Stdin(), recorder.Stdout(), recorder.Stderr()
	}

	rlConfig := &readline.Config{
		Prompt: cfg.Prompt,
		Stdin:  readline.NewCancelableStdin(stdin),
		Stdout: stdout,
		Stderr: stderr,
		FuncIsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
		// Ctrl+Z at the prompt would suspend the shell itself.
		FuncFilterInputRune: func(r rune) (rune, bool) {
			return r, r != readline.CharCtrlZ
		},
	}
	if err := rlConfig.Init(); err != nil {
		return err
	}

	rl, err := readline.NewEx(rlConfig)
	if err != nil {
		return err
	}
	defer rl.Close()

	// Children share the terminal directly, only the shell's own I/O is
	// recorded.
	host := jobctl.NewUnixHost(cfg.SearchPath)
	controller := jobctl.NewController(host,
		jobctl.WithTable(jobs.NewTable(cfg.JobTableSize)),
		jobctl.WithOutput(stdout),
		jobctl.WithLogger(log))

	sh := shell.NewShell(rl, stdout, stderr, controller, cfg, log)
	sh.Color = shell.ColorEnabled(cfg.Color, os.Stdout)

	log.Info("session started", zap.Int("shell_pid", os.Getpid()))
	if err := sh.Run(cmd.Context()); err != nil {
		log.Info("session ended", zap.Error(err))
		return nil
	}
	log.Info("session ended")
	return nil
}
