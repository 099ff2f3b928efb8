//go:build unix

package jobctl

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// HandleSignals installs the signal relay for SIGINT/SIGTSTP and the reaper
// for SIGCHLD. Each runs on its own goroutine so a reaper waiting on the
// child mask never delays forwarding Ctrl+C or Ctrl+Z to the foreground
// job. Handlers run one delivery at a time.
//
// onFault is called with any fatal error, after which the handler that
// failed stops. HandleSignals returns once ctx is done and both handlers
// have exited.
func (c *Controller) HandleSignals(ctx context.Context, onFault func(error)) {
	interactive := make(chan os.Signal, 1)
	children := make(chan os.Signal, 1)
	signal.Notify(interactive, syscall.SIGINT, syscall.SIGTSTP)
	signal.Notify(children, syscall.SIGCHLD)
	defer signal.Stop(interactive)
	defer signal.Stop(children)

	done := make(chan struct{}, 2)
	go func() {
		defer func() { done <- struct{}{} }()
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-interactive:
				if err := c.Relay(sig.(syscall.Signal)); err != nil {
					onFault(err)
					return
				}
			}
		}
	}()

	go func() {
		defer func() { done <- struct{}{} }()
		for {
			select {
			case <-ctx.Done():
				return
			case <-children:
				if err := c.Reap(); err != nil {
					onFault(err)
					return
				}
			}
		}
	}()

	<-done
	<-done
}
