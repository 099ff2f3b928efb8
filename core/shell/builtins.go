package shell

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/josephlewis42/jobsh/core/jobs"
	"github.com/pborman/getopt/v2"
)

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]ShellBuiltin)

// ShellBuiltin runs inside the shell with the child mask held. Returned
// errors are fatal.
type ShellBuiltin interface {
	Main(s *Shell, args []string) error
}

type ShellBuiltinFunc func(s *Shell, args []string) error

func (f ShellBuiltinFunc) Main(s *Shell, args []string) error {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// BuiltinNames returns the sorted names of all builtins.
func BuiltinNames() []string {
	var names []string
	for k := range AllBuiltins {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// parseHelp handles -h/--help. It returns the remaining arguments and false
// if the builtin should stop.
func parseHelp(s *Shell, args []string, usage, description string) ([]string, bool) {
	opts := getopt.New()
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := s.Stderr
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintf(w, "usage: %s\n", usage)
		fmt.Fprintln(w, description)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		opts.PrintOptions(w)
		return nil, false
	}

	return opts.Args(), true
}

// Quit exits the shell
func Quit(s *Shell, args []string) error {
	s.Quit()
	return nil
}

// Jobs lists live jobs in table order.
func Jobs(s *Shell, args []string) error {
	if _, ok := parseHelp(s, args, "jobs", "Display status of jobs."); !ok {
		return nil
	}

	for _, j := range s.Controller.Table().Live() {
		fmt.Fprintf(s.Stdout, "[%d] %d %s\n", j.JID, j.PID, s.statusString(j.Status))
	}
	return nil
}

func (s *Shell) statusString(st jobs.Status) string {
	c := color.New(statusColor(st))
	if s.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(st.String())
}

func statusColor(st jobs.Status) color.Attribute {
	switch st {
	case jobs.Running:
		return color.FgGreen
	case jobs.Stopped:
		return color.FgYellow
	default:
		return color.FgRed
	}
}

// resolveTarget finds the live job named by a pid or %jid.
func (s *Shell) resolveTarget(target string) (jobs.Job, bool) {
	table := s.Controller.Table()

	if jidStr := strings.TrimPrefix(target, "%"); jidStr != target {
		jid, err := strconv.Atoi(jidStr)
		if err != nil {
			return jobs.Job{}, false
		}
		return table.FindByJID(jid)
	}

	pid, err := strconv.Atoi(target)
	if err != nil {
		return jobs.Job{}, false
	}
	return table.FindByPID(pid)
}

// jobTarget parses the arguments of fg and bg.
func jobTarget(s *Shell, args []string, description string) (jobs.Job, bool) {
	usage := fmt.Sprintf("%s <pid|%%jid>", args[0])
	rest, ok := parseHelp(s, args, usage, description)
	if !ok {
		return jobs.Job{}, false
	}

	if len(rest) != 1 {
		fmt.Fprintf(s.Stderr, "%s: usage: %s\n", args[0], usage)
		return jobs.Job{}, false
	}

	j, ok := s.resolveTarget(rest[0])
	if !ok {
		fmt.Fprintf(s.Stdout, "%s: No such process\n", rest[0])
	}
	return j, ok
}

// Fg continues a job and waits for it in the foreground.
func Fg(s *Shell, args []string) error {
	j, ok := jobTarget(s, args, "Continue a job in the foreground.")
	if !ok {
		return nil
	}

	if err := s.Controller.Resume(j.PID); err != nil {
		return err
	}
	return s.Controller.RunForeground(j.PID)
}

// Bg continues a job in the background.
func Bg(s *Shell, args []string) error {
	j, ok := jobTarget(s, args, "Continue a job in the background.")
	if !ok {
		return nil
	}

	if err := s.Controller.Resume(j.PID); err != nil {
		return err
	}
	return s.Controller.RunBackground(j.PID, "")
}

// Help lists the builtins.
func Help(s *Shell, args []string) error {
	WriteHelp(s.Stdout)
	return nil
}

// WriteHelp writes the builtin listing to w.
func WriteHelp(w io.Writer) {
	fmt.Fprintln(w, "jobsh, a job control shell")
	fmt.Fprintln(w, "These shell commands are defined internally.  Type `help' to see this list.")
	fmt.Fprintln(w, "Any other command is run as a program, end it with `&' to run it in the background.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Builtins:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Join(BuiltinNames(), "\n"))
}

func init() {
	AllBuiltins["quit"] = ShellBuiltinFunc(Quit)
	AllBuiltins["jobs"] = ShellBuiltinFunc(Jobs)
	AllBuiltins["fg"] = ShellBuiltinFunc(Fg)
	AllBuiltins["bg"] = ShellBuiltinFunc(Bg)
	AllBuiltins["help"] = ShellBuiltinFunc(Help)
}
