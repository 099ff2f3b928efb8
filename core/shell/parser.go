package shell

import (
	"strings"

	"github.com/anmitsu/go-shlex"
)

// BackgroundMarker ends a command that should run in the background.
const BackgroundMarker = "&"

// Command is a single parsed command line.
//
// Only simple commands are supported: words are split with POSIX quoting
// rules, there are no pipes, redirections or expansions.
type Command struct {
	// Args holds the program followed by its arguments. It's empty for blank
	// lines and a lone background marker.
	Args []string
	// Background is set if the line ended with BackgroundMarker.
	Background bool
	// Line is the trimmed source text.
	Line string
}

// Parse splits line into a Command. A trailing unquoted "&", either as its
// own word or glued to the last one, is removed and sets Background. A quoted
// or escaped "&" is an ordinary character.
func Parse(line string) (Command, error) {
	cmd := Command{Line: strings.TrimSpace(line)}

	words := cmd.Line
	if trailingMarker(words) {
		words = strings.TrimSuffix(words, BackgroundMarker)
		cmd.Background = true
	}

	args, err := shlex.Split(words, true)
	if err != nil {
		return Command{Line: cmd.Line}, err
	}

	// A lone marker is an empty command.
	if len(args) == 0 {
		cmd.Background = false
	}

	cmd.Args = args
	return cmd, nil
}

// trailingMarker reports whether line ends with a BackgroundMarker that is
// outside quotes and not escaped. go-shlex drops quoting from the words it
// returns, so the marker is located on the raw text.
func trailingMarker(line string) bool {
	if !strings.HasSuffix(line, BackgroundMarker) {
		return false
	}

	var inSingle, inDouble, escaped bool
	last := len(line) - len(BackgroundMarker)
	for i := 0; i < last; i++ {
		c := line[i]
		switch {
		case escaped:
			escaped = false
		case inSingle:
			inSingle = c != '\''
		case c == '\\':
			escaped = true
		case inDouble:
			inDouble = c != '"'
		case c == '\'':
			inSingle = true
		case c == '"':
			inDouble = true
		}
	}

	return !inSingle && !inDouble && !escaped
}
