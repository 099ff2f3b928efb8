package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		line       string
		args       []string
		background bool
	}{
		{"", nil, false},
		{"   ", nil, false},
		{"&", nil, false},
		{" & ", nil, false},
		{"ls", []string{"ls"}, false},
		{"  ls   -l  /tmp ", []string{"ls", "-l", "/tmp"}, false},
		{"sleep 5 &", []string{"sleep", "5"}, true},
		{"sleep 5&", []string{"sleep", "5"}, true},
		{"sleep 5 &  ", []string{"sleep", "5"}, true},
		{`echo "a b" 'c'`, []string{"echo", "a b", "c"}, false},
		{"fg %1", []string{"fg", "%1"}, false},
		{`echo '&'`, []string{"echo", "&"}, false},
		{`echo "&"`, []string{"echo", "&"}, false},
		{`echo \&`, []string{"echo", "&"}, false},
		{`echo 'a &'`, []string{"echo", "a &"}, false},
		{`echo 'a &' &`, []string{"echo", "a &"}, true},
		{`echo \\&`, []string{"echo", `\`}, true},
		{`echo "a\"&"`, []string{"echo", `a"&`}, false},
	}

	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			cmd, err := Parse(tc.line)
			require.NoError(t, err)

			if tc.args == nil {
				assert.Empty(t, cmd.Args)
			} else {
				assert.Equal(t, tc.args, cmd.Args)
			}
			assert.Equal(t, tc.background, cmd.Background)
		})
	}
}

func TestParseKeepsLine(t *testing.T) {
	cmd, err := Parse("  sleep 5 &\n")
	require.NoError(t, err)
	assert.Equal(t, "sleep 5 &", cmd.Line)
}

func TestParseUnterminatedQuote(t *testing.T) {
	_, err := Parse(`echo "oops`)
	assert.Error(t, err)
}
