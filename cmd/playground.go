package cmd

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/josephlewis42/jobsh/core/config"
	"github.com/spf13/cobra"
)

var playgroundRecord bool

// playgroundCmd runs the shell against a throwaway configuration
var playgroundCmd = &cobra.Command{
	Use:   "playground",
	Short: "Run the shell with a temporary config directory and debug logging.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		dir, err := os.MkdirTemp("", "playground")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)

		playgroundLogger := log.New(cmd.ErrOrStderr(), "[playground] ", 0)
		cfg, err := config.Initialize(dir, playgroundLogger)
		if err != nil {
			return err
		}

		cfg.LogLevel = "debug"
		cfg.RecordSessions = playgroundRecord
		// Make the playground prompt stand out from a real shell.
		cfg.Prompt = "playground> "

		playgroundLogger.Printf("Logging to: file://%s\n", dir)
		playgroundLogger.Printf("See logs with: tail -f %s\n", filepath.Join(dir, cfg.AppLog))
		playgroundLogger.Println(strings.Repeat("=", 80))

		return runSession(cmd, cfg)
	},
}

func init() {
	rootCmd.AddCommand(playgroundCmd)
	playgroundCmd.Flags().BoolVar(&playgroundRecord, "record", false, "Record the session transcript.")
}
