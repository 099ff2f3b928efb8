package cmd

import (
	"errors"
	"io/fs"
	"log"

	"github.com/josephlewis42/jobsh/core/config"
	"github.com/spf13/cobra"
)

var cfgPath string

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jobsh",
	Short: "A job control shell",
	Long: `An interactive shell that runs one command per line, in the foreground
or in the background with a trailing '&', and manages the resulting jobs
with the jobs, fg and bg builtins.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := config.LoadOrDefault(cfgPath)
		if err != nil {
			return err
		}

		return runSession(cmd, configuration)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultDir(), "config path")
}
