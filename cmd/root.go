package cmd

import (
	"github.com/spf13/cobra"

	"sheetviz/config"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var envFile string

var rootCmd = &cobra.Command{
	Use:           "sheetviz",
	Short:         "Sheetviz: chart spreadsheets in the browser",
	Version:       Version,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Environment file overlaid before reading SHEETVIZ_* variables")
}

func loadConfig() (config.Config, error) {
	return config.LoadFrom(envFile)
}

func Execute() error {
	return rootCmd.Execute()
}
