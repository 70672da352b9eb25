package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sheetviz/internal/theme"
)

var themeCmd = &cobra.Command{
	Use:   "theme [toggle|light|dark]",
	Short: "Show or change the saved viewer theme",
	Long: `Show or change the theme the viewer starts with.

Examples:
  sheetviz theme
  sheetviz theme toggle
  sheetviz theme dark`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"toggle", string(theme.Light), string(theme.Dark)},
	RunE:      runTheme,
}

func init() {
	rootCmd.AddCommand(themeCmd)
}

func runTheme(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	th, err := theme.Load(theme.NewFileStore(cfg.ThemeFile()))
	if err != nil {
		return err
	}

	switch {
	case len(args) == 0:
	case args[0] == "toggle":
		if _, err := th.Toggle(); err != nil {
			return err
		}
	default:
		mode, err := theme.ParseMode(args[0])
		if err != nil {
			return err
		}
		if err := th.Set(mode); err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), th.Mode())
	return nil
}
