package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sheetviz/config"
	"sheetviz/internal/theme"
	"sheetviz/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web viewer",
	Long: `Start the web viewer.

Configuration is read from SHEETVIZ_* environment variables, optionally
loaded from the --env file. Flags override the environment.

Examples:
  sheetviz serve
  sheetviz serve --port 9000
  SHEETVIZ_ENV=development sheetviz serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen address (env: SHEETVIZ_HOST)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (env: SHEETVIZ_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("host") {
		cfg.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	closer, err := config.SetupLog(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	th, err := theme.Load(theme.NewFileStore(cfg.ThemeFile()))
	if err != nil {
		return err
	}

	srv := server.New(cfg, th)
	srv.Version = Version

	out := cmd.OutOrStdout()
	fmt.Fprint(out, color.GreenString("\nSheetviz v%s", Version))
	if cfg.Mode == config.ModeDevelopment {
		fmt.Fprint(out, color.RedString(" development"))
	}
	fmt.Fprint(out, color.WhiteString("\n---------------------------------"))
	fmt.Fprint(out, color.GreenString("\nViewer:     http://%s/", cfg.Addr()))
	fmt.Fprint(out, color.GreenString("\nAPI:        http://%s/api", cfg.Addr()))
	fmt.Fprint(out, color.GreenString("\nTheme file: %s (%s)", cfg.ThemeFile(), th.Mode()))
	fmt.Fprint(out, color.WhiteString("\n---------------------------------\n\n"))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx); err != nil {
		log.Errorf("[server] %v", err)
		return err
	}
	return nil
}
