package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/routekit/internal/build"
	"github.com/vango-dev/routekit/internal/dev"
	"github.com/vango-dev/routekit/internal/errors"
)

func runCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build, serve and rebuild on change",
		Long: `Run a full build, start the backend, then watch the project.

Every change triggers an incremental build. Changes made during a build
are folded into one more build. After a successful build the backend
restarts and connected browsers reload.

Examples:
  routekit run
  routekit run --port=8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(port, host)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Backend port (default from routekit.toml)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Backend host (default from routekit.toml)")

	return cmd
}

func runDev(port int, host string) error {
	cfg, err := loadProject()
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Dev.Port = port
	}
	if host != "" {
		cfg.Dev.Host = host
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := dev.NewSession(dev.SessionOptions{
		Config: cfg,
		OnPass: func(result *build.Result, err error) {
			if err != nil {
				errors.PrintError(err)
				errorMsg("Build failed, waiting for changes")
				return
			}
			success("Built %d routes in %s", len(result.Routes), result.Duration.Round(time.Millisecond))
		},
		OnReload: func(clients int) {
			if clients > 0 {
				success("Reloaded %d browsers", clients)
			}
		},
	})

	success("Serving %s", cfg.DevURL())
	info("Metrics: http://%s%s", cfg.ReloadAddress(), dev.MetricsPath)
	if err := session.Run(ctx); err != nil {
		return err
	}
	info("Stopped")
	return nil
}
