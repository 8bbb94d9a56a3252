package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/routekit/internal/build"
)

func buildCmd() *cobra.Command {
	var (
		incremental bool
		check       bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the route tree",
		Long: `Compile src/routes into the output directory.

A full build removes the output and writes it again. An incremental
build keeps it, rewrites changed files and removes stale ones. A check
writes nothing and prints a unified diff of every output that differs
from the disk; it exits non-zero when there is one.

Examples:
  routekit build
  routekit build --incremental
  routekit build --check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(incremental, check)
		},
	}

	cmd.Flags().BoolVarP(&incremental, "incremental", "i", false, "Rewrite only changed outputs")
	cmd.Flags().BoolVar(&check, "check", false, "Diff the outputs against the disk without writing")

	return cmd
}

func runBuild(incremental, check bool) error {
	cfg, err := loadProject()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder := build.New(cfg, build.Options{
		Incremental: incremental,
		Check:       check,
		OnProgress: func(state build.State) {
			if verbose && state.Step() != "" {
				info(state.Step())
			}
		},
	})

	result, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	if check {
		if len(result.Diffs) == 0 {
			success("Output is up to date")
			return nil
		}
		for _, d := range result.Diffs {
			fmt.Print(d.Unified)
		}
		return fmt.Errorf("%d output files differ", len(result.Diffs))
	}

	success("Built %d routes in %s", len(result.Routes), result.Duration.Round(time.Millisecond))
	if incremental {
		info("%d written, %d unchanged, %d removed", len(result.Written), len(result.Skipped), len(result.Removed))
	}
	info("Output: %s", cfg.Build.Output)
	return nil
}
