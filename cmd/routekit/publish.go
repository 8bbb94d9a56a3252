package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/routekit/internal/build"
	"github.com/vango-dev/routekit/internal/publish"
)

func publishCmd() *cobra.Command {
	var (
		bucket string
		prefix string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload static assets to S3",
		Long: `Upload the built static tree (build/app/static) to the bucket
configured in the [publish] table of routekit.toml.

Credentials are read from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
AWS_SESSION_TOKEN.

Examples:
  routekit publish
  routekit publish --bucket=assets --prefix=v2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProject()
			if err != nil {
				return err
			}
			if bucket != "" {
				cfg.Publish.Bucket = bucket
			}
			if prefix != "" {
				cfg.Publish.Prefix = prefix
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := publish.New(publish.NewClient(cfg.Publish), cfg.Publish, nil)
			if err != nil {
				return err
			}
			report, err := p.Publish(ctx, filepath.Join(cfg.OutputPath(), filepath.FromSlash(build.StaticDir)))
			if err != nil {
				return err
			}

			success("Uploaded %d files (%s) to s3://%s", len(report.Keys), formatBytes(report.Bytes), report.Bucket)
			return nil
		},
	}

	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "Bucket (default from routekit.toml)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix (default from routekit.toml)")

	return cmd
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
