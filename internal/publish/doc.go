// Package publish uploads a build's static assets to S3 or any
// S3-compatible object store.
//
//	client := publish.NewClient(cfg.Publish)
//	p, err := publish.New(client, cfg.Publish, logger)
//	report, err := p.Publish(ctx, filepath.Join(cfg.OutputPath(), build.StaticDir))
package publish
