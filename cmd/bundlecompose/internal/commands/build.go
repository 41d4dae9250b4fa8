package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/bundlecompose/internal/assets"
)

// BuildCmd composes the configuration and bundles it once.
type BuildCmd struct {
	ParamsFlags `embed:""`
}

func (c *BuildCmd) Run(ctx context.Context, globals *Globals) error {
	defer setupTelemetry(ctx, globals)()

	p, cfg, err := c.effective()
	if err != nil {
		return err
	}

	bundler, err := assets.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to load bundler config: %w", err)
	}

	started := time.Now()
	if err := bundler.Build(ctx); err != nil {
		return fmt.Errorf("failed to build assets: %w", err)
	}

	manifest, err := bundler.Manifest()
	if err != nil {
		return err
	}

	log.Info().
		Str("env", p.Env).
		Str("build_id", manifest.BuildID).
		Int("files", len(manifest.Files)).
		Int64("bytes", manifest.TotalBytes()).
		Dur("duration", time.Since(started)).
		Msg("Build complete")
	return nil
}
