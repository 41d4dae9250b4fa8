package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/bundlecompose/internal/assets"
)

// ServeCmd rebuilds on change and serves the output directory.
type ServeCmd struct {
	ParamsFlags `embed:""`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	defer setupTelemetry(ctx, globals)()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, cfg, err := c.effective()
	if err != nil {
		return err
	}

	bundler, err := assets.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to load bundler config: %w", err)
	}

	log.Info().Str("env", p.Env).Str("addr", p.Addr()).Msg("Starting watch mode")
	return bundler.Serve(ctx)
}
