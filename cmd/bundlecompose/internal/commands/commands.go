package commands

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/bundlecompose/internal/compose"
	"github.com/wolfeidau/bundlecompose/internal/config"
	"github.com/wolfeidau/bundlecompose/internal/preset"
	"github.com/wolfeidau/bundlecompose/internal/telemetry"
)

type Globals struct {
	Debug   bool
	Tracing bool
	Version string
}

// ParamsFlags are the build parameters accepted by every command. Unset flags fall back to
// BUNDLE_* environment variables, then to defaults.
type ParamsFlags struct {
	Env        string   `help:"environment, production enables minification and compression" short:"e"`
	Context    string   `help:"source directory (default: demo)"`
	Output     string   `help:"output directory (default: demo_build)" short:"o"`
	Entry      string   `help:"entry script relative to the source directory (default: index.js)"`
	Template   string   `help:"page template relative to the source directory (default: index.html.tmpl)"`
	PublicPath string   `help:"public URL prefix for assets"`
	Manifest   string   `help:"manifest file name (default: manifest.json)"`
	Partial    []string `help:"extra YAML or JSON partial configuration, applied last"`
	Host       string   `help:"dev server host (default: localhost)"`
	Port       int      `help:"dev server port (default: 8080)"`
}

func (f ParamsFlags) params() (config.Params, error) {
	return config.Load(config.Params{
		Env:          f.Env,
		Context:      f.Context,
		OutputDir:    f.Output,
		Entry:        f.Entry,
		Template:     f.Template,
		PublicPath:   f.PublicPath,
		ManifestName: f.Manifest,
		Partials:     f.Partial,
		Host:         f.Host,
		Port:         f.Port,
	})
}

// effective loads the parameters and composes the configuration for them.
func (f ParamsFlags) effective() (config.Params, compose.Config, error) {
	p, err := f.params()
	if err != nil {
		return config.Params{}, nil, err
	}

	cfg, err := preset.Load(p)
	if err != nil {
		return config.Params{}, nil, err
	}

	log.Debug().Str("env", p.Env).Strs("sections", cfg.Keys()).Msg("Composed configuration")
	return p, cfg, nil
}

// setupTelemetry starts exporters when tracing is enabled and returns the shutdown hook.
func setupTelemetry(ctx context.Context, globals *Globals) func() {
	if !globals.Tracing {
		return func() {}
	}

	shutdown, err := telemetry.InitTelemetry(ctx, "bundlecompose", globals.Version)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
		return func() {}
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown telemetry")
		}
	}
}
