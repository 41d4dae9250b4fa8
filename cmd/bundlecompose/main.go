package main

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/wolfeidau/bundlecompose/cmd/bundlecompose/internal/commands"
	"github.com/wolfeidau/bundlecompose/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool `help:"Enable debug mode."`
		Tracing bool `help:"Export traces and metrics over OTLP." env:"BUNDLE_TRACING"`
		Version kong.VersionFlag
		Print   commands.PrintCmd `cmd:"" help:"Print the effective configuration"`
		Build   commands.BuildCmd `cmd:"" help:"Build assets with the effective configuration"`
		Serve   commands.ServeCmd `cmd:"" help:"Watch sources and serve the output directory"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("bundlecompose"),
		kong.Description("Compose partial build configurations and bundle them with esbuild."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	logger.Setup(cli.Debug)
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Tracing: cli.Tracing, Version: version})
	cmd.FatalIfErrorf(err)
}
