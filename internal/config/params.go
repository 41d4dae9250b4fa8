// Package config holds the explicit build parameters that parameterise every partial
// configuration. Parameters are layered from defaults, the environment and command line
// flags, with later layers overriding earlier ones.
package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strconv"
)

const (
	// EnvProduction selects the optimising configuration.
	EnvProduction = "production"
	// EnvDevelopment is the default environment.
	EnvDevelopment = "development"
)

// Params are the static inputs of one build invocation.
type Params struct {
	// Environment selector, "production" or anything else
	Env string `env:"ENV"`
	// Source directory, the bundler context
	Context string `env:"CONTEXT"`
	// Output directory for built files
	OutputDir string `env:"OUTPUT_DIR"`
	// Entry script relative to Context
	Entry string `env:"ENTRY"`
	// Page template relative to Context
	Template string `env:"TEMPLATE"`
	// Public URL prefix for assets, empty for paths relative to the output
	PublicPath string `env:"PUBLIC_PATH"`
	// Name of the manifest written next to the outputs
	ManifestName string `env:"MANIFEST"`
	// Extra YAML or JSON partial configurations appended last
	Partials []string `env:"PARTIALS" envSeparator:","`

	Host string `env:"HOST"`
	Port int    `env:"PORT"`
}

// Defaults mirrors the demo layout: sources in demo, output in demo_build.
func Defaults() Params {
	return Params{
		Env:          EnvDevelopment,
		Context:      "demo",
		OutputDir:    "demo_build",
		Entry:        "index.js",
		Template:     "index.html.tmpl",
		ManifestName: "manifest.json",
		Host:         "localhost",
		Port:         8080,
	}
}

// Production reports whether the optimising configuration is selected.
func (p Params) Production() bool {
	return p.Env == EnvProduction
}

// EntryPath is the entry script joined to the context directory.
func (p Params) EntryPath() string {
	return filepath.Join(p.Context, p.Entry)
}

// TemplatePath is the page template joined to the context directory.
func (p Params) TemplatePath() string {
	return filepath.Join(p.Context, p.Template)
}

// Addr is the dev server listen address.
func (p Params) Addr() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

func (p Params) validate() error {
	if p.Context == "" || p.OutputDir == "" || p.Entry == "" {
		return fmt.Errorf("context, output and entry are required: %w", ErrInvalidPaths)
	}
	if filepath.Clean(p.Context) == filepath.Clean(p.OutputDir) {
		return fmt.Errorf("output %q must differ from context: %w", p.OutputDir, ErrInvalidPaths)
	}
	if p.Port < 0 || p.Port > 65535 {
		return fmt.Errorf("port %d out of range: %w", p.Port, ErrInvalidServer)
	}
	return nil
}
