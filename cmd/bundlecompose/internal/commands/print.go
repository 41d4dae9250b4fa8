package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wolfeidau/bundlecompose/internal/compose"
)

// PrintCmd writes the effective configuration without building.
type PrintCmd struct {
	ParamsFlags `embed:""`

	Format string `help:"output format" enum:"yaml,json" default:"yaml"`
}

func (c *PrintCmd) Run(ctx context.Context, globals *Globals) error {
	_, cfg, err := c.effective()
	if err != nil {
		return err
	}
	return writeConfig(os.Stdout, cfg, c.Format)
}

func writeConfig(w io.Writer, cfg compose.Config, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", format)
}
