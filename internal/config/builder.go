package config

import (
	"errors"
	"fmt"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment variable read by WithEnv.
const EnvPrefix = "BUNDLE_"

// Builder folds parameter layers in the order they were added.
type Builder struct {
	layers []Params
	err    error
}

func NewBuilder() *Builder {
	return &Builder{
		layers: make([]Params, 0, 3),
	}
}

// WithDefaults adds the default layer.
func (b *Builder) WithDefaults() *Builder {
	b.layers = append(b.layers, Defaults())
	return b
}

// WithEnv adds a layer read from BUNDLE_* environment variables.
func (b *Builder) WithEnv() *Builder {
	var p Params
	if err := env.ParseWithOptions(&p, env.Options{Prefix: EnvPrefix}); err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("error getting env params: %w", err))
		return b
	}

	b.layers = append(b.layers, p)
	return b
}

// WithOverrides adds a layer, typically parsed from command line flags. Zero fields are
// treated as unset.
func (b *Builder) WithOverrides(p Params) *Builder {
	b.layers = append(b.layers, p)
	return b
}

// Build merges the layers and validates the result.
func (b *Builder) Build() (Params, error) {
	if b.err != nil {
		return Params{}, fmt.Errorf("error occurred during building params: %w", b.err)
	}

	var out Params
	for _, layer := range b.layers {
		if err := mergo.Merge(&out, layer, mergo.WithOverride); err != nil {
			return Params{}, fmt.Errorf("error merging params: %w", err)
		}
	}

	return out, out.validate()
}

// Load is the standard layering: defaults, then the environment, then overrides.
func Load(overrides Params) (Params, error) {
	return NewBuilder().WithDefaults().WithEnv().WithOverrides(overrides).Build()
}
