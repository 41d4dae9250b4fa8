// Package preset selects and composes the partial configurations for an environment.
package preset

import (
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/bundlecompose/internal/compose"
	"github.com/wolfeidau/bundlecompose/internal/config"
	"github.com/wolfeidau/bundlecompose/internal/parts"
)

// Common is the configuration shared by every environment.
func Common(p config.Params) compose.Config {
	return compose.Compose(
		parts.Common(p),
		parts.Templates(),
		parts.ImportGlob(),
		parts.DevServer(p),
		parts.Media(p),
		parts.Transpile(),
	)
}

// Effective composes the configuration for p.Env. Production extracts optimised stylesheets
// and precompresses outputs; any other environment extracts stylesheets as is. Extra
// partials are applied last.
func Effective(p config.Params, extra ...compose.Config) compose.Config {
	seq := []compose.Config{Common(p)}
	if p.Production() {
		seq = append(seq, parts.CSSExtract(true), parts.Compress())
	} else {
		seq = append(seq, parts.CSSExtract(false))
	}
	seq = append(seq, extra...)

	return compose.Compose(seq...)
}

// Load reads p.Partials and composes them after the environment's parts.
func Load(p config.Params) (compose.Config, error) {
	extra := make([]compose.Config, 0, len(p.Partials))
	for _, path := range p.Partials {
		part, err := parts.LoadFile(path)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("path", path).Strs("sections", part.Keys()).Msg("Loaded partial")
		extra = append(extra, part)
	}

	return Effective(p, extra...), nil
}
