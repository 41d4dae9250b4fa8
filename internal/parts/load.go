package parts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wolfeidau/bundlecompose/internal/compose"
)

// LoadFile reads a partial configuration from a YAML or JSON document. An empty document
// is an empty partial.
func LoadFile(path string) (compose.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read partial %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode partial %s: %w", path, err)
	}

	cfg, _ := compose.Normalize(raw).(compose.Config)
	if cfg == nil {
		cfg = compose.Config{}
	}
	return cfg, nil
}
