// Package config loads the YAML configuration file describing edge
// nodes, worker init parameters and GraphML parsing options into a
// setup.Config, the same pattern the teacher's CLI uses to unmarshal
// user input directly into domain types with gopkg.in/yaml.v3.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vnetcore/vnetcore/setup"
)

// Load reads and parses the YAML file at path into a setup.Config.
func Load(path string) (*setup.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg setup.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}
