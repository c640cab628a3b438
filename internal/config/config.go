// Package config loads Arpha's project configuration file, arpha.yaml
// (spec.md's ambient stack: every compiler needs a project-level config
// surface even though spec.md's own Non-goals exclude a build system).
//
// Grounded on funvibe/funxy's project-config loader, which reads a YAML
// manifest with gopkg.in/yaml.v3 into a single Config struct rather than
// hand-rolling a flag-only configuration surface.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root of an arpha.yaml manifest.
type Config struct {
	Module      string            `yaml:"module"`
	EntryPoint  string            `yaml:"entry"`
	MaxPasses   int               `yaml:"maxPasses"`
	CachePath   string            `yaml:"cachePath"`
	RPCServices map[string]string `yaml:"rpcServices"` // logical name -> grpc target, spec §12
	IsTestMode  bool              `yaml:"-"`           // never read from YAML; nothing in this module sets it
}

// Default returns the configuration used when no arpha.yaml is present.
func Default() *Config {
	return &Config{
		MaxPasses: 0, // 0: let the resolver derive CountNodes(root)+numberOfGenerics+1 itself
		CachePath: ".arpha/cache.db",
	}
}

// Load reads and parses path into a Config, falling back to Default()'s
// field values for anything the file leaves unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
