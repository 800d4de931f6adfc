package guard

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	Guards []Spec `yaml:"guards"`
}

// LoadFile reads extra guard specs from a YAML file of the form
//
//	guards:
//	  - name: staff
//	    allow: role in ["admin", "staff"]
//	    redirect: /
//	    mode: replace
func LoadFile(path string) ([]Spec, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read guards file: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse guards file: %w", err)
	}
	return cfg.Guards, nil
}

// Load returns the built-in guards plus the ones in path, if path is set.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default()
	}
	extra, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Default(extra...)
}
