// Package state persists the values a run exports to later runs.
package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// State is the exported state. Only the last created cluster is kept.
type State struct {
	LastCluster Cluster `yaml:"last_cluster"`
}

// Cluster identifies a cluster created by this tool.
type Cluster struct {
	ID string `yaml:"id"`
}

// Load reads the state file. A missing file yields an empty state.
func Load(path string) (*State, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &s, nil
}

// Save replaces the state file with s.
func Save(path string, s *State) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}
