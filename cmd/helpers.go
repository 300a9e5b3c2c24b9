package cmd

import (
	"github.com/featwalk/featwalk/internal/config"
)

// loadManifest reads the manifest and applies FEATWALK_* env overrides.
func loadManifest() (*config.Manifest, error) {
	m, err := config.LoadFile(manifestPath)
	if err != nil {
		return nil, err
	}
	if err := m.ApplyEnv(); err != nil {
		return nil, err
	}
	return m, nil
}
