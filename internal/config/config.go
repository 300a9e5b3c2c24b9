package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/featwalk/featwalk/internal/catalog"
	fwerrors "github.com/featwalk/featwalk/internal/errors"
)

// DefaultDepth bounds combination size when the manifest does not say.
const DefaultDepth = 2

// DefaultManifest is the manifest filename looked up in the working directory.
const DefaultManifest = "featwalk.yaml"

// FeatureSpec declares one optional feature in the manifest.
type FeatureSpec struct {
	Name      string   `yaml:"name"`
	Default   bool     `yaml:"default,omitempty"`
	Conflicts []string `yaml:"conflicts,omitempty"`
	Requires  []string `yaml:"requires,omitempty"`
}

// Manifest is the on-disk project description: the commands to run per
// combination and the feature catalog with its constraints.
type Manifest struct {
	Name             string        `yaml:"name,omitempty"`
	Commands         []string      `yaml:"commands"`
	Depth            *int          `yaml:"depth,omitempty"`
	FailFast         bool          `yaml:"fail_fast,omitempty"`
	Workers          int           `yaml:"workers,omitempty"`
	ExcludeNoDefault bool          `yaml:"exclude_no_default,omitempty"`
	Features         []FeatureSpec `yaml:"features,omitempty"`
}

// envOverrides are applied on top of the manifest. Unset variables leave the
// manifest values alone.
type envOverrides struct {
	Depth    *int  `env:"FEATWALK_DEPTH"`
	Workers  *int  `env:"FEATWALK_WORKERS"`
	FailFast *bool `env:"FEATWALK_FAIL_FAST"`
}

// LoadFile reads and parses a manifest YAML file.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Load(data)
}

// Load parses manifest YAML bytes and checks the basic shape. Catalog-level
// constraint validation happens in Catalog.
func Load(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fwerrors.NewConfigError(fwerrors.InvalidManifest,
			fmt.Sprintf("parsing YAML: %v", err), "")
	}
	if len(m.Commands) == 0 {
		return nil, fwerrors.NewConfigError(fwerrors.InvalidManifest,
			"manifest has no commands", "Add a commands list, e.g. commands: [\"make test\"]")
	}
	for i, c := range m.Commands {
		if c == "" {
			return nil, fwerrors.NewConfigError(fwerrors.InvalidManifest,
				fmt.Sprintf("command at index %d is empty", i), "")
		}
	}
	return &m, nil
}

// ApplyEnv overlays FEATWALK_* environment variables onto the manifest.
func (m *Manifest) ApplyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.Depth != nil {
		m.Depth = o.Depth
	}
	if o.Workers != nil {
		m.Workers = *o.Workers
	}
	if o.FailFast != nil {
		m.FailFast = *o.FailFast
	}
	return nil
}

// EffectiveDepth returns the configured depth or the default.
func (m *Manifest) EffectiveDepth() int {
	if m.Depth == nil {
		return DefaultDepth
	}
	return *m.Depth
}

// Catalog validates the declared features and builds the catalog.
func (m *Manifest) Catalog() (*catalog.Catalog, error) {
	features := make([]catalog.Feature, 0, len(m.Features))
	for _, f := range m.Features {
		features = append(features, catalog.Feature{
			Name:      f.Name,
			Default:   f.Default,
			Conflicts: f.Conflicts,
			Requires:  f.Requires,
		})
	}
	return catalog.Build(features)
}
