package unpack

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the release manifest name inside a release package.
const ManifestFile = "release.yaml"

// AppDep is one pinned app reference in a release manifest.
type AppDep struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Manifest describes a release: the apps it activates and the runtime it
// requires.
type Manifest struct {
	Name    string   `yaml:"name"`
	Version string   `yaml:"version"`
	Runtime string   `yaml:"runtime"`
	Apps    []AppDep `yaml:"apps"`
}

// ReadManifest loads and validates a release manifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if m.Name == "" || m.Version == "" {
		return nil, fmt.Errorf("%s: name and version are required", path)
	}
	for _, a := range m.Apps {
		if a.Name == "" || a.Version == "" {
			return nil, fmt.Errorf("%s: app entries need name and version", path)
		}
	}
	return &m, nil
}
