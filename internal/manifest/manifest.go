// Package manifest locates and parses a workspace's package.json.
package manifest

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/depwatch/depwatch/internal/errdefs"
)

// FileName is the dependency declaration file this tool understands.
const FileName = "package.json"

// PackageJSON is the subset of a manifest this tool reads.
type PackageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Load reads and parses package.json from projectDir. A missing file is
// ErrManifestNotFound; malformed JSON is a parse failure.
func Load(fs afero.Fs, projectDir string) (*PackageJSON, error) {
	path := filepath.Join(projectDir, FileName)

	exists, err := afero.Exists(fs, path)
	if err != nil || !exists {
		return nil, errdefs.ErrManifestNotFound
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errdefs.ErrManifestNotFound
	}

	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeParseFailure, "invalid package.json: "+err.Error())
	}
	return &pkg, nil
}

// Merge returns the union of runtime and development dependencies as one
// declared-dependency map. JSON objects cannot repeat keys within a
// section; across sections a devDependencies entry wins.
func (p *PackageJSON) Merge() map[string]string {
	merged := make(map[string]string, len(p.Dependencies)+len(p.DevDependencies))
	for name, req := range p.Dependencies {
		merged[name] = req
	}
	for name, req := range p.DevDependencies {
		merged[name] = req
	}
	return merged
}
