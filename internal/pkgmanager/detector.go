package pkgmanager

import (
	"context"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/depwatch/depwatch/internal/log"
)

// PreferenceAuto means no explicit manager preference is configured.
const PreferenceAuto = "auto"

// probeVersion checks whether a manager binary is available by asking it
// for its version. Seam for tests.
var probeVersion = func(ctx context.Context, name string) error {
	_, err := runShell(ctx, name+" --version", "")
	return err
}

// Detector resolves which package manager governs a project directory and
// enumerates the packages it has installed.
type Detector struct {
	fs         afero.Fs
	preference string
}

// NewDetector creates a detector. preference is a manager name from
// configuration, or "auto" to detect from the project directory.
func NewDetector(fs afero.Fs, preference string) *Detector {
	if preference == "" {
		preference = PreferenceAuto
	}
	return &Detector{fs: fs, preference: preference}
}

// Detect resolves the package manager for projectDir. Resolution order:
// explicit preference, lockfile presence, binary availability, then the
// default manager. Detection never fails; a failed probe just means that
// manager is unavailable.
func (d *Detector) Detect(ctx context.Context, projectDir string) string {
	if d.preference != PreferenceAuto {
		log.Debugf("Using configured package manager: %s", d.preference)
		return d.preference
	}

	for _, p := range profiles {
		lockPath := filepath.Join(projectDir, p.LockFile)
		if ok, _ := afero.Exists(d.fs, lockPath); ok {
			log.Debugf("Detected %s via %s", p.Name, p.LockFile)
			return p.Name
		}
	}

	for _, p := range profiles {
		if err := probeVersion(ctx, p.Name); err != nil {
			log.Debugf("%s unavailable: %v", p.Name, err)
			continue
		}
		log.Debugf("Detected %s via version probe", p.Name)
		return p.Name
	}

	log.Debugf("Falling back to %s", DefaultManager)
	return DefaultManager
}

// ListInstalled runs the manager's list command in projectDir and parses
// its output into a name to version map of top-level installed packages.
// Output that cannot be parsed degrades to an empty set; a missing or
// broken installation then reports every declared dependency as missing,
// which is still a useful answer.
func (d *Detector) ListInstalled(ctx context.Context, projectDir, name string) (map[string]string, error) {
	profile, err := GetProfile(name)
	if err != nil {
		return nil, err
	}

	output, runErr := runShell(ctx, profile.ListCommand, projectDir)
	if runErr != nil {
		// npm and friends exit non-zero on peer dependency warnings while
		// still printing valid JSON. Re-run through a redirection that
		// always exits zero so the output survives.
		log.Debugf("%s exited non-zero, retrying with output capture", profile.ListCommand)
		output, runErr = runShell(ctx, profile.ListCommand+" 2>&1 || true", projectDir)
		if runErr != nil {
			log.Warnf("Failed to list packages with %s: %v", name, runErr)
			return map[string]string{}, nil
		}
	}

	switch name {
	case ManagerYarn:
		return parseYarnList(output), nil
	default:
		return parseDependencyMap(output), nil
	}
}
