// Package checker reconciles declared dependencies against the packages a
// manager actually installed, and drives clean reinstalls.
package checker

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/depwatch/depwatch/internal/config"
	"github.com/depwatch/depwatch/internal/errdefs"
	"github.com/depwatch/depwatch/internal/log"
	"github.com/depwatch/depwatch/internal/manifest"
	"github.com/depwatch/depwatch/internal/pkgmanager"
)

// Result is the outcome of one dependency check. Valid is true only when
// nothing is missing or outdated; extra packages are informational.
type Result struct {
	Valid    bool
	Manager  string
	Missing  []string
	Extra    []string
	Outdated []string
	Errors   []string
}

// managerDetector is the slice of pkgmanager.Detector the checker needs.
type managerDetector interface {
	Detect(ctx context.Context, projectDir string) string
	ListInstalled(ctx context.Context, projectDir, name string) (map[string]string, error)
}

// execCommand is a seam for tests that must not spawn real installs.
var execCommand = pkgmanager.ExecCommand

// Checker runs dependency checks for one project directory.
type Checker struct {
	fs       afero.Fs
	cfg      *config.Config
	detector managerDetector
}

func New(fs afero.Fs, cfg *config.Config) *Checker {
	return &Checker{
		fs:       fs,
		cfg:      cfg,
		detector: pkgmanager.NewDetector(fs, cfg.PreferredPackageManager),
	}
}

// Check compares the manifest's declared dependencies against the
// installed set. It never returns an error: failures are collected into
// the result and force Valid to false.
func (c *Checker) Check(ctx context.Context, projectDir string) *Result {
	result := &Result{Valid: true}

	pkg, err := manifest.Load(c.fs, projectDir)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	declared := pkg.Merge()

	managerName := c.detector.Detect(ctx, projectDir)
	result.Manager = managerName

	installed, err := c.detector.ListInstalled(ctx, projectDir, managerName)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	for name, required := range declared {
		version, ok := installed[name]
		if !ok {
			result.Missing = append(result.Missing, name)
			continue
		}
		if !Compatible(required, version) {
			result.Outdated = append(result.Outdated,
				fmt.Sprintf("%s@%s (required: %s)", name, version, required))
		}
	}

	for name := range installed {
		if _, ok := declared[name]; !ok {
			result.Extra = append(result.Extra, name)
		}
	}

	sort.Strings(result.Missing)
	sort.Strings(result.Extra)
	sort.Strings(result.Outdated)

	if len(result.Missing) > 0 || len(result.Outdated) > 0 {
		result.Valid = false
	}
	return result
}

// CleanInstall reinstalls dependencies from scratch with the named
// manager's clean-install command, optionally removing node_modules
// first. Command failures propagate to the caller.
func (c *Checker) CleanInstall(ctx context.Context, projectDir, managerName string) error {
	profile, err := pkgmanager.GetProfile(managerName)
	if err != nil {
		return err
	}

	if c.cfg.DeleteNodeModulesOnCleanInstall {
		modulesDir := filepath.Join(projectDir, "node_modules")
		log.Infof("Removing %s", modulesDir)
		if err := c.fs.RemoveAll(modulesDir); err != nil {
			return errdefs.NewCustomError(errdefs.ErrTypeGeneric,
				"failed to remove node_modules: "+err.Error())
		}
	}

	return execCommand(ctx, profile.CleanInstallCommand, projectDir)
}

// Summary renders the result as log lines, the way the watch loop and the
// check command report it.
func (r *Result) Summary() string {
	if r.Valid {
		return "dependencies are up to date"
	}
	msg := "dependency check failed:"
	if len(r.Missing) > 0 {
		msg += fmt.Sprintf(" %d missing", len(r.Missing))
	}
	if len(r.Outdated) > 0 {
		msg += fmt.Sprintf(" %d outdated", len(r.Outdated))
	}
	if len(r.Errors) > 0 {
		msg += fmt.Sprintf(" %d errors", len(r.Errors))
	}
	return msg
}
