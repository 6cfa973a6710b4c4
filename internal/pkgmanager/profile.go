package pkgmanager

import (
	"github.com/depwatch/depwatch/internal/errdefs"
)

// Profile describes one supported package manager: its lockfile and the
// commands used to install, clean-install, and enumerate packages.
type Profile struct {
	Name                string
	LockFile            string
	InstallCommand      string
	CleanInstallCommand string
	ListCommand         string
}

const (
	ManagerPnpm = "pnpm"
	ManagerYarn = "yarn"
	ManagerNpm  = "npm"

	// DefaultManager is the fallback when no other signal resolves a
	// manager: npm ships with every Node installation.
	DefaultManager = ManagerNpm
)

// profiles lists the supported managers in detection preference order.
var profiles = []Profile{
	{
		Name:                ManagerPnpm,
		LockFile:            "pnpm-lock.yaml",
		InstallCommand:      "pnpm install",
		CleanInstallCommand: "pnpm install --frozen-lockfile",
		ListCommand:         "pnpm list --json --depth 0",
	},
	{
		Name:                ManagerYarn,
		LockFile:            "yarn.lock",
		InstallCommand:      "yarn install",
		CleanInstallCommand: "yarn install --frozen-lockfile",
		ListCommand:         "yarn list --depth=0 --json",
	},
	{
		Name:                ManagerNpm,
		LockFile:            "package-lock.json",
		InstallCommand:      "npm install",
		CleanInstallCommand: "npm ci",
		ListCommand:         "npm list --json --depth=0",
	},
}

// Profiles returns the known profiles in preference order.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// GetProfile looks up a profile by manager name.
func GetProfile(name string) (Profile, error) {
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, &errdefs.UnsupportedManagerError{Name: name}
}
