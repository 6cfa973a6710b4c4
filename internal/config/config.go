// Package config stores user preferences for a watched workspace in a
// .depwatch.toml file alongside the project.
package config

import (
	"bytes"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"

	"github.com/depwatch/depwatch/internal/log"
)

// FileName is the per-project configuration file.
const FileName = ".depwatch.toml"

type Config struct {
	AutoCheckOnBranchSwitch         bool   `toml:"auto_check_on_branch_switch"`
	AutoCheckOnFileChange           bool   `toml:"auto_check_on_file_change"`
	PreferredPackageManager         string `toml:"preferred_package_manager"`
	DeleteNodeModulesOnCleanInstall bool   `toml:"delete_node_modules_on_clean_install"`
}

func Default() *Config {
	return &Config{
		AutoCheckOnBranchSwitch:         true,
		AutoCheckOnFileChange:           true,
		PreferredPackageManager:         "auto",
		DeleteNodeModulesOnCleanInstall: false,
	}
}

// Load reads the project's config file, falling back to defaults when the
// file is absent or unreadable. A broken config never blocks a check.
func Load(fs afero.Fs, projectDir string) *Config {
	cfg := Default()

	path := filepath.Join(projectDir, FileName)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		log.Warnf("Ignoring malformed %s: %v", FileName, err)
		return Default()
	}
	if cfg.PreferredPackageManager == "" {
		cfg.PreferredPackageManager = "auto"
	}
	return cfg
}

// Save writes the config back to the project's config file.
func (c *Config) Save(fs afero.Fs, projectDir string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err
	}
	path := filepath.Join(projectDir, FileName)
	return afero.WriteFile(fs, path, buf.Bytes(), 0644)
}

// ToggleBranchCheck flips auto_check_on_branch_switch and persists it.
func (c *Config) ToggleBranchCheck(fs afero.Fs, projectDir string) (bool, error) {
	c.AutoCheckOnBranchSwitch = !c.AutoCheckOnBranchSwitch
	return c.AutoCheckOnBranchSwitch, c.Save(fs, projectDir)
}

// ToggleFileCheck flips auto_check_on_file_change and persists it.
func (c *Config) ToggleFileCheck(fs afero.Fs, projectDir string) (bool, error) {
	c.AutoCheckOnFileChange = !c.AutoCheckOnFileChange
	return c.AutoCheckOnFileChange, c.Save(fs, projectDir)
}

// ToggleDeleteModules flips delete_node_modules_on_clean_install and
// persists it.
func (c *Config) ToggleDeleteModules(fs afero.Fs, projectDir string) (bool, error) {
	c.DeleteNodeModulesOnCleanInstall = !c.DeleteNodeModulesOnCleanInstall
	return c.DeleteNodeModulesOnCleanInstall, c.Save(fs, projectDir)
}
