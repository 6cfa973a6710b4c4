package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/depwatch/depwatch/internal/checker"
	"github.com/depwatch/depwatch/internal/config"
	"github.com/depwatch/depwatch/internal/log"
	"github.com/depwatch/depwatch/internal/pkgmanager"
	"github.com/depwatch/depwatch/internal/tui"
	"github.com/depwatch/depwatch/internal/watchd"
)

var (
	projectDir string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "depwatch",
	Short: "Node.js dependency monitor",
	Long: "depwatch keeps a Node.js workspace honest.\n\n" +
		"It detects which package manager governs the project, compares\n" +
		"declared dependencies against what is installed, and can trigger\n" +
		"a clean reinstall when they drift apart.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetVerbose()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("depwatch v%s\n", Version)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check declared dependencies against what is installed",
	Run: func(cmd *cobra.Command, args []string) {
		fs := afero.NewOsFs()
		cfg := config.Load(fs, projectDir)
		result := checker.New(fs, cfg).Check(signalContext(), projectDir)

		printResult(result)
		if !result.Valid {
			os.Exit(1)
		}
	},
}

var cleanInstallCmd = &cobra.Command{
	Use:   "clean-install",
	Short: "Reinstall dependencies from scratch",
	Long: "Reinstall dependencies with the detected package manager's\n" +
		"clean-install command, optionally removing node_modules first\n" +
		"(see the delete-modules toggle).",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := signalContext()
		fs := afero.NewOsFs()
		cfg := config.Load(fs, projectDir)

		manager := pkgmanager.NewDetector(fs, cfg.PreferredPackageManager).Detect(ctx, projectDir)
		if err := checker.New(fs, cfg).CleanInstall(ctx, projectDir, manager); err != nil {
			log.Fatalf("Clean install failed: %v", err)
		}
		log.Info("Clean install complete")
	},
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Show which package manager governs this project",
	Run: func(cmd *cobra.Command, args []string) {
		fs := afero.NewOsFs()
		cfg := config.Load(fs, projectDir)
		name := pkgmanager.NewDetector(fs, cfg.PreferredPackageManager).Detect(signalContext(), projectDir)
		fmt.Println(name)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor the workspace and re-check on branch or file changes",
	Run: func(cmd *cobra.Command, args []string) {
		fs := afero.NewOsFs()
		cfg := config.Load(fs, projectDir)
		chk := checker.New(fs, cfg)

		daemon := watchd.New(cfg, chk, tui.Prompter{}, projectDir)
		if err := daemon.Run(signalContext()); err != nil {
			log.Fatalf("Watch failed: %v", err)
		}
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Flip a configuration option",
}

var toggleBranchCheckCmd = &cobra.Command{
	Use:   "branch-check",
	Short: "Toggle automatic checks on branch switch",
	Run: func(cmd *cobra.Command, args []string) {
		runToggle("auto check on branch switch", (*config.Config).ToggleBranchCheck)
	},
}

var toggleFileCheckCmd = &cobra.Command{
	Use:   "file-check",
	Short: "Toggle automatic checks on manifest or lockfile change",
	Run: func(cmd *cobra.Command, args []string) {
		runToggle("auto check on file change", (*config.Config).ToggleFileCheck)
	},
}

var toggleDeleteModulesCmd = &cobra.Command{
	Use:   "delete-modules",
	Short: "Toggle removing node_modules before a clean install",
	Run: func(cmd *cobra.Command, args []string) {
		runToggle("delete node_modules on clean install", (*config.Config).ToggleDeleteModules)
	},
}

func runToggle(label string, flip func(*config.Config, afero.Fs, string) (bool, error)) {
	fs := afero.NewOsFs()
	cfg := config.Load(fs, projectDir)
	enabled, err := flip(cfg, fs, projectDir)
	if err != nil {
		log.Fatalf("Failed to save config: %v", err)
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	log.Infof("%s %s", label, state)
}

func printResult(result *checker.Result) {
	if result.Manager != "" {
		log.Infof("Package manager: %s", result.Manager)
	}
	for _, name := range result.Missing {
		log.Warnf("missing: %s", name)
	}
	for _, entry := range result.Outdated {
		log.Warnf("outdated: %s", entry)
	}
	for _, name := range result.Extra {
		log.Debugf("extra: %s", name)
	}
	for _, msg := range result.Errors {
		log.Error(msg)
	}
	log.Info(result.Summary())
}

// signalContext returns a context cancelled by SIGINT/SIGTERM so a hung
// subprocess can be abandoned with ctrl-c.
func signalContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}
