// Package watchd runs the continuous monitor: it reacts to branch
// switches and manifest or lockfile edits by re-checking dependencies and
// offering a clean reinstall when the check fails.
package watchd

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/depwatch/depwatch/internal/checker"
	"github.com/depwatch/depwatch/internal/config"
	"github.com/depwatch/depwatch/internal/gitwatch"
	"github.com/depwatch/depwatch/internal/log"
	"github.com/depwatch/depwatch/internal/manifest"
	"github.com/depwatch/depwatch/internal/pkgmanager"
)

// fileDebounce coalesces editor save bursts into one check.
const fileDebounce = 500 * time.Millisecond

// Prompter asks the user whether to remediate a failed check.
type Prompter interface {
	// ConfirmReinstall returns true when the user chose to reinstall.
	ConfirmReinstall(result *checker.Result) (bool, error)
}

// dependencyChecker is the slice of checker.Checker the daemon drives.
type dependencyChecker interface {
	Check(ctx context.Context, projectDir string) *checker.Result
	CleanInstall(ctx context.Context, projectDir, managerName string) error
}

// Daemon wires the branch watcher, the file watcher, and the checker into
// one event loop.
type Daemon struct {
	cfg        *config.Config
	checker    dependencyChecker
	prompter   Prompter
	projectDir string
	debounce   time.Duration

	branches *gitwatch.Watcher
	triggers chan string
}

func New(cfg *config.Config, chk dependencyChecker, prompter Prompter, projectDir string) *Daemon {
	return &Daemon{
		cfg:        cfg,
		checker:    chk,
		prompter:   prompter,
		projectDir: projectDir,
		debounce:   fileDebounce,
		triggers:   make(chan string, 8),
	}
}

// Run blocks until ctx is cancelled, dispatching a dependency check for
// every enabled trigger. An initial check runs at startup.
func (d *Daemon) Run(ctx context.Context) error {
	d.branches = gitwatch.NewWatcher(d.projectDir)
	unsubscribe := d.branches.Subscribe(func(branch string) {
		if !d.cfg.AutoCheckOnBranchSwitch {
			return
		}
		d.trigger("branch switched to " + branch)
	})
	defer unsubscribe()

	if err := d.branches.Start(); err != nil {
		return err
	}
	defer d.branches.Close()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()
	if err := fsw.Add(d.projectDir); err != nil {
		return err
	}

	go d.watchFiles(ctx, fsw)

	log.Infof("Watching %s", d.projectDir)
	d.runCheck(ctx, "startup")

	for {
		select {
		case <-ctx.Done():
			return nil
		case reason := <-d.triggers:
			d.runCheck(ctx, reason)
		}
	}
}

func (d *Daemon) trigger(reason string) {
	select {
	case d.triggers <- reason:
	default:
		// a check is already queued
	}
}

// watchFiles forwards manifest and lockfile changes as triggers, after a
// debounce window.
func (d *Daemon) watchFiles(ctx context.Context, fsw *fsnotify.Watcher) {
	watched := map[string]bool{manifest.FileName: true}
	for _, p := range pkgmanager.Profiles() {
		watched[p.LockFile] = true
	}

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			// a pending debounce must not enqueue work after shutdown
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !watched[filepath.Base(ev.Name)] {
				continue
			}
			if !d.cfg.AutoCheckOnFileChange {
				continue
			}
			name := filepath.Base(ev.Name)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(d.debounce, func() {
				d.trigger(name + " changed")
			})
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			log.Debugf("File watcher error: %v", err)
		}
	}
}

func (d *Daemon) runCheck(ctx context.Context, reason string) {
	log.Infof("Checking dependencies (%s)", reason)
	result := d.checker.Check(ctx, d.projectDir)
	log.Info(result.Summary())

	if result.Valid || d.prompter == nil {
		return
	}

	reinstall, err := d.prompter.ConfirmReinstall(result)
	if err != nil {
		log.Errorf("Prompt failed: %v", err)
		return
	}
	if !reinstall {
		return
	}

	if err := d.checker.CleanInstall(ctx, d.projectDir, result.Manager); err != nil {
		log.Errorf("Clean install failed: %v", err)
		return
	}
	log.Info("Clean install complete")
}
