package gitwatch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/depwatch/depwatch/internal/log"
)

// refDebounce delays re-reading the branch after a ref-file change. Some
// git operations update refs before HEAD moves, so an immediate read
// would see a stale branch.
const refDebounce = 300 * time.Millisecond

// Watcher observes a repository's HEAD and branch refs and notifies
// subscribers when the current branch changes. A Watcher constructed for
// a directory with no repository stays dormant: Start succeeds and
// nothing is ever emitted.
type Watcher struct {
	repoDir  string
	dormant  bool
	debounce time.Duration

	mu      sync.Mutex
	current string
	subs    map[int]func(string)
	nextID  int
	timer   *time.Timer

	fsw       *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
}

// NewWatcher creates a watcher for the repository containing dir.
func NewWatcher(dir string) *Watcher {
	w := &Watcher{
		debounce: refDebounce,
		subs:     make(map[int]func(string)),
		done:     make(chan struct{}),
	}

	root, found := Discover(dir)
	if !found {
		log.Debug("No repository found, branch watcher dormant")
		w.dormant = true
		return w
	}
	w.repoDir = root
	w.current = CurrentBranch(root)
	return w
}

// Current returns the last observed branch, or "" when unknown.
func (w *Watcher) Current() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Subscribe registers fn to be called with the new branch name on every
// confirmed change. The returned func unregisters it.
func (w *Watcher) Subscribe(fn func(branch string)) func() {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.subs[id] = fn
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		delete(w.subs, id)
		w.mu.Unlock()
	}
}

// Start begins watching repository metadata. No-op for a dormant watcher.
func (w *Watcher) Start() error {
	if w.dormant {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw

	gitDir := filepath.Join(w.repoDir, ".git")
	if err := fsw.Add(gitDir); err != nil {
		fsw.Close()
		return err
	}
	// refs/heads may not exist in a fresh repository
	headsDir := filepath.Join(gitDir, "refs", "heads")
	if _, err := os.Stat(headsDir); err == nil {
		_ = fsw.Add(headsDir)
	}

	go w.loop()
	return nil
}

// Close stops watching. Safe to call repeatedly and on a dormant watcher.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		if w.fsw != nil {
			close(w.done)
			w.fsw.Close()
		}
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Debugf("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	name := filepath.Base(ev.Name)
	switch {
	case name == "HEAD":
		w.refresh()
	case strings.Contains(ev.Name, filepath.Join("refs", "heads")) || name == "packed-refs":
		w.scheduleRefresh()
	}
}

// scheduleRefresh coalesces bursts of ref updates into one re-read after
// the debounce window.
func (w *Watcher) scheduleRefresh() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.refresh)
}

// refresh re-reads the current branch and notifies subscribers if it
// changed. Empty and identical readings never emit.
func (w *Watcher) refresh() {
	branch := CurrentBranch(w.repoDir)
	if branch == "" {
		return
	}

	w.mu.Lock()
	if branch == w.current {
		w.mu.Unlock()
		return
	}
	w.current = branch
	subs := make([]func(string), 0, len(w.subs))
	for _, fn := range w.subs {
		subs = append(subs, fn)
	}
	w.mu.Unlock()

	log.Infof("Branch changed to %s", branch)
	for _, fn := range subs {
		fn(branch)
	}
}
