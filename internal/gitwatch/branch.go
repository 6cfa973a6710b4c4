// Package gitwatch tracks the current branch of a workspace's repository
// and notifies subscribers when it changes.
package gitwatch

import (
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"

	"github.com/depwatch/depwatch/internal/log"
)

// shortHashLen is how much of a raw commit hash stands in for a branch
// name when HEAD is detached.
const shortHashLen = 7

// CurrentBranch returns the branch the repository at repoDir is on. A
// detached HEAD yields a short commit identifier instead. Any failure
// yields "" and is never fatal; an unreadable repository just means the
// branch is unknown.
func CurrentBranch(repoDir string) string {
	repo, err := git.PlainOpen(repoDir)
	if err != nil {
		log.Debugf("No repository at %s: %v", repoDir, err)
		return ""
	}

	// HEAD is read unresolved so a branch with no commits yet still
	// reports its name.
	ref, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		log.Debugf("Failed to read HEAD: %v", err)
		return ""
	}

	if ref.Type() == plumbing.SymbolicReference {
		target := ref.Target()
		if target.IsBranch() {
			return target.Short()
		}
		return shorten(string(target))
	}
	return shorten(ref.Hash().String())
}

func shorten(raw string) string {
	if len(raw) <= shortHashLen {
		return raw
	}
	return raw[:shortHashLen]
}

// Discover walks up from startDir looking for a repository root. The
// second return is false when startDir is not inside a repository.
func Discover(startDir string) (string, bool) {
	current, err := filepath.Abs(startDir)
	if err != nil {
		return "", false
	}
	for {
		gitDir := filepath.Join(current, ".git")
		if info, err := os.Stat(gitDir); err == nil {
			// .git can be a file for worktrees and submodules
			if info.IsDir() || info.Mode().IsRegular() {
				return current, true
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}
