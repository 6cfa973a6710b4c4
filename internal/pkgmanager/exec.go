package pkgmanager

import (
	"context"
	"errors"
	"os/exec"

	"github.com/depwatch/depwatch/internal/errdefs"
	"github.com/depwatch/depwatch/internal/log"
)

// runShell is the seam tests replace to avoid spawning real processes.
// It runs command through `sh -c` in dir and returns combined output.
var runShell = func(ctx context.Context, command, dir string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// ExecCommand runs a shell command in projectDir, streaming its output
// line by line through the logger. A non-zero exit is reported as a
// CommandFailedError carrying the exit code.
func ExecCommand(ctx context.Context, command, projectDir string) error {
	log.Infof("Running: %s", command)

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = projectDir

	out := &log.LineWriter{Prefix: "cmd"}
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	out.Flush()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return errdefs.NewCommandFailed(command, exitErr.ExitCode())
	}
	return errdefs.NewCommandFailed(command, -1)
}
