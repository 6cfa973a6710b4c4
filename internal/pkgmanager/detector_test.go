package pkgmanager

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubProbe(t *testing.T, available map[string]bool) {
	t.Helper()
	orig := probeVersion
	probeVersion = func(ctx context.Context, name string) error {
		if available[name] {
			return nil
		}
		return errors.New("not found")
	}
	t.Cleanup(func() { probeVersion = orig })
}

func stubShell(t *testing.T, fn func(command, dir string) ([]byte, error)) {
	t.Helper()
	orig := runShell
	runShell = func(ctx context.Context, command, dir string) ([]byte, error) {
		return fn(command, dir)
	}
	t.Cleanup(func() { runShell = orig })
}

func TestDetect(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit preference wins over lockfile evidence", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/proj/pnpm-lock.yaml", []byte(""), 0644))

		d := NewDetector(fs, ManagerYarn)
		assert.Equal(t, ManagerYarn, d.Detect(ctx, "/proj"))
	})

	t.Run("lockfile presence decides in preference order", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/proj/yarn.lock", []byte(""), 0644))
		require.NoError(t, afero.WriteFile(fs, "/proj/package-lock.json", []byte(""), 0644))

		d := NewDetector(fs, PreferenceAuto)
		assert.Equal(t, ManagerYarn, d.Detect(ctx, "/proj"))
	})

	t.Run("binary probe when no lockfile", func(t *testing.T) {
		stubProbe(t, map[string]bool{ManagerYarn: true})

		d := NewDetector(afero.NewMemMapFs(), PreferenceAuto)
		assert.Equal(t, ManagerYarn, d.Detect(ctx, "/proj"))
	})

	t.Run("falls back to npm when nothing is available", func(t *testing.T) {
		stubProbe(t, nil)

		d := NewDetector(afero.NewMemMapFs(), PreferenceAuto)
		assert.Equal(t, ManagerNpm, d.Detect(ctx, "/proj"))
	})

	t.Run("empty preference means auto", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/proj/pnpm-lock.yaml", []byte(""), 0644))

		d := NewDetector(fs, "")
		assert.Equal(t, ManagerPnpm, d.Detect(ctx, "/proj"))
	})
}

func TestListInstalled(t *testing.T) {
	ctx := context.Background()

	t.Run("npm dependency map", func(t *testing.T) {
		stubShell(t, func(command, dir string) ([]byte, error) {
			return []byte(`{"dependencies":{"lodash":{"version":"4.17.21"},"chalk":{"version":"5.3.0"}}}`), nil
		})

		d := NewDetector(afero.NewMemMapFs(), PreferenceAuto)
		installed, err := d.ListInstalled(ctx, "/proj", ManagerNpm)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"lodash": "4.17.21", "chalk": "5.3.0"}, installed)
	})

	t.Run("pnpm wraps the map in an array", func(t *testing.T) {
		stubShell(t, func(command, dir string) ([]byte, error) {
			return []byte(`[{"dependencies":{"express":{"version":"4.19.2"}}}]`), nil
		})

		d := NewDetector(afero.NewMemMapFs(), PreferenceAuto)
		installed, err := d.ListInstalled(ctx, "/proj", ManagerPnpm)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"express": "4.19.2"}, installed)
	})

	t.Run("non-zero exit retries with output capture", func(t *testing.T) {
		var commands []string
		stubShell(t, func(command, dir string) ([]byte, error) {
			commands = append(commands, command)
			if len(commands) == 1 {
				return []byte("npm error peer dep conflict"), errors.New("exit status 1")
			}
			return []byte("npm warn something\n{\"dependencies\":{\"react\":{\"version\":\"18.2.0\"}}}"), nil
		})

		d := NewDetector(afero.NewMemMapFs(), PreferenceAuto)
		installed, err := d.ListInstalled(ctx, "/proj", ManagerNpm)
		require.NoError(t, err)
		require.Len(t, commands, 2)
		assert.Contains(t, commands[1], "|| true")
		assert.Equal(t, map[string]string{"react": "18.2.0"}, installed)
	})

	t.Run("retry failure degrades to empty set", func(t *testing.T) {
		stubShell(t, func(command, dir string) ([]byte, error) {
			return nil, errors.New("sh not found")
		})

		d := NewDetector(afero.NewMemMapFs(), PreferenceAuto)
		installed, err := d.ListInstalled(ctx, "/proj", ManagerNpm)
		require.NoError(t, err)
		assert.Empty(t, installed)
	})

	t.Run("unknown manager is an error", func(t *testing.T) {
		d := NewDetector(afero.NewMemMapFs(), PreferenceAuto)
		_, err := d.ListInstalled(ctx, "/proj", "bower")
		assert.Error(t, err)
	})
}
