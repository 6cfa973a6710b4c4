package manifest

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depwatch/depwatch/internal/errdefs"
)

func TestLoad(t *testing.T) {
	t.Run("parses name and both dependency sections", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		content := `{
  "name": "my-app",
  "version": "1.0.0",
  "dependencies": {"express": "^4.18.0"},
  "devDependencies": {"jest": "^29.0.0"}
}`
		require.NoError(t, afero.WriteFile(fs, "/proj/package.json", []byte(content), 0644))

		pkg, err := Load(fs, "/proj")
		require.NoError(t, err)
		assert.Equal(t, "my-app", pkg.Name)
		assert.Equal(t, map[string]string{"express": "^4.18.0"}, pkg.Dependencies)
		assert.Equal(t, map[string]string{"jest": "^29.0.0"}, pkg.DevDependencies)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(afero.NewMemMapFs(), "/proj")
		assert.ErrorIs(t, err, errdefs.ErrManifestNotFound)
	})

	t.Run("malformed json is a parse failure", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/proj/package.json", []byte("{nope"), 0644))

		_, err := Load(fs, "/proj")
		require.Error(t, err)
		assert.True(t, errdefs.IsType(err, errdefs.ErrTypeParseFailure))
	})
}

func TestMerge(t *testing.T) {
	pkg := &PackageJSON{
		Dependencies:    map[string]string{"express": "^4.18.0", "shared": "^1.0.0"},
		DevDependencies: map[string]string{"jest": "^29.0.0", "shared": "^2.0.0"},
	}

	merged := pkg.Merge()
	assert.Len(t, merged, 3)
	assert.Equal(t, "^4.18.0", merged["express"])
	assert.Equal(t, "^29.0.0", merged["jest"])
	// across sections the dev entry wins
	assert.Equal(t, "^2.0.0", merged["shared"])
}
