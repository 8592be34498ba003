package gen

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pointFile = "/src/shapes/point.go"

func newMemGenerator(t *testing.T, opts ...Option) (*Generator, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, pointFile, []byte(pointSrc), 0o640))
	g, err := New(append([]Option{WithFs(fs)}, opts...)...)
	require.NoError(t, err)
	return g, fs
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	g, fs := newMemGenerator(t, WithTokens("constructor", "getters"))

	res, err := g.Run(ctx, pointFile)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.True(t, res.Written)

	data, err := afero.ReadFile(fs, pointFile)
	require.NoError(t, err)
	assert.Equal(t, string(res.Output.Content), string(data))
	requireParses(t, data)

	info, err := fs.Stat(pointFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	entries, err := afero.ReadDir(fs, "/src/shapes")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary file is left behind")

	res, err = g.Run(ctx, pointFile)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.False(t, res.Written)
}

func TestRunDryRun(t *testing.T) {
	g, fs := newMemGenerator(t, WithTokens("getters"), WithDryRun(true))
	res, err := g.Run(context.Background(), pointFile)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.False(t, res.Written)

	data, err := afero.ReadFile(fs, pointFile)
	require.NoError(t, err)
	assert.Equal(t, pointSrc, string(data))
}

func TestRunFailureLeavesFile(t *testing.T) {
	g, fs := newMemGenerator(t, WithTokens("string"))
	_, err := g.Run(context.Background(), pointFile)
	require.Error(t, err)
	assert.True(t, IsConfigError(err), "fmt is not imported")

	data, err := afero.ReadFile(fs, pointFile)
	require.NoError(t, err)
	assert.Equal(t, pointSrc, string(data))
}

func TestRunMissingFile(t *testing.T) {
	g, _ := newMemGenerator(t, WithTokens("getters"))
	_, err := g.Run(context.Background(), "/src/shapes/missing.go")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "target file does not exist")
}

func TestRunCanceled(t *testing.T) {
	g, _ := newMemGenerator(t, WithTokens("getters"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Run(ctx, pointFile)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	g, fs := newMemGenerator(t, WithTokens("getters"))

	res, err := g.Check(ctx, pointFile)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.False(t, res.Written)

	_, err = g.Run(ctx, pointFile)
	require.NoError(t, err)
	res, err = g.Check(ctx, pointFile)
	require.NoError(t, err)
	assert.False(t, res.Changed)

	// Update-only check of a file without region is a no-op.
	require.NoError(t, afero.WriteFile(fs, "/src/shapes/plain.go", []byte(pointSrc), 0o644))
	u, err := New(WithFs(fs), WithUpdateOnly(true))
	require.NoError(t, err)
	res, err = u.Check(ctx, "/src/shapes/plain.go")
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.True(t, res.Output.Noop)
}

func TestWatchRequiresOsFs(t *testing.T) {
	g, _ := newMemGenerator(t)
	err := g.Watch(context.Background(), []string{pointFile}, 0, nil)
	assert.True(t, IsConfigError(err))
}

func TestWriteFile(t *testing.T) {
	fs := afero.NewMemMapFs()

	t.Run("new file", func(t *testing.T) {
		require.NoError(t, writeFile(fs, "/out/new.go", []byte("package out\n")))
		info, err := fs.Stat("/out/new.go")
		require.NoError(t, err)
		assert.Equal(t, defaultFileMode, info.Mode().Perm())
	})

	t.Run("replaces content and keeps mode", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fs, "/out/old.go", []byte("old"), 0o600))
		require.NoError(t, writeFile(fs, "/out/old.go", []byte("new")))
		data, err := afero.ReadFile(fs, "/out/old.go")
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
		info, err := fs.Stat("/out/old.go")
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("read-only filesystem", func(t *testing.T) {
		ro := afero.NewReadOnlyFs(fs)
		err := writeFile(ro, "/out/old.go", []byte("newer"))
		require.Error(t, err)
		data, err := afero.ReadFile(fs, "/out/old.go")
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})
}

func TestInspect(t *testing.T) {
	ctx := context.Background()
	g, fs := newMemGenerator(t, WithTokens("hidden-getters", "builder"))
	_, err := g.Run(ctx, pointFile)
	require.NoError(t, err)

	i, err := New(WithFs(fs))
	require.NoError(t, err)
	m, err := i.Inspect(ctx, pointFile)
	require.NoError(t, err)
	assert.Equal(t, "Point", m.Class.Name)
	require.NotNil(t, m.Region)
	assert.Equal(t, []string{"hidden-getters", "builder"}, m.Region.Flags)
	assert.Equal(t, Restricted, m.Features["getters"])
	assert.Equal(t, Enabled, m.Features["constructor"])
	assert.Equal(t, []string{"constructor"}, m.Promoted)
	assert.False(t, m.Stale)

	data, err := afero.ReadFile(fs, pointFile)
	require.NoError(t, err)
	changed := strings.Replace(string(data), "count int", "count int64", 1)
	require.NoError(t, afero.WriteFile(fs, pointFile, []byte(changed), 0o640))
	m, err = i.Inspect(ctx, pointFile)
	require.NoError(t, err)
	assert.True(t, m.Stale)
}
