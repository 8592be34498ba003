package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/datagen/compiler/gen"
)

const pointSrc = `package shapes

import "github.com/syssam/datagen"

type Point struct {
	name *string ` + "`datagen:\"nonnull\"`" + `
	count int
}

var _ = datagen.Format
`

func writePoint(t *testing.T) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "point.go")
	require.NoError(t, os.WriteFile(file, []byte(pointSrc), 0o644))
	return file
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func readFile(t *testing.T, file string) string {
	t.Helper()
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	return string(data)
}

func TestFeatureTokens(t *testing.T) {
	root := NewRootCmd()
	require.NoError(t, root.ParseFlags([]string{
		"--getters", "--no-setters", "--hidden-builder", "--fix-imports",
		"--equality=false", "--verbose", "-u",
	}))
	assert.ElementsMatch(t, []string{"getters", "no-setters", "hidden-builder", "fix-imports"}, featureTokens(root.Flags()))
}

func TestFeatureFlagsRegistered(t *testing.T) {
	root := NewRootCmd()
	for _, f := range gen.AllFeatures {
		assert.NotNil(t, root.PersistentFlags().Lookup(f.Name), f.Name)
		assert.NotNil(t, root.PersistentFlags().Lookup("no-"+f.Name), f.Name)
		assert.Equal(t, f.Restrictable, root.PersistentFlags().Lookup("hidden-"+f.Name) != nil, f.Name)
	}
	for _, m := range gen.AllModifiers {
		assert.NotNil(t, root.PersistentFlags().Lookup(m.Name), m.Name)
	}
}

func TestGenerateCommand(t *testing.T) {
	file := writePoint(t)
	_, err := execute(t, "--constructor", "--getters", file)
	require.NoError(t, err)
	content := readFile(t, file)
	assert.Contains(t, content, "func NewPoint(name *string, count int) (*Point, error) {")
	assert.Contains(t, content, "// $ datagen --constructor --getters point.go")

	t.Run("update-only keeps the recorded flags", func(t *testing.T) {
		_, err := execute(t, "-u", "--setters", file)
		require.NoError(t, err)
		content := readFile(t, file)
		assert.Contains(t, content, "func NewPoint(")
		assert.Contains(t, content, "func (p *Point) SetCount(count int) *Point {")
	})

	t.Run("update-only from the environment", func(t *testing.T) {
		t.Setenv("DATAGEN_UPDATE_ONLY", "true")
		plain := writePoint(t)
		_, err := execute(t, plain)
		require.NoError(t, err)
		assert.Equal(t, pointSrc, readFile(t, plain))
	})
}

func TestGenerateDryRun(t *testing.T) {
	file := writePoint(t)
	out, err := execute(t, "--dry-run", "--getters", file)
	require.NoError(t, err)
	assert.Contains(t, out, "func (p *Point) Count() int {")
	assert.Equal(t, pointSrc, readFile(t, file))
}

func TestCommandErrors(t *testing.T) {
	file := writePoint(t)

	_, err := execute(t, "--teleport", file)
	assert.True(t, gen.IsConfigError(err), "%v", err)

	_, err = execute(t, "--getters")
	assert.True(t, gen.IsConfigError(err), "%v", err)

	_, err = execute(t, "--getters", "--no-getters", file)
	assert.True(t, gen.IsConfigError(err), "%v", err)

	_, err = execute(t, "--getters", filepath.Join(filepath.Dir(file), "missing.go"))
	assert.True(t, gen.IsConfigError(err), "%v", err)
}

func TestCheckCommand(t *testing.T) {
	a, b := writePoint(t), writePoint(t)
	for _, file := range []string{a, b} {
		_, err := execute(t, "--getters", file)
		require.NoError(t, err)
	}
	out, err := execute(t, "check", a, b)
	require.NoError(t, err, out)

	stale := bytes.Replace([]byte(readFile(t, b)), []byte("count int\n"), []byte("count int64\n"), 1)
	require.NoError(t, os.WriteFile(b, stale, 0o644))
	out, err = execute(t, "check", a, b)
	require.Error(t, err)
	assert.Contains(t, out, b+": generated code is out of date")
	assert.NotContains(t, out, a+":")
	assert.Contains(t, err.Error(), "out of date")
}

func TestInspectCommand(t *testing.T) {
	file := writePoint(t)
	_, err := execute(t, "--hidden-getters", file)
	require.NoError(t, err)

	out, err := execute(t, "inspect", file)
	require.NoError(t, err)
	assert.Contains(t, out, "name: Point")
	assert.Contains(t, out, "getters: restricted")
	assert.Contains(t, out, "- hidden-getters")
	assert.Contains(t, out, "stale: false")
}
