package gen

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWithTokens(t *testing.T) {
	t.Run("appends tokens", func(t *testing.T) {
		c := &Config{Tokens: []string{"constructor"}}
		err := WithTokens("getters", "--no-setters")(c)

		require.NoError(t, err)
		assert.Equal(t, []string{"constructor", "getters", "--no-setters"}, c.Tokens)
	})
}

func TestWithFs(t *testing.T) {
	t.Run("sets filesystem", func(t *testing.T) {
		c := &Config{}
		fs := afero.NewMemMapFs()
		require.NoError(t, WithFs(fs)(c))
		assert.Equal(t, fs, c.Fs)
	})

	t.Run("nil filesystem", func(t *testing.T) {
		err := WithFs(nil)(&Config{})
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})
}

func TestWithLogger(t *testing.T) {
	t.Run("nil logger", func(t *testing.T) {
		err := WithLogger(nil)(&Config{})
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("sets logger", func(t *testing.T) {
		c := &Config{}
		l := zap.NewExample().Sugar()
		require.NoError(t, WithLogger(l)(c))
		assert.Equal(t, l, c.Logger)
	})
}

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := NewConfig()
		require.NoError(t, err)
		assert.IsType(t, &afero.OsFs{}, c.Fs)
		assert.NotNil(t, c.Logger)
		assert.False(t, c.UpdateOnly)
		assert.False(t, c.DryRun)
	})

	t.Run("options", func(t *testing.T) {
		c, err := NewConfig(WithUpdateOnly(true), WithDryRun(true), WithTokens("builder"))
		require.NoError(t, err)
		assert.True(t, c.UpdateOnly)
		assert.True(t, c.DryRun)
		assert.Equal(t, []string{"builder"}, c.Tokens)
	})

	t.Run("first error wins", func(t *testing.T) {
		_, err := NewConfig(WithFs(nil), WithLogger(nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Fs")
	})
}

func TestApplyAll(t *testing.T) {
	c := &Config{}
	err := c.ApplyAll(WithFs(nil), WithLogger(nil), WithUpdateOnly(true))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Fs")
	assert.Contains(t, err.Error(), "Logger")
	assert.True(t, c.UpdateOnly)
}
