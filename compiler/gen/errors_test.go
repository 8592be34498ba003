package gen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/datagen/compiler/load"
)

func TestConfigError(t *testing.T) {
	t.Run("Error message with value", func(t *testing.T) {
		err := NewConfigError("token", "frobnicate", "unknown feature")

		assert.Contains(t, err.Error(), "datagen: config error")
		assert.Contains(t, err.Error(), "token")
		assert.Contains(t, err.Error(), "frobnicate")
		assert.Contains(t, err.Error(), "unknown feature")
	})

	t.Run("Error message without value", func(t *testing.T) {
		err := NewConfigError("file", nil, "missing")

		assert.Contains(t, err.Error(), "file")
		assert.NotContains(t, err.Error(), "value:")
	})

	t.Run("Is matches ErrInvalidConfig", func(t *testing.T) {
		err := NewConfigError("file", nil, "missing")
		assert.True(t, errors.Is(err, ErrInvalidConfig))
		assert.False(t, errors.Is(err, ErrAmbiguousModel))
	})

	t.Run("IsConfigError helper", func(t *testing.T) {
		assert.True(t, IsConfigError(NewConfigError("file", nil, "missing")))
		assert.False(t, IsConfigError(errors.New("other")))
	})
}

func TestModelError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		err := NewModelError("point.go", "Point", "tags", "missing nullability marker")
		assert.Equal(t, "datagen: point.go: Point.tags: missing nullability marker", err.Error())
	})

	t.Run("Error message without field", func(t *testing.T) {
		err := NewModelError("point.go", "", "", "corrupt region")
		assert.Equal(t, "datagen: point.go: corrupt region", err.Error())
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root cause")
		err := &ModelError{Message: "bad", Cause: cause}
		assert.True(t, errors.Is(err, cause))
		assert.True(t, errors.Is(err, ErrAmbiguousModel))
	})

	t.Run("IsModelError helper", func(t *testing.T) {
		assert.True(t, IsModelError(NewModelError("", "", "", "x")))
		assert.False(t, IsModelError(NewConfigError("x", nil, "y")))
	})
}

func TestGenerationError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("format failed")
		err := NewGenerationError("builder", "point.go", "render", cause)
		err.Field = "fn"

		assert.Contains(t, err.Error(), "datagen: generation error")
		assert.Contains(t, err.Error(), "in feature builder")
		assert.Contains(t, err.Error(), "(file: point.go)")
		assert.Contains(t, err.Error(), "field fn")
		assert.Contains(t, err.Error(), "format failed")
		assert.Equal(t, cause, err.Unwrap())
	})

	t.Run("Is matches ErrGenerationFailed", func(t *testing.T) {
		err := NewGenerationError("builder", "", "x", nil)
		assert.True(t, errors.Is(err, ErrGenerationFailed))
		assert.True(t, IsGenerationError(err))
	})
}

func TestFromLoad(t *testing.T) {
	t.Run("Usage", func(t *testing.T) {
		err := fromLoad(&load.Error{File: "a.go", Type: "A", Field: "x", Message: "bad tag", Usage: true})
		assert.True(t, errors.Is(err, ErrInvalidConfig))
		assert.Contains(t, err.Error(), "A.x")
	})

	t.Run("Model", func(t *testing.T) {
		err := fromLoad(&load.Error{File: "a.go", Type: "A", Field: "x", Message: "no marker"})
		assert.True(t, errors.Is(err, ErrAmbiguousModel))
		assert.Equal(t, "datagen: a.go: A.x: no marker", err.Error())
	})

	t.Run("Other", func(t *testing.T) {
		other := errors.New("io")
		assert.Equal(t, other, fromLoad(other))
	})
}
