package gen

import (
	"errors"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Config configures a Generator.
type Config struct {
	// Tokens are the explicit feature and modifier tokens of the run.
	Tokens []string
	// UpdateOnly recovers the flags of the previous run from the file's
	// stamp; explicit Tokens override recovered ones.
	UpdateOnly bool
	// DryRun computes the output without writing it.
	DryRun bool
	// Fs is the filesystem files are read from and written to.
	Fs afero.Fs
	// Logger receives debug output about promotions, suppressions and
	// write decisions.
	Logger *zap.SugaredLogger
}

// Option configures code generation.
type Option func(*Config) error

// WithTokens adds explicit feature tokens, e.g. "constructor",
// "--no-setters" or "hidden-builder". Tokens are validated when the
// generator runs.
func WithTokens(tokens ...string) Option {
	return func(c *Config) error {
		c.Tokens = append(c.Tokens, tokens...)
		return nil
	}
}

// WithUpdateOnly enables update-in-place mode.
func WithUpdateOnly(on bool) Option {
	return func(c *Config) error {
		c.UpdateOnly = on
		return nil
	}
}

// WithDryRun disables writing.
func WithDryRun(on bool) Option {
	return func(c *Config) error {
		c.DryRun = on
		return nil
	}
}

// WithFs sets the filesystem. It defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(c *Config) error {
		if fs == nil {
			return NewConfigError("Fs", nil, "filesystem cannot be nil")
		}
		c.Fs = fs
		return nil
	}
}

// WithLogger sets the logger. It defaults to a no-op logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Fs:     afero.NewOsFs(),
		Logger: zap.NewNop().Sugar(),
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}
