// Package cmd implements the datagen command line.
package cmd

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syssam/datagen/compiler/gen"
	"github.com/syssam/datagen/internal/logger"
	"github.com/syssam/datagen/internal/version"
)

const (
	// envPrefix prefixes the environment variables overriding settings,
	// e.g. DATAGEN_LOG_JSON.
	envPrefix = "DATAGEN"
	// configName is the settings file looked up in the working directory.
	configName = ".datagen"
)

// settings are the flags that can also come from the environment or the
// settings file. Feature flags cannot: they belong to the file being
// generated and are recorded in its stamp.
var settings = []string{"verbose", "log-json", "update-only", "dry-run", "debounce"}

// NewRootCmd returns the datagen command and its subcommands.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:   "datagen [flags] FILE",
		Short: "Generate data class members for a Go struct",
		Long: `datagen appends generated members to the file of a Go struct: constructor,
accessors, equality, String, codec, builder and more, one flag per feature.

The struct is the one marked with a //datagen:class comment, or the only
struct of the file. Everything after the "Code below generated by datagen"
line is replaced on every run; the rest of the file is never modified,
except by --fix-imports which edits the import block.

Every feature flag comes in three forms:
  --FEATURE          generate it
  --hidden-FEATURE   generate it with unexported names
  --no-FEATURE       do not generate it

Examples:
  datagen --constructor --getters --equality point.go
  datagen --builder --fix-imports point.go     # the constructor is implied
  datagen --update-only point.go               # regenerate with the recorded flags
  datagen --update-only --no-setters point.go  # and drop one feature`,
		Version:       version.Version,
		Args:          exactlyOneFile,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadSettings(v, cmd); err != nil {
				return err
			}
			return logger.Initialize(v.GetBool("log-json"), v.GetBool("verbose"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, v, args[0])
		},
	}
	root.SetVersionTemplate(version.String() + "\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return gen.NewConfigError("flags", nil, err.Error())
	})

	pf := root.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Log promoted features, suppressed members and write decisions")
	pf.Bool("log-json", false, "Write logs as JSON")
	pf.BoolP("update-only", "u", false, "Regenerate with the flags recorded in the file; files without a generated region are left alone")
	addFeatureFlags(pf)
	root.Flags().Bool("dry-run", false, "Print the generated file to stdout instead of writing it")

	root.AddCommand(
		newCheckCmd(v),
		newInspectCmd(v),
		newWatchCmd(v),
	)
	return root
}

func exactlyOneFile(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return gen.NewConfigError("file", strings.Join(args, " "), "exactly one target file is required")
	}
	return nil
}

// loadSettings binds the settings of cmd to v, over DATAGEN_* variables
// and the settings file.
func loadSettings(v *viper.Viper, cmd *cobra.Command) error {
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, name := range settings {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(name, f); err != nil {
				return errors.Wrapf(err, "bind flag %s", name)
			}
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return gen.NewConfigError("config", v.ConfigFileUsed(), err.Error())
		}
	}
	return nil
}

// newGenerator returns a generator for the feature flags and settings of
// cmd. opts are applied last.
func newGenerator(cmd *cobra.Command, v *viper.Viper, opts ...gen.Option) (*gen.Generator, error) {
	return gen.New(append([]gen.Option{
		gen.WithTokens(featureTokens(cmd.Flags())...),
		gen.WithUpdateOnly(v.GetBool("update-only")),
		gen.WithLogger(logger.Logger),
	}, opts...)...)
}

func runGenerate(cmd *cobra.Command, v *viper.Viper, file string) error {
	dryRun := v.GetBool("dry-run")
	g, err := newGenerator(cmd, v, gen.WithDryRun(dryRun))
	if err != nil {
		return err
	}
	res, err := g.Run(cmd.Context(), file)
	if err != nil {
		return err
	}
	if dryRun {
		_, err := cmd.OutOrStdout().Write(res.Output.Content)
		return err
	}
	for _, sig := range res.Output.Suppressed {
		logger.Logger.Debugw("kept hand-written member", "member", sig)
	}
	if !res.Written {
		logger.Logger.Debugw("nothing to write", "file", file)
	}
	return nil
}

// fileList renders a list of files for messages.
func fileList(files []string) string {
	if len(files) == 1 {
		return files[0]
	}
	return fmt.Sprintf("%d files", len(files))
}
