package cmd

import (
	"fmt"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/datagen/compiler/gen"
	"github.com/syssam/datagen/internal/logger"
)

func newCheckCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Check that generated regions are up to date",
		Long: `Check regenerates every file in memory with the flags recorded in it and
reports the files whose content would change. Nothing is written.

Exit codes:
  0 - every file is up to date
  1 - a file is out of date, or could not be generated

Examples:
  datagen check point.go shape.go
  datagen check --fix-imports $(grep -l datagen:generated *.go)`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return gen.NewConfigError("file", nil, "at least one file is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := newGenerator(cmd, v, gen.WithUpdateOnly(true))
			if err != nil {
				return err
			}
			stale := make([]bool, len(args))
			eg, ctx := errgroup.WithContext(cmd.Context())
			eg.SetLimit(runtime.GOMAXPROCS(0))
			for i, file := range args {
				eg.Go(func() error {
					res, err := g.Check(ctx, file)
					if err != nil {
						return err
					}
					stale[i] = res.Changed
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				return err
			}

			var outdated []string
			for i, file := range args {
				if stale[i] {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: generated code is out of date\n", file)
					outdated = append(outdated, file)
				}
			}
			if len(outdated) > 0 {
				return errors.Newf("%s out of date; run datagen --update-only on it", fileList(outdated))
			}
			logger.Logger.Infow("generated code is up to date", "files", len(args))
			return nil
		},
	}
}
