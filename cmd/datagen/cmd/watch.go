package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syssam/datagen/compiler/gen"
	"github.com/syssam/datagen/internal/logger"
)

func newWatchCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch FILE...",
		Short: "Regenerate files whenever they change",
		Long: `Watch regenerates the files once, then again after every change, with the
flags recorded in each file and the flags given. It runs until interrupted.
A file that fails to generate is reported and left as it is.`,
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
			ctx := cmd.Context()
			for _, file := range args {
				if _, err := g.Run(ctx, file); err != nil {
					logger.Logger.Errorw("generation failed", "file", file, "error", err)
				}
			}
			logger.Logger.Infow("watching for changes", "files", fileList(args))
			return g.Watch(ctx, args, v.GetDuration("debounce"), nil)
		},
	}
	cmd.Flags().Duration("debounce", gen.DefaultDebounce, "Quiet period after a change before regenerating")
	return cmd
}
