package cmd

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newInspectCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the model datagen extracts from a file",
		Long: `Inspect prints, as YAML, the struct datagen found in the file with its
classified fields, enums, imports and hand-written members, the stamp of the
generated region, and the features the recorded and given flags resolve to.`,
		Args: exactlyOneFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := newGenerator(cmd, v)
			if err != nil {
				return err
			}
			m, err := g.Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(m); err != nil {
				return errors.Wrap(err, "encode model")
			}
			return enc.Close()
		},
	}
}
