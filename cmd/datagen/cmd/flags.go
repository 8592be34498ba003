package cmd

import (
	"strconv"

	"github.com/spf13/pflag"

	"github.com/syssam/datagen/compiler/gen"
)

// addFeatureFlags registers the boolean flags of every feature and
// modifier, in their plain, no- and hidden- forms.
func addFeatureFlags(fs *pflag.FlagSet) {
	for _, f := range gen.AllFeatures {
		fs.Bool(f.Name, false, f.Description)
		fs.Bool("no-"+f.Name, false, "Do not generate "+f.Name)
		if f.Restrictable {
			fs.Bool("hidden-"+f.Name, false, "Generate "+f.Name+" with unexported names")
		}
	}
	for _, m := range gen.AllModifiers {
		fs.Bool(m.Name, false, m.Description)
		fs.Bool("no-"+m.Name, false, "Turn off "+m.Name)
	}
}

// featureTokens returns the feature and modifier tokens set on the
// command line. A flag given as --FLAG=false contributes nothing.
func featureTokens(fs *pflag.FlagSet) []string {
	var tokens []string
	fs.Visit(func(f *pflag.Flag) {
		if _, err := gen.ParseToken(f.Name); err != nil {
			return
		}
		if on, _ := strconv.ParseBool(f.Value.String()); on {
			tokens = append(tokens, f.Name)
		}
	})
	return tokens
}
