package gen

import (
	"context"
	"io/fs"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/syssam/datagen/compiler/load"
)

// Model is what the generator sees in a file: the extracted class and the
// state of its generated region.
type Model struct {
	File   string       `yaml:"file"`
	Class  *load.Class  `yaml:"class"`
	Region *RegionState `yaml:"region,omitempty"`
	// Features maps every present feature to its resolution, after
	// promotion, for the recovered and explicit tokens.
	Features map[string]Resolution `yaml:"features,omitempty"`
	// Promoted lists the features enabled only as prerequisites.
	Promoted []string `yaml:"promoted,omitempty"`
	// Stale reports whether the fields changed since the region was
	// generated.
	Stale bool `yaml:"stale"`
}

// RegionState describes a previously generated region.
type RegionState struct {
	Line        int      `yaml:"line"`
	Version     string   `yaml:"version"`
	Flags       []string `yaml:"flags"`
	Fingerprint string   `yaml:"fingerprint"`
}

// Inspect extracts the model of a file without generating anything. The
// flags are resolved like an update-only run would resolve them.
func (g *Generator) Inspect(ctx context.Context, filename string) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := afero.ReadFile(g.cfg.Fs, filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewConfigError("file", filename, "target file does not exist")
		}
		return nil, err
	}
	region, err := SplitRegion(filename, src)
	if err != nil {
		return nil, err
	}
	class, err := load.Parse(filename, region.Prefix)
	if err != nil {
		return nil, fromLoad(err)
	}
	flags, err := ResolveFlags(g.cfg.Tokens, region.RecoveredFlags())
	if err != nil {
		return nil, err
	}
	m := &Model{
		File:     filename,
		Class:    class,
		Features: make(map[string]Resolution),
		Promoted: flags.Promoted,
	}
	for _, feat := range flags.EnabledFeatures() {
		m.Features[feat.Name] = flags.Resolution(feat.Name)
	}
	if region.Found() {
		m.Region = &RegionState{
			Line:        region.Line,
			Version:     region.Stamp.Version.String(),
			Flags:       region.Stamp.Flags,
			Fingerprint: region.Stamp.Fingerprint,
		}
		m.Stale = region.Stamp.Fingerprint != Fingerprint(class)
	}
	return m, nil
}
