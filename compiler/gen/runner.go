package gen

import (
	"bytes"
	"context"
	"io/fs"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// Result describes a run on one file.
type Result struct {
	File string
	// Changed reports whether the generated content differs from the file.
	Changed bool
	// Written reports whether the file was rewritten.
	Written bool
	Output  *Output
}

// Run regenerates the file. The file is rewritten atomically, and only
// when its content changes; nothing is written in dry-run mode or when
// the run fails.
func (g *Generator) Run(ctx context.Context, filename string) (*Result, error) {
	res, err := g.generate(ctx, filename)
	if err != nil {
		return nil, err
	}
	switch {
	case !res.Changed:
		g.log.Debugw("file is up to date", "file", filename)
		return res, nil
	case g.cfg.DryRun:
		g.log.Infow("would update file", "file", filename)
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := writeFile(g.cfg.Fs, filename, res.Output.Content); err != nil {
		return nil, err
	}
	res.Written = true
	g.log.Infow("updated file", "file", filename, "features", len(res.Output.Flags.EnabledFeatures()))
	return res, nil
}

// Check reports whether the generated region of the file is up to date,
// without writing.
func (g *Generator) Check(ctx context.Context, filename string) (*Result, error) {
	return g.generate(ctx, filename)
}

func (g *Generator) generate(ctx context.Context, filename string) (*Result, error) {
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
	out, err := g.Generate(filename, src)
	if err != nil {
		return nil, err
	}
	return &Result{
		File:    filename,
		Changed: !out.Noop && !bytes.Equal(out.Content, src),
		Output:  out,
	}, nil
}
