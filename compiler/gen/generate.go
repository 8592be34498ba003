package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/syssam/datagen/compiler/load"
	"github.com/syssam/datagen/internal/version"
)

// generators maps every feature to the function producing its code.
var generators = map[string]func(*classGen, *jen.File) error{
	FeatureEnums.Name:           genEnums,
	FeatureConstructor.Name:     genConstructor,
	FeatureCopyConstructor.Name: genClone,
	FeatureGetters.Name:         genGetters,
	FeatureSetters.Name:         genSetters,
	FeatureString.Name:          genString,
	FeatureEquality.Name:        genEquality,
	FeatureForEachField.Name:    genForEachField,
	FeatureWithers.Name:         genWithers,
	FeatureCodec.Name:           genCodec,
	FeatureBuilder.Name:         genBuilder,
	FeatureBuildUpon.Name:       genBuildUpon,
	FeatureInterface.Name:       genInterface,
}

// fingerprintSpace is the UUID namespace of region fingerprints.
var fingerprintSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/syssam/datagen"))

// Generator regenerates the generated region of data class files.
type Generator struct {
	cfg *Config
	log *zap.SugaredLogger
}

// New creates a Generator with the given options.
func New(opts ...Option) (*Generator, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg, log: cfg.Logger}, nil
}

// Config returns the configuration of the generator.
func (g *Generator) Config() *Config { return g.cfg }

// Output is the result of generating one file in memory.
type Output struct {
	// Content is the complete new file content.
	Content []byte
	// Noop is set when update-only mode found nothing to update; Content
	// is then the input.
	Noop bool
	// Class is the extracted model.
	Class *load.Class
	// Flags are the resolved flags.
	Flags *Flags
	// Previous is the region found in the input.
	Previous *Region
	// Stamp is the stamp of the new region.
	Stamp *Stamp
	// Imports are the imports the generated region needs.
	Imports []*load.Import
	// Suppressed lists the generated members replaced by hand-written
	// ones.
	Suppressed []string
}

// ModelChanged reports whether the fields changed since the previous
// region was generated.
func (o *Output) ModelChanged() bool {
	return o.Previous == nil || o.Previous.Stamp == nil || o.Stamp == nil || o.Previous.Stamp.Fingerprint != o.Stamp.Fingerprint
}

// Generate computes the new content of a file. It has no side effects:
// the prefix before the generated region is preserved byte for byte
// (unless fix-imports edits the import block), and generating from the
// output again yields the same output.
func (g *Generator) Generate(filename string, src []byte) (*Output, error) {
	region, err := SplitRegion(filename, src)
	if err != nil {
		return nil, err
	}
	out := &Output{Previous: region}
	if g.cfg.UpdateOnly && !region.Found() && len(g.cfg.Tokens) == 0 && !load.HasDirective(region.Prefix) {
		g.log.Debugw("nothing to update", "file", filename)
		out.Content, out.Noop = src, true
		return out, nil
	}

	var recovered []string
	if g.cfg.UpdateOnly {
		recovered = region.RecoveredFlags()
	}
	flags, err := ResolveFlags(g.cfg.Tokens, recovered)
	if err != nil {
		return nil, err
	}
	for _, name := range flags.Promoted {
		g.log.Debugw("enabled required feature", "feature", name, "file", filename)
	}
	out.Flags = flags

	class, err := load.Parse(filename, region.Prefix)
	if err != nil {
		return nil, fromLoad(err)
	}
	out.Class = class

	cg := newClassGen(class, flags, filename, g.log)
	body, imports, err := cg.render()
	if err != nil {
		return nil, err
	}
	out.Imports = imports
	out.Suppressed = cg.suppressed

	out.Stamp = &Stamp{
		Version:     version.Semver(),
		Flags:       flags.Tokens(),
		Fingerprint: Fingerprint(class),
	}
	if region.Found() && out.ModelChanged() {
		g.log.Debugw("model changed since last generation", "file", filename)
	}
	text := cleanup(header(filename, flags) + "\n\n" + body + "\n\n" + out.Stamp.String())
	content := Join(region.Prefix, text)

	if flags.Modifier(ModifierFixImports) {
		if content, err = fixImports(filename, content, imports); err != nil {
			return nil, err
		}
	} else {
		if missing := missingImports(class, imports); len(missing) > 0 {
			return nil, NewConfigError("imports", strings.Join(missing, ", "), "generated code needs imports the file does not declare; add them or use --fix-imports")
		}
		for _, path := range unusedImports(filename, content) {
			g.log.Warnw("import is no longer used by generated code", "file", filename, "import", path)
		}
	}
	out.Content = content
	return out, nil
}

// render runs the generators of the enabled features in order and
// returns the generated declarations and their imports.
func (g *classGen) render() (string, []*load.Import, error) {
	var (
		chunks  []string
		imports []*load.Import
		seen    = make(map[string]bool)
	)
	for _, feat := range g.flags.EnabledFeatures() {
		g.feature = feat
		f := g.newFile()
		if err := generators[feat.Name](g, f); err != nil {
			return "", nil, g.wrap(err)
		}
		chunk, imps, err := renderChunk(f)
		if err != nil {
			return "", nil, NewGenerationError(feat.Name, g.file, "generated code does not compile", err)
		}
		g.log.Debugw("generated feature", "feature", feat.Name, "restricted", g.flags.Restricted(feat), "bytes", len(chunk))
		if chunk == "" {
			continue
		}
		chunks = append(chunks, chunk)
		for _, imp := range imps {
			if !seen[imp.Path] {
				seen[imp.Path] = true
				imports = append(imports, imp)
			}
		}
	}
	return strings.Join(chunks, "\n\n"), imports, nil
}

// wrap attributes a generator error to the current feature.
func (g *classGen) wrap(err error) error {
	var genErr *GenerationError
	switch {
	case errors.As(err, &genErr):
		if genErr.Feature == "" {
			genErr.Feature = g.feature.Name
		}
		return err
	case IsModelError(err), IsConfigError(err):
		return err
	default:
		return NewGenerationError(g.feature.Name, g.file, "", err)
	}
}

// renderChunk renders a jen file and splits it into its imports and the
// declarations that follow them.
func renderChunk(f *jen.File) (string, []*load.Import, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", nil, err
	}
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", buf.Bytes(), parser.ImportsOnly)
	if err != nil {
		return "", nil, err
	}
	end := fset.Position(file.Name.End()).Offset
	for _, d := range file.Decls {
		if gd, ok := d.(*ast.GenDecl); ok && gd.Tok == token.IMPORT {
			end = fset.Position(gd.End()).Offset
		}
	}
	var imports []*load.Import
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			return "", nil, err
		}
		imp := &load.Import{Path: path}
		if spec.Name != nil {
			imp.Name = spec.Name.Name
		}
		imports = append(imports, imp)
	}
	return strings.TrimSpace(buf.String()[end:]), imports, nil
}

// header returns the comment opening a generated region, including the
// command that regenerates it.
func header(filename string, flags *Flags) string {
	cmd := []string{"datagen"}
	for _, t := range flags.Tokens() {
		cmd = append(cmd, "--"+t)
	}
	cmd = append(cmd, filepath.Base(filename))
	return fmt.Sprintf("// %s v%s. DO NOT EDIT.\n// To regenerate run:\n// $ %s", Sentinel, version.Version, strings.Join(cmd, " "))
}

// cleanup trims trailing whitespace, collapses runs of blank lines and
// drops leading and trailing blank lines.
func cleanup(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

// Fingerprint returns a stable identifier of the class model: a name
// based UUID of its name and field signatures.
func Fingerprint(c *load.Class) string {
	var b strings.Builder
	b.WriteString(c.Name)
	for _, f := range c.Fields {
		b.WriteByte('\n')
		b.WriteString(f.Signature())
	}
	return uuid.NewSHA1(fingerprintSpace, []byte(b.String())).String()
}
