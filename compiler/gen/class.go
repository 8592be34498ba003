package gen

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/dave/jennifer/jen"
	"go.uber.org/zap"

	"github.com/syssam/datagen/compiler/load"
)

// datagenPath is the import path of the runtime package used by generated
// code.
const datagenPath = "github.com/syssam/datagen"

// runtimePackages are the packages generated code may import. They are
// the only imports fix-imports adds or removes.
var runtimePackages = []struct{ path, name string }{
	{"fmt", "fmt"},
	{"maps", "maps"},
	{"reflect", "reflect"},
	{"slices", "slices"},
	{datagenPath, "datagen"},
	{load.MsgpackPath, "msgpack"},
}

// classGen holds the state shared by the feature generators of one run.
type classGen struct {
	class *load.Class
	flags *Flags
	file  string
	log   *zap.SugaredLogger

	// feature is the generator currently running.
	feature Feature
	// recv is the receiver name of methods on the class.
	recv string
	// params maps every field to its parameter name.
	params map[*load.Field]string
	// pkgs maps runtime import paths to the names generated code uses.
	pkgs map[string]string
	// taken holds file-level identifiers generated locals must not shadow.
	taken map[string]bool
	// emitted records generated members by key, to catch two generators
	// or two fields producing the same member.
	emitted map[string]string
	// suppressed lists the signatures of generated members replaced by
	// hand-written ones.
	suppressed []string
}

func newClassGen(class *load.Class, flags *Flags, file string, log *zap.SugaredLogger) *classGen {
	g := &classGen{
		class:   class,
		flags:   flags,
		file:    file,
		log:     log,
		params:  make(map[*load.Field]string, len(class.Fields)),
		pkgs:    make(map[string]string, len(runtimePackages)),
		taken:   map[string]bool{class.Name: true},
		emitted: make(map[string]string),
	}
	for _, imp := range class.Imports {
		g.taken[imp.LocalName()] = true
	}
	for _, m := range class.Members.All() {
		if m.Recv == "" || m.Recv == load.RecvType {
			g.taken[m.Name] = true
		}
	}
	for _, p := range runtimePackages {
		if name, ok := class.ImportName(p.path); ok && name != "_" && name != "." {
			g.pkgs[p.path] = name
			continue
		}
		name := p.name
		for i := 1; g.taken[name]; i++ {
			name = fmt.Sprintf("%s%d", p.name, i)
		}
		g.pkgs[p.path] = name
		g.taken[name] = true
	}
	g.recv = pickReceiver(class.Name, func(s string) bool { return g.taken[s] })
	used := make(map[string]bool)
	for _, f := range class.Fields {
		name := localName(load.Safe(load.Camel(f.Name)), func(s string) bool {
			_, reserved := reservedLocals[s]
			return reserved || used[s] || g.taken[s] || s == g.recv
		})
		used[name] = true
		g.params[f] = name
	}
	return g
}

// newFile returns a jen file for one feature, with the runtime packages
// bound to the names the target file uses for them.
func (g *classGen) newFile() *jen.File {
	f := jen.NewFile(g.class.Package)
	for _, p := range runtimePackages {
		if name := g.pkgs[p.path]; name == p.name {
			f.ImportName(p.path, name)
		} else {
			f.ImportAlias(p.path, name)
		}
	}
	return f
}

// fields returns the fields of the class, failing the current feature on
// the first field of an unsupported type.
func (g *classGen) fields() ([]*load.Field, error) {
	for _, f := range g.class.Fields {
		if f.Invalid != "" {
			return nil, &GenerationError{
				Feature: g.feature.Name,
				File:    g.file,
				Field:   f.Name,
				Message: fmt.Sprintf("unsupported type %s: %s", f.Type, f.Invalid),
			}
		}
	}
	return g.class.Fields, nil
}

// stored returns the fields that hold state, skipping lazily computed
// ones.
func (g *classGen) stored() ([]*load.Field, error) {
	all, err := g.fields()
	if err != nil {
		return nil, err
	}
	fields := make([]*load.Field, 0, len(all))
	for _, f := range all {
		if !f.Lazy() {
			fields = append(fields, f)
		}
	}
	return fields, nil
}

// declare reports whether the member should be generated. A hand-written
// member with the same receiver, name and signature suppresses it; one
// with the same name and a different signature is an error.
func (g *classGen) declare(recv, name string, params, results []string) (bool, error) {
	want := &load.Member{Recv: recv, Name: name, Params: params, Results: results}
	if err := g.claim(recv + "." + name); err != nil {
		return false, err
	}
	if recv != "" && recv == g.class.Name && g.class.Field(name) != nil {
		return false, NewModelError(g.file, g.class.Name, name, fmt.Sprintf("field collides with generated method %s", want.Signature()))
	}
	if recv == "" && g.class.Members.Lookup(load.RecvType, name) != nil {
		return false, NewModelError(g.file, g.class.Name, "", fmt.Sprintf("type %s collides with generated function %s", name, want.Signature()))
	}
	m := g.class.Members.Lookup(recv, name)
	if m == nil {
		return true, nil
	}
	if !m.Matches(params, results) {
		return false, NewModelError(g.file, g.class.Name, "", fmt.Sprintf("%s conflicts with generated %s; match the signature to replace it, or rename it", m.Signature(), want.Signature()))
	}
	g.suppress(want.Signature())
	return false, nil
}

// declareType reports whether the named type should be generated. Any
// hand-written type of the same name suppresses it.
func (g *classGen) declareType(name string) (bool, error) {
	if err := g.claim(load.RecvType + "." + name); err != nil {
		return false, err
	}
	if g.class.Members.Lookup("", name) != nil {
		return false, NewModelError(g.file, g.class.Name, "", fmt.Sprintf("function %s collides with generated type %s", name, name))
	}
	if g.class.Members.Lookup(load.RecvType, name) != nil {
		g.suppress("type " + name)
		return false, nil
	}
	return true, nil
}

func (g *classGen) claim(key string) error {
	if prev, ok := g.emitted[key]; ok {
		return &GenerationError{
			Feature: g.feature.Name,
			File:    g.file,
			Message: fmt.Sprintf("%s is generated twice (first by %s); rename one of the fields", key, prev),
		}
	}
	g.emitted[key] = g.feature.Name
	return nil
}

func (g *classGen) suppress(sig string) {
	g.log.Debugw("hand-written member replaces generated one", "member", sig, "feature", g.feature.Name)
	g.suppressed = append(g.suppressed, sig)
}

// name returns the member name for the current resolution of feat.
func (g *classGen) name(feat Feature, exported string) string {
	if g.flags.Restricted(feat) {
		return unexport(exported)
	}
	return exported
}

// fieldName returns the name of a per-field member of feat. Hidden fields
// always get unexported members.
func (g *classGen) fieldName(feat Feature, f *load.Field, exported string) string {
	if f.Hidden {
		return unexport(exported)
	}
	return g.name(feat, exported)
}

// typeName is the exported base of every class-derived identifier.
func (g *classGen) typeName() string {
	return load.Pascal(g.class.Name)
}

func (g *classGen) ctorName() string {
	return g.name(FeatureConstructor, "New"+g.typeName())
}

// ctorFields returns the constructor parameters in order.
func (g *classGen) ctorFields() ([]*load.Field, error) {
	return g.stored()
}

// getterName returns the accessor name of a field: the field name
// capitalized, prefixed with Get when the field is exported or another
// field already has that name. Restricted getters are always get<Field>,
// since an unexported method cannot share the name of the field.
func (g *classGen) getterName(f *load.Field) string {
	pascal := load.Pascal(f.Name)
	if g.flags.Restricted(FeatureGetters) || f.Hidden {
		return "get" + pascal
	}
	if token.IsExported(f.Name) || g.class.Field(pascal) != nil {
		return "Get" + pascal
	}
	return pascal
}

func (g *classGen) builderTypeName() string {
	return g.name(FeatureBuilder, g.typeName()+"Builder")
}

// builderSetterName returns the name of a builder setter or adder.
func (g *classGen) builderSetterName(f *load.Field, exported string) string {
	if g.flags.Modifier(ModifierBuilderRestrictedSetters) {
		return unexport(exported)
	}
	return g.fieldName(FeatureBuilder, f, exported)
}

// Code helpers.

func (g *classGen) qual(path, name string) *jen.Statement {
	return jen.Qual(path, name)
}

func (g *classGen) datagen(name string) *jen.Statement {
	return g.qual(datagenPath, name)
}

// method starts a method declaration on *Class.
func (g *classGen) method(f *jen.File, name string) *jen.Statement {
	return f.Func().Params(jen.Id(g.recv).Op("*").Id(g.class.Name)).Id(name)
}

// field returns recv.field.
func (g *classGen) field(f *load.Field) *jen.Statement {
	return jen.Id(g.recv).Dot(f.Name)
}

func (g *classGen) ptr() string {
	return "*" + g.class.Name
}

// enumChecked reports whether validation checks the field against the
// constants of its local enum type.
func (g *classGen) enumChecked(f *load.Field) bool {
	return f.Kind == load.KindEnum && f.Enum != nil && len(f.Enum.Values) > 0 && g.flags.Enabled(FeatureEnums)
}

func (g *classGen) isValidName() string {
	return g.name(FeatureEnums, "IsValid")
}

// defaultValue returns the default of a field: the default= expression or
// a call to its default hook on recv.
func (g *classGen) defaultValue(f *load.Field, recv jen.Code) jen.Code {
	if f.Default != "" {
		return jen.Id(f.Default)
	}
	return jen.Add(recv).Dot(f.HookName(load.HookDefault)).Call()
}

// shapes returns the field shapes, used as member signatures.
func shapes(fields []*load.Field) []string {
	s := make([]string, len(fields))
	for i, f := range fields {
		s[i] = f.Shape
	}
	return s
}

// comment appends text as line comments, one per line. jen renders text
// holding a newline as a block comment, which a "*/" in a field doc would
// terminate early.
func comment(f *jen.File, text string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			f.Comment("//")
		} else {
			f.Comment("// " + line)
		}
	}
}

// fieldDoc appends the doc of a field as a separate paragraph of the
// member comment being written.
func (g *classGen) fieldDoc(f *jen.File, fd *load.Field) {
	if fd.Doc == "" {
		return
	}
	f.Comment("//")
	comment(f, fd.Doc)
}
