package load

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"
)

// MsgpackPath is the import path of the msgpack package used by codec
// hooks and generated codecs.
const MsgpackPath = "github.com/vmihailenco/msgpack/v5"

// Parse extracts the model of the target struct declared in src. The
// target is the struct annotated with the //datagen:class directive, or the
// only struct declared in the file.
//
// Parse only sees the source it is given: callers strip any previously
// generated region first, so generated members never count as
// hand-written ones.
func Parse(filename string, src []byte) (*Class, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, &Error{File: filename, Message: err.Error()}
	}
	l := &loader{
		fset:     fset,
		file:     file,
		filename: filename,
		src:      src,
		cls: classifier{
			types:   make(map[string]*ast.TypeSpec),
			enums:   make(map[string]*Enum),
			imports: make(map[string]string),
		},
		members: NewMemberSet(),
	}
	return l.load()
}

type loader struct {
	fset     *token.FileSet
	file     *ast.File
	filename string
	src      []byte
	cls      classifier
	imports  []*Import
	members  *MemberSet
	class    *Class
}

func (l *loader) load() (*Class, error) {
	l.collectImports()
	structs := l.collectTypes()
	l.collectEnums()
	l.collectMembers()
	spec, directive, err := l.target(structs)
	if err != nil {
		return nil, err
	}
	l.class = &Class{
		Name:      spec.Name.Name,
		Package:   l.file.Name.Name,
		File:      l.filename,
		Directive: directive,
		Imports:   l.imports,
		Members:   l.members,
		Pos:       l.fset.Position(spec.Pos()),
	}
	if spec.Doc != nil {
		l.class.Doc = strings.TrimSpace(spec.Doc.Text())
	} else if doc := structs[spec]; doc != nil {
		l.class.Doc = strings.TrimSpace(doc.Text())
	}
	if spec.TypeParams != nil && spec.TypeParams.NumFields() > 0 {
		return nil, l.usageErr("", "generic structs are not supported")
	}
	if err := l.loadFields(spec.Type.(*ast.StructType)); err != nil {
		return nil, err
	}
	if err := l.loadClassHooks(); err != nil {
		return nil, err
	}
	return l.class, nil
}

func (l *loader) collectImports() {
	for _, spec := range l.file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		imp := &Import{Path: path}
		if spec.Name != nil {
			imp.Name = spec.Name.Name
		}
		l.imports = append(l.imports, imp)
		if name := imp.LocalName(); name != "_" && name != "." {
			l.cls.imports[name] = path
		}
	}
}

// collectTypes records every top-level type declaration and returns the
// struct declarations with the doc comment of their enclosing decl.
func (l *loader) collectTypes() map[*ast.TypeSpec]*ast.CommentGroup {
	structs := make(map[*ast.TypeSpec]*ast.CommentGroup)
	for _, decl := range l.file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, s := range gd.Specs {
			spec := s.(*ast.TypeSpec)
			l.cls.types[spec.Name.Name] = spec
			l.members.Add(&Member{Recv: RecvType, Name: spec.Name.Name})
			if _, ok := spec.Type.(*ast.StructType); ok && spec.Assign == 0 {
				var doc *ast.CommentGroup
				if len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				structs[spec] = doc
			}
		}
	}
	return structs
}

// collectEnums finds local basic types with typed constants. Constant specs
// without a type inherit the type of the previous spec when they also
// omit values (iota repetition).
func (l *loader) collectEnums() {
	for _, decl := range l.file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.CONST {
			continue
		}
		var typ string
		for _, s := range gd.Specs {
			spec := s.(*ast.ValueSpec)
			switch {
			case spec.Type != nil:
				typ = ""
				if id, ok := spec.Type.(*ast.Ident); ok {
					typ = id.Name
				}
			case len(spec.Values) > 0:
				typ = ""
			}
			if typ == "" {
				continue
			}
			ts, ok := l.cls.types[typ]
			if !ok {
				continue
			}
			underlying, ok := ts.Type.(*ast.Ident)
			if !ok || !IsBasic(underlying.Name) {
				continue
			}
			e, ok := l.cls.enums[typ]
			if !ok {
				e = &Enum{Name: typ, Underlying: underlying.Name}
				l.cls.enums[typ] = e
			}
			for _, n := range spec.Names {
				if n.Name != "_" {
					e.Values = append(e.Values, n.Name)
				}
			}
		}
	}
}

func (l *loader) collectMembers() {
	for _, decl := range l.file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		m := &Member{
			Name:    fd.Name.Name,
			Params:  fieldShapes(fd.Type.Params, l.cls.imports),
			Results: fieldShapes(fd.Type.Results, l.cls.imports),
		}
		if fd.Recv != nil && len(fd.Recv.List) > 0 {
			m.Recv = recvName(fd.Recv.List[0].Type)
		}
		l.members.Add(m)
	}
}

func recvName(expr ast.Expr) string {
	switch x := expr.(type) {
	case *ast.StarExpr:
		return recvName(x.X)
	case *ast.ParenExpr:
		return recvName(x.X)
	case *ast.IndexExpr:
		return recvName(x.X)
	case *ast.IndexListExpr:
		return recvName(x.X)
	case *ast.Ident:
		return x.Name
	default:
		return ""
	}
}

// target picks the struct to generate for.
func (l *loader) target(structs map[*ast.TypeSpec]*ast.CommentGroup) (*ast.TypeSpec, bool, error) {
	var all, marked []*ast.TypeSpec
	for _, decl := range l.file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, s := range gd.Specs {
			spec := s.(*ast.TypeSpec)
			doc, ok := structs[spec]
			if !ok {
				continue
			}
			all = append(all, spec)
			if hasDirective(spec.Doc) || hasDirective(doc) {
				marked = append(marked, spec)
			}
		}
	}
	switch {
	case len(marked) == 1:
		return marked[0], true, nil
	case len(marked) > 1:
		return nil, false, &Error{File: l.filename, Message: fmt.Sprintf("%d structs are marked with %s, want exactly one", len(marked), Directive), Usage: true}
	case len(all) == 1:
		return all[0], false, nil
	case len(all) == 0:
		return nil, false, &Error{File: l.filename, Message: "no struct type declared", Usage: true}
	default:
		return nil, false, &Error{File: l.filename, Message: fmt.Sprintf("%d struct types declared; mark the target with %s", len(all), Directive), Usage: true}
	}
}

// HasDirective reports whether src contains a //datagen:class directive
// line.
func HasDirective(src []byte) bool {
	for _, line := range strings.Split(string(src), "\n") {
		if strings.TrimSpace(line) == Directive {
			return true
		}
	}
	return false
}

func hasDirective(cg *ast.CommentGroup) bool {
	if cg == nil {
		return false
	}
	for _, c := range cg.List {
		if strings.TrimSpace(c.Text) == Directive {
			return true
		}
	}
	return false
}

func (l *loader) loadFields(st *ast.StructType) error {
	seen := make(map[string]bool)
	for _, af := range st.Fields.List {
		// Embedded fields are promoted, not owned.
		if len(af.Names) == 0 {
			continue
		}
		var lit string
		if af.Tag != nil {
			lit = af.Tag.Value
		}
		opts, err := parseTag(lit)
		if err != nil {
			return l.usageErr(af.Names[0].Name, err.Error())
		}
		if opts.ignore {
			continue
		}
		for _, n := range af.Names {
			if n.Name == "_" {
				continue
			}
			f, err := l.newField(n.Name, af, opts)
			if err != nil {
				return err
			}
			l.class.Fields = append(l.class.Fields, f)
			if f.Enum != nil && !seen[f.Enum.Name] {
				seen[f.Enum.Name] = true
				l.class.Enums = append(l.class.Enums, f.Enum)
			}
		}
	}
	return nil
}

func (l *loader) newField(name string, af *ast.Field, opts *options) (*Field, error) {
	f := &Field{
		Name:   name,
		Type:   l.source(af.Type),
		Shape:  shape(af.Type, l.cls.imports),
		Expr:   af.Type,
		Pos:    l.fset.Position(af.Pos()),
		Hidden: opts.hidden,
		Codec:  opts.codec,
	}
	switch {
	case af.Doc != nil:
		f.Doc = strings.TrimSpace(af.Doc.Text())
	case af.Comment != nil:
		f.Doc = strings.TrimSpace(af.Comment.Text())
	}
	info := l.cls.classify(af.Type)
	f.Kind, f.Collection, f.Enum = info.kind, info.collection, info.enum
	f.ElemExpr, f.KeyExpr = info.elem, info.key
	if info.elem != nil {
		f.Elem = l.source(info.elem)
	}
	if info.key != nil {
		f.Key = l.source(info.key)
	}
	if info.kind == KindInvalid {
		f.Invalid = info.invalid
		f.Nullability = NonNull
		return f, nil
	}
	if opts.enum {
		if err := l.markEnum(f, info); err != nil {
			return nil, err
		}
	}
	if opts.plural != "" {
		if f.Collection != CollectionSlice && f.Collection != CollectionMap {
			return nil, l.usageErr(name, "plural= applies to slice and map fields only")
		}
		f.Singular = opts.plural
	} else if f.Collection == CollectionSlice || f.Collection == CollectionMap {
		f.Singular = Singular(name)
	}
	f.Default = opts.def
	if err := l.loadHooks(f); err != nil {
		return nil, err
	}
	if f.Default != "" && f.Hooks.Has(HookDefault) {
		return nil, l.modelErr(name, fmt.Sprintf("has both a default= option and a %s method", f.HookName(HookDefault)))
	}
	if f.Codec != "" && (f.Hooks.Has(HookMarshal) || f.Hooks.Has(HookUnmarshal)) {
		return nil, l.modelErr(name, "has both a codec= option and marshal/unmarshal methods")
	}
	f.Nillable = info.nillable
	if !info.known && (opts.nonnull || opts.nullable) {
		f.Nillable = true
	}
	if f.Lazy() && !f.Nillable {
		return nil, l.modelErr(name, fmt.Sprintf("%s requires a nillable field, %s cannot hold nil", f.HookName(HookLazyInit), f.Type))
	}
	switch {
	case opts.nullable && !f.Nillable:
		return nil, l.modelErr(name, fmt.Sprintf("marked nullable but %s cannot hold nil", f.Type))
	case opts.nullable:
		f.Nullability = Nullable
	case opts.nonnull, !f.Nillable:
		f.Nullability = NonNull
	case f.Lazy():
		f.Nullability = Nullable
	case f.HasDefault():
		f.Nullability = NonNull
	default:
		return nil, l.modelErr(name, fmt.Sprintf(`%s can hold nil but has no nullability marker; add datagen:"nonnull" or datagen:"nullable"`, f.Type))
	}
	return f, nil
}

// markEnum applies the enum option to a field.
func (l *loader) markEnum(f *Field, info typeInfo) error {
	switch {
	case info.kind == KindEnum:
	case info.kind == KindPrimitive:
		if id, ok := f.Expr.(*ast.Ident); ok && !IsBasic(id.Name) {
			return l.modelErr(f.Name, fmt.Sprintf("enum type %s declares no constants", id.Name))
		}
		return l.usageErr(f.Name, "enum applies to named types only")
	case info.kind == KindReference && !info.known:
		// An enum declared in another package or file: compared by value,
		// without local helpers.
		f.Kind = KindEnum
	default:
		return l.usageErr(f.Name, fmt.Sprintf("enum does not apply to %s types", info.kind))
	}
	return nil
}

// loadHooks detects the per-field hook methods declared on the class.
func (l *loader) loadHooks(f *Field) error {
	for _, h := range Hooks {
		m := l.members.Lookup(l.class.Name, f.HookName(h))
		if m == nil {
			continue
		}
		params, results := l.hookShape(h, f)
		if !m.Matches(params, results) {
			want := &Member{Recv: l.class.Name, Name: m.Name, Params: params, Results: results}
			return l.modelErr(f.Name, fmt.Sprintf("%s hook has signature %s, want %s", hookSlots[h], m.Signature(), want.Signature()))
		}
		f.Hooks |= h
	}
	return nil
}

func (l *loader) hookShape(h Hook, f *Field) (params, results []string) {
	switch h {
	case HookMarshal:
		return []string{"*" + MsgpackPath + ".Encoder"}, []string{"error"}
	case HookUnmarshal:
		return []string{"*" + MsgpackPath + ".Decoder"}, []string{"error"}
	case HookString:
		return nil, []string{"string"}
	default:
		return nil, []string{f.Shape}
	}
}

func (l *loader) loadClassHooks() error {
	m := l.members.Lookup(l.class.Name, "onConstructed")
	if m == nil {
		return nil
	}
	if len(m.Params) > 0 || len(m.Results) > 1 || (len(m.Results) == 1 && m.Results[0] != "error") {
		return l.modelErr("", fmt.Sprintf("onConstructed hook has signature %s, want onConstructed() or onConstructed() error", m.Signature()))
	}
	l.class.OnConstructed = m
	return nil
}

// source returns the source text of a node.
func (l *loader) source(n ast.Node) string {
	start, end := l.fset.Position(n.Pos()).Offset, l.fset.Position(n.End()).Offset
	if start < 0 || end > len(l.src) || start > end {
		return exprString(n.(ast.Expr))
	}
	return string(l.src[start:end])
}

func (l *loader) modelErr(field, msg string) error {
	return &Error{File: l.filename, Type: l.class.Name, Field: field, Message: msg}
}

func (l *loader) usageErr(field, msg string) error {
	return &Error{File: l.filename, Type: l.class.Name, Field: field, Message: msg, Usage: true}
}
