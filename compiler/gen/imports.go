package gen

import (
	"bytes"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/imports"

	"github.com/syssam/datagen/compiler/load"
)

// missingImports returns the required imports the file does not declare
// under the expected name, formatted as import specs.
func missingImports(class *load.Class, required []*load.Import) []string {
	var missing []string
	for _, imp := range required {
		if name, ok := class.ImportName(imp.Path); ok && name == imp.LocalName() {
			continue
		}
		spec := strconv.Quote(imp.Path)
		if imp.Name != "" {
			spec = imp.Name + " " + spec
		}
		missing = append(missing, spec)
	}
	return missing
}

// unusedImports returns the runtime packages the file imports without
// using them.
func unusedImports(filename string, src []byte) []string {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return nil
	}
	var unused []string
	for _, spec := range unusedSpecs(file) {
		path, _ := strconv.Unquote(spec.Path.Value)
		unused = append(unused, path)
	}
	return unused
}

// unusedSpecs returns the import specs of runtime packages whose name is
// never used as a qualifier.
func unusedSpecs(file *ast.File) []*ast.ImportSpec {
	used := make(map[string]bool)
	ast.Inspect(file, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok {
				used[id.Name] = true
			}
		}
		return true
	})
	var unused []*ast.ImportSpec
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil || !isRuntimePackage(path) {
			continue
		}
		imp := &load.Import{Path: path}
		if spec.Name != nil {
			imp.Name = spec.Name.Name
		}
		if name := imp.LocalName(); name != "_" && name != "." && !used[name] {
			unused = append(unused, spec)
		}
	}
	return unused
}

func isRuntimePackage(path string) bool {
	for _, p := range runtimePackages {
		if p.path == path {
			return true
		}
	}
	return false
}

// fixImports adds the required imports to src and removes the runtime
// imports nothing uses any more. Only the import declarations are
// rewritten and formatted; every other byte of src is kept.
func fixImports(filename string, src []byte, required []*load.Import) ([]byte, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, NewGenerationError(ModifierFixImports.Name, filename, "generated file does not parse", err)
	}
	start, end := importSection(fset, file, src)
	section := src[start:end]

	mfset := token.NewFileSet()
	mini, err := parser.ParseFile(mfset, filename, append([]byte(sectionPackage), section...), parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, NewGenerationError(ModifierFixImports.Name, filename, "import declarations do not parse", err)
	}
	changed := false
	for _, imp := range required {
		if astutil.AddNamedImport(mfset, mini, imp.Name, imp.Path) {
			changed = true
		}
	}
	for _, spec := range unusedSpecs(file) {
		path, _ := strconv.Unquote(spec.Path.Value)
		var name string
		if spec.Name != nil {
			name = spec.Name.Name
		}
		if astutil.DeleteNamedImport(mfset, mini, name, path) {
			changed = true
		}
	}
	if !changed {
		return src, nil
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, mfset, mini); err != nil {
		return nil, NewGenerationError(ModifierFixImports.Name, filename, "formatting failed", err)
	}
	out, err := imports.Process(filename, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, NewGenerationError(ModifierFixImports.Name, filename, "formatting failed", err)
	}
	block := bytes.TrimSpace(bytes.TrimPrefix(out, []byte(strings.TrimSpace(sectionPackage))))

	var res bytes.Buffer
	res.Grow(len(src) + len(block) + 2)
	rest := src[end:]
	switch {
	case len(block) == 0:
		res.Write(src[:start])
		res.Write(bytes.TrimLeft(rest, "\n"))
	case start == end:
		res.Write(src[:start])
		res.WriteString("\n\n")
		res.Write(block)
		res.Write(rest)
	default:
		res.Write(src[:start])
		res.Write(block)
		res.Write(rest)
	}
	return res.Bytes(), nil
}

// sectionPackage is the package clause the import section is parsed and
// formatted under.
const sectionPackage = "package p\n\n"

// importSection returns the byte range of the import declarations of
// file. A file without imports yields an empty range at the end of the
// package clause line.
func importSection(fset *token.FileSet, file *ast.File, src []byte) (start, end int) {
	var decls []*ast.GenDecl
	for _, d := range file.Decls {
		gd, ok := d.(*ast.GenDecl)
		if !ok || gd.Tok != token.IMPORT {
			break
		}
		decls = append(decls, gd)
	}
	if len(decls) == 0 {
		end = fset.Position(file.Name.End()).Offset
		if i := bytes.IndexByte(src[end:], '\n'); i >= 0 {
			end += i
		} else {
			end = len(src)
		}
		return end, end
	}
	return fset.Position(decls[0].Pos()).Offset, fset.Position(decls[len(decls)-1].End()).Offset
}
