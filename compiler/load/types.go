package load

import (
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"
	"strings"
)

// basic holds the predeclared non-nillable types.
var basic = names(
	"bool",
	"byte",
	"complex64",
	"complex128",
	"float32",
	"float64",
	"int",
	"int8",
	"int16",
	"int32",
	"int64",
	"rune",
	"string",
	"uint",
	"uint8",
	"uint16",
	"uint32",
	"uint64",
	"uintptr",
)

func names(ids ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

// IsBasic reports whether name is a predeclared basic type.
func IsBasic(name string) bool {
	_, ok := basic[name]
	return ok
}

// typeInfo is the classification of a type expression.
type typeInfo struct {
	kind       Kind
	collection Collection
	nillable   bool
	// known is false for types declared elsewhere, whose nillability
	// cannot be told from syntax.
	known   bool
	elem    ast.Expr
	key     ast.Expr
	enum    *Enum
	invalid string
}

// classifier classifies field types using the declarations of one file.
type classifier struct {
	types   map[string]*ast.TypeSpec
	enums   map[string]*Enum
	imports map[string]string // local name => path
}

func (c *classifier) classify(expr ast.Expr) typeInfo {
	return c.classifyExpr(expr, make(map[string]bool))
}

func (c *classifier) classifyExpr(expr ast.Expr, seen map[string]bool) typeInfo {
	switch x := expr.(type) {
	case *ast.ParenExpr:
		return c.classifyExpr(x.X, seen)
	case *ast.Ident:
		return c.classifyIdent(x.Name, seen)
	case *ast.SelectorExpr:
		if pkg, ok := x.X.(*ast.Ident); ok && c.imports[pkg.Name] == "unsafe" && x.Sel.Name == "Pointer" {
			return typeInfo{kind: KindInvalid, invalid: "unsafe.Pointer fields are not supported"}
		}
		return typeInfo{kind: KindReference}
	case *ast.StarExpr:
		return typeInfo{kind: KindReference, nillable: true, known: true}
	case *ast.InterfaceType:
		return typeInfo{kind: KindReference, nillable: true, known: true}
	case *ast.ArrayType:
		if x.Len == nil {
			return typeInfo{kind: KindCollection, collection: CollectionSlice, nillable: true, known: true, elem: x.Elt}
		}
		return typeInfo{kind: KindCollection, collection: CollectionArray, known: true, elem: x.Elt}
	case *ast.MapType:
		return typeInfo{kind: KindCollection, collection: CollectionMap, nillable: true, known: true, key: x.Key, elem: x.Value}
	case *ast.IndexExpr:
		return c.classifyGeneric(x.X, seen)
	case *ast.IndexListExpr:
		return c.classifyGeneric(x.X, seen)
	case *ast.FuncType:
		return typeInfo{kind: KindInvalid, invalid: "func fields are not supported"}
	case *ast.ChanType:
		return typeInfo{kind: KindInvalid, invalid: "chan fields are not supported"}
	case *ast.StructType:
		return typeInfo{kind: KindInvalid, invalid: "anonymous struct fields are not supported"}
	default:
		return typeInfo{kind: KindInvalid, invalid: "unsupported type expression"}
	}
}

func (c *classifier) classifyIdent(name string, seen map[string]bool) typeInfo {
	if IsBasic(name) {
		return typeInfo{kind: KindPrimitive, known: true}
	}
	if name == "any" || name == "error" {
		return typeInfo{kind: KindReference, nillable: true, known: true}
	}
	if e, ok := c.enums[name]; ok {
		return typeInfo{kind: KindEnum, known: true, enum: e}
	}
	spec, ok := c.types[name]
	if !ok || seen[name] {
		// Declared in another file of the package.
		return typeInfo{kind: KindReference}
	}
	seen[name] = true
	if _, ok := spec.Type.(*ast.StructType); ok {
		return typeInfo{kind: KindReference, known: true}
	}
	info := c.classifyExpr(spec.Type, seen)
	if info.kind == KindInvalid {
		info.invalid = name + ": " + info.invalid
	}
	return info
}

// classifyGeneric handles instantiated generic types. A local generic
// struct is a value; anything else is opaque.
func (c *classifier) classifyGeneric(base ast.Expr, seen map[string]bool) typeInfo {
	if id, ok := base.(*ast.Ident); ok {
		if spec, ok := c.types[id.Name]; ok {
			if _, ok := spec.Type.(*ast.StructType); ok {
				return typeInfo{kind: KindReference, known: true}
			}
			return c.classifyIdent(id.Name, seen)
		}
	}
	return typeInfo{kind: KindReference}
}

// shape renders a type expression in normalized form: package qualifiers
// are replaced by import paths, parameter names are dropped and
// interface{} is spelled any. Two declarations of the same type always
// produce the same shape, whatever the import aliases.
func shape(expr ast.Expr, imports map[string]string) string {
	var b strings.Builder
	writeShape(&b, expr, imports)
	return b.String()
}

func writeShape(b *strings.Builder, expr ast.Expr, imports map[string]string) {
	switch x := expr.(type) {
	case *ast.Ident:
		b.WriteString(x.Name)
	case *ast.ParenExpr:
		writeShape(b, x.X, imports)
	case *ast.SelectorExpr:
		if pkg, ok := x.X.(*ast.Ident); ok {
			if path, ok := imports[pkg.Name]; ok {
				b.WriteString(path)
			} else {
				b.WriteString(pkg.Name)
			}
			b.WriteByte('.')
			b.WriteString(x.Sel.Name)
			return
		}
		writeShape(b, x.X, imports)
		b.WriteByte('.')
		b.WriteString(x.Sel.Name)
	case *ast.StarExpr:
		b.WriteByte('*')
		writeShape(b, x.X, imports)
	case *ast.Ellipsis:
		b.WriteString("...")
		writeShape(b, x.Elt, imports)
	case *ast.ArrayType:
		b.WriteByte('[')
		if x.Len != nil {
			b.WriteString(exprString(x.Len))
		}
		b.WriteByte(']')
		writeShape(b, x.Elt, imports)
	case *ast.MapType:
		b.WriteString("map[")
		writeShape(b, x.Key, imports)
		b.WriteByte(']')
		writeShape(b, x.Value, imports)
	case *ast.ChanType:
		switch x.Dir {
		case ast.RECV:
			b.WriteString("<-chan ")
		case ast.SEND:
			b.WriteString("chan<- ")
		default:
			b.WriteString("chan ")
		}
		writeShape(b, x.Value, imports)
	case *ast.FuncType:
		b.WriteString("func(")
		b.WriteString(strings.Join(fieldShapes(x.Params, imports), ", "))
		b.WriteByte(')')
		if res := fieldShapes(x.Results, imports); len(res) == 1 {
			b.WriteByte(' ')
			b.WriteString(res[0])
		} else if len(res) > 1 {
			b.WriteString(" (")
			b.WriteString(strings.Join(res, ", "))
			b.WriteByte(')')
		}
	case *ast.InterfaceType:
		if x.Methods == nil || len(x.Methods.List) == 0 {
			b.WriteString("any")
			return
		}
		b.WriteString(exprString(x))
	case *ast.IndexExpr:
		writeShape(b, x.X, imports)
		b.WriteByte('[')
		writeShape(b, x.Index, imports)
		b.WriteByte(']')
	case *ast.IndexListExpr:
		writeShape(b, x.X, imports)
		b.WriteByte('[')
		for i, idx := range x.Indices {
			if i > 0 {
				b.WriteString(", ")
			}
			writeShape(b, idx, imports)
		}
		b.WriteByte(']')
	default:
		b.WriteString(exprString(expr))
	}
}

// fieldShapes returns one shape per declared parameter or result.
func fieldShapes(fl *ast.FieldList, imports map[string]string) []string {
	if fl == nil {
		return nil
	}
	var shapes []string
	for _, f := range fl.List {
		s := shape(f.Type, imports)
		n := max(len(f.Names), 1)
		for range n {
			shapes = append(shapes, s)
		}
	}
	return shapes
}

func exprString(expr ast.Expr) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, token.NewFileSet(), expr); err != nil {
		return ""
	}
	return buf.String()
}
