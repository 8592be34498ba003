// Package load extracts the structural model of a datagen target struct
// from Go source.
package load

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"
)

// Directive marks the target struct when a file declares more than one.
const Directive = "//datagen:class"

// Kind classifies the declared type of a field.
type Kind int

const (
	// KindInvalid is a type no generator can handle (func, chan,
	// anonymous struct, unsafe.Pointer).
	KindInvalid Kind = iota
	KindPrimitive
	KindReference
	KindCollection
	KindEnum
)

var kindNames = [...]string{
	KindInvalid:    "invalid",
	KindPrimitive:  "primitive",
	KindReference:  "reference",
	KindCollection: "collection",
	KindEnum:       "enum",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Collection is the shape of a collection field.
type Collection int

const (
	CollectionNone Collection = iota
	CollectionSlice
	CollectionMap
	CollectionArray
)

// String returns the collection name.
func (c Collection) String() string {
	switch c {
	case CollectionSlice:
		return "slice"
	case CollectionMap:
		return "map"
	case CollectionArray:
		return "array"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Collection) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Nullability of a field.
type Nullability int

const (
	// NonNull fields fail validation when nil. Every non-nillable field is
	// NonNull.
	NonNull Nullability = iota + 1
	// Nullable fields may hold nil.
	Nullable
)

// String returns the nullability name.
func (n Nullability) String() string {
	switch n {
	case NonNull:
		return "nonnull"
	case Nullable:
		return "nullable"
	default:
		return "unset"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (n Nullability) MarshalText() ([]byte, error) { return []byte(n.String()), nil }

// Hook is a bit set of the per-field customization methods a user declared.
type Hook uint8

const (
	// HookMarshal is `marshal<Field>(enc *msgpack.Encoder) error`.
	HookMarshal Hook = 1 << iota
	// HookUnmarshal is `unmarshal<Field>(dec *msgpack.Decoder) error`.
	HookUnmarshal
	// HookString is `<field>ToString() string`.
	HookString
	// HookLazyInit is `lazyInit<Field>() T`.
	HookLazyInit
	// HookDefault is `default<Field>() T`.
	HookDefault
)

// Hooks lists every hook slot in a stable order.
var Hooks = []Hook{HookMarshal, HookUnmarshal, HookString, HookLazyInit, HookDefault}

// Has reports whether all bits of x are set.
func (h Hook) Has(x Hook) bool { return h&x == x }

// String returns the slot name.
func (h Hook) String() string {
	var names []string
	for _, x := range Hooks {
		if h.Has(x) {
			names = append(names, hookSlots[x])
		}
	}
	return strings.Join(names, "|")
}

// MarshalText implements encoding.TextMarshaler.
func (h Hook) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

var hookSlots = map[Hook]string{
	HookMarshal:   "marshal",
	HookUnmarshal: "unmarshal",
	HookString:    "string",
	HookLazyInit:  "lazy-init",
	HookDefault:   "default",
}

// Class is the model of the target struct.
type Class struct {
	Name      string         `yaml:"name"`
	Package   string         `yaml:"package"`
	File      string         `yaml:"file"`
	Doc       string         `yaml:"doc,omitempty"`
	Directive bool           `yaml:"directive,omitempty"`
	Fields    []*Field       `yaml:"fields"`
	Enums     []*Enum        `yaml:"enums,omitempty"`
	Imports   []*Import      `yaml:"imports,omitempty"`
	Members   *MemberSet     `yaml:"members,omitempty"`
	Pos       token.Position `yaml:"-"`
	// OnConstructed is the class-level hook called by the constructor.
	OnConstructed *Member `yaml:"on_constructed,omitempty"`
}

// Enum returns the local enum-like type with the given name, or nil.
func (c *Class) Enum(name string) *Enum {
	for _, e := range c.Enums {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Field returns the field with the given name, or nil.
func (c *Class) Field(name string) *Field {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// ImportName returns the local package name of the import path, and
// false if the file does not import it.
func (c *Class) ImportName(path string) (string, bool) {
	for _, imp := range c.Imports {
		if imp.Path == path {
			return imp.LocalName(), true
		}
	}
	return "", false
}

// Shape returns the normalized shape of a type expression of the file,
// as used in member signatures.
func (c *Class) Shape(expr ast.Expr) string {
	imports := make(map[string]string, len(c.Imports))
	for _, imp := range c.Imports {
		if name := imp.LocalName(); name != "_" && name != "." {
			imports[name] = imp.Path
		}
	}
	return shape(expr, imports)
}

// Field is a single struct field included in generation.
type Field struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"`
	Shape       string      `yaml:"shape"`
	Kind        Kind        `yaml:"kind"`
	Invalid     string      `yaml:"invalid,omitempty"`
	Collection  Collection  `yaml:"collection,omitempty"`
	Elem        string      `yaml:"elem,omitempty"`
	Key         string      `yaml:"key,omitempty"`
	Nillable    bool        `yaml:"nillable"`
	Nullability Nullability `yaml:"nullability"`
	Default     string      `yaml:"default,omitempty"`
	Hooks       Hook        `yaml:"hooks,omitempty"`
	Codec       string      `yaml:"codec,omitempty"`
	Singular    string      `yaml:"singular,omitempty"`
	Doc         string      `yaml:"doc,omitempty"`
	Hidden      bool        `yaml:"hidden,omitempty"`
	Enum        *Enum       `yaml:"-"`

	// Expr is the declared type, ElemExpr and KeyExpr its element and key
	// types for collections.
	Expr     ast.Expr       `yaml:"-"`
	ElemExpr ast.Expr       `yaml:"-"`
	KeyExpr  ast.Expr       `yaml:"-"`
	Pos      token.Position `yaml:"-"`
}

// Optional reports whether the field may hold nil.
func (f *Field) Optional() bool { return f.Nullability == Nullable }

// MustCheckNil reports whether generated code checks the field for nil.
func (f *Field) MustCheckNil() bool { return f.Nillable && f.Nullability == NonNull }

// HasDefault reports whether the field has a default value, either from
// a `default=` option or a default hook.
func (f *Field) HasDefault() bool { return f.Default != "" || f.Hooks.Has(HookDefault) }

// Lazy reports whether the field is computed on first access by its
// lazy-init hook. Lazy fields are not constructor parameters.
func (f *Field) Lazy() bool { return f.Hooks.Has(HookLazyInit) }

// Comparable reports whether the field is compared with ==.
func (f *Field) Comparable() bool { return f.Kind == KindPrimitive || f.Kind == KindEnum }

// HookName returns the method name of a per-field hook.
func (f *Field) HookName(h Hook) string {
	switch h {
	case HookMarshal:
		return "marshal" + Pascal(f.Name)
	case HookUnmarshal:
		return "unmarshal" + Pascal(f.Name)
	case HookString:
		return Camel(f.Name) + "ToString"
	case HookLazyInit:
		return "lazyInit" + Pascal(f.Name)
	case HookDefault:
		return "default" + Pascal(f.Name)
	default:
		return ""
	}
}

// Signature is a stable one-line description of the field used for the
// region fingerprint.
func (f *Field) Signature() string {
	return fmt.Sprintf("%s %s %s %s default=%q hooks=%s codec=%s hidden=%t",
		f.Name, f.Shape, f.Kind, f.Nullability, f.Default, f.Hooks, f.Codec, f.Hidden)
}

// Enum is a local named basic type with typed constants.
type Enum struct {
	Name       string   `yaml:"name"`
	Underlying string   `yaml:"underlying"`
	Values     []string `yaml:"values"`
}

// Import is a single import spec of the analyzed file.
type Import struct {
	Name string `yaml:"name,omitempty"`
	Path string `yaml:"path"`
}

// LocalName returns the identifier the file uses to refer to the package.
func (i *Import) LocalName() string {
	if i.Name != "" {
		return i.Name
	}
	return PackageName(i.Path)
}

// PackageName guesses the package name of an import path from its last
// element, skipping major version suffixes.
//
//	github.com/vmihailenco/msgpack/v5 => msgpack
//	gopkg.in/yaml.v3                  => yaml
func PackageName(path string) string {
	parts := strings.Split(path, "/")
	name := parts[len(parts)-1]
	if len(parts) > 1 && isMajorVersion(name) {
		name = parts[len(parts)-2]
	}
	if i := strings.Index(name, ".v"); i > 0 && isMajorVersion(name[i+1:]) {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	return strings.ReplaceAll(name, "-", "")
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
