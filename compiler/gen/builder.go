package gen

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/datagen/compiler/load"
)

// maxBuilderFields is the number of fields a builder mask can track.
const maxBuilderFields = 64

// builder holds the names shared by the builder and build-upon features.
type builder struct {
	typ    string
	fields []*load.Field
	// bits maps each field to its bit in the builder's set mask.
	bits map[*load.Field]int
	// mask and done name the bookkeeping fields. builderField renames
	// class fields so they never clash with them.
	mask, done string
}

func (g *classGen) builder() (*builder, error) {
	fields, err := g.ctorFields()
	if err != nil {
		return nil, err
	}
	if len(fields) > maxBuilderFields {
		return nil, &GenerationError{
			Feature: g.feature.Name,
			File:    g.file,
			Message: fmt.Sprintf("%d fields, the builder supports at most %d", len(fields), maxBuilderFields),
		}
	}
	b := &builder{
		typ:    g.builderTypeName(),
		fields: fields,
		bits:   make(map[*load.Field]int, len(fields)),
		mask:   "mask",
		done:   "done",
	}
	for i, fd := range fields {
		b.bits[fd] = i
	}
	return b, nil
}

// required reports whether the field is a parameter of the builder
// constructor: it must not be nil and has no default to fall back to.
func (b *builder) required(fd *load.Field) bool {
	return fd.MustCheckNil() && !fd.HasDefault()
}

func (b *builder) set(fd *load.Field) jen.Code {
	return jen.Id("b").Dot(b.mask).Op("|=").Lit(1).Op("<<").Lit(b.bits[fd])
}

// genBuilder generates <T>Builder, its constructor, one setter per field,
// adders for slice and map fields, and Build. A hand-written <T>Builder
// type replaces the generated struct only.
func genBuilder(g *classGen, f *jen.File) error {
	b, err := g.builder()
	if err != nil {
		return err
	}
	ptr := "*" + b.typ

	ok, err := g.declareType(b.typ)
	if err != nil {
		return err
	}
	if ok {
		f.Commentf("%s builds %s values. A builder can be built once.", b.typ, g.class.Name)
		f.Type().Id(b.typ).StructFunc(func(grp *jen.Group) {
			for _, fd := range b.fields {
				grp.Id(builderField(fd.Name)).Id(fd.Type)
			}
			grp.Line()
			grp.Id(b.mask).Uint64()
			grp.Id(b.done).Bool()
		})
	}

	var required []*load.Field
	for _, fd := range b.fields {
		if b.required(fd) {
			required = append(required, fd)
		}
	}
	newBuilder := g.name(FeatureBuilder, "New"+g.typeName()+"Builder")
	ok, err = g.declare("", newBuilder, shapes(required), []string{ptr})
	if err != nil {
		return err
	}
	if ok {
		f.Commentf("%s returns a builder for %s. Its arguments are the fields", newBuilder, g.class.Name)
		f.Comment("that must not be nil and have no default.")
		f.Func().Id(newBuilder).ParamsFunc(func(grp *jen.Group) {
			for _, fd := range required {
				grp.Id(g.params[fd]).Id(fd.Type)
			}
		}).Op("*").Id(b.typ).BlockFunc(func(grp *jen.Group) {
			grp.Id("b").Op(":=").Op("&").Id(b.typ).Values()
			for _, fd := range required {
				g.checkArg(grp, fd, g.params[fd])
				grp.Id("b").Dot(builderField(fd.Name)).Op("=").Id(g.params[fd])
				grp.Add(b.set(fd))
			}
			grp.Return(jen.Id("b"))
		})
	}

	for _, fd := range b.fields {
		if err := genBuilderSetter(g, f, b, fd); err != nil {
			return err
		}
		if err := genBuilderAdder(g, f, b, fd); err != nil {
			return err
		}
	}
	return genBuild(g, f, b)
}

func genBuilderSetter(g *classGen, f *jen.File, b *builder, fd *load.Field) error {
	name := g.builderSetterName(fd, "Set"+load.Pascal(fd.Name))
	ok, err := g.declare(b.typ, name, []string{fd.Shape}, []string{"*" + b.typ})
	if err != nil || !ok {
		return err
	}
	param := g.params[fd]
	f.Commentf("%s sets the %s field.", name, fd.Name)
	g.fieldDoc(f, fd)
	f.Func().Params(jen.Id("b").Op("*").Id(b.typ)).Id(name).Params(jen.Id(param).Id(fd.Type)).Op("*").Id(b.typ).BlockFunc(func(grp *jen.Group) {
		g.checkArg(grp, fd, param)
		grp.Id("b").Dot(builderField(fd.Name)).Op("=").Id(param)
		grp.Add(b.set(fd))
		grp.Return(jen.Id("b"))
	})
	return nil
}

// genBuilderAdder generates Add<Singular> for slices, appending one
// element, and for maps, putting one entry. Without a distinct singular
// form the adder is AddTo<Field>.
func genBuilderAdder(g *classGen, f *jen.File, b *builder, fd *load.Field) error {
	if fd.Collection != load.CollectionSlice && fd.Collection != load.CollectionMap || fd.ElemExpr == nil {
		return nil
	}
	exported := "AddTo" + load.Pascal(fd.Name)
	if fd.Singular != "" {
		exported = "Add" + load.Pascal(fd.Singular)
	}
	name := g.builderSetterName(fd, exported)
	field := jen.Id("b").Dot(builderField(fd.Name))
	recv := jen.Id("b").Op("*").Id(b.typ)

	if fd.Collection == load.CollectionSlice {
		elem := "elem"
		if fd.Singular != "" {
			elem = load.Safe(load.Camel(fd.Singular))
			if _, reserved := reservedLocals[elem]; reserved || g.taken[elem] {
				elem += "Value"
			}
		}
		ok, err := g.declare(b.typ, name, []string{g.class.Shape(fd.ElemExpr)}, []string{"*" + b.typ})
		if err != nil || !ok {
			return err
		}
		f.Commentf("%s appends %s to the %s field.", name, elem, fd.Name)
		f.Func().Params(recv).Id(name).Params(jen.Id(elem).Id(fd.Elem)).Op("*").Id(b.typ).Block(
			field.Clone().Op("=").Append(field.Clone(), jen.Id(elem)),
			b.set(fd),
			jen.Return(jen.Id("b")),
		)
		return nil
	}

	ok, err := g.declare(b.typ, name, []string{g.class.Shape(fd.KeyExpr), g.class.Shape(fd.ElemExpr)}, []string{"*" + b.typ})
	if err != nil || !ok {
		return err
	}
	f.Commentf("%s puts key and value into the %s field.", name, fd.Name)
	f.Func().Params(recv).Id(name).Params(jen.Id("key").Id(fd.Key), jen.Id("value").Id(fd.Elem)).Op("*").Id(b.typ).Block(
		jen.If(field.Clone().Op("==").Nil()).Block(
			field.Clone().Op("=").Make(jen.Id(fd.Type)),
		),
		field.Clone().Index(jen.Id("key")).Op("=").Id("value"),
		b.set(fd),
		jen.Return(jen.Id("b")),
	)
	return nil
}

// genBuild generates Build. Fields left unset take their default, then
// the constructor validates the result.
func genBuild(g *classGen, f *jen.File, b *builder) error {
	name := g.name(FeatureBuilder, "Build")
	ok, err := g.declare(b.typ, name, nil, []string{g.ptr(), "error"})
	if err != nil || !ok {
		return err
	}
	f.Commentf("%s returns the built %s. It fails with datagen.ErrBuilderReused", name, g.class.Name)
	f.Comment("once a value was built.")
	f.Func().Params(jen.Id("b").Op("*").Id(b.typ)).Id(name).Params().Params(jen.Op("*").Id(g.class.Name), jen.Error()).BlockFunc(func(grp *jen.Group) {
		grp.If(jen.Id("b").Dot(b.done)).Block(jen.Return(jen.Nil(), g.datagen("ErrBuilderReused")))
		for _, fd := range b.fields {
			if !fd.HasDefault() || fd.Nillable {
				continue
			}
			grp.If(jen.Id("b").Dot(b.mask).Op("&").Parens(jen.Lit(1).Op("<<").Lit(b.bits[fd])).Op("==").Lit(0)).Block(
				jen.Id("b").Dot(builderField(fd.Name)).Op("=").Add(g.defaultValue(fd, jen.New(jen.Id(g.class.Name)))),
			)
		}
		args := make([]jen.Code, len(b.fields))
		for i, fd := range b.fields {
			args[i] = jen.Id("b").Dot(builderField(fd.Name))
		}
		grp.List(jen.Id("v"), jen.Err()).Op(":=").Id(g.ctorName()).Call(args...)
		grp.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))
		grp.Id("b").Dot(b.done).Op("=").True()
		grp.Return(jen.Id("v"), jen.Nil())
	})
	return nil
}

// genBuildUpon generates ToBuilder, seeding a builder with every field of
// the value. Slices and maps are copied so the builder cannot modify the
// receiver.
func genBuildUpon(g *classGen, f *jen.File) error {
	b, err := g.builder()
	if err != nil {
		return err
	}
	name := g.name(FeatureBuildUpon, "ToBuilder")
	ok, err := g.declare(g.class.Name, name, nil, []string{"*" + b.typ})
	if err != nil || !ok {
		return err
	}
	f.Commentf("%s returns a builder holding the fields of %s.", name, g.recv)
	g.method(f, name).Params().Op("*").Id(b.typ).Block(
		jen.Return(jen.Op("&").Id(b.typ).Values(jen.DictFunc(func(d jen.Dict) {
			for _, fd := range b.fields {
				var value jen.Code = g.field(fd)
				switch fd.Collection {
				case load.CollectionSlice:
					value = jen.Qual("slices", "Clone").Call(g.field(fd))
				case load.CollectionMap:
					value = jen.Qual("maps", "Clone").Call(g.field(fd))
				}
				d[jen.Id(builderField(fd.Name))] = value
			}
			if len(b.fields) > 0 {
				d[jen.Id(b.mask)] = jen.Op(hexMask(len(b.fields)))
			}
		}))),
	)
	return nil
}
