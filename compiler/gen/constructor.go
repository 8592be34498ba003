package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/datagen/compiler/load"
)

// genConstructor generates New<T> and validate. The constructor takes
// every stored field in declaration order, replaces nil fields that have
// a default, validates the result and calls the onConstructed hook.
func genConstructor(g *classGen, f *jen.File) error {
	fields, err := g.ctorFields()
	if err != nil {
		return err
	}
	name := g.ctorName()
	ok, err := g.declare("", name, shapes(fields), []string{g.ptr(), "error"})
	if err != nil {
		return err
	}
	if ok {
		f.Commentf("%s returns a new %s. It fails if a non-null field is nil or", name, g.class.Name)
		f.Comment("a field holds an invalid value.")
		g.paramDocs(f, fields)
		f.Func().Id(name).ParamsFunc(func(grp *jen.Group) {
			for _, fd := range fields {
				grp.Id(g.params[fd]).Id(fd.Type)
			}
		}).Params(jen.Op("*").Id(g.class.Name), jen.Error()).BlockFunc(func(grp *jen.Group) {
			grp.Id(g.recv).Op(":=").Op("&").Id(g.class.Name).Values(jen.DictFunc(func(d jen.Dict) {
				for _, fd := range fields {
					d[jen.Id(fd.Name)] = jen.Id(g.params[fd])
				}
			}))
			for _, fd := range fields {
				if fd.Nillable && fd.HasDefault() {
					grp.If(g.field(fd).Op("==").Nil()).Block(
						g.field(fd).Op("=").Add(g.defaultValue(fd, jen.Id(g.recv))),
					)
				}
			}
			grp.If(jen.Err().Op(":=").Id(g.recv).Dot("validate").Call(), jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Nil(), jen.Err()),
			)
			g.callOnConstructed(grp, g.recv, jen.Nil())
			grp.Return(jen.Id(g.recv), jen.Nil())
		})
	}
	return genValidate(g, f, fields)
}

// paramDocs appends a paragraph documenting the parameters of fields
// that carry a doc.
func (g *classGen) paramDocs(f *jen.File, fields []*load.Field) {
	for _, fd := range fields {
		if fd.Doc != "" {
			f.Comment("//")
			comment(f, g.params[fd]+": "+fd.Doc)
		}
	}
}

// callOnConstructed appends the call of the onConstructed hook, if any.
// failed is returned along with the hook's error.
func (g *classGen) callOnConstructed(grp *jen.Group, recv string, failed ...jen.Code) {
	hook := g.class.OnConstructed
	if hook == nil {
		return
	}
	if len(hook.Results) == 0 {
		grp.Id(recv).Dot(hook.Name).Call()
		return
	}
	grp.If(jen.Err().Op(":=").Id(recv).Dot(hook.Name).Call(), jen.Err().Op("!=").Nil()).Block(
		jen.Return(append(failed, jen.Err())...),
	)
}

func genValidate(g *classGen, f *jen.File, fields []*load.Field) error {
	ok, err := g.declare(g.class.Name, "validate", nil, []string{"error"})
	if err != nil || !ok {
		return err
	}
	f.Comment("validate checks the non-null and enum constraints of the fields.")
	g.method(f, "validate").Params().Error().BlockFunc(func(grp *jen.Group) {
		for _, fd := range fields {
			if fd.MustCheckNil() {
				grp.If(g.field(fd).Op("==").Nil()).Block(
					jen.Return(g.datagen("NewNilFieldError").Call(jen.Lit(g.class.Name), jen.Lit(fd.Name))),
				)
			}
			if g.enumChecked(fd) {
				grp.If(jen.Op("!").Add(g.field(fd)).Dot(g.isValidName()).Call()).Block(
					jen.Return(g.datagen("NewInvalidValueError").Call(jen.Lit(g.class.Name), jen.Lit(fd.Name), g.field(fd))),
				)
			}
		}
		grp.Return(jen.Nil())
	})
	return nil
}
