package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/datagen/compiler/load"
)

// genGetters generates one accessor per field. Fields with a lazy-init
// hook are computed on first access. The lazy initialization is not
// synchronized.
func genGetters(g *classGen, f *jen.File) error {
	fields, err := g.fields()
	if err != nil {
		return err
	}
	for _, fd := range fields {
		name := g.getterName(fd)
		ok, err := g.declare(g.class.Name, name, nil, []string{fd.Shape})
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		f.Commentf("%s returns the value of the %s field.", name, fd.Name)
		g.fieldDoc(f, fd)
		g.method(f, name).Params().Id(fd.Type).BlockFunc(func(grp *jen.Group) {
			if fd.Lazy() {
				grp.If(g.field(fd).Op("==").Nil()).Block(
					g.field(fd).Op("=").Id(g.recv).Dot(fd.HookName(load.HookLazyInit)).Call(),
				)
			}
			grp.Return(g.field(fd))
		})
	}
	return nil
}

// genSetters generates chainable mutators. Setting nil on a non-null
// field, or an undeclared value on an enum field, panics with a
// *datagen.FieldError.
func genSetters(g *classGen, f *jen.File) error {
	fields, err := g.stored()
	if err != nil {
		return err
	}
	for _, fd := range fields {
		name := g.fieldName(FeatureSetters, fd, "Set"+load.Pascal(fd.Name))
		ok, err := g.declare(g.class.Name, name, []string{fd.Shape}, []string{g.ptr()})
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		param := g.params[fd]
		f.Commentf("%s sets the %s field.", name, fd.Name)
		g.fieldDoc(f, fd)
		g.method(f, name).Params(jen.Id(param).Id(fd.Type)).Op("*").Id(g.class.Name).BlockFunc(func(grp *jen.Group) {
			g.checkArg(grp, fd, param)
			grp.Add(g.field(fd)).Op("=").Id(param)
			grp.Return(jen.Id(g.recv))
		})
	}
	return nil
}

// checkArg appends the panicking checks of a single field argument.
func (g *classGen) checkArg(grp *jen.Group, fd *load.Field, param string) {
	if fd.MustCheckNil() {
		grp.If(jen.Id(param).Op("==").Nil()).Block(
			jen.Panic(g.datagen("NewNilFieldError").Call(jen.Lit(g.class.Name), jen.Lit(fd.Name))),
		)
	}
	if g.enumChecked(fd) {
		grp.If(jen.Op("!").Id(param).Dot(g.isValidName()).Call()).Block(
			jen.Panic(g.datagen("NewInvalidValueError").Call(jen.Lit(g.class.Name), jen.Lit(fd.Name), jen.Id(param))),
		)
	}
}
