package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/datagen/compiler/load"
)

// genWithers generates With<Field> methods. Each returns a new value
// built by the constructor, so the receiver is never modified and the
// copy is validated. An invalid argument panics with the constructor's
// error.
func genWithers(g *classGen, f *jen.File) error {
	fields, err := g.ctorFields()
	if err != nil {
		return err
	}
	ctor := g.ctorName()
	for _, fd := range fields {
		name := g.fieldName(FeatureWithers, fd, "With"+load.Pascal(fd.Name))
		ok, err := g.declare(g.class.Name, name, []string{fd.Shape}, []string{g.ptr()})
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		param := g.params[fd]
		args := make([]jen.Code, len(fields))
		for i, other := range fields {
			if other == fd {
				args[i] = jen.Id(param)
			} else {
				args[i] = g.field(other)
			}
		}
		f.Commentf("%s returns a copy of %s with the %s field replaced.", name, g.recv, fd.Name)
		g.fieldDoc(f, fd)
		g.method(f, name).Params(jen.Id(param).Id(fd.Type)).Op("*").Id(g.class.Name).Block(
			jen.List(jen.Id("n"), jen.Err()).Op(":=").Id(ctor).Call(args...),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Panic(jen.Err())),
			jen.Return(jen.Id("n")),
		)
	}
	return nil
}
