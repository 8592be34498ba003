package gen

import (
	"github.com/dave/jennifer/jen"
)

// genInterface generates <T>View, an interface of the getters, and a
// compile-time assertion that *T implements it.
func genInterface(g *classGen, f *jen.File) error {
	fields, err := g.fields()
	if err != nil {
		return err
	}
	name := g.name(FeatureInterface, g.typeName()+"View")
	ok, err := g.declareType(name)
	if err != nil || !ok {
		return err
	}
	f.Commentf("%s is the read-only view of %s.", name, g.class.Name)
	f.Type().Id(name).InterfaceFunc(func(grp *jen.Group) {
		for _, fd := range fields {
			grp.Id(g.getterName(fd)).Params().Id(fd.Type)
		}
	})
	f.Var().Id("_").Id(name).Op("=").Parens(jen.Op("*").Id(g.class.Name)).Parens(jen.Nil())
	return nil
}
