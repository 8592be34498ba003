package gen

import (
	"github.com/dave/jennifer/jen"
)

// genForEachField generates ForEachField, visiting the stored fields in
// declaration order.
func genForEachField(g *classGen, f *jen.File) error {
	fields, err := g.stored()
	if err != nil {
		return err
	}
	name := g.name(FeatureForEachField, "ForEachField")
	ok, err := g.declare(g.class.Name, name, []string{"func(string, any)"}, nil)
	if err != nil || !ok {
		return err
	}
	f.Commentf("%s calls fn with the name and value of every field, in", name)
	f.Comment("declaration order.")
	g.method(f, name).Params(jen.Id("fn").Func().Params(jen.Id("name").String(), jen.Id("value").Any())).BlockFunc(func(grp *jen.Group) {
		for _, fd := range fields {
			grp.Id("fn").Call(jen.Lit(fd.Name), g.field(fd))
		}
	})
	return nil
}
