package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/datagen/compiler/load"
)

// genEnums generates IsValid, a values function and, for non-string
// types, String for every local enum-like type used by a field. Enum
// constants must have distinct values.
func genEnums(g *classGen, f *jen.File) error {
	for _, e := range g.class.Enums {
		if len(e.Values) == 0 {
			continue
		}
		recv := pickReceiver(e.Name, func(s string) bool { return g.taken[s] })
		consts := make([]jen.Code, len(e.Values))
		for i, v := range e.Values {
			consts[i] = jen.Id(v)
		}

		isValid := g.isValidName()
		ok, err := g.declare(e.Name, isValid, nil, []string{"bool"})
		if err != nil {
			return err
		}
		if ok {
			f.Commentf("%s reports whether %s is one of the declared %s constants.", isValid, recv, e.Name)
			f.Func().Params(jen.Id(recv).Id(e.Name)).Id(isValid).Params().Bool().Block(
				jen.Switch(jen.Id(recv)).Block(
					jen.Case(consts...).Block(jen.Return(jen.True())),
				),
				jen.Return(jen.False()),
			)
		}

		values := g.name(FeatureEnums, load.Pascal(e.Name)+"Values")
		ok, err = g.declare("", values, nil, []string{"[]" + e.Name})
		if err != nil {
			return err
		}
		if ok {
			f.Commentf("%s returns the declared %s constants in declaration order.", values, e.Name)
			f.Func().Id(values).Params().Index().Id(e.Name).Block(
				jen.Return(jen.Index().Id(e.Name).Values(consts...)),
			)
		}

		if e.Underlying == "string" {
			continue
		}
		ok, err = g.declare(e.Name, "String", nil, []string{"string"})
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		f.Comment("String returns the name of the constant.")
		f.Func().Params(jen.Id(recv).Id(e.Name)).Id("String").Params().String().Block(
			jen.Switch(jen.Id(recv)).BlockFunc(func(grp *jen.Group) {
				for _, v := range e.Values {
					grp.Case(jen.Id(v)).Block(jen.Return(jen.Lit(v)))
				}
			}),
			jen.Return(jen.Qual("fmt", "Sprintf").Call(jen.Lit(e.Name+"(%v)"), jen.Id(e.Underlying).Call(jen.Id(recv)))),
		)
	}
	return nil
}
