package gen

import (
	"github.com/dave/jennifer/jen"
)

// genEquality generates Equal and Hash. Primitive and enum fields are
// compared with ==, everything else with reflect.DeepEqual, which follows
// pointers. Hash agrees with Equal.
func genEquality(g *classGen, f *jen.File) error {
	fields, err := g.stored()
	if err != nil {
		return err
	}

	equal := g.name(FeatureEquality, "Equal")
	ok, err := g.declare(g.class.Name, equal, []string{g.ptr()}, []string{"bool"})
	if err != nil {
		return err
	}
	if ok {
		var cond *jen.Statement
		for _, fd := range fields {
			var c *jen.Statement
			if fd.Comparable() {
				c = g.field(fd).Op("==").Id("other").Dot(fd.Name)
			} else {
				c = jen.Qual("reflect", "DeepEqual").Call(g.field(fd), jen.Id("other").Dot(fd.Name))
			}
			if cond == nil {
				cond = c
			} else {
				cond = cond.Op("&&").Line().Add(c)
			}
		}
		if cond == nil {
			cond = jen.True()
		}
		f.Commentf("%s reports whether %s and other hold equal field values.", equal, g.recv)
		g.method(f, equal).Params(jen.Id("other").Op("*").Id(g.class.Name)).Bool().Block(
			jen.If(jen.Id(g.recv).Op("==").Id("other")).Block(jen.Return(jen.True())),
			jen.If(jen.Id(g.recv).Op("==").Nil().Op("||").Id("other").Op("==").Nil()).Block(jen.Return(jen.False())),
			jen.Return(cond),
		)
	}

	hash := g.name(FeatureEquality, "Hash")
	ok, err = g.declare(g.class.Name, hash, nil, []string{"uint64"})
	if err != nil || !ok {
		return err
	}
	values := make([]jen.Code, len(fields))
	for i, fd := range fields {
		values[i] = g.field(fd)
	}
	f.Commentf("%s returns a hash of the field values. Values that are %s have", hash, equal)
	f.Comment("the same hash.")
	g.method(f, hash).Params().Uint64().Block(
		jen.If(jen.Id(g.recv).Op("==").Nil()).Block(jen.Return(jen.Lit(0))),
		jen.Return(g.datagen("Hash").Call(values...)),
	)
	return nil
}
