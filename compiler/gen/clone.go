package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/datagen/compiler/load"
)

// genClone generates Clone: a shallow copy of the value with its own
// slices and maps.
func genClone(g *classGen, f *jen.File) error {
	fields, err := g.fields()
	if err != nil {
		return err
	}
	name := g.name(FeatureCopyConstructor, "Clone")
	ok, err := g.declare(g.class.Name, name, nil, []string{g.ptr()})
	if err != nil || !ok {
		return err
	}
	f.Commentf("%s returns a copy of %s. Slices and maps are copied, the values", name, g.recv)
	f.Comment("they hold are shared.")
	g.method(f, name).Params().Op("*").Id(g.class.Name).BlockFunc(func(grp *jen.Group) {
		grp.Id("c").Op(":=").Op("*").Id(g.recv)
		for _, fd := range fields {
			var pkg string
			switch fd.Collection {
			case load.CollectionSlice:
				pkg = "slices"
			case load.CollectionMap:
				pkg = "maps"
			default:
				continue
			}
			grp.Id("c").Dot(fd.Name).Op("=").Qual(pkg, "Clone").Call(g.field(fd))
		}
		grp.Return(jen.Op("&").Id("c"))
	})
	return nil
}
