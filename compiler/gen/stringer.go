package gen

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/datagen/compiler/load"
)

// genString generates String, rendering the value as
// "T { a = 1, b = x }". Fields with a string hook are rendered by it.
func genString(g *classGen, f *jen.File) error {
	fields, err := g.stored()
	if err != nil {
		return err
	}
	ok, err := g.declare(g.class.Name, "String", nil, []string{"string"})
	if err != nil || !ok {
		return err
	}
	if len(fields) == 0 {
		f.Comment("String implements fmt.Stringer.")
		g.method(f, "String").Params().String().Block(jen.Return(jen.Lit(g.class.Name + " {}")))
		return nil
	}
	parts := make([]string, len(fields))
	args := []jen.Code{nil}
	for i, fd := range fields {
		parts[i] = fd.Name + " = %s"
		if fd.Hooks.Has(load.HookString) {
			args = append(args, jen.Id(g.recv).Dot(fd.HookName(load.HookString)).Call())
		} else {
			args = append(args, g.datagen("Format").Call(g.field(fd)))
		}
	}
	args[0] = jen.Lit(g.class.Name + " { " + strings.Join(parts, ", ") + " }")
	f.Comment("String implements fmt.Stringer.")
	g.method(f, "String").Params().String().Block(
		jen.Return(jen.Qual("fmt", "Sprintf").Call(args...)),
	)
	return nil
}
