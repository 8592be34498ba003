package gen

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/datagen/compiler/load"
)

// maxNullable is the number of nullable fields a nil mask can describe.
const maxNullable = 64

// genCodec generates EncodeMsgpack and DecodeMsgpack. The encoding is the
// datagen header (field count and nil mask) followed by the values of
// the stored fields in declaration order; nil nullable fields are
// omitted. A field is encoded by its marshal/unmarshal hooks, by its
// codec= type, or by msgpack itself.
func genCodec(g *classGen, f *jen.File) error {
	fields, err := g.stored()
	if err != nil {
		return err
	}
	bits := make(map[*load.Field]int)
	for _, fd := range fields {
		if fd.Optional() {
			bits[fd] = len(bits)
		}
	}
	if len(bits) > maxNullable {
		return &GenerationError{
			Feature: g.feature.Name,
			File:    g.file,
			Message: fmt.Sprintf("%d nullable fields, the codec supports at most %d", len(bits), maxNullable),
		}
	}
	if err := genEncode(g, f, fields, bits); err != nil {
		return err
	}
	return genDecode(g, f, fields, bits)
}

func genEncode(g *classGen, f *jen.File, fields []*load.Field, bits map[*load.Field]int) error {
	enc := "*" + load.MsgpackPath + ".Encoder"
	ok, err := g.declare(g.class.Name, "EncodeMsgpack", []string{enc}, []string{"error"})
	if err != nil || !ok {
		return err
	}
	f.Comment("EncodeMsgpack implements msgpack.CustomEncoder.")
	g.method(f, "EncodeMsgpack").Params(jen.Id("enc").Op("*").Qual(load.MsgpackPath, "Encoder")).Error().BlockFunc(func(grp *jen.Group) {
		mask := jen.Lit(0)
		if len(bits) > 0 {
			grp.Var().Id("nilMask").Uint64()
			for _, fd := range fields {
				if bit, ok := bits[fd]; ok {
					grp.If(g.field(fd).Op("==").Nil()).Block(
						jen.Id("nilMask").Op("|=").Lit(1).Op("<<").Lit(bit),
					)
				}
			}
			mask = jen.Id("nilMask")
		}
		grp.If(
			jen.Err().Op(":=").Add(g.datagen("EncodeHeader")).Call(jen.Id("enc"), jen.Lit(len(fields)), mask),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Err()))
		for _, fd := range fields {
			write := jen.If(jen.Err().Op(":=").Add(g.encodeField(fd)), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
			if fd.Optional() {
				grp.If(g.field(fd).Op("!=").Nil()).Block(write)
			} else {
				grp.Add(write)
			}
		}
		grp.Return(jen.Nil())
	})
	return nil
}

// encodeField returns the call writing a single field to enc.
func (g *classGen) encodeField(fd *load.Field) *jen.Statement {
	switch {
	case fd.Hooks.Has(load.HookMarshal):
		return jen.Id(g.recv).Dot(fd.HookName(load.HookMarshal)).Call(jen.Id("enc"))
	case fd.Codec != "":
		return jen.New(jen.Id(fd.Codec)).Dot("EncodeValue").Call(jen.Id("enc"), g.field(fd))
	default:
		return jen.Id("enc").Dot("Encode").Call(g.field(fd))
	}
}

func genDecode(g *classGen, f *jen.File, fields []*load.Field, bits map[*load.Field]int) error {
	dec := "*" + load.MsgpackPath + ".Decoder"
	ok, err := g.declare(g.class.Name, "DecodeMsgpack", []string{dec}, []string{"error"})
	if err != nil || !ok {
		return err
	}
	f.Comment("DecodeMsgpack implements msgpack.CustomDecoder. The receiver is only")
	f.Comment("modified if the decoded value is valid.")
	g.method(f, "DecodeMsgpack").Params(jen.Id("dec").Op("*").Qual(load.MsgpackPath, "Decoder")).Error().BlockFunc(func(grp *jen.Group) {
		maskVar := jen.Id("nilMask")
		if len(bits) == 0 {
			maskVar = jen.Id("_")
		}
		grp.List(maskVar, jen.Err()).Op(":=").Add(g.datagen("DecodeHeader")).Call(jen.Id("dec"), jen.Lit(g.class.Name), jen.Lit(len(fields)))
		grp.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
		grp.Var().Id("v").Id(g.class.Name)
		for _, fd := range fields {
			read := g.decodeField(fd)
			if bit, ok := bits[fd]; ok {
				grp.If(jen.Op("!").Add(g.datagen("IsNil")).Call(jen.Id("nilMask"), jen.Lit(bit))).Block(read)
			} else {
				grp.Add(read)
			}
		}
		grp.If(jen.Err().Op(":=").Id("v").Dot("validate").Call(), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
		g.callOnConstructed(grp, "v")
		grp.Op("*").Id(g.recv).Op("=").Id("v")
		grp.Return(jen.Nil())
	})
	return nil
}

// decodeField returns the statement reading a single field from dec into
// the local v.
func (g *classGen) decodeField(fd *load.Field) *jen.Statement {
	target := jen.Id("v").Dot(fd.Name)
	switch {
	case fd.Hooks.Has(load.HookUnmarshal):
		return jen.If(jen.Err().Op(":=").Id("v").Dot(fd.HookName(load.HookUnmarshal)).Call(jen.Id("dec")), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
	case fd.Codec != "":
		return jen.If(
			jen.List(target, jen.Err()).Op("=").New(jen.Id(fd.Codec)).Dot("DecodeValue").Call(jen.Id("dec")),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Err()))
	default:
		return jen.If(jen.Err().Op(":=").Id("dec").Dot("Decode").Call(jen.Op("&").Add(target)), jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
	}
}
