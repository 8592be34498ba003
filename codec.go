package datagen

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec provides custom encoding for a single field type. A field tagged
// `datagen:"codec=T"` is encoded with T's zero value, so implementations
// are expected to be stateless.
type Codec[V any] interface {
	EncodeValue(enc *msgpack.Encoder, v V) error
	DecodeValue(dec *msgpack.Decoder) (V, error)
}

// Encodable is implemented by types generated with the codec feature.
type Encodable interface {
	msgpack.CustomEncoder
	msgpack.CustomDecoder
}

// EncodeHeader writes the header shared by all generated encoders: an array
// of two elements (field count, nil mask) followed by the field values.
// Bit i of nilMask is set when the i-th nullable field is nil and was
// therefore omitted from the stream.
func EncodeHeader(enc *msgpack.Encoder, fields int, nilMask uint64) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeInt(int64(fields)); err != nil {
		return err
	}
	return enc.EncodeUint(nilMask)
}

// DecodeHeader reads a header written by EncodeHeader and returns the nil
// mask. It fails with ErrMalformed if the stream was produced for a
// different number of fields.
func DecodeHeader(dec *msgpack.Decoder, typ string, fields int) (uint64, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return 0, err
	}
	if n != 2 {
		return 0, NewMalformedError(typ, "header has %d elements, want 2", n)
	}
	got, err := dec.DecodeInt()
	if err != nil {
		return 0, err
	}
	if got != fields {
		return 0, NewMalformedError(typ, "encoded %d fields, want %d", got, fields)
	}
	return dec.DecodeUint64()
}

// IsNil reports whether bit i is set in a nil mask.
func IsNil(mask uint64, i int) bool {
	return mask&(1<<uint(i)) != 0
}

// Marshal encodes v with its generated EncodeMsgpack method.
func Marshal(v msgpack.CustomEncoder) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := v.EncodeMsgpack(enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data into v with its generated DecodeMsgpack method.
func Unmarshal(data []byte, v msgpack.CustomDecoder) error {
	return v.DecodeMsgpack(msgpack.NewDecoder(bytes.NewReader(data)))
}
