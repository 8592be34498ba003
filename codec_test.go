package datagen_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/datagen"
)

// unixCodec stores a time.Time as unix seconds.
type unixCodec struct{}

func (unixCodec) EncodeValue(enc *msgpack.Encoder, v time.Time) error {
	return enc.EncodeInt(v.Unix())
}

func (unixCodec) DecodeValue(dec *msgpack.Decoder) (time.Time, error) {
	sec, err := dec.DecodeInt64()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0).UTC(), nil
}

var _ datagen.Codec[time.Time] = unixCodec{}

// sample mirrors the shape of a generated codec: one non-null field, one
// nullable field and one field with a custom codec.
type sample struct {
	name string
	note *string
	at   time.Time
}

func (s *sample) EncodeMsgpack(enc *msgpack.Encoder) error {
	var nilMask uint64
	if s.note == nil {
		nilMask |= 1 << 0
	}
	if err := datagen.EncodeHeader(enc, 3, nilMask); err != nil {
		return err
	}
	if err := enc.Encode(s.name); err != nil {
		return err
	}
	if s.note != nil {
		if err := enc.Encode(s.note); err != nil {
			return err
		}
	}
	return unixCodec{}.EncodeValue(enc, s.at)
}

func (s *sample) DecodeMsgpack(dec *msgpack.Decoder) error {
	nilMask, err := datagen.DecodeHeader(dec, "sample", 3)
	if err != nil {
		return err
	}
	if err := dec.Decode(&s.name); err != nil {
		return err
	}
	if !datagen.IsNil(nilMask, 0) {
		if err := dec.Decode(&s.note); err != nil {
			return err
		}
	}
	s.at, err = unixCodec{}.DecodeValue(dec)
	return err
}

var _ datagen.Encodable = (*sample)(nil)

func TestCodecRoundTrip(t *testing.T) {
	note := "hello"
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("AllFieldsSet", func(t *testing.T) {
		in := &sample{name: "a", note: &note, at: at}
		data, err := datagen.Marshal(in)
		require.NoError(t, err)

		out := &sample{}
		require.NoError(t, datagen.Unmarshal(data, out))
		assert.Equal(t, "a", out.name)
		require.NotNil(t, out.note)
		assert.Equal(t, note, *out.note)
		assert.True(t, at.Equal(out.at))
	})

	t.Run("NilFieldOmitted", func(t *testing.T) {
		in := &sample{name: "b", at: at}
		data, err := datagen.Marshal(in)
		require.NoError(t, err)

		out := &sample{}
		require.NoError(t, datagen.Unmarshal(data, out))
		assert.Equal(t, "b", out.name)
		assert.Nil(t, out.note)
	})
}

func TestDecodeHeader(t *testing.T) {
	t.Run("FieldCountMismatch", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, datagen.EncodeHeader(msgpack.NewEncoder(&buf), 4, 0))

		_, err := datagen.DecodeHeader(msgpack.NewDecoder(&buf), "sample", 3)
		require.Error(t, err)
		assert.True(t, errors.Is(err, datagen.ErrMalformed))
		assert.Contains(t, err.Error(), "encoded 4 fields, want 3")
	})

	t.Run("WrongArrayLength", func(t *testing.T) {
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		require.NoError(t, enc.EncodeArrayLen(3))

		_, err := datagen.DecodeHeader(msgpack.NewDecoder(&buf), "sample", 3)
		require.Error(t, err)
		assert.True(t, errors.Is(err, datagen.ErrMalformed))
	})

	t.Run("NilMaskPreserved", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, datagen.EncodeHeader(msgpack.NewEncoder(&buf), 2, 0b10))

		mask, err := datagen.DecodeHeader(msgpack.NewDecoder(&buf), "sample", 2)
		require.NoError(t, err)
		assert.False(t, datagen.IsNil(mask, 0))
		assert.True(t, datagen.IsNil(mask, 1))
	})
}
