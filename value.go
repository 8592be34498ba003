package datagen

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/fnv"
	"math"
	"reflect"
)

// Format renders a field value for generated String methods. Values
// implementing fmt.Stringer use it; non-nil pointers are rendered as the
// value they point to and nil as "nil".
func Format(v any) string {
	rv := reflect.ValueOf(v)
	for {
		if !rv.IsValid() {
			return "nil"
		}
		switch rv.Kind() {
		case reflect.Pointer, reflect.Interface:
			if rv.IsNil() {
				return "nil"
			}
		}
		if s, ok := rv.Interface().(fmt.Stringer); ok {
			return s.String()
		}
		if rv.Kind() != reflect.Pointer {
			return fmt.Sprint(rv.Interface())
		}
		rv = rv.Elem()
	}
}

// maxHashDepth bounds the pointer chain Hash follows, so cyclic values
// terminate.
const maxHashDepth = 32

// Hash returns an FNV-1a hash of the given values that agrees with the
// equality used by generated Equal methods: values that are == or
// reflect.DeepEqual hash the same. Pointers are followed, and map
// entries are combined independently of iteration order.
func Hash(values ...any) uint64 {
	h := fnv.New64a()
	for _, v := range values {
		hashValue(h, reflect.ValueOf(v), 0)
	}
	return h.Sum64()
}

func hashValue(h hash.Hash64, v reflect.Value, depth int) {
	if !v.IsValid() {
		writeUint(h, 0)
		return
	}
	if depth > maxHashDepth {
		return
	}
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			writeUint(h, 1)
		} else {
			writeUint(h, 2)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		writeUint(h, uint64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		writeUint(h, v.Uint())
	case reflect.Float32, reflect.Float64:
		writeFloat(h, v.Float())
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		writeFloat(h, real(c))
		writeFloat(h, imag(c))
	case reflect.String:
		writeUint(h, uint64(v.Len()))
		h.Write([]byte(v.String()))
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			writeUint(h, 0)
			return
		}
		writeUint(h, 1)
		hashValue(h, v.Elem(), depth+1)
	case reflect.Slice, reflect.Array:
		writeUint(h, uint64(v.Len()))
		for i := range v.Len() {
			hashValue(h, v.Index(i), depth+1)
		}
	case reflect.Map:
		var sum uint64
		iter := v.MapRange()
		for iter.Next() {
			e := fnv.New64a()
			hashValue(e, iter.Key(), depth+1)
			hashValue(e, iter.Value(), depth+1)
			sum += e.Sum64()
		}
		writeUint(h, uint64(v.Len()))
		writeUint(h, sum)
	case reflect.Struct:
		for i := range v.NumField() {
			hashValue(h, v.Field(i), depth+1)
		}
	case reflect.Chan, reflect.UnsafePointer:
		writeUint(h, uint64(v.Pointer()))
	case reflect.Func:
		// Funcs are only ever equal when both are nil.
		if v.IsNil() {
			writeUint(h, 0)
		} else {
			writeUint(h, 1)
		}
	}
}

func writeUint(h hash.Hash64, x uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], x)
	h.Write(buf[:])
}

func writeFloat(h hash.Hash64, f float64) {
	if f == 0 {
		// -0 == +0
		f = 0
	}
	writeUint(h, math.Float64bits(f))
}
