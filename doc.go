// Package datagen is the runtime support package for code generated by the
// datagen tool.
//
// datagen appends mechanically derivable members (constructors, accessors,
// equality, string representation, a msgpack codec, withers and a builder)
// to a hand-written Go struct. The generated region lives at the end of the
// same source file and is fully rewritten on every run:
//
//	//datagen:class
//	type Point struct {
//		name  string   `datagen:"nonnull"`
//		count int
//		tags  []string `datagen:"nullable,plural=tag"`
//	}
//
//	// $ datagen --constructor --getters --builder point.go
//
// Generated code only depends on this package for its error values and
// codec helpers. The generator itself lives in compiler/gen and the model
// extraction in compiler/load.
package datagen
