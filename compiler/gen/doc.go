// Package gen generates the datagen region of a data class file.
//
// A run works on a single Go file and never touches anything but the
// region at its end:
//
//	hand-written prefix (package, imports, target struct, hooks)
//	        ↓  SplitRegion
//	   prefix + previous stamp
//	        ↓  ResolveFlags (explicit tokens over recovered ones)
//	   Flags
//	        ↓  load.Parse
//	   load.Class (fields, enums, hand-written members)
//	        ↓  feature generators, in registry order
//	   region: header, generated code, stamp
//	        ↓  Join (and fix-imports)
//	   new file content
//
// # Features
//
// Each Feature is generated by one function, producing exported members
// when enabled and unexported ones when restricted (hidden-). Requesting a
// feature enables the features it requires. A member the user already
// declared with the same name and signature is not generated; a member
// with the same name and another signature is an error.
//
// # Errors
//
// Failures match one of ErrInvalidConfig, ErrAmbiguousModel and
// ErrGenerationFailed. No file is written when a run fails.
//
// # Usage
//
//	g, err := gen.New(gen.WithTokens("constructor", "getters", "equality"))
//	if err != nil {
//		return err
//	}
//	res, err := g.Run(ctx, "point.go")
package gen
