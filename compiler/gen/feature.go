package gen

import (
	"fmt"
)

var (
	// FeatureEnums generates IsValid and a values list for every local
	// enum-like type used by a field.
	FeatureEnums = Feature{
		Name:         "enums",
		Description:  "IsValid and <Enum>Values helpers for local enum-like types",
		Restrictable: true,
	}

	// FeatureConstructor generates New<T> and the validate method used by
	// every feature that creates values.
	FeatureConstructor = Feature{
		Name:         "constructor",
		Description:  "New<T> constructor validating non-null and enum fields",
		Restrictable: true,
	}

	// FeatureCopyConstructor generates Clone.
	FeatureCopyConstructor = Feature{
		Name:         "copy-constructor",
		Description:  "Clone method copying slices and maps",
		Restrictable: true,
	}

	// FeatureGetters generates one accessor per field.
	FeatureGetters = Feature{
		Name:         "getters",
		Description:  "Accessor per field, honoring lazy-init hooks",
		Restrictable: true,
	}

	// FeatureSetters generates chainable mutators.
	FeatureSetters = Feature{
		Name:         "setters",
		Description:  "Chainable Set<Field> mutators",
		Restrictable: true,
	}

	// FeatureString generates String. It is part of fmt.Stringer and cannot
	// be restricted.
	FeatureString = Feature{
		Name:        "string",
		Description: "String method rendering every field",
	}

	// FeatureEquality generates Equal and Hash.
	FeatureEquality = Feature{
		Name:         "equality",
		Description:  "Equal and Hash methods comparing fields by value",
		Restrictable: true,
	}

	// FeatureForEachField generates ForEachField.
	FeatureForEachField = Feature{
		Name:         "for-each-field",
		Description:  "ForEachField visiting every field name and value",
		Restrictable: true,
	}

	// FeatureWithers generates immutable With<Field> updates built on the
	// constructor.
	FeatureWithers = Feature{
		Name:         "withers",
		Description:  "With<Field> methods returning modified copies",
		Requires:     []string{"constructor"},
		Restrictable: true,
	}

	// FeatureCodec generates msgpack EncodeMsgpack/DecodeMsgpack. The method
	// names are fixed by msgpack, so the feature cannot be restricted.
	FeatureCodec = Feature{
		Name:        "codec",
		Description: "msgpack encoder and decoder honoring per-field hooks",
		Requires:    []string{"constructor"},
	}

	// FeatureBuilder generates a fluent builder.
	FeatureBuilder = Feature{
		Name:         "builder",
		Description:  "<T>Builder with setters, collection adders and Build",
		Requires:     []string{"constructor"},
		Restrictable: true,
	}

	// FeatureBuildUpon generates ToBuilder.
	FeatureBuildUpon = Feature{
		Name:         "build-upon",
		Description:  "ToBuilder method seeding a builder from an existing value",
		Requires:     []string{"builder"},
		Restrictable: true,
	}

	// FeatureInterface generates a read-only interface of the getters.
	FeatureInterface = Feature{
		Name:         "interface",
		Description:  "<T>View interface listing the getters",
		Requires:     []string{"getters"},
		Restrictable: true,
	}

	// AllFeatures holds every feature in generation order. A feature may
	// only require features listed before it.
	AllFeatures = []Feature{
		FeatureEnums,
		FeatureConstructor,
		FeatureCopyConstructor,
		FeatureGetters,
		FeatureSetters,
		FeatureString,
		FeatureEquality,
		FeatureForEachField,
		FeatureWithers,
		FeatureCodec,
		FeatureBuilder,
		FeatureBuildUpon,
		FeatureInterface,
	}
)

var (
	// ModifierBuilderRestrictedSetters makes every builder setter and adder
	// unexported.
	ModifierBuilderRestrictedSetters = Modifier{
		Name:        "builder-restricted-setters",
		Description: "Unexported builder setters and adders",
		Requires:    "builder",
	}

	// ModifierFixImports adds the imports required by the generated region
	// to the file's import block, and drops generator imports that are no
	// longer used.
	ModifierFixImports = Modifier{
		Name:        "fix-imports",
		Description: "Add imports required by generated code to the file",
	}

	// AllModifiers holds every global modifier in canonical order.
	AllModifiers = []Modifier{
		ModifierBuilderRestrictedSetters,
		ModifierFixImports,
	}
)

// A Feature is one derivable capability.
type Feature struct {
	// Name of the feature, as used in tokens and in the stamp.
	Name string

	// A Description of this feature.
	Description string

	// Requires lists the features this one depends on. A requested feature
	// promotes its absent prerequisites to enabled.
	Requires []string

	// Restrictable features accept the hidden- prefix.
	Restrictable bool
}

// A Modifier is a global option recorded in the stamp next to features.
type Modifier struct {
	Name        string
	Description string
	// Requires names a feature that must be present after promotion.
	Requires string
}

// FeatureByName returns the feature with the given name.
func FeatureByName(name string) (Feature, bool) {
	for _, f := range AllFeatures {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// ModifierByName returns the modifier with the given name.
func ModifierByName(name string) (Modifier, bool) {
	for _, m := range AllModifiers {
		if m.Name == name {
			return m, true
		}
	}
	return Modifier{}, false
}

// featureIndex returns the position of the feature in AllFeatures, or -1.
func featureIndex(name string) int {
	for i, f := range AllFeatures {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func init() {
	if err := validateFeatures(AllFeatures, AllModifiers); err != nil {
		panic(err)
	}
}

// validateFeatures checks that names are unique and that every dependency
// edge points to a known feature generated earlier, which makes the
// relation acyclic and the registry order a valid generation order.
func validateFeatures(features []Feature, modifiers []Modifier) error {
	pos := make(map[string]int, len(features))
	for i, f := range features {
		if _, ok := pos[f.Name]; ok {
			return fmt.Errorf("gen: duplicate feature %q", f.Name)
		}
		pos[f.Name] = i
		for _, req := range f.Requires {
			j, ok := pos[req]
			switch {
			case req == f.Name:
				return fmt.Errorf("gen: feature %q requires itself", f.Name)
			case !ok:
				return fmt.Errorf("gen: feature %q requires %q, which is unknown or generated later", f.Name, req)
			case j >= i:
				return fmt.Errorf("gen: feature %q requires %q, which is generated later", f.Name, req)
			}
		}
	}
	for _, m := range modifiers {
		if _, ok := pos[m.Name]; ok {
			return fmt.Errorf("gen: modifier %q shadows a feature", m.Name)
		}
		if _, ok := pos[m.Requires]; m.Requires != "" && !ok {
			return fmt.Errorf("gen: modifier %q requires unknown feature %q", m.Name, m.Requires)
		}
	}
	return nil
}
