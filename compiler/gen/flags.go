package gen

import (
	"fmt"
	"slices"
	"strings"
)

// Resolution is the outcome of flag resolution for one feature.
type Resolution int

const (
	// Absent features are not generated.
	Absent Resolution = iota
	// Enabled features are generated with exported members.
	Enabled
	// Restricted features are generated with unexported members.
	Restricted
)

// String returns the resolution name.
func (r Resolution) String() string {
	switch r {
	case Enabled:
		return "enabled"
	case Restricted:
		return "restricted"
	default:
		return "absent"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Resolution) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// Token prefixes.
const (
	prefixNo     = "no-"
	prefixHidden = "hidden-"
)

// Token is a parsed flag token: [--][no-|hidden-]name.
type Token struct {
	Name       string
	Resolution Resolution
	modifier   bool
}

// String renders the token in canonical form, without leading dashes.
func (t Token) String() string {
	switch t.Resolution {
	case Absent:
		return prefixNo + t.Name
	case Restricted:
		return prefixHidden + t.Name
	default:
		return t.Name
	}
}

// ParseToken parses a single raw token.
func ParseToken(raw string) (Token, error) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "--")
	t := Token{Resolution: Enabled}
	switch {
	case strings.HasPrefix(s, prefixNo):
		t.Resolution, s = Absent, strings.TrimPrefix(s, prefixNo)
	case strings.HasPrefix(s, prefixHidden):
		t.Resolution, s = Restricted, strings.TrimPrefix(s, prefixHidden)
	}
	t.Name = s
	if f, ok := FeatureByName(s); ok {
		if t.Resolution == Restricted && !f.Restrictable {
			return Token{}, NewConfigError("token", raw, fmt.Sprintf("feature %s cannot be restricted", f.Name))
		}
		return t, nil
	}
	if _, ok := ModifierByName(s); ok {
		if t.Resolution == Restricted {
			return Token{}, NewConfigError("token", raw, "modifiers cannot be restricted")
		}
		t.modifier = true
		return t, nil
	}
	return Token{}, NewConfigError("token", raw, "unknown feature or modifier")
}

// Flags is the resolved flag set of one run.
type Flags struct {
	features  map[string]Resolution
	modifiers map[string]bool
	requested map[string]Token
	// Promoted lists the features enabled only because a requested
	// feature requires them, in generation order.
	Promoted []string
}

// Resolution returns the resolution of the named feature.
func (f *Flags) Resolution(name string) Resolution {
	return f.features[name]
}

// Enabled reports whether the feature is generated at all.
func (f *Flags) Enabled(feature Feature) bool {
	return f.features[feature.Name] != Absent
}

// Restricted reports whether the feature is generated with unexported
// members.
func (f *Flags) Restricted(feature Feature) bool {
	return f.features[feature.Name] == Restricted
}

// Modifier reports whether the global modifier is on.
func (f *Flags) Modifier(m Modifier) bool {
	return f.modifiers[m.Name]
}

// Tokens returns the requested tokens, before promotion, in canonical
// order: features in generation order, then modifiers. Resolving these
// tokens again yields the same Flags.
func (f *Flags) Tokens() []string {
	var tokens []string
	for _, feat := range AllFeatures {
		if t, ok := f.requested[feat.Name]; ok {
			tokens = append(tokens, t.String())
		}
	}
	for _, m := range AllModifiers {
		if t, ok := f.requested[m.Name]; ok {
			tokens = append(tokens, t.String())
		}
	}
	return tokens
}

// EnabledFeatures returns the features to generate, in generation order.
func (f *Flags) EnabledFeatures() []Feature {
	var features []Feature
	for _, feat := range AllFeatures {
		if f.Enabled(feat) {
			features = append(features, feat)
		}
	}
	return features
}

// ResolveFlags resolves explicit tokens on top of the tokens recovered from
// a previous stamp. An explicit token overrides the recovered token of the
// same name; recovered tokens not re-specified keep their resolution. After
// individual resolution, prerequisites of present features are promoted
// to Enabled until a fixed point is reached, even when explicitly disabled.
func ResolveFlags(explicit, recovered []string) (*Flags, error) {
	f := &Flags{
		features:  make(map[string]Resolution, len(AllFeatures)),
		modifiers: make(map[string]bool, len(AllModifiers)),
		requested: make(map[string]Token),
	}
	for _, raw := range recovered {
		t, err := ParseToken(raw)
		if err != nil {
			return nil, NewConfigError("stamp", raw, "recovered token is not understood by this version")
		}
		f.requested[t.Name] = t
	}
	seen := make(map[string]Token)
	for _, raw := range explicit {
		t, err := ParseToken(raw)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[t.Name]; ok && prev.Resolution != t.Resolution {
			return nil, NewConfigError("token", raw, fmt.Sprintf("conflicts with %s", prev))
		}
		seen[t.Name] = t
		f.requested[t.Name] = t
	}
	for name, t := range f.requested {
		if t.modifier {
			f.modifiers[name] = t.Resolution == Enabled
		} else {
			f.features[name] = t.Resolution
		}
	}
	f.promote()
	for _, m := range AllModifiers {
		if f.modifiers[m.Name] && m.Requires != "" && f.features[m.Requires] == Absent {
			return nil, NewConfigError("token", m.Name, fmt.Sprintf("requires feature %s", m.Requires))
		}
	}
	return f, nil
}

// promote enables absent prerequisites of present features.
func (f *Flags) promote() {
	for changed := true; changed; {
		changed = false
		for _, feat := range AllFeatures {
			if f.features[feat.Name] == Absent {
				continue
			}
			for _, req := range feat.Requires {
				if f.features[req] != Absent {
					continue
				}
				f.features[req] = Enabled
				f.Promoted = append(f.Promoted, req)
				changed = true
			}
		}
	}
	slices.SortFunc(f.Promoted, func(a, b string) int {
		return featureIndex(a) - featureIndex(b)
	})
}
