package gen

import (
	"go/token"
	"strconv"
	"strings"

	"github.com/syssam/datagen/compiler/load"
)

// builderState holds the bookkeeping fields of a generated builder.
var builderState = names("mask", "done")

// reservedLocals are the identifiers generated bodies declare as locals
// or use as the builder receiver.
var reservedLocals = names("b", "c", "n", "v", "ok", "err", "enc", "dec", "other", "fn", "nilMask", "key", "value")

// builderField returns the struct field for the given name
// and ensures it doesn't conflict with Go keywords and other
// builder fields, and it is not exported.
func builderField(name string) string {
	_, ok := builderState[name]
	if ok || token.Lookup(name).IsKeyword() || token.IsExported(name) {
		return "_" + name
	}
	return name
}

func names(ids ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for i := range ids {
		m[ids[i]] = struct{}{}
	}
	return m
}

// unexport returns the restricted spelling of an exported member name.
//
//	NewPoint     => newPoint
//	IDValues     => idValues
func unexport(name string) string {
	return load.Camel(name)
}

// pickReceiver returns the receiver name for methods on typ: its first
// letter, its first two letters, or "recv", whichever is not taken.
func pickReceiver(typ string, taken func(string) bool) string {
	lower := []rune(strings.ToLower(typ))
	candidates := []string{string(lower[:1]), string(lower[:min(2, len(lower))]), "recv"}
	for _, c := range candidates {
		if _, ok := reservedLocals[c]; ok || taken(c) || token.Lookup(c).IsKeyword() {
			continue
		}
		return c
	}
	for i := 1; ; i++ {
		if c := "recv" + strconv.Itoa(i); !taken(c) {
			return c
		}
	}
}

// localName returns base, or base with a suffix, such that it is not taken.
func localName(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	if c := base + "Value"; !taken(c) {
		return c
	}
	for i := 2; ; i++ {
		if c := base + strconv.Itoa(i); !taken(c) {
			return c
		}
	}
}

// hexMask returns the literal with the low n bits set.
func hexMask(n int) string {
	if n <= 0 {
		return "0"
	}
	return "0x" + strconv.FormatUint(^uint64(0)>>(64-n), 16)
}
