package load

import (
	"strings"
)

// Error reports a problem in the analyzed source that generation cannot
// proceed past. Usage errors (no target struct, generic struct, malformed
// tag options) set Usage; everything else is an ambiguity in the model that
// the user has to fix by hand.
type Error struct {
	File    string
	Type    string
	Field   string
	Message string
	Usage   bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(": ")
	}
	if e.Type != "" {
		b.WriteString(e.Type)
		if e.Field != "" {
			b.WriteByte('.')
			b.WriteString(e.Field)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}
