package load

import (
	"go/token"
	"strings"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCaser upper-cases the first letter of a word and leaves the rest
// untouched, so "userName" stays "UserName".
var titleCaser = cases.Title(language.English, cases.NoLower)

// initialisms lists the words rendered in all caps when they make up a
// whole word of an exported identifier.
var initialisms = map[string]string{
	"api":  "API",
	"dns":  "DNS",
	"html": "HTML",
	"http": "HTTP",
	"id":   "ID",
	"ip":   "IP",
	"json": "JSON",
	"sql":  "SQL",
	"tcp":  "TCP",
	"ttl":  "TTL",
	"uid":  "UID",
	"uri":  "URI",
	"url":  "URL",
	"uuid": "UUID",
	"xml":  "XML",
}

// Pascal returns the exported form of an identifier. Underscores separate
// words, and words that are well-known initialisms are upper-cased:
//
//	name      => Name
//	user_id   => UserID
//	httpAddr  => HttpAddr
//	url       => URL
func Pascal(s string) string {
	var b strings.Builder
	for _, w := range strings.Split(s, "_") {
		if w == "" {
			continue
		}
		if up, ok := initialisms[strings.ToLower(w)]; ok {
			b.WriteString(up)
			continue
		}
		b.WriteString(titleCaser.String(w))
	}
	return b.String()
}

// Camel returns the unexported form of an identifier.
//
//	Name    => name
//	UserID  => userID
//	URL     => url
func Camel(s string) string {
	p := Pascal(s)
	if p == "" {
		return p
	}
	if up, ok := initialisms[strings.ToLower(p)]; ok && up == p {
		return strings.ToLower(p)
	}
	for word, up := range initialisms {
		if strings.HasPrefix(p, up) && len(p) > len(up) && token.IsExported(p[len(up):]) {
			return word + p[len(up):]
		}
	}
	return strings.ToLower(p[:1]) + p[1:]
}

// Singular returns the singular form of a plural noun, or "" if the word has
// no distinct singular form ("data", "info").
func Singular(s string) string {
	sg := inflect.Singularize(s)
	if sg == s {
		return ""
	}
	return sg
}

// Safe makes sure an identifier does not collide with a Go keyword or a
// predeclared identifier that generated code depends on.
func Safe(name string) string {
	if token.Lookup(name).IsKeyword() || predeclared[name] {
		return "_" + name
	}
	return name
}

var predeclared = map[string]bool{
	"any":    true,
	"append": true,
	"err":    true,
	"len":    true,
	"make":   true,
	"new":    true,
	"nil":    true,
	"string": true,
}
