package load

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// TagKey is the struct tag key read by datagen.
const TagKey = "datagen"

// options are the parsed `datagen:"..."` tag options of a field.
type options struct {
	ignore   bool
	nonnull  bool
	nullable bool
	enum     bool
	hidden   bool
	plural   string
	codec    string
	def      string
}

// parseTag parses the datagen options of a raw struct tag literal. The
// `default=` option consumes the rest of the tag, so it must come last.
func parseTag(lit string) (*options, error) {
	opts := &options{}
	if lit == "" {
		return opts, nil
	}
	raw, err := strconv.Unquote(lit)
	if err != nil {
		return nil, fmt.Errorf("malformed struct tag %s", lit)
	}
	value, ok := reflect.StructTag(raw).Lookup(TagKey)
	if !ok {
		return opts, nil
	}
	if value == "-" {
		opts.ignore = true
		return opts, nil
	}
	for value != "" {
		var opt string
		if strings.HasPrefix(value, "default=") {
			opt, value = value, ""
		} else if i := strings.IndexByte(value, ','); i >= 0 {
			opt, value = value[:i], value[i+1:]
		} else {
			opt, value = value, ""
		}
		opt = strings.TrimSpace(opt)
		key, arg, hasArg := strings.Cut(opt, "=")
		switch {
		case key == "nonnull" && !hasArg:
			opts.nonnull = true
		case key == "nullable" && !hasArg:
			opts.nullable = true
		case key == "enum" && !hasArg:
			opts.enum = true
		case key == "hidden" && !hasArg:
			opts.hidden = true
		case key == "plural" && arg != "":
			opts.plural = arg
		case key == "codec" && arg != "":
			opts.codec = arg
		case key == "default" && strings.TrimSpace(arg) != "":
			opts.def = strings.TrimSpace(arg)
		case opt == "":
		default:
			return nil, fmt.Errorf("unknown %s tag option %q", TagKey, opt)
		}
	}
	if opts.nonnull && opts.nullable {
		return nil, fmt.Errorf("%s tag options nonnull and nullable are mutually exclusive", TagKey)
	}
	return opts, nil
}
