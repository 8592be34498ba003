package gen

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/syssam/datagen/internal/version"
)

const (
	// Sentinel marks the first line of the generated region. It is
	// deliberately not of the form "Code generated ... DO NOT EDIT.", which
	// Go tools read as "the whole file is generated".
	Sentinel = "Code below generated by datagen"

	// StampPrefix starts the last line of the generated region.
	StampPrefix = "//datagen:generated"
)

// headerLine matches the sentinel line in full, so a user comment that
// merely mentions the tool is not taken for a region.
var headerLine = regexp.MustCompile(`^//\s*` + regexp.QuoteMeta(Sentinel) + ` v\S+\. DO NOT EDIT\.$`)

// Stamp is the machine-readable last line of a generated region. It
// records everything needed to regenerate the region in update-in-place
// mode:
//
//	//datagen:generated version=1.0.0 flags=constructor,no-setters fingerprint=<uuid>
type Stamp struct {
	Version     *semver.Version
	Flags       []string
	Fingerprint string
}

// String renders the stamp line.
func (s *Stamp) String() string {
	return fmt.Sprintf("%s version=%s flags=%s fingerprint=%s", StampPrefix, s.Version, strings.Join(s.Flags, ","), s.Fingerprint)
}

// ParseStamp parses a stamp line.
func ParseStamp(line string) (*Stamp, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), StampPrefix)
	if !ok {
		return nil, fmt.Errorf("not a stamp line")
	}
	s := &Stamp{}
	var hasVersion, hasFlags bool
	for _, kv := range strings.Fields(rest) {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("malformed stamp entry %q", kv)
		}
		switch key {
		case "version":
			v, err := semver.StrictNewVersion(value)
			if err != nil {
				return nil, fmt.Errorf("invalid stamp version %q: %w", value, err)
			}
			s.Version, hasVersion = v, true
		case "flags":
			hasFlags = true
			if value != "" {
				s.Flags = strings.Split(value, ",")
			}
		case "fingerprint":
			s.Fingerprint = value
		default:
			return nil, fmt.Errorf("unknown stamp entry %q", key)
		}
	}
	if !hasVersion || !hasFlags {
		return nil, fmt.Errorf("stamp is missing version or flags")
	}
	return s, nil
}

// Region is the result of splitting a file into hand-written prefix and
// previously generated suffix.
type Region struct {
	// Prefix is the preserved user content: everything before the
	// sentinel line, without trailing blank lines.
	Prefix []byte
	// Line is the 1-based line of the sentinel, or 0 if the file has no
	// generated region.
	Line int
	// Stamp is the recovered stamp of the previous run.
	Stamp *Stamp
}

// Found reports whether the file had a generated region.
func (r *Region) Found() bool { return r.Line > 0 }

// RecoveredFlags returns the tokens recorded by the previous run.
func (r *Region) RecoveredFlags() []string {
	if r.Stamp == nil {
		return nil
	}
	return r.Stamp.Flags
}

// SplitRegion separates src into the preserved prefix and the previously
// generated region. A region must be a suffix: exactly one sentinel line,
// followed by generated code and a stamp as the last non-blank line.
// Anything else is corrupt state and fails rather than being repaired.
func SplitRegion(filename string, src []byte) (*Region, error) {
	lines := bytes.Split(src, []byte("\n"))
	sentinel, stamp := -1, -1
	for i, line := range lines {
		text := string(bytes.TrimSpace(line))
		switch {
		case headerLine.MatchString(text):
			if sentinel >= 0 {
				return nil, corrupt(filename, fmt.Sprintf("duplicate generated region at lines %d and %d", sentinel+1, i+1))
			}
			sentinel = i
		case strings.HasPrefix(text, StampPrefix):
			if sentinel < 0 {
				return nil, corrupt(filename, fmt.Sprintf("stamp at line %d without a region header", i+1))
			}
			stamp = i
		}
	}
	if sentinel < 0 {
		return &Region{Prefix: trimTrailingBlank(src)}, nil
	}
	if stamp < 0 {
		return nil, corrupt(filename, fmt.Sprintf("generated region at line %d has no stamp", sentinel+1))
	}
	for i := stamp + 1; i < len(lines); i++ {
		if len(bytes.TrimSpace(lines[i])) > 0 {
			return nil, corrupt(filename, fmt.Sprintf("content after the generated region at line %d", i+1))
		}
	}
	s, err := ParseStamp(string(lines[stamp]))
	if err != nil {
		return nil, corrupt(filename, fmt.Sprintf("line %d: %v", stamp+1, err))
	}
	if !version.Compatible(s.Version) {
		return nil, NewConfigError("stamp", s.Version, fmt.Sprintf("region was generated by datagen %s, this is %s; upgrade datagen", s.Version, version.Version))
	}
	prefix := bytes.Join(lines[:sentinel], []byte("\n"))
	return &Region{
		Prefix: trimTrailingBlank(prefix),
		Line:   sentinel + 1,
		Stamp:  s,
	}, nil
}

// Join returns the file content for a prefix and a rendered region.
func Join(prefix []byte, region string) []byte {
	var buf bytes.Buffer
	buf.Grow(len(prefix) + len(region) + 3)
	buf.Write(prefix)
	buf.WriteString("\n\n")
	buf.WriteString(region)
	buf.WriteByte('\n')
	return buf.Bytes()
}

// trimTrailingBlank drops trailing blank lines and the final newline,
// leaving the end of the last non-blank line.
func trimTrailingBlank(b []byte) []byte {
	lines := bytes.Split(b, []byte("\n"))
	end := len(lines)
	for end > 0 && len(bytes.TrimSpace(lines[end-1])) == 0 {
		end--
	}
	return bytes.Join(lines[:end], []byte("\n"))
}

func corrupt(filename, msg string) error {
	return NewModelError(filename, "", "", "corrupt generated region: "+msg)
}
