package load

import (
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// RecvType is the receiver recorded for top-level type declarations, so a
// user-declared type shadows a generated one the same way a method does.
const RecvType = "type"

// Member is the signature of a hand-written declaration. Params and Results
// hold normalized type shapes, with package qualifiers replaced by their
// import paths.
type Member struct {
	Recv    string   `yaml:"recv,omitempty"`
	Name    string   `yaml:"name"`
	Params  []string `yaml:"params,omitempty"`
	Results []string `yaml:"results,omitempty"`
}

// Signature renders the member as "recv.name(params) (results)".
func (m *Member) Signature() string {
	var b strings.Builder
	if m.Recv != "" {
		b.WriteString(m.Recv)
		b.WriteByte('.')
	}
	b.WriteString(m.Name)
	if m.Recv == RecvType {
		return b.String()
	}
	b.WriteByte('(')
	b.WriteString(strings.Join(m.Params, ", "))
	b.WriteByte(')')
	switch len(m.Results) {
	case 0:
	case 1:
		b.WriteByte(' ')
		b.WriteString(m.Results[0])
	default:
		b.WriteString(" (")
		b.WriteString(strings.Join(m.Results, ", "))
		b.WriteByte(')')
	}
	return b.String()
}

// Matches reports whether the member has exactly the given shapes.
func (m *Member) Matches(params, results []string) bool {
	return slices.Equal(m.Params, params) && slices.Equal(m.Results, results)
}

// MemberSet is the set of existing declarations of a file, keyed by
// receiver and name. Go has no overloading, so a key identifies at most one
// member.
type MemberSet struct {
	list  []*Member
	index map[memberKey]*Member
}

type memberKey struct{ recv, name string }

// NewMemberSet returns a set holding the given members. Later duplicates of
// a key are ignored.
func NewMemberSet(members ...*Member) *MemberSet {
	s := &MemberSet{index: make(map[memberKey]*Member)}
	for _, m := range members {
		s.Add(m)
	}
	return s
}

// Add records m unless a member with the same key exists.
func (s *MemberSet) Add(m *Member) {
	k := memberKey{m.Recv, m.Name}
	if _, ok := s.index[k]; ok {
		return
	}
	s.index[k] = m
	s.list = append(s.list, m)
}

// Lookup returns the member declared on recv with the given name. Use ""
// for package-level functions and RecvType for type declarations.
func (s *MemberSet) Lookup(recv, name string) *Member {
	if s == nil {
		return nil
	}
	return s.index[memberKey{recv, name}]
}

// Len returns the number of members.
func (s *MemberSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.list)
}

// All returns the members in declaration order.
func (s *MemberSet) All() []*Member {
	if s == nil {
		return nil
	}
	return s.list
}

// MarshalYAML renders the set as a list of signatures.
func (s *MemberSet) MarshalYAML() (any, error) {
	sigs := make([]string, 0, s.Len())
	for _, m := range s.All() {
		sigs = append(sigs, m.Signature())
	}
	return sigs, nil
}

var _ yaml.Marshaler = (*MemberSet)(nil)
