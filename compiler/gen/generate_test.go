package gen

import (
	"errors"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/datagen/compiler/load"
)

const pointSrc = `package shapes

import (
	"reflect"

	"github.com/syssam/datagen"
)

// Point is a named counter.
type Point struct {
	name  *string ` + "`datagen:\"nonnull\"`" + `
	count int
}
`

func generate(t *testing.T, src string, opts ...Option) *Output {
	t.Helper()
	g, err := New(opts...)
	require.NoError(t, err)
	out, err := g.Generate("point.go", []byte(src))
	require.NoError(t, err)
	return out
}

func generateErr(t *testing.T, src string, opts ...Option) error {
	t.Helper()
	g, err := New(opts...)
	require.NoError(t, err)
	_, err = g.Generate("point.go", []byte(src))
	require.Error(t, err)
	return err
}

func requireParses(t *testing.T, content []byte) {
	t.Helper()
	_, err := parser.ParseFile(token.NewFileSet(), "point.go", content, parser.ParseComments)
	require.NoError(t, err, string(content))
}

func TestGenerate(t *testing.T) {
	out := generate(t, pointSrc, WithTokens("--constructor", "--getters", "--equality"))
	content := string(out.Content)
	requireParses(t, out.Content)

	assert.True(t, strings.HasPrefix(content, strings.TrimRight(pointSrc, "\n")+"\n\n// "+Sentinel), "prefix is preserved")
	assert.Contains(t, content, "// $ datagen --constructor --getters --equality point.go")
	assert.Contains(t, content, "func NewPoint(name *string, count int) (*Point, error) {")
	assert.Contains(t, content, `return nil, datagen.NewNilFieldError("Point", "name")`)
	assert.Contains(t, content, "func (p *Point) validate() error {")
	assert.Contains(t, content, "func (p *Point) Name() *string {")
	assert.Contains(t, content, "func (p *Point) Count() int {")
	assert.Contains(t, content, "func (p *Point) Equal(other *Point) bool {")
	assert.Contains(t, content, "reflect.DeepEqual(p.name, other.name)")
	assert.Contains(t, content, "p.count == other.count")
	assert.Contains(t, content, "func (p *Point) Hash() uint64 {")
	assert.NotContains(t, content, "SetName")
	assert.NotContains(t, content, "func (p *Point) String() string")

	assert.True(t, strings.HasSuffix(content, out.Stamp.String()+"\n"))
	assert.Equal(t, []string{"constructor", "getters", "equality"}, out.Stamp.Flags)
	assert.Equal(t, Fingerprint(out.Class), out.Stamp.Fingerprint)
	assert.ElementsMatch(t, []string{"github.com/syssam/datagen", "reflect"}, importPaths(out.Imports))
}

func importPaths(imports []*load.Import) []string {
	paths := make([]string, len(imports))
	for i, imp := range imports {
		paths[i] = imp.Path
	}
	return paths
}

func TestGenerateIdempotent(t *testing.T) {
	opts := []Option{WithTokens("constructor", "getters", "setters", "string", "equality", "withers", "builder", "build-upon", "fix-imports")}
	first := generate(t, pointSrc, opts...)
	second := generate(t, string(first.Content), opts...)
	assert.Equal(t, string(first.Content), string(second.Content))
	assert.False(t, second.ModelChanged())
}

func TestGeneratePreservesPrefixBytes(t *testing.T) {
	src := strings.Replace(pointSrc, "// Point is a named counter.", "// Point   is  oddly   spaced.\t", 1)
	out := generate(t, src, WithTokens("getters"))
	assert.True(t, strings.HasPrefix(string(out.Content), strings.TrimRight(src, "\n")))
}

func TestGenerateFieldDocs(t *testing.T) {
	src := `package shapes

type Counter struct {
	// count is the number of hits.
	// It is never negative; see a*/b for details.
	count int
}
`
	out := generate(t, src, WithTokens("constructor", "getters", "setters", "withers", "builder"))
	requireParses(t, out.Content)
	content := string(out.Content)
	region := content[strings.Index(content, Sentinel):]
	assert.NotContains(t, region, "/*")

	doc := "//\n// count is the number of hits.\n// It is never negative; see a*/b for details.\n"
	assert.Contains(t, region, "// Count returns the value of the count field.\n"+doc+"func (co *Counter) Count() int {")
	assert.Contains(t, region, "// SetCount sets the count field.\n"+doc+"func (co *Counter) SetCount(count int) *Counter {")
	assert.Contains(t, region, "// WithCount returns a copy of co with the count field replaced.\n"+doc+"func (co *Counter) WithCount(count int) *Counter {")
	assert.Contains(t, region, "// SetCount sets the count field.\n"+doc+"func (b *CounterBuilder) SetCount(count int) *CounterBuilder {")
	assert.Contains(t, region, "// a field holds an invalid value.\n//\n// count: count is the number of hits.\n// It is never negative; see a*/b for details.\nfunc NewCounter(count int) (*Counter, error) {")
}

func TestGenerateSuppression(t *testing.T) {
	manual := pointSrc + `
func (p *Point) Count() int { return p.count * 2 }
`
	t.Run("hand-written member replaces generated one", func(t *testing.T) {
		out := generate(t, manual, WithTokens("constructor", "getters", "equality"))
		content := string(out.Content)
		assert.Equal(t, 1, strings.Count(content, "func (p *Point) Count() int"))
		assert.Contains(t, content, "func (p *Point) Name() *string {")
		assert.Equal(t, []string{"Point.Count() int"}, out.Suppressed)
	})

	t.Run("removing it brings the generated one back", func(t *testing.T) {
		out := generate(t, manual, WithTokens("getters"))
		restored := strings.Replace(string(out.Content), "func (p *Point) Count() int { return p.count * 2 }\n", "", 1)
		again := generate(t, restored, WithTokens("getters"))
		assert.Equal(t, 1, strings.Count(string(again.Content), "func (p *Point) Count() int"))
		assert.Empty(t, again.Suppressed)
	})

	t.Run("different signature is an error", func(t *testing.T) {
		src := pointSrc + `
func (p *Point) Count() int64 { return int64(p.count) }
`
		err := generateErr(t, src, WithTokens("getters"))
		assert.True(t, errors.Is(err, ErrAmbiguousModel), err.Error())
		assert.Contains(t, err.Error(), "Point.Count() int64 conflicts with generated Point.Count() int")
	})

	t.Run("type suppresses generated type", func(t *testing.T) {
		src := pointSrc + `
type PointView interface{ Name() *string }
`
		out := generate(t, src, WithTokens("interface"))
		assert.Equal(t, 1, strings.Count(string(out.Content), "type PointView interface"))
		assert.NotContains(t, string(out.Content), "var _ PointView")
	})
}

func TestGenerateUpdateOnly(t *testing.T) {
	first := generate(t, pointSrc, WithTokens("constructor", "no-setters", "hidden-getters"))
	assert.Contains(t, string(first.Content), "func (p *Point) getName() *string {")

	t.Run("recovers flags from the stamp", func(t *testing.T) {
		out := generate(t, string(first.Content), WithUpdateOnly(true))
		assert.Equal(t, string(first.Content), string(out.Content))
	})

	t.Run("explicit tokens override recovered ones", func(t *testing.T) {
		out := generate(t, string(first.Content), WithUpdateOnly(true), WithTokens("--setters", "--getters"))
		content := string(out.Content)
		assert.Contains(t, content, "func (p *Point) SetCount(count int) *Point {")
		assert.Contains(t, content, "func (p *Point) Name() *string {")
		assert.Equal(t, []string{"constructor", "getters", "setters"}, out.Stamp.Flags)
	})

	t.Run("without update-only the stamp is ignored", func(t *testing.T) {
		out := generate(t, string(first.Content), WithTokens("setters"))
		assert.NotContains(t, string(out.Content), "getName")
	})

	t.Run("file without region is left alone", func(t *testing.T) {
		out := generate(t, pointSrc, WithUpdateOnly(true))
		assert.True(t, out.Noop)
		assert.Equal(t, pointSrc, string(out.Content))
	})
}

func TestGeneratePromotion(t *testing.T) {
	out := generate(t, pointSrc, WithTokens("build-upon"), WithTokens("fix-imports"))
	content := string(out.Content)
	requireParses(t, out.Content)
	assert.Contains(t, content, "func NewPoint(name *string, count int) (*Point, error) {")
	assert.Contains(t, content, "type PointBuilder struct {")
	assert.Contains(t, content, "func NewPointBuilder(name *string) *PointBuilder {")
	assert.Contains(t, content, "func (p *Point) ToBuilder() *PointBuilder {")
	assert.Equal(t, []string{"build-upon", "fix-imports"}, out.Stamp.Flags)
	assert.Equal(t, []string{"constructor", "builder"}, out.Flags.Promoted)
}

func TestGenerateInvalidField(t *testing.T) {
	src := `package shapes

type Job struct {
	id  int
	run func()
}
`
	err := generateErr(t, src, WithTokens("getters"))
	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr), err.Error())
	assert.Equal(t, "getters", genErr.Feature)
	assert.Equal(t, "run", genErr.Field)
	assert.True(t, errors.Is(err, ErrGenerationFailed))

	// Features that do not touch fields still work.
	out := generate(t, src, WithTokens("enums"))
	requireParses(t, out.Content)
}

func TestGenerateImports(t *testing.T) {
	src := `package shapes

type Point struct {
	name *string ` + "`datagen:\"nonnull\"`" + `
}
`
	t.Run("missing imports fail", func(t *testing.T) {
		err := generateErr(t, src, WithTokens("constructor"))
		assert.True(t, IsConfigError(err))
		assert.Contains(t, err.Error(), `"github.com/syssam/datagen"`)
	})

	t.Run("fix-imports adds them", func(t *testing.T) {
		out := generate(t, src, WithTokens("constructor", "fix-imports"))
		requireParses(t, out.Content)
		assert.Contains(t, string(out.Content), `import "github.com/syssam/datagen"`)

		again := generate(t, string(out.Content), WithTokens("constructor", "fix-imports"))
		assert.Equal(t, string(out.Content), string(again.Content))
	})

	t.Run("fix-imports keeps bytes outside the imports", func(t *testing.T) {
		body := "// Point   is  oddly   spaced.\ntype Point struct {\n\tname *string `datagen:\"nonnull\"`\n\tcount    int\n}\n\nvar x    = 1"
		out := generate(t, "package shapes // shapes\n\n"+body+"\n", WithTokens("constructor", "fix-imports"))
		requireParses(t, out.Content)
		assert.True(t, strings.HasPrefix(string(out.Content), "package shapes // shapes\n\nimport \"github.com/syssam/datagen\"\n\n"+body+"\n\n// "+Sentinel), string(out.Content))

		withImports := "package shapes\n\nimport (\n\t\"reflect\"\n)\n\n" + body + "\n\nvar _ = reflect.TypeOf"
		out = generate(t, withImports+"\n", WithTokens("constructor", "fix-imports"))
		requireParses(t, out.Content)
		assert.Contains(t, string(out.Content), `"github.com/syssam/datagen"`)
		assert.Contains(t, string(out.Content), ")\n\n"+body+"\n\nvar _ = reflect.TypeOf\n\n// "+Sentinel)
	})

	t.Run("fix-imports removes unused runtime imports", func(t *testing.T) {
		out := generate(t, src, WithTokens("constructor", "string", "fix-imports"))
		assert.Contains(t, string(out.Content), `"fmt"`)
		out = generate(t, string(out.Content), WithTokens("getters", "fix-imports"))
		assert.NotContains(t, string(out.Content), `"fmt"`)
		assert.NotContains(t, string(out.Content), `"github.com/syssam/datagen"`)
	})

	t.Run("aliased runtime import is reused", func(t *testing.T) {
		aliased := `package shapes

import dg "github.com/syssam/datagen"

type Point struct {
	name *string ` + "`datagen:\"nonnull\"`" + `
}
`
		out := generate(t, aliased, WithTokens("constructor"))
		assert.Contains(t, string(out.Content), `dg.NewNilFieldError("Point", "name")`)
	})
}

const shapeSrc = `package shapes

import (
	"time"
)

type Kind int

const (
	KindCircle Kind = iota
	KindSquare
)

//datagen:class
type Shape struct {
	name    string
	kind    Kind
	tags    []string       ` + "`datagen:\"nullable\"`" + `
	attrs   map[string]int ` + "`datagen:\"nonnull,default=map[string]int{}\"`" + `
	note    *string        ` + "`datagen:\"nullable\"`" + `
	size    int            ` + "`datagen:\"default=10\"`" + `
	created time.Time      ` + "`datagen:\"hidden\"`" + `
	cache   *string
	skipped chan int       ` + "`datagen:\"-\"`" + `
}

type Other struct{}

func (s *Shape) lazyInitCache() *string { v := s.name; return &v }

func (s *Shape) noteToString() string { return "note" }

func (s *Shape) onConstructed() error { return nil }
`

func TestGenerateAllFeatures(t *testing.T) {
	var tokens []string
	for _, f := range AllFeatures {
		tokens = append(tokens, f.Name)
	}
	out := generate(t, shapeSrc, WithTokens(tokens...), WithTokens("fix-imports"))
	content := string(out.Content)
	requireParses(t, out.Content)

	for _, want := range []string{
		// enums
		"func (k Kind) IsValid() bool {",
		"func KindValues() []Kind {",
		"func (k Kind) String() string {",
		// constructor
		"func NewShape(name string, kind Kind, tags []string, attrs map[string]int, note *string, size int, created time.Time) (*Shape, error) {",
		"s.attrs = map[string]int{}",
		"if err := s.onConstructed(); err != nil {",
		`datagen.NewInvalidValueError("Shape", "kind", s.kind)`,
		// copy-constructor
		"func (s *Shape) Clone() *Shape {",
		"c.tags = slices.Clone(s.tags)",
		"c.attrs = maps.Clone(s.attrs)",
		// getters
		"func (s *Shape) getCreated() time.Time {",
		"s.cache = s.lazyInitCache()",
		// setters
		"func (s *Shape) SetKind(kind Kind) *Shape {",
		"func (s *Shape) setCreated(created time.Time) *Shape {",
		// string
		"s.noteToString()",
		"datagen.Format(s.name)",
		// equality
		"s.kind == other.kind",
		"reflect.DeepEqual(s.created, other.created)",
		// for-each-field
		"func (s *Shape) ForEachField(fn func(name string, value any)) {",
		`fn("size", s.size)`,
		// withers
		"func (s *Shape) WithSize(size int) *Shape {",
		// codec
		"func (s *Shape) EncodeMsgpack(enc *msgpack.Encoder) error {",
		"func (s *Shape) DecodeMsgpack(dec *msgpack.Decoder) error {",
		`datagen.DecodeHeader(dec, "Shape", 7)`,
		"if !datagen.IsNil(nilMask, 1) {",
		// builder
		"type ShapeBuilder struct {",
		"func NewShapeBuilder() *ShapeBuilder {",
		"func (b *ShapeBuilder) AddTag(tag string) *ShapeBuilder {",
		"func (b *ShapeBuilder) AddAttr(key string, value int) *ShapeBuilder {",
		"func (b *ShapeBuilder) Build() (*Shape, error) {",
		"b.size = 10",
		// build-upon
		"0x7f,",
		// interface
		"type ShapeView interface {",
		"var _ ShapeView = (*Shape)(nil)",
	} {
		assert.Contains(t, content, want)
	}
	region := content[strings.Index(content, "// "+Sentinel):]
	assert.NotContains(t, region, "skipped")
	assert.NotContains(t, region, "SetCache")
	assert.Contains(t, content, `import (`)
	assert.Contains(t, content, `"github.com/vmihailenco/msgpack/v5"`)
}

func TestGenerateRestricted(t *testing.T) {
	out := generate(t, pointSrc, WithTokens("hidden-constructor", "hidden-builder", "hidden-equality", "fix-imports"))
	content := string(out.Content)
	assert.Contains(t, content, "func newPoint(name *string, count int) (*Point, error) {")
	assert.Contains(t, content, "type pointBuilder struct {")
	assert.Contains(t, content, "func (b *pointBuilder) build() (*Point, error) {")
	assert.Contains(t, content, "func newPointBuilder(name *string) *pointBuilder {")
	assert.Contains(t, content, "func (b *pointBuilder) setCount(count int) *pointBuilder {")
	assert.Contains(t, content, "func (p *Point) equal(other *Point) bool {")

	out = generate(t, pointSrc, WithTokens("builder", "builder-restricted-setters", "fix-imports"))
	assert.Contains(t, string(out.Content), "func (b *PointBuilder) setCount(count int) *PointBuilder {")
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		tokens []string
		is     error
		want   string
	}{
		{
			name:   "unknown token",
			src:    pointSrc,
			tokens: []string{"--teleport"},
			is:     ErrInvalidConfig,
		},
		{
			name:   "no struct",
			src:    "package shapes\n",
			tokens: []string{"getters"},
			is:     ErrInvalidConfig,
			want:   "no struct type declared",
		},
		{
			name:   "missing nullability",
			src:    "package shapes\n\ntype A struct {\n\tp *int\n}\n",
			tokens: []string{"getters"},
			is:     ErrAmbiguousModel,
			want:   "no nullability marker",
		},
		{
			name:   "field collides with generated method",
			src:    "package shapes\n\ntype A struct {\n\tString int\n}\n",
			tokens: []string{"string"},
			is:     ErrAmbiguousModel,
			want:   "collides with generated method",
		},
		{
			name:   "getters collide",
			src:    "package shapes\n\ntype A struct {\n\tname int\n\tName int\n}\n",
			tokens: []string{"getters"},
			is:     ErrGenerationFailed,
			want:   "generated twice",
		},
		{
			name:   "corrupt region",
			src:    "package shapes\n\ntype A struct{}\n\n// " + Sentinel + " v1.0.0. DO NOT EDIT.\n",
			tokens: []string{"getters"},
			is:     ErrAmbiguousModel,
			want:   "corrupt generated region",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := generateErr(t, tt.src, WithTokens(tt.tokens...))
			assert.True(t, errors.Is(err, tt.is), err.Error())
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCleanup(t *testing.T) {
	assert.Equal(t, "a\n\nb", cleanup("\n\na  \n\n\n\nb\t\n\n"))
}

func TestHeader(t *testing.T) {
	f, err := ResolveFlags([]string{"getters", "no-setters"}, nil)
	require.NoError(t, err)
	h := header("/tmp/x/point.go", f)
	assert.True(t, strings.HasPrefix(h, "// "+Sentinel+" v"))
	assert.True(t, strings.HasSuffix(h, "// $ datagen --getters --no-setters point.go"))
}

func TestFingerprint(t *testing.T) {
	a := &load.Class{Name: "A", Fields: []*load.Field{{Name: "x", Shape: "int"}}}
	b := &load.Class{Name: "A", Fields: []*load.Field{{Name: "x", Shape: "int64"}}}
	assert.Equal(t, Fingerprint(a), Fingerprint(a))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}
