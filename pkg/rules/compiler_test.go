package rules

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mike10004/har-replay-proxy/pkg/har"
)

func compileOne(t *testing.T, cfg *Config) *Rules {
	t.Helper()
	r, err := Compile(cfg)
	require.NoError(t, err)
	return r
}

func TestCompileRejectsUnsupportedVersion(t *testing.T) {
	for _, version := range []int{0, 2, -1} {
		_, err := Compile(&Config{Version: version})
		assert.ErrorIs(t, err, ErrUnsupportedVersion, "version %d", version)
	}
}

func TestCompileEmptyListsDefaultToNoRules(t *testing.T) {
	r := compileOne(t, &Config{Version: Version})
	assert.Empty(t, r.Mappings)
	assert.Empty(t, r.Replacements)
	assert.Empty(t, r.HeaderTransforms)

	_, ok := r.ResolvePath("http://example.com/anything")
	assert.False(t, ok)
	assert.Equal(t, "body", r.ApplyReplacements("body", nil))
	name, value := r.TransformHeader("X-Test", "1")
	assert.Equal(t, "X-Test", name)
	assert.Equal(t, "1", value)
}

func TestMappingRegexWithGroups(t *testing.T) {
	r := compileOne(t, &Config{
		Version: Version,
		Mappings: []MappingSpec{
			{Match: Pattern{Kind: PatternRegex, Value: `.*/static/(.*)`}, Path: "./public/$1"},
		},
	})

	dest, ok := r.ResolvePath("http://x/static/app.js")
	require.True(t, ok)
	assert.Equal(t, "./public/app.js", dest)

	_, ok = r.ResolvePath("http://x/api/users")
	assert.False(t, ok)
}

func TestMappingLiteral(t *testing.T) {
	r := compileOne(t, &Config{
		Version: Version,
		Mappings: []MappingSpec{
			{Match: Pattern{Kind: PatternLiteral, Value: "http://x/favicon.ico"}, Path: "icons/favicon.ico"},
		},
	})

	dest, ok := r.ResolvePath("http://x/favicon.ico")
	require.True(t, ok)
	assert.Equal(t, "icons/favicon.ico", dest)

	_, ok = r.ResolvePath("http://x/favicon.ico?v=2")
	assert.False(t, ok)
}

func TestMappingGlobMatchesURLPath(t *testing.T) {
	r := compileOne(t, &Config{
		Version: Version,
		Mappings: []MappingSpec{
			{Match: Pattern{Kind: PatternGlob, Value: "/assets/**"}, Path: "local/assets.bundle"},
		},
	})

	dest, ok := r.ResolvePath("http://x/assets/fonts/roboto.woff2?cache=1")
	require.True(t, ok)
	assert.Equal(t, "local/assets.bundle", dest)

	_, ok = r.ResolvePath("http://x/api/assets-list")
	assert.False(t, ok)
}

func TestMappingFirstMatchWins(t *testing.T) {
	r := compileOne(t, &Config{
		Version: Version,
		Mappings: []MappingSpec{
			{Match: Pattern{Kind: PatternRegex, Value: `.*/app\.js`}, Path: "first.js"},
			{Match: Pattern{Kind: PatternRegex, Value: `.*\.js`}, Path: "second.js"},
		},
	})

	dest, ok := r.ResolvePath("http://x/app.js")
	require.True(t, ok)
	assert.Equal(t, "first.js", dest)
}

func TestCompileMappingErrors(t *testing.T) {
	tests := []struct {
		name string
		spec MappingSpec
		want error
	}{
		{
			name: "bad regex",
			spec: MappingSpec{Match: Pattern{Kind: PatternRegex, Value: "[unclosed"}, Path: "x"},
			want: ErrBadPattern,
		},
		{
			name: "missing destination",
			spec: MappingSpec{Match: Pattern{Kind: PatternLiteral, Value: "http://x/"}},
			want: ErrBadSpec,
		},
		{
			name: "var matcher not allowed",
			spec: MappingSpec{Match: Pattern{Kind: PatternVar, Value: "request.path"}, Path: "x"},
			want: ErrBadSpec,
		},
		{
			name: "no matcher",
			spec: MappingSpec{Path: "x"},
			want: ErrBadSpec,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(&Config{Version: Version, Mappings: []MappingSpec{tt.spec}})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReplacementLiteralReplacesAllOccurrences(t *testing.T) {
	r := compileOne(t, &Config{
		Version: Version,
		Replacements: []ReplacementSpec{
			{Match: Pattern{Kind: PatternLiteral, Value: "https://api.example.com"}, Replace: "http://localhost:8080"},
		},
	})

	in := `{"a":"https://api.example.com/x","b":"https://api.example.com/y"}`
	want := `{"a":"http://localhost:8080/x","b":"http://localhost:8080/y"}`
	assert.Equal(t, want, r.ApplyReplacements(in, nil))
}

func TestReplacementNonMatchingIsIdentity(t *testing.T) {
	r := compileOne(t, &Config{
		Version: Version,
		Replacements: []ReplacementSpec{
			{Match: Pattern{Kind: PatternLiteral, Value: "absent-token"}, Replace: "xxx"},
			{Match: Pattern{Kind: PatternRegex, Value: `never-\d+`}, Replace: "yyy"},
		},
	})

	in := "nothing here matches either rule"
	assert.Equal(t, in, r.ApplyReplacements(in, nil))
}

func TestReplacementRegexWithGroups(t *testing.T) {
	r := compileOne(t, &Config{
		Version: Version,
		Replacements: []ReplacementSpec{
			{Match: Pattern{Kind: PatternRegex, Value: `sessionId=(\w+)`}, Replace: "sessionId=frozen-$1"},
		},
	})

	got := r.ApplyReplacements("a sessionId=abc b sessionId=def", nil)
	assert.Equal(t, "a sessionId=frozen-abc b sessionId=frozen-def", got)
}

func TestReplacementVarUsesContextField(t *testing.T) {
	r := compileOne(t, &Config{
		Version: Version,
		Replacements: []ReplacementSpec{
			{Match: Pattern{Kind: PatternVar, Value: "request.query.callback"}, Replace: "jsonpShim"},
		},
	})

	req := httptest.NewRequest("GET", "http://x/data?callback=cb123", nil)
	ctx := &Context{Request: req}

	got := r.ApplyReplacements(`cb123({"ok":true})`, ctx)
	assert.Equal(t, `jsonpShim({"ok":true})`, got)
}

func TestReplacementVarAbsentFieldIsNoOp(t *testing.T) {
	r := compileOne(t, &Config{
		Version: Version,
		Replacements: []ReplacementSpec{
			{Match: Pattern{Kind: PatternVar, Value: "request.query.callback"}, Replace: "jsonpShim"},
		},
	})

	req := httptest.NewRequest("GET", "http://x/data", nil)
	in := `cb123({"ok":true})`
	assert.Equal(t, in, r.ApplyReplacements(in, &Context{Request: req}))
	assert.Equal(t, in, r.ApplyReplacements(in, nil))
}

func TestReplacementChainAppliesInOrder(t *testing.T) {
	r := compileOne(t, &Config{
		Version: Version,
		Replacements: []ReplacementSpec{
			{Match: Pattern{Kind: PatternLiteral, Value: "a"}, Replace: "b"},
			{Match: Pattern{Kind: PatternLiteral, Value: "b"}, Replace: "c"},
		},
	})

	// The second rule consumes the first rule's output.
	assert.Equal(t, "cc", r.ApplyReplacements("ab", nil))
}

func TestHeaderTransformLiteralNameValueImage(t *testing.T) {
	r := compileOne(t, &Config{
		Version: Version,
		ResponseHeaderTransforms: []HeaderTransformSpec{
			{Name: &Pattern{Kind: PatternLiteral, Value: "foo"}, ValueImage: "cap"},
		},
	})

	name, value := r.TransformHeader("foo", "000")
	assert.Equal(t, "foo", name)
	assert.Equal(t, "cap", value)

	// Literal name matching is case-insensitive; casing is preserved.
	name, value = r.TransformHeader("Foo", "000")
	assert.Equal(t, "Foo", name)
	assert.Equal(t, "cap", value)

	// Non-matching headers pass through untouched.
	name, value = r.TransformHeader("bar", "000")
	assert.Equal(t, "bar", name)
	assert.Equal(t, "000", value)
}

func TestHeaderTransformRegexNameWithGroups(t *testing.T) {
	r := compileOne(t, &Config{
		Version: Version,
		ResponseHeaderTransforms: []HeaderTransformSpec{
			{Name: &Pattern{Kind: PatternRegex, Value: `baz(\d+)`}, NameImage: "gaw$1"},
		},
	})

	name, value := r.TransformHeader("baz8", "v")
	assert.Equal(t, "gaw8", name)
	assert.Equal(t, "v", value)
}

func TestHeaderTransformValueMatcherGates(t *testing.T) {
	r := compileOne(t, &Config{
		Version: Version,
		ResponseHeaderTransforms: []HeaderTransformSpec{
			{
				Name:       &Pattern{Kind: PatternLiteral, Value: "location"},
				Value:      &Pattern{Kind: PatternRegex, Value: `https://prod\.example\.com(/.*)`},
				ValueImage: "http://localhost:8080$1",
			},
		},
	})

	name, value := r.TransformHeader("Location", "https://prod.example.com/login")
	assert.Equal(t, "Location", name)
	assert.Equal(t, "http://localhost:8080/login", value)

	name, value = r.TransformHeader("Location", "https://other.example.com/login")
	assert.Equal(t, "https://other.example.com/login", value)
	assert.Equal(t, "Location", name)
}

func TestHeaderTransformCompositionMatchesSequentialApplication(t *testing.T) {
	cfg := &Config{
		Version: Version,
		ResponseHeaderTransforms: []HeaderTransformSpec{
			{Name: &Pattern{Kind: PatternRegex, Value: `^x-(.*)$`}, NameImage: "y-$1"},
			{Name: &Pattern{Kind: PatternRegex, Value: `^y-(.*)$`}, ValueImage: "seen"},
		},
	}
	r := compileOne(t, cfg)

	t1, err := compileHeaderTransform(cfg.ResponseHeaderTransforms[0])
	require.NoError(t, err)
	t2, err := compileHeaderTransform(cfg.ResponseHeaderTransforms[1])
	require.NoError(t, err)

	chainName, chainValue := r.TransformHeader("x-trace", "t")
	name, value := t1("x-trace", "t")
	name, value = t2(name, value)

	assert.Equal(t, name, chainName)
	assert.Equal(t, value, chainValue)
	assert.Equal(t, "y-trace", chainName)
	assert.Equal(t, "seen", chainValue)
}

func TestCompileHeaderTransformErrors(t *testing.T) {
	tests := []struct {
		name string
		spec HeaderTransformSpec
		want error
	}{
		{
			name: "bad name regex",
			spec: HeaderTransformSpec{Name: &Pattern{Kind: PatternRegex, Value: "("}, NameImage: "x"},
			want: ErrBadPattern,
		},
		{
			name: "bad value regex",
			spec: HeaderTransformSpec{Value: &Pattern{Kind: PatternRegex, Value: "("}, ValueImage: "x"},
			want: ErrBadPattern,
		},
		{
			name: "empty transform",
			spec: HeaderTransformSpec{},
			want: ErrBadSpec,
		},
		{
			name: "glob matcher not allowed",
			spec: HeaderTransformSpec{Name: &Pattern{Kind: PatternGlob, Value: "*"}, NameImage: "x"},
			want: ErrBadSpec,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(&Config{Version: Version, ResponseHeaderTransforms: []HeaderTransformSpec{tt.spec}})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestContextField(t *testing.T) {
	req := httptest.NewRequest("POST", "http://host.test/api/v1/items?id=42&id=43", nil)
	entry := &har.Entry{
		Request:  har.Request{Method: "GET", URL: "http://host.test/api/v1/items?id=42"},
		Response: har.Response{Status: 200},
	}
	ctx := &Context{Request: req, Entry: entry}

	tests := []struct {
		path string
		want string
	}{
		{"request.method", "POST"},
		{"request.path", "/api/v1/items"},
		{"request.url", "http://host.test/api/v1/items?id=42&id=43"},
		{"request.query.id", "42"},
		{"request.query.missing", ""},
		{"entry.method", "GET"},
		{"entry.url", "http://host.test/api/v1/items?id=42"},
		{"entry.status", "200"},
		{"entry.nope", ""},
		{"bogus", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ctx.Field(tt.path))
		})
	}
}
