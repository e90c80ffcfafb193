package rules

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Common errors for rule compilation.
var (
	ErrUnsupportedVersion = errors.New("unsupported configuration version")
	ErrBadPattern         = errors.New("invalid pattern")
	ErrBadSpec            = errors.New("invalid rule spec")
)

// Mapping resolves a URL to a local file destination. The second return
// is false when the rule does not match.
type Mapping func(rawURL string) (dest string, ok bool)

// Replacement rewrites content given the request/exchange context. A rule
// whose match does not occur returns the content unchanged.
type Replacement func(content string, ctx *Context) string

// HeaderTransform rewrites a single response header. Transforms are total:
// a non-matching header is returned unchanged.
type HeaderTransform func(name, value string) (string, string)

// Rules is a compiled configuration: three ordered rule lists ready for
// per-request evaluation.
type Rules struct {
	Mappings         []Mapping
	Replacements     []Replacement
	HeaderTransforms []HeaderTransform
}

// Compile turns a configuration document into executable rules. All
// pattern syntax errors surface here, at load time, never per request.
func Compile(cfg *Config) (*Rules, error) {
	if cfg == nil {
		cfg = &Config{Version: Version}
	}
	if cfg.Version != Version {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrUnsupportedVersion, cfg.Version, Version)
	}

	r := &Rules{}
	for i, spec := range cfg.Mappings {
		m, err := compileMapping(spec)
		if err != nil {
			return nil, fmt.Errorf("mappings[%d]: %w", i, err)
		}
		r.Mappings = append(r.Mappings, m)
	}
	for i, spec := range cfg.Replacements {
		rep, err := compileReplacement(spec)
		if err != nil {
			return nil, fmt.Errorf("replacements[%d]: %w", i, err)
		}
		r.Replacements = append(r.Replacements, rep)
	}
	for i, spec := range cfg.ResponseHeaderTransforms {
		ht, err := compileHeaderTransform(spec)
		if err != nil {
			return nil, fmt.Errorf("responseHeaderTransforms[%d]: %w", i, err)
		}
		r.HeaderTransforms = append(r.HeaderTransforms, ht)
	}
	return r, nil
}

// ResolvePath evaluates the mapping rules in declared order and returns
// the destination of the first match.
func (r *Rules) ResolvePath(rawURL string) (string, bool) {
	for _, m := range r.Mappings {
		if dest, ok := m(rawURL); ok {
			return dest, true
		}
	}
	return "", false
}

// ApplyReplacements runs the replacement chain in declared order, each
// rule consuming the previous rule's output.
func (r *Rules) ApplyReplacements(content string, ctx *Context) string {
	for _, rep := range r.Replacements {
		content = rep(content, ctx)
	}
	return content
}

// TransformHeader runs the header-transform chain in declared order.
// Transforms compose left to right.
func (r *Rules) TransformHeader(name, value string) (string, string) {
	for _, t := range r.HeaderTransforms {
		name, value = t(name, value)
	}
	return name, value
}

func compileMapping(spec MappingSpec) (Mapping, error) {
	if spec.Path == "" {
		return nil, fmt.Errorf("%w: mapping has no destination path", ErrBadSpec)
	}
	dest := spec.Path

	switch spec.Match.Kind {
	case PatternLiteral:
		if spec.Match.Value == "" {
			return nil, fmt.Errorf("%w: empty literal match", ErrBadSpec)
		}
		lit := spec.Match.Value
		return func(rawURL string) (string, bool) {
			if rawURL != lit {
				return "", false
			}
			return dest, true
		}, nil

	case PatternRegex:
		re, err := regexp.Compile(spec.Match.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPattern, err)
		}
		return func(rawURL string) (string, bool) {
			m := re.FindStringSubmatchIndex(rawURL)
			if m == nil {
				return "", false
			}
			return string(re.ExpandString(nil, dest, rawURL, m)), true
		}, nil

	case PatternGlob:
		if !doublestar.ValidatePattern(spec.Match.Value) {
			return nil, fmt.Errorf("%w: bad glob %q", ErrBadPattern, spec.Match.Value)
		}
		glob := spec.Match.Value
		return func(rawURL string) (string, bool) {
			u, err := url.Parse(rawURL)
			if err != nil {
				return "", false
			}
			if ok, _ := doublestar.Match(glob, u.Path); !ok {
				return "", false
			}
			return dest, true
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s matcher not allowed in mappings", ErrBadSpec, spec.Match.Kind)
	}
}

func compileReplacement(spec ReplacementSpec) (Replacement, error) {
	replace := spec.Replace

	switch spec.Match.Kind {
	case PatternLiteral:
		if spec.Match.Value == "" {
			return nil, fmt.Errorf("%w: empty literal match", ErrBadSpec)
		}
		lit := spec.Match.Value
		return func(content string, _ *Context) string {
			return strings.ReplaceAll(content, lit, replace)
		}, nil

	case PatternRegex:
		re, err := regexp.Compile(spec.Match.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPattern, err)
		}
		return func(content string, _ *Context) string {
			return re.ReplaceAllString(content, replace)
		}, nil

	case PatternVar:
		if spec.Match.Value == "" {
			return nil, fmt.Errorf("%w: empty field reference", ErrBadSpec)
		}
		field := spec.Match.Value
		return func(content string, ctx *Context) string {
			if ctx == nil {
				return content
			}
			// An absent or empty context field makes the rule a no-op.
			v := ctx.Field(field)
			if v == "" {
				return content
			}
			return strings.ReplaceAll(content, v, replace)
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s matcher not allowed in replacements", ErrBadSpec, spec.Match.Kind)
	}
}

// headerMatcher matches one side (name or value) of a header and expands
// the corresponding image template.
type headerMatcher struct {
	literal    string
	ignoreCase bool
	re         *regexp.Regexp
}

func compileHeaderMatcher(p *Pattern, ignoreCase bool) (*headerMatcher, error) {
	if p == nil {
		return nil, nil
	}
	switch p.Kind {
	case PatternLiteral:
		return &headerMatcher{literal: p.Value, ignoreCase: ignoreCase}, nil
	case PatternRegex:
		re, err := regexp.Compile(p.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPattern, err)
		}
		return &headerMatcher{re: re}, nil
	default:
		return nil, fmt.Errorf("%w: %s matcher not allowed in header transforms", ErrBadSpec, p.Kind)
	}
}

// match reports whether s matches.
func (m *headerMatcher) match(s string) bool {
	if m.re != nil {
		return m.re.MatchString(s)
	}
	if m.ignoreCase {
		return strings.EqualFold(s, m.literal)
	}
	return s == m.literal
}

// expand produces the transformed side from the image template. An empty
// image keeps the original; a regex matcher substitutes capture groups.
func (m *headerMatcher) expand(s, image string) string {
	if image == "" {
		return s
	}
	if m != nil && m.re != nil {
		if idx := m.re.FindStringSubmatchIndex(s); idx != nil {
			return string(m.re.ExpandString(nil, image, s, idx))
		}
	}
	return image
}

func compileHeaderTransform(spec HeaderTransformSpec) (HeaderTransform, error) {
	if spec.Name == nil && spec.Value == nil && spec.NameImage == "" && spec.ValueImage == "" {
		return nil, fmt.Errorf("%w: header transform declares no matcher and no image", ErrBadSpec)
	}

	// Header names compare case-insensitively; values compare exactly.
	nameMatch, err := compileHeaderMatcher(spec.Name, true)
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	valueMatch, err := compileHeaderMatcher(spec.Value, false)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}

	nameImage := spec.NameImage
	valueImage := spec.ValueImage

	return func(name, value string) (string, string) {
		if nameMatch != nil && !nameMatch.match(name) {
			return name, value
		}
		if valueMatch != nil && !valueMatch.match(value) {
			return name, value
		}
		return nameMatch.expand(name, nameImage), valueMatch.expand(value, valueImage)
	}, nil
}
