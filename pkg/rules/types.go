package rules

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Version is the configuration format version this build understands.
const Version = 1

// Config is the declarative replay configuration document.
type Config struct {
	// Version is the configuration format version. Required; the loader
	// rejects documents with a missing or unrecognized version.
	Version int `json:"version" yaml:"version"`

	// Mappings redirect matching URLs to local files, first match wins.
	Mappings []MappingSpec `json:"mappings,omitempty" yaml:"mappings,omitempty"`

	// Replacements rewrite textual response content, applied in order.
	Replacements []ReplacementSpec `json:"replacements,omitempty" yaml:"replacements,omitempty"`

	// ResponseHeaderTransforms rewrite response headers, applied in order.
	ResponseHeaderTransforms []HeaderTransformSpec `json:"responseHeaderTransforms,omitempty" yaml:"responseHeaderTransforms,omitempty"`
}

// MappingSpec redirects a URL to a local file path.
type MappingSpec struct {
	// Match selects URLs: a literal full URL, a regex over the full URL,
	// or a glob over the URL path.
	Match Pattern `json:"match" yaml:"match"`

	// Path is the destination file path. For regex matches it may
	// reference capture groups positionally ($1, $2, ...).
	Path string `json:"path" yaml:"path"`
}

// ReplacementSpec rewrites occurrences of a match within textual content.
type ReplacementSpec struct {
	// Match is a literal string, a regex, or a context field reference
	// ({"var": "request.query.callback"}) whose current value is the
	// string to replace.
	Match Pattern `json:"match" yaml:"match"`

	// Replace is the replacement text; for regex matches it may reference
	// capture groups ($1, $2, ...).
	Replace string `json:"replace" yaml:"replace"`
}

// HeaderTransformSpec rewrites a response header's name and/or value.
// A spec with no name matcher applies to headers of any name; a spec
// that does not match a header leaves it unchanged.
type HeaderTransformSpec struct {
	// Name matches the header name (literal, compared case-insensitively,
	// or regex).
	Name *Pattern `json:"name,omitempty" yaml:"name,omitempty"`

	// Value matches the header value (literal or regex).
	Value *Pattern `json:"value,omitempty" yaml:"value,omitempty"`

	// NameImage is the new header name; empty keeps the original. For a
	// regex name matcher it may reference capture groups.
	NameImage string `json:"nameImage,omitempty" yaml:"nameImage,omitempty"`

	// ValueImage is the new header value; empty keeps the original. For a
	// regex value matcher it may reference capture groups.
	ValueImage string `json:"valueImage,omitempty" yaml:"valueImage,omitempty"`
}

// PatternKind discriminates the matcher variants a spec may declare.
type PatternKind int

// Pattern kinds.
const (
	// PatternNone is the zero value: no matcher declared.
	PatternNone PatternKind = iota

	// PatternLiteral matches an exact string.
	PatternLiteral

	// PatternRegex matches an RE2 regular expression.
	PatternRegex

	// PatternGlob matches a doublestar glob over the URL path
	// (mappings only).
	PatternGlob

	// PatternVar names a request/exchange context field whose value is
	// the string to match (replacements only).
	PatternVar
)

// String returns the kind name as used in configuration documents.
func (k PatternKind) String() string {
	switch k {
	case PatternLiteral:
		return "literal"
	case PatternRegex:
		return "regex"
	case PatternGlob:
		return "glob"
	case PatternVar:
		return "var"
	default:
		return "none"
	}
}

// Pattern is a discriminated matcher spec. In a document it is either a
// bare string (literal) or a single-key object selecting another kind.
type Pattern struct {
	Kind  PatternKind
	Value string
}

// patternObject is the object form of a Pattern in JSON/YAML.
type patternObject struct {
	Regex *string `json:"regex" yaml:"regex"`
	Glob  *string `json:"glob" yaml:"glob"`
	Var   *string `json:"var" yaml:"var"`
}

func (o *patternObject) toPattern() (Pattern, error) {
	declared := 0
	p := Pattern{}
	if o.Regex != nil {
		declared++
		p = Pattern{Kind: PatternRegex, Value: *o.Regex}
	}
	if o.Glob != nil {
		declared++
		p = Pattern{Kind: PatternGlob, Value: *o.Glob}
	}
	if o.Var != nil {
		declared++
		p = Pattern{Kind: PatternVar, Value: *o.Var}
	}
	if declared != 1 {
		return Pattern{}, fmt.Errorf("matcher object must declare exactly one of regex, glob, var")
	}
	return p, nil
}

// UnmarshalJSON accepts a string (literal match) or an object with exactly
// one of the keys regex, glob, var.
func (p *Pattern) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Pattern{Kind: PatternLiteral, Value: s}
		return nil
	}
	var obj patternObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("matcher must be a string or an object: %w", err)
	}
	parsed, err := obj.toPattern()
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// UnmarshalYAML accepts the same shapes as UnmarshalJSON.
func (p *Pattern) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*p = Pattern{Kind: PatternLiteral, Value: s}
		return nil
	case yaml.MappingNode:
		var obj patternObject
		if err := value.Decode(&obj); err != nil {
			return err
		}
		parsed, err := obj.toPattern()
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	default:
		return fmt.Errorf("matcher must be a string or a mapping, got yaml kind %d", value.Kind)
	}
}
