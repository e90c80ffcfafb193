package replay

import (
	"mime"
	"strings"
)

// DefaultMediaType is the content type assumed when an exchange declares
// none or declares one that cannot be parsed.
const DefaultMediaType = "application/octet-stream"

// MediaType is a parsed content type: type/subtype plus parameters such as
// charset.
type MediaType struct {
	// Value is the lowercased type/subtype, ex "text/html".
	Value string

	// Params are the media type parameters, ex {"charset": "utf-8"}.
	Params map[string]string
}

// ParseMediaType parses a declared MIME type, falling back to
// DefaultMediaType when the declaration is absent or malformed.
func ParseMediaType(declared string) MediaType {
	if declared == "" {
		return MediaType{Value: DefaultMediaType}
	}
	value, params, err := mime.ParseMediaType(declared)
	if err != nil {
		return MediaType{Value: DefaultMediaType}
	}
	return MediaType{Value: value, Params: params}
}

// Charset returns the charset parameter, or "" when unset.
func (m MediaType) Charset() string {
	return m.Params["charset"]
}

// WithCharset returns a copy with the charset parameter set.
func (m MediaType) WithCharset(charset string) MediaType {
	params := make(map[string]string, len(m.Params)+1)
	for k, v := range m.Params {
		params[k] = v
	}
	params["charset"] = charset
	return MediaType{Value: m.Value, Params: params}
}

// IsTextual reports whether content of this type participates in
// replacement: text types, XML types, and JSON subtypes. Everything else
// is binary and passes through unchanged.
func (m MediaType) IsTextual() bool {
	if strings.HasPrefix(m.Value, "text/") {
		return true
	}
	if m.Value == "application/xml" || strings.HasSuffix(m.Value, "+xml") {
		return true
	}
	if strings.HasSuffix(m.Value, "/json") || strings.HasSuffix(m.Value, "+json") {
		return true
	}
	return false
}

// String formats the media type with its parameters for a Content-Type
// header value.
func (m MediaType) String() string {
	return mime.FormatMediaType(m.Value, m.Params)
}
