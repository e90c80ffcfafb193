package replay

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/mike10004/har-replay-proxy/pkg/har"
	"github.com/mike10004/har-replay-proxy/pkg/rules"
)

// Headers stripped from the recorded set before serving. Content-Length is
// recomputed by the transport, Content-Encoding no longer applies to the
// decoded body, and the caching headers are replaced with a no-cache pair
// so clients refetch on reload.
var droppedHeaders = []string{
	"content-length",
	"content-encoding",
	"cache-control",
	"pragma",
}

// Response is a fully synthesized response ready to write: final status,
// ordered header list (duplicate names accumulate into a multi-value
// header), and final body bytes.
type Response struct {
	Status      int
	Headers     []har.NameValuePair
	Body        []byte
	ContentType string
}

// Synthesizer turns a recorded (or shim) exchange into an outgoing
// response, applying the compiled replacement and header-transform rules.
type Synthesizer struct {
	rules *rules.Rules
	log   *slog.Logger
}

// NewSynthesizer creates a Synthesizer using the compiled rules.
func NewSynthesizer(r *rules.Rules, log *slog.Logger) *Synthesizer {
	return &Synthesizer{rules: r, log: log}
}

// Synthesize produces the final response for an exchange. Textual content
// runs through the replacement chain in its resolved charset; binary
// content passes through unchanged.
func (s *Synthesizer) Synthesize(e *har.Entry, req *http.Request) *Response {
	body := e.Body()
	mt := ParseMediaType(e.Response.Content.MimeType)

	if mt.IsTextual() {
		body, mt = s.replaceText(body, mt, &rules.Context{Request: req, Entry: e})
	}

	if e.Response.Content.Size > 0 && len(body) == 0 {
		s.log.Warn("declared content size but decoded content is empty",
			"url", e.Request.URL,
			"declaredSize", e.Response.Content.Size)
	}

	status := e.Response.Status
	if status == http.StatusNotModified {
		// No conditional request negotiation is replayed, so a recorded
		// 304 must carry its content as a fresh 200.
		status = http.StatusOK
	}

	contentType := mt.String()
	return &Response{
		Status:      status,
		Headers:     s.assembleHeaders(e.Response.Headers, contentType),
		Body:        body,
		ContentType: contentType,
	}
}

// replaceText decodes the body in its declared charset, runs the
// replacement chain, and re-encodes it. A media type without a charset
// gains one, since the re-encoded output has a definite encoding.
func (s *Synthesizer) replaceText(body []byte, mt MediaType, ctx *rules.Context) ([]byte, MediaType) {
	enc := charsetEncoding(mt.Charset())

	text := decodeCharset(body, enc)
	replaced := s.rules.ApplyReplacements(text, ctx)
	out := encodeCharset(replaced, enc)

	if mt.Charset() == "" {
		mt = mt.WithCharset("utf-8")
	}
	return out, mt
}

// assembleHeaders builds the outgoing header list from the recorded one:
// each header runs through the transform chain, transport and caching
// headers are dropped, Content-Type is rewritten to the resolved type, and
// the no-cache pair is appended. Recorded name casing is preserved unless
// a transform rewrites it.
func (s *Synthesizer) assembleHeaders(recorded []har.NameValuePair, contentType string) []har.NameValuePair {
	out := make([]har.NameValuePair, 0, len(recorded)+3)
	sawContentType := false

	for _, h := range recorded {
		name, value := s.rules.TransformHeader(h.Name, h.Value)
		if isDroppedHeader(name) {
			continue
		}
		if strings.EqualFold(name, "content-type") {
			value = contentType
			sawContentType = true
		}
		out = append(out, har.NameValuePair{Name: name, Value: value})
	}

	if !sawContentType {
		out = append(out, har.NameValuePair{Name: "Content-Type", Value: contentType})
	}
	out = append(out,
		har.NameValuePair{Name: "Cache-Control", Value: "no-cache, no-store, must-revalidate"},
		har.NameValuePair{Name: "Pragma", Value: "no-cache"},
	)
	return out
}

func isDroppedHeader(name string) bool {
	for _, d := range droppedHeaders {
		if strings.EqualFold(name, d) {
			return true
		}
	}
	return false
}

// charsetEncoding resolves a charset name to an encoding. Returns nil for
// empty, UTF-8, and unknown charsets, all of which are handled as UTF-8
// passthrough.
func charsetEncoding(name string) encoding.Encoding {
	if name == "" || strings.EqualFold(name, "utf-8") {
		return nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil
	}
	return enc
}

func decodeCharset(body []byte, enc encoding.Encoding) string {
	if enc == nil {
		return string(body)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

func encodeCharset(text string, enc encoding.Encoding) []byte {
	if enc == nil {
		return []byte(text)
	}
	encoded, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return []byte(text)
	}
	return encoded
}
