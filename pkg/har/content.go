package har

import "encoding/base64"

// base64Ratio is the expansion factor of base64 encoding: every 3 payload
// bytes become 4 text characters.
const base64Ratio = 0.75

// LooksBase64 reports whether a stored text of textLen characters is
// plausibly the base64 encoding of a declared size-byte body. Base64
// expands by 4/3 plus up to one padded quantum, so the text length must
// fall within [size/0.75, size/0.75 + 4].
func LooksBase64(size, textLen int) bool {
	if size <= 0 {
		return false
	}
	lo := float64(size) / base64Ratio
	return float64(textLen) >= lo && float64(textLen) <= lo+4
}

// Body returns the decoded response body for the entry. The first call
// decodes the stored text and caches the result; subsequent calls, from
// this or any other request, return the cached bytes. Callers must not
// mutate the returned slice.
func (e *Entry) Body() []byte {
	e.decodeOnce.Do(func() {
		e.decoded = decodeContent(&e.Response.Content)
	})
	return e.decoded
}

// decodeContent turns stored text into body bytes. Base64 decoding applies
// when the recorder declared it or when the length heuristic detects it;
// text that fails to decode is kept as raw bytes.
func decodeContent(c *Content) []byte {
	if c.Text == "" {
		return nil
	}
	if c.Encoding == "base64" || LooksBase64(c.Size, len(c.Text)) {
		if b, err := base64.StdEncoding.DecodeString(c.Text); err == nil {
			return b
		}
	}
	return []byte(c.Text)
}
