package har

import (
	"net/url"
	"sync"
)

// File is the top-level HAR document.
type File struct {
	Log Log `json:"log"`
}

// Log holds the recorded session.
type Log struct {
	// Version is the HAR format version, ex "1.2".
	Version string `json:"version"`

	// Creator identifies the tool that produced the trace.
	Creator *Creator `json:"creator,omitempty"`

	// Entries are the recorded exchanges in capture order.
	Entries []*Entry `json:"entries"`
}

// Creator identifies the recording tool.
type Creator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// NameValuePair is a single header or query parameter.
// Header name casing is preserved as captured; lookups compare
// case-insensitively.
type NameValuePair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Entry is one recorded request/response exchange.
type Entry struct {
	// StartedDateTime is the capture timestamp (ISO 8601).
	StartedDateTime string `json:"startedDateTime,omitempty"`

	// Time is the total elapsed time of the exchange in milliseconds.
	Time float64 `json:"time,omitempty"`

	// Request describes the captured request.
	Request Request `json:"request"`

	// Response describes the captured response.
	Response Response `json:"response"`

	// parsed request URL parts, populated by prepare().
	path  string
	query url.Values

	// decoded-body cache, populated on first use.
	decodeOnce sync.Once
	decoded    []byte
}

// Request is the request half of an exchange.
type Request struct {
	// Method of the HTTP request, in caps, GET/POST/etc.
	Method string `json:"method"`

	// URL of the request (absolute), with fragments removed.
	URL string `json:"url"`

	// HTTPVersion of the request, ex "HTTP/1.1".
	HTTPVersion string `json:"httpVersion,omitempty"`

	// Headers sent with the request.
	Headers []NameValuePair `json:"headers,omitempty"`

	// QueryParams parsed from the URL by the recording tool.
	QueryParams []NameValuePair `json:"queryString,omitempty"`
}

// Response is the response half of an exchange.
type Response struct {
	// Status is the recorded status code. Zero means the recording tool
	// never received a response.
	Status int `json:"status"`

	// StatusText describes the response status.
	StatusText string `json:"statusText,omitempty"`

	// HTTPVersion of the response, ex "HTTP/1.1".
	HTTPVersion string `json:"httpVersion,omitempty"`

	// Headers sent with the response, in captured order.
	Headers []NameValuePair `json:"headers,omitempty"`

	// Content describes the response body.
	Content Content `json:"content"`

	// RedirectURL from the location header.
	RedirectURL string `json:"redirectURL,omitempty"`

	// CaptureError is set when the recording tool itself failed to fetch
	// the resource, ex "net::ERR_BLOCKED_BY_CLIENT" from a browser with a
	// content blocker active.
	CaptureError string `json:"_error,omitempty"`
}

// Content describes a recorded response body.
type Content struct {
	// Size is the declared body size in bytes (decompressed).
	Size int `json:"size"`

	// MimeType is the declared MIME type, possibly with a charset
	// parameter.
	MimeType string `json:"mimeType"`

	// Text is the stored body: plain text, or base64 when Encoding says so
	// or the length heuristic detects it.
	Text string `json:"text,omitempty"`

	// Encoding is the stored-text encoding, "base64" when the recorder
	// declared it.
	Encoding string `json:"encoding,omitempty"`
}

// prepare parses the request URL and caches its path and query parameters.
// Called once per entry at load time.
func (e *Entry) prepare() error {
	u, err := url.Parse(e.Request.URL)
	if err != nil {
		return err
	}
	e.path = u.Path
	e.query = u.Query()
	return nil
}

// Path returns the recorded request's URL path, without the query string.
func (e *Entry) Path() string { return e.path }

// Query returns the recorded request's parsed query parameters.
func (e *Entry) Query() url.Values { return e.query }

// Usable reports whether the entry can be replayed. An entry is unusable
// when the capture itself failed: the recorder flagged an error or never
// saw a status code.
func (e *Entry) Usable() bool {
	return e.Response.CaptureError == "" && e.Response.Status != 0
}

// WithBody returns a copy of the entry whose decoded content is replaced
// by body. The receiver is untouched; recorded headers and status carry
// over. Used when a local mapping overrides the content of a recorded
// exchange.
func (e *Entry) WithBody(body []byte) *Entry {
	c := &Entry{
		StartedDateTime: e.StartedDateTime,
		Time:            e.Time,
		Request:         e.Request,
		Response:        e.Response,
		path:            e.path,
		query:           e.query,
	}
	c.Response.Content.Size = len(body)
	c.Response.Content.Text = ""
	c.Response.Content.Encoding = ""
	c.decodeOnce.Do(func() { c.decoded = body })
	return c
}

// NewEntry constructs an entry programmatically and prepares it for
// matching. Entries loaded from a trace file are prepared by the loader.
func NewEntry(method, rawURL string, response Response) (*Entry, error) {
	e := &Entry{
		Request:  Request{Method: method, URL: rawURL},
		Response: response,
	}
	if err := e.prepare(); err != nil {
		return nil, err
	}
	return e, nil
}

// ShimEntry builds a synthetic exchange for content that was never
// recorded, such as a locally mapped file. The body is installed directly
// into the decoded-content cache.
func ShimEntry(method, rawURL, mimeType string, body []byte) *Entry {
	e := &Entry{
		Request: Request{Method: method, URL: rawURL},
		Response: Response{
			Status:     200,
			StatusText: "OK",
			Content: Content{
				Size:     len(body),
				MimeType: mimeType,
			},
		},
	}
	e.decodeOnce.Do(func() { e.decoded = body })
	_ = e.prepare()
	return e
}
