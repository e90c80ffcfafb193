package replay

import (
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/mike10004/har-replay-proxy/internal/matching"
	"github.com/mike10004/har-replay-proxy/pkg/har"
	"github.com/mike10004/har-replay-proxy/pkg/httputil"
	"github.com/mike10004/har-replay-proxy/pkg/logging"
	"github.com/mike10004/har-replay-proxy/pkg/requestlog"
	"github.com/mike10004/har-replay-proxy/pkg/rules"
)

// Handler dispatches a single live request against the trace: local-file
// mappings first, then the entry matcher, then the response synthesizer.
// It is safe for concurrent use; requests share only the read-only trace
// and the per-entry decoded-content cache.
type Handler struct {
	entries []*har.Entry
	rules   *rules.Rules
	synth   *Synthesizer
	reader  FileReader
	root    string
	log     *slog.Logger
	reqlog  requestlog.Logger
}

// HandlerOption is a functional option for configuring a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithFileReader sets the reader used for locally mapped files.
func WithFileReader(r FileReader) HandlerOption {
	return func(h *Handler) {
		if r != nil {
			h.reader = r
		}
	}
}

// WithRoot sets the base directory that relative mapping destinations are
// resolved against. Defaults to the working directory.
func WithRoot(root string) HandlerOption {
	return func(h *Handler) {
		if root != "" {
			h.root = root
		}
	}
}

// WithRequestLog sets the observability hook that receives one entry per
// completed response. Typically enabled only with the debug flag.
func WithRequestLog(l requestlog.Logger) HandlerOption {
	return func(h *Handler) {
		h.reqlog = l
	}
}

// NewHandler creates a Handler serving the given trace entries under the
// compiled rules.
func NewHandler(entries []*har.Entry, compiled *rules.Rules, opts ...HandlerOption) *Handler {
	if compiled == nil {
		compiled = &rules.Rules{}
	}
	h := &Handler{
		entries: entries,
		rules:   compiled,
		reader:  OSFileReader(),
		root:    ".",
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.synth = NewSynthesizer(compiled, h.log)
	return h
}

// ServeHTTP handles one request. Terminal on the first applicable branch:
// mapped file, matched entry, capture failure, or no match.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rawURL := requestURL(r)

	if dest, ok := h.rules.ResolvePath(rawURL); ok {
		h.serveMappedFile(w, r, rawURL, dest)
		return
	}

	res := matching.Select(h.entries, r)
	switch res.Disposition {
	case matching.Matched:
		h.serveExchange(w, r, rawURL, res.Entry, requestlog.OriginMatchedEntry)

	case matching.Unusable:
		h.log.Info("matched capture is unusable",
			"method", r.Method, "url", rawURL,
			"captureError", res.Entry.Response.CaptureError)
		httputil.WriteCaptureFailed(w, r.Method, rawURL, res.Entry.Response.CaptureError)
		h.observe(r, rawURL, http.StatusGone, "", 0, requestlog.OriginClientBlocked, nil)

	default:
		h.log.Info("no recorded exchange matches", "method", r.Method, "url", rawURL)
		httputil.WriteNoEntryMatch(w, r.Method, rawURL)
		h.observe(r, rawURL, http.StatusNotFound, "", 0, requestlog.OriginNoEntryMatch, nil)
	}
}

// serveMappedFile reads the mapped local file and serves it through the
// synthesizer. A recorded entry for the same URL contributes its status
// and headers; otherwise a shim exchange is synthesized.
func (h *Handler) serveMappedFile(w http.ResponseWriter, r *http.Request, rawURL, dest string) {
	path := dest
	if !filepath.IsAbs(path) {
		path = filepath.Join(h.root, dest)
	}

	data, err := h.reader.Read(path)
	if err != nil {
		h.log.Error("mapped local file could not be read",
			"url", rawURL, "path", path, "error", err)
		httputil.WriteMissingMappedFile(w, path)
		h.observe(r, rawURL, http.StatusNotFound, "", 0, requestlog.OriginMappedFile, nil)
		return
	}

	var entry *har.Entry
	if res := matching.Select(h.entries, r); res.Disposition == matching.Matched {
		entry = res.Entry.WithBody(data)
	} else {
		entry = har.ShimEntry(r.Method, rawURL, mimeTypeForFile(path), data)
	}

	h.serveExchange(w, r, rawURL, entry, requestlog.OriginMappedFile)
}

// serveExchange synthesizes and writes the response for an exchange.
func (h *Handler) serveExchange(w http.ResponseWriter, r *http.Request, rawURL string, entry *har.Entry, origin string) {
	resp := h.synth.Synthesize(entry, r)

	header := w.Header()
	for _, nv := range resp.Headers {
		// Assigning map keys directly preserves the recorded name casing.
		header[nv.Name] = append(header[nv.Name], nv.Value)
	}
	w.WriteHeader(resp.Status)
	if _, err := w.Write(resp.Body); err != nil {
		h.log.Debug("response write failed", "url", rawURL, "error", err)
	}

	h.observe(r, rawURL, resp.Status, resp.ContentType, len(resp.Body), origin, resp.Body)
}

// observe emits the per-response observability entry.
func (h *Handler) observe(r *http.Request, rawURL string, status int, contentType string, length int, origin string, body []byte) {
	h.log.Debug("served",
		"status", status, "method", r.Method, "url", rawURL,
		"contentType", contentType, "contentLength", length, "origin", origin)

	if h.reqlog == nil {
		return
	}
	h.reqlog.Log(&requestlog.Entry{
		Timestamp:     time.Now(),
		Method:        r.Method,
		URL:           rawURL,
		Status:        status,
		ContentType:   contentType,
		ContentLength: length,
		Origin:        origin,
		ContentHash:   requestlog.HashContent(body),
	})
}

// requestURL reconstructs the full URL of a live request. Server-style
// requests carry only a path; mapping patterns and recorded traffic use
// absolute URLs.
func requestURL(r *http.Request) string {
	if r.URL.IsAbs() {
		return r.URL.String()
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func mimeTypeForFile(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return DefaultMediaType
}
