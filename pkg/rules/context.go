package rules

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/mike10004/har-replay-proxy/pkg/har"
)

// Context exposes the live request and the matched recorded exchange to
// replacement rules. Field references in a configuration resolve against
// it with dotted paths.
type Context struct {
	// Request is the live request being served.
	Request *http.Request

	// Entry is the recorded exchange selected for the request, or a shim.
	Entry *har.Entry
}

// Field resolves a dotted field reference to its current value. Supported
// paths:
//
//	request.method
//	request.url
//	request.path
//	request.query.<name>
//	entry.method
//	entry.url
//	entry.status
//
// Unknown paths and absent values resolve to the empty string, which
// replacement rules treat as a no-op.
func (c *Context) Field(path string) string {
	switch {
	case strings.HasPrefix(path, "request."):
		return c.requestField(strings.TrimPrefix(path, "request."))
	case strings.HasPrefix(path, "entry."):
		return c.entryField(strings.TrimPrefix(path, "entry."))
	default:
		return ""
	}
}

func (c *Context) requestField(name string) string {
	if c.Request == nil {
		return ""
	}
	switch {
	case name == "method":
		return c.Request.Method
	case name == "url":
		return c.Request.URL.String()
	case name == "path":
		return c.Request.URL.Path
	case strings.HasPrefix(name, "query."):
		return c.Request.URL.Query().Get(strings.TrimPrefix(name, "query."))
	default:
		return ""
	}
}

func (c *Context) entryField(name string) string {
	if c.Entry == nil {
		return ""
	}
	switch name {
	case "method":
		return c.Entry.Request.Method
	case "url":
		return c.Entry.Request.URL
	case "status":
		return strconv.Itoa(c.Entry.Response.Status)
	default:
		return ""
	}
}
