// Package requestlog records one observability entry per completed replay
// response for debugging and inspection.
package requestlog

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Origin tags describing where a response came from.
const (
	// OriginMatchedEntry means a recorded exchange was replayed.
	OriginMatchedEntry = "matchedentry"

	// OriginNoEntryMatch means no recorded exchange or mapping applied.
	OriginNoEntryMatch = "noentrymatch"

	// OriginClientBlocked means the matched capture had itself failed,
	// typically blocked by a content blocker during recording.
	OriginClientBlocked = "clientblocked"

	// OriginMappedFile means a locally mapped file was served.
	OriginMappedFile = "mappedfile"
)

// Entry captures the outcome of a single replayed response.
type Entry struct {
	// ID is a unique identifier for the log entry.
	ID string `json:"id"`

	// Timestamp is when the request was received.
	Timestamp time.Time `json:"timestamp"`

	// Method is the HTTP method of the live request.
	Method string `json:"method"`

	// URL is the full URL of the live request.
	URL string `json:"url"`

	// Status is the status code sent to the client.
	Status int `json:"status"`

	// ContentType is the resolved content type of the response.
	ContentType string `json:"contentType,omitempty"`

	// ContentLength is the length of the response body in bytes.
	ContentLength int `json:"contentLength"`

	// Origin tags how the response was produced.
	Origin string `json:"origin"`

	// ContentHash is the hex SHA-256 of the response body.
	ContentHash string `json:"contentHash,omitempty"`
}

// HashContent computes the hex SHA-256 digest recorded in ContentHash.
func HashContent(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
