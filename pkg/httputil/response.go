// Package httputil provides shared HTTP utilities for consistent error
// response handling.
package httputil

import (
	"fmt"
	"net/http"
)

// WritePlainText writes a plain-text response with the given status code.
func WritePlainText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprintln(w, body)
}

// WriteNoEntryMatch writes the 404 returned when no recorded exchange and
// no local mapping correspond to the request.
func WriteNoEntryMatch(w http.ResponseWriter, method, url string) {
	WritePlainText(w, http.StatusNotFound,
		fmt.Sprintf("404 Not Found: no recorded exchange matches %s %s", method, url))
}

// WriteMissingMappedFile writes the 404 returned when a mapping matched
// but the local file could not be read.
func WriteMissingMappedFile(w http.ResponseWriter, path string) {
	WritePlainText(w, http.StatusNotFound,
		fmt.Sprintf("404 Not Found: mapped local file could not be read: %s", path))
}

// WriteCaptureFailed writes the 410 returned when the matched exchange was
// itself unusable at capture time, typically because a client-side content
// blocker prevented the recording tool from fetching the resource.
func WriteCaptureFailed(w http.ResponseWriter, method, url, captureError string) {
	body := fmt.Sprintf("410 Gone: the recorded capture of %s %s failed", method, url)
	if captureError != "" {
		body += fmt.Sprintf(" (%s)", captureError)
	}
	body += "; the resource was likely blocked by a content blocker during recording"
	WritePlainText(w, http.StatusGone, body)
}
