// Package replay serves recorded HTTP responses back to live clients.
//
// The dispatcher orchestrates each request: local-file mappings are
// consulted first, then the entry matcher selects the best recorded
// exchange, and the response synthesizer decodes its content, applies
// replacement rules to textual bodies, and reconstructs outgoing headers.
// Requests are independent; the only shared state is the read-only trace
// and each entry's decoded-content cache.
package replay
