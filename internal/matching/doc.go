// Package matching selects the recorded exchange that best corresponds to
// a live request.
//
// Recorded traffic rarely matches live traffic byte for byte: captures
// carry cache-busting query parameters, randomized tokens, and near
// duplicate entries for the same logical resource. The matcher restricts
// candidates to entries with the same method and exact URL path, then
// scores candidates by shared query parameters. Selection is deterministic
// and side-effect-free.
package matching
