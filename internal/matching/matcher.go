package matching

import (
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/mike10004/har-replay-proxy/pkg/har"
)

// Disposition classifies the outcome of a selection.
type Disposition int

// Selection outcomes.
const (
	// NoMatch means no recorded entry shares the request's method and
	// URL path.
	NoMatch Disposition = iota

	// Matched means a usable recorded entry was selected.
	Matched

	// Unusable means the best candidate was itself a failed capture
	// (recorder error or missing status) and cannot be replayed.
	Unusable
)

// Result is the outcome of matching a request against the trace.
type Result struct {
	Disposition Disposition

	// Entry is the selected exchange. Set for Matched and Unusable.
	Entry *har.Entry

	// Score is the query score of the selected entry.
	Score int
}

// Select finds the recorded entry that best corresponds to the request.
func Select(entries []*har.Entry, r *http.Request) Result {
	return SelectURL(entries, r.Method, r.URL)
}

// SelectURL finds the recorded entry that best corresponds to a method and
// parsed URL. Candidates must share the method (case-insensitively) and
// the exact URL path; among candidates the highest query score wins, with
// ties broken by earliest position in the trace. An exact match, identical
// path and identical query parameter set, short-circuits the search.
// Repeated calls with the same inputs always select the same entry.
func SelectURL(entries []*har.Entry, method string, u *url.URL) Result {
	liveQuery := u.Query()

	bestIdx := -1
	bestScore := 0

	for i, e := range entries {
		if !strings.EqualFold(e.Request.Method, method) {
			continue
		}
		if e.Path() != u.Path {
			continue
		}

		if queriesEqual(liveQuery, e.Query()) {
			return result(e, len(liveQuery)*ScoreParamShared)
		}

		score := ScoreQuery(liveQuery, e.Query())
		if bestIdx == -1 || score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}

	if bestIdx == -1 {
		return Result{Disposition: NoMatch}
	}
	return result(entries[bestIdx], bestScore)
}

func result(e *har.Entry, score int) Result {
	d := Matched
	if !e.Usable() {
		d = Unusable
	}
	return Result{Disposition: d, Entry: e, Score: score}
}

// ScoreQuery scores a recorded query against a live query: each parameter
// whose name and value appear on both sides counts ScoreParamShared, each
// parameter present on one side only counts ScoreParamOneSided.
func ScoreQuery(live, recorded url.Values) int {
	score := 0
	for name, liveVals := range live {
		recVals := recorded[name]
		for _, v := range liveVals {
			if containsValue(recVals, v) {
				score += ScoreParamShared
			} else {
				score += ScoreParamOneSided
			}
		}
	}
	for name, recVals := range recorded {
		liveVals, present := live[name]
		for _, v := range recVals {
			if !present || !containsValue(liveVals, v) {
				score += ScoreParamOneSided
			}
		}
	}
	return score
}

// queriesEqual reports whether two query parameter sets are identical:
// same names, same values per name, order of repeated values ignored.
func queriesEqual(a, b url.Values) bool {
	if len(a) != len(b) {
		return false
	}
	for name, av := range a {
		bv, ok := b[name]
		if !ok || len(av) != len(bv) {
			return false
		}
		as := append([]string(nil), av...)
		bs := append([]string(nil), bv...)
		sort.Strings(as)
		sort.Strings(bs)
		for i := range as {
			if as[i] != bs[i] {
				return false
			}
		}
	}
	return true
}

func containsValue(vals []string, v string) bool {
	for _, s := range vals {
		if s == v {
			return true
		}
	}
	return false
}
