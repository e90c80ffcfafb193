package matching

// Query scoring constants. A candidate's score is the sum over query
// parameters of these contributions.
const (
	// ScoreParamShared is the score for a query parameter whose name and
	// value both appear in the live request and the recorded entry.
	ScoreParamShared = 1

	// ScoreParamOneSided is the score for a query parameter present in
	// only one of the two sides.
	ScoreParamOneSided = -1
)
