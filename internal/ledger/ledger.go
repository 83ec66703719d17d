// Package ledger implements the append-only comparison dataset.
//
// The ledger is keyed by the ordered (résumé name, job-description name)
// pair: appending an already-recorded pair is a normal, observable no-op,
// never an error. Rows are immutable once written and reads return them in
// insertion order.
package ledger

// Record is one row of the comparison dataset.
type Record struct {
	Resume            string  `json:"resume"`
	JobDescription    string  `json:"job_description"`
	TfidfSimilarity   float64 `json:"tfidf_similarity"`
	JaccardSimilarity float64 `json:"jaccard_similarity"`
	LengthRatio       float64 `json:"length_ratio"`
	MatchedSkills     int     `json:"num_matched_skills"`
	MissingSkills     int     `json:"num_missing_skills"`
	Category          string  `json:"category"`
	Score             float64 `json:"score"`
}

// SamePair reports whether two records describe the same document pair.
func (r Record) SamePair(other Record) bool {
	return r.Resume == other.Resume && r.JobDescription == other.JobDescription
}

// Ledger is the storage abstraction for comparison records. The backing
// representation (flat CSV file, embedded database, log-structured store)
// can change without affecting callers.
type Ledger interface {
	// Append records r unless its (resume, jd) pair already exists.
	// It returns true when the row was inserted, false on a duplicate skip.
	Append(r Record) (bool, error)
	// ReadAll returns every row in insertion order; an empty slice if the
	// ledger has never been written.
	ReadAll() ([]Record, error)
}
