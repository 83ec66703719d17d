package index

// ArtifactIndex defines the interface for artifact index operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type ArtifactIndex interface {
	Upsert(a ArtifactRow) error
	Delete(folder, name string) error
	LookupHash(folder, hash string) (string, bool, error)
	NextSeq(folder, prefix string) (int, error)
	AllNames(folder string) (map[string]ArtifactRow, error)
	Close() error
}

// Verify *DB satisfies ArtifactIndex at compile time.
var _ ArtifactIndex = (*DB)(nil)
