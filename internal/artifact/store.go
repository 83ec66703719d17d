// Package artifact implements the content-addressed document store.
//
// Each folder (résumés, job descriptions) holds flat, sequentially named
// files: <prefix>_<seq>.<ext>. Content is deduplicated by canonical SHA-256
// hash; saving bytes that already exist returns the pre-existing name
// without writing. A SQLite index keeps hash->name and sequence state so a
// save never rehashes the whole folder.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/checksum"
	"github.com/starford/mannaz/internal/index"
	"github.com/starford/mannaz/internal/textnorm"
)

// TextExt is the extension used for artifacts submitted as literal text.
const TextExt = ".txt"

// Info describes one stored artifact.
type Info struct {
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
	Seq    int    `json:"seq"`
	Hash   string `json:"hash"`
}

// Store is a single artifact folder backed by the local file system and a
// shared SQLite index. All mutating operations are serialized by a
// per-folder mutex: the lookup-then-write sequence must not interleave or
// two concurrent saves of the same content could both create a file.
type Store struct {
	root  string // absolute path to the folder
	label string // stable folder label used as the index key
	idx   index.ArtifactIndex

	mu sync.Mutex
}

// New creates a Store rooted at the given directory (which must exist) and
// reconciles the index with the folder contents.
func New(root, label string, idx index.ArtifactIndex) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("artifact: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("artifact: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("artifact: root is not a directory: %s", abs)
	}
	s := &Store{root: abs, label: label, idx: idx}
	if err := s.Resync(); err != nil {
		return nil, err
	}
	return s, nil
}

// Label returns the folder label.
func (s *Store) Label() string { return s.label }

// SaveFile stores uploaded file bytes under the next sequential name, or
// returns the name of an existing artifact with identical canonical content.
// The extension is taken from originalName; files with a ".txt" extension go
// through text normalization so they hash the same way a re-scan hashes them.
func (s *Store) SaveFile(data []byte, originalName, prefix string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == TextExt {
		data = []byte(textnorm.Normalize(string(data)))
	}
	return s.save(data, ext, prefix)
}

// SaveText normalizes and stores literal text as a ".txt" artifact.
func (s *Store) SaveText(text, prefix string) (string, error) {
	data := []byte(textnorm.Normalize(text))
	return s.save(data, TextExt, prefix)
}

func (s *Store) save(data []byte, ext, prefix string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash := checksum.Sum(data)
	if name, ok, err := s.idx.LookupHash(s.label, hash); err != nil {
		return "", err
	} else if ok {
		return name, nil
	}

	seq, err := s.idx.NextSeq(s.label, prefix)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%d%s", prefix, seq, ext)

	if err := s.writeAtomic(name, data); err != nil {
		return "", err
	}
	if err := s.idx.Upsert(index.ArtifactRow{
		Folder: s.label,
		Name:   name,
		Prefix: prefix,
		Seq:    seq,
		Hash:   hash,
	}); err != nil {
		return "", err
	}
	return name, nil
}

// Read returns the raw bytes of a stored artifact.
func (s *Store) Read(name string) ([]byte, error) {
	abs, err := s.safeName(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("artifact: %s: %w", name, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("artifact: read %s: %w", name, err)
	}
	return data, nil
}

// List returns all indexed artifacts sorted by name.
func (s *Store) List() ([]Info, error) {
	rows, err := s.idx.AllNames(s.label)
	if err != nil {
		return nil, err
	}
	out := make([]Info, 0, len(rows))
	for _, r := range rows {
		out = append(out, Info{Name: r.Name, Prefix: r.Prefix, Seq: r.Seq, Hash: r.Hash})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Resync walks the folder and brings the index up to date: every file on
// disk is rehashed and upserted, index rows for files removed from disk are
// deleted. Legacy ".txt" files are re-normalized before hashing so artifacts
// saved before a normalization change still deduplicate correctly.
func (s *Store) Resync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("artifact: read dir: %w", err)
	}

	indexed, err := s.idx.AllNames(s.label)
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), tmpPrefix) {
			continue
		}
		name := e.Name()
		disk[name] = struct{}{}

		data, err := os.ReadFile(filepath.Join(s.root, name))
		if err != nil {
			return fmt.Errorf("artifact: resync read %s: %w", name, err)
		}
		prefix, seq := parseName(name)
		if err := s.idx.Upsert(index.ArtifactRow{
			Folder: s.label,
			Name:   name,
			Prefix: prefix,
			Seq:    seq,
			Hash:   CanonicalHash(name, data),
		}); err != nil {
			return err
		}
	}

	for name := range indexed {
		if _, ok := disk[name]; !ok {
			if err := s.idx.Delete(s.label, name); err != nil {
				return err
			}
		}
	}
	return nil
}

// CanonicalHash computes the content hash the dedup contract compares:
// ".txt" artifacts are normalized first, everything else hashes as-is.
func CanonicalHash(name string, data []byte) string {
	if strings.EqualFold(filepath.Ext(name), TextExt) {
		return checksum.Sum([]byte(textnorm.Normalize(string(data))))
	}
	return checksum.Sum(data)
}

// parseName extracts the prefix and sequence number from a stored name like
// "resume_12.pdf". Files with a malformed or missing numeric suffix return
// seq 0 and take no part in sequence allocation.
func parseName(name string) (prefix string, seq int) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	i := strings.LastIndex(stem, "_")
	if i <= 0 {
		return "", 0
	}
	n, err := strconv.Atoi(stem[i+1:])
	if err != nil || n <= 0 {
		return "", 0
	}
	return stem[:i], n
}

const tmpPrefix = ".mannaz-tmp-"

// safeName validates that name is a plain file name and returns its absolute
// path inside the folder.
func (s *Store) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("artifact: name is required: %w", apperr.ErrInvalidInput)
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("artifact: invalid name %q: %w", name, apperr.ErrInvalidInput)
	}
	return filepath.Join(s.root, cleaned), nil
}

// writeAtomic writes content via tmp file -> fsync -> rename.
func (s *Store) writeAtomic(name string, content []byte) error {
	abs, err := s.safeName(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, tmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("artifact: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("artifact: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("artifact: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("artifact: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("artifact: rename: %w", err)
	}
	success = true
	return nil
}
