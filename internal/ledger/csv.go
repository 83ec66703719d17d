package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

var header = []string{
	"Resume",
	"Job_Description",
	"Tfidf_Similarity",
	"Jaccard_Similarity",
	"Length_Ratio",
	"No_of_Matched_Skills",
	"No_of_Missing_Skills",
	"Category",
	"Score",
}

// CSV is a Ledger backed by a single flat CSV file. Every append re-reads
// and rewrites the whole table, which keeps the file a valid dataset at all
// times; a mutex serializes the read-modify-write so two concurrent appends
// of the same pair cannot both pass the duplicate check. The file is created
// lazily on first append.
type CSV struct {
	path string

	mu sync.Mutex
}

var _ Ledger = (*CSV)(nil)

// NewCSV creates a CSV ledger at path. The file itself is not touched until
// the first append.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// Append implements Ledger.
func (c *CSV) Append(r Record) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.load()
	if err != nil {
		return false, err
	}
	for _, existing := range rows {
		if existing.SamePair(r) {
			return false, nil
		}
	}
	rows = append(rows, r)
	if err := c.writeAll(rows); err != nil {
		return false, err
	}
	return true, nil
}

// ReadAll implements Ledger.
func (c *CSV) ReadAll() ([]Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

// load parses the whole table. A missing or empty file yields no rows.
func (c *CSV) load() ([]Record, error) {
	f, err := os.Open(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ledger: parse %s: %w", c.path, err)
	}
	if len(rows) == 0 {
		return []Record{}, nil
	}
	if len(rows[0]) != len(header) {
		return nil, fmt.Errorf("ledger: %s: unexpected header %v", c.path, rows[0])
	}
	for i, want := range header {
		if rows[0][i] != want {
			return nil, fmt.Errorf("ledger: %s: column %d is %q, want %q", c.path, i, rows[0][i], want)
		}
	}

	out := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("ledger: %s: %w", c.path, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseRow(row []string) (Record, error) {
	if len(row) != len(header) {
		return Record{}, fmt.Errorf("row has %d columns, want %d", len(row), len(header))
	}
	var (
		rec  Record
		errs []error
	)
	parseF := func(s string) float64 {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	parseI := func(s string) int {
		v, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	rec.Resume = row[0]
	rec.JobDescription = row[1]
	rec.TfidfSimilarity = parseF(row[2])
	rec.JaccardSimilarity = parseF(row[3])
	rec.LengthRatio = parseF(row[4])
	rec.MatchedSkills = parseI(row[5])
	rec.MissingSkills = parseI(row[6])
	rec.Category = row[7]
	rec.Score = parseF(row[8])
	if len(errs) > 0 {
		return Record{}, errs[0]
	}
	return rec, nil
}

// writeAll rewrites the table atomically: tmp file -> fsync -> rename.
func (c *CSV) writeAll(rows []Record) error {
	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".dataset-tmp-*")
	if err != nil {
		return fmt.Errorf("ledger: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("ledger: write header: %w", err)
	}
	for _, r := range rows {
		row := []string{
			r.Resume,
			r.JobDescription,
			strconv.FormatFloat(r.TfidfSimilarity, 'f', -1, 64),
			strconv.FormatFloat(r.JaccardSimilarity, 'f', -1, 64),
			strconv.FormatFloat(r.LengthRatio, 'f', -1, 64),
			strconv.Itoa(r.MatchedSkills),
			strconv.Itoa(r.MissingSkills),
			r.Category,
			strconv.FormatFloat(r.Score, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("ledger: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("ledger: flush: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("ledger: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ledger: close temp: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		return fmt.Errorf("ledger: rename: %w", err)
	}
	success = true
	return nil
}
