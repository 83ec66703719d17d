package matchsvc

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/audit"
	"github.com/starford/mannaz/internal/extract"
	"github.com/starford/mannaz/internal/skills"
	"github.com/starford/mannaz/internal/testutil"
)

func testService(t *testing.T) *Service {
	t.Helper()
	resumes, jds := testutil.TestStores(t)
	led := testutil.TestLedger(t)
	al := audit.NewLog(filepath.Join(t.TempDir(), "logs.txt"))
	se := skills.NewExtractor(skills.DefaultDictionary())
	return NewService(resumes, jds, led, extract.NewFileExtractor(), se, LexicalScorer{}, al)
}

func TestProcessEndToEnd(t *testing.T) {
	svc := testService(t)

	res, err := svc.Process(context.Background(), ProcessInput{
		ResumeName: "alice.txt",
		ResumeData: []byte("Skilled in Python, SQL"),
		JDText:     "We need Python, AWS",
		Category:   "Engineering",
		Score:      4.5,
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if res.Record.Resume != "resume_1.txt" || res.Record.JobDescription != "jd_1.txt" {
		t.Errorf("artifact names = %q / %q", res.Record.Resume, res.Record.JobDescription)
	}
	if res.Record.MatchedSkills != 1 || res.Record.MissingSkills != 1 {
		t.Errorf("matched/missing = %d/%d, want 1/1", res.Record.MatchedSkills, res.Record.MissingSkills)
	}
	if len(res.Matched) != 1 || res.Matched[0].Skill != "python" || res.Matched[0].Alias != "Python" {
		t.Errorf("matched = %v", res.Matched)
	}
	if len(res.Missing) != 1 || res.Missing[0].Skill != "aws" || res.Missing[0].Alias != "AWS" {
		t.Errorf("missing = %v", res.Missing)
	}
	if !res.Inserted {
		t.Error("first comparison should insert")
	}
	if res.Record.Category != "Engineering" || res.Record.Score != 4.5 {
		t.Errorf("record = %+v", res.Record)
	}

	rows, err := svc.Dataset(context.Background())
	if err != nil {
		t.Fatalf("Dataset: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
}

func TestProcessDuplicateSubmission(t *testing.T) {
	svc := testService(t)
	in := ProcessInput{
		ResumeName: "alice.txt",
		ResumeData: []byte("Python, SQL"),
		JDText:     "Python, AWS",
		Category:   "Engineering",
		Score:      4.5,
	}

	first, err := svc.Process(context.Background(), in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	second, err := svc.Process(context.Background(), in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	// Same artifacts, no new ledger row.
	if second.Record.Resume != first.Record.Resume || second.Record.JobDescription != first.Record.JobDescription {
		t.Errorf("artifact names changed: %+v vs %+v", second.Record, first.Record)
	}
	if !first.Inserted || second.Inserted {
		t.Errorf("inserted = (%v, %v), want (true, false)", first.Inserted, second.Inserted)
	}
	rows, _ := svc.Dataset(context.Background())
	if len(rows) != 1 {
		t.Errorf("rows = %d, want 1", len(rows))
	}
}

func TestProcessValidation(t *testing.T) {
	svc := testService(t)
	cases := []struct {
		name string
		in   ProcessInput
	}{
		{"missing resume", ProcessInput{JDText: "Go", Category: "x"}},
		{"no jd source", ProcessInput{ResumeName: "a.txt", ResumeData: []byte("x"), Category: "x"}},
		{"both jd sources", ProcessInput{
			ResumeName: "a.txt", ResumeData: []byte("x"),
			JDName: "jd.txt", JDData: []byte("y"), JDText: "z", Category: "x",
		}},
		{"missing category", ProcessInput{ResumeName: "a.txt", ResumeData: []byte("x"), JDText: "y"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Process(context.Background(), tc.in)
			if !errors.Is(err, apperr.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestProcessRoundsPersistedScores(t *testing.T) {
	svc := testService(t)
	res, err := svc.Process(context.Background(), ProcessInput{
		ResumeName: "a.txt",
		ResumeData: []byte("alpha beta gamma"),
		JDText:     "alpha beta gamma delta epsilon zeta eta",
		Category:   "x",
		Score:      3,
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	for name, v := range map[string]float64{
		"tfidf":        res.Record.TfidfSimilarity,
		"jaccard":      res.Record.JaccardSimilarity,
		"length_ratio": res.Record.LengthRatio,
	} {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > 2 {
			t.Errorf("%s = %s, not rounded to two decimals", name, s)
		}
	}
}

func TestProcessExtractionFailureNoLedgerWrite(t *testing.T) {
	svc := testService(t)
	_, err := svc.Process(context.Background(), ProcessInput{
		ResumeName: "broken.pdf",
		ResumeData: []byte("not a real pdf"),
		JDText:     "Python",
		Category:   "x",
		Score:      1,
	})
	if err == nil {
		t.Fatal("expected extraction failure")
	}
	rows, readErr := svc.Dataset(context.Background())
	if readErr != nil {
		t.Fatalf("Dataset: %v", readErr)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %d, want 0 (no partial ledger write)", len(rows))
	}
}
