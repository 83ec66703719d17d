// Package matchsvc orchestrates one résumé / job-description comparison
// end-to-end: persist both documents, extract text, score similarity, diff
// skills, and append the result to the dataset ledger.
package matchsvc

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/artifact"
	"github.com/starford/mannaz/internal/audit"
	"github.com/starford/mannaz/internal/extract"
	"github.com/starford/mannaz/internal/ledger"
	"github.com/starford/mannaz/internal/similarity"
	"github.com/starford/mannaz/internal/skills"
)

// SkillExtractor is the skill-extraction collaborator.
type SkillExtractor interface {
	Extract(text string) skills.SkillSet
}

// Scorer is the similarity-scoring collaborator.
type Scorer interface {
	Score(resumeText, jdText string) similarity.Scores
}

// LexicalScorer scores with the built-in lexical measures.
type LexicalScorer struct{}

// Score implements Scorer.
func (LexicalScorer) Score(resumeText, jdText string) similarity.Scores {
	return similarity.Compute(resumeText, jdText)
}

// Service wires the stores, the ledger, and the collaborators into one
// comparison pipeline.
type Service struct {
	resumes   *artifact.Store
	jds       *artifact.Store
	ledger    ledger.Ledger
	extractor extract.Extractor
	skills    SkillExtractor
	scorer    Scorer
	audit     *audit.Log
}

// NewService creates a comparison service.
func NewService(resumes, jds *artifact.Store, led ledger.Ledger, ex extract.Extractor, se SkillExtractor, sc Scorer, al *audit.Log) *Service {
	return &Service{
		resumes:   resumes,
		jds:       jds,
		ledger:    led,
		extractor: ex,
		skills:    se,
		scorer:    sc,
		audit:     al,
	}
}

// ProcessInput is one comparison request.
type ProcessInput struct {
	ResumeName string
	ResumeData []byte

	// Exactly one of JDData (with JDName) or JDText must be set.
	JDName string
	JDData []byte
	JDText string

	Category string
	Score    float64
}

// ProcessResult is the full response payload of a comparison.
type ProcessResult struct {
	Record   ledger.Record
	Inserted bool

	Matched []skills.Match
	Missing []skills.Match

	ResumeSkills []string
	JDSkills     []string
	ResumeText   string
	JDText       string
}

func (in *ProcessInput) validate() error {
	if len(in.ResumeData) == 0 {
		return fmt.Errorf("%w: resume file is required", apperr.ErrInvalidInput)
	}
	hasFile := len(in.JDData) > 0
	hasText := in.JDText != ""
	if hasFile == hasText {
		return fmt.Errorf("%w: exactly one of jd_file and jd_text_input is required", apperr.ErrInvalidInput)
	}
	if in.Category == "" {
		return fmt.Errorf("%w: category is required", apperr.ErrInvalidInput)
	}
	return nil
}

// Process runs one comparison. The ledger append is the sole durable
// side effect beyond artifact storage and happens only after every
// computation step has succeeded; any earlier failure aborts the request
// with no partial ledger write.
func (s *Service) Process(_ context.Context, in ProcessInput) (*ProcessResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	resumeName, err := s.resumes.SaveFile(in.ResumeData, in.ResumeName, "resume")
	if err != nil {
		return nil, err
	}

	var (
		jdName string
		jdText string
	)
	if len(in.JDData) > 0 {
		jdName, err = s.jds.SaveFile(in.JDData, in.JDName, "jd")
		if err != nil {
			return nil, err
		}
		jdText, err = s.extractor.Extract(in.JDName, in.JDData)
		if err != nil {
			return nil, err
		}
	} else {
		jdName, err = s.jds.SaveText(in.JDText, "jd")
		if err != nil {
			return nil, err
		}
		jdText = in.JDText
	}

	resumeText, err := s.extractor.Extract(in.ResumeName, in.ResumeData)
	if err != nil {
		return nil, err
	}

	scores := s.scorer.Score(resumeText, jdText)

	resumeSkills := s.skills.Extract(resumeText)
	jdSkills := s.skills.Extract(jdText)
	matched, missing := skills.Diff(resumeSkills, jdSkills)

	// Scores are rounded at the persistence boundary only; the in-memory
	// values above keep full precision.
	rec := ledger.Record{
		Resume:            resumeName,
		JobDescription:    jdName,
		TfidfSimilarity:   round2(scores.TfIdf),
		JaccardSimilarity: round2(scores.Jaccard),
		LengthRatio:       round2(scores.LengthRatio),
		MatchedSkills:     len(matched),
		MissingSkills:     len(missing),
		Category:          in.Category,
		Score:             in.Score,
	}

	inserted, err := s.ledger.Append(rec)
	if err != nil {
		return nil, err
	}
	if inserted {
		s.auditf("Dataset updated -> %s | %s", resumeName, jdName)
	} else {
		s.auditf("Duplicate skipped -> %s | %s", resumeName, jdName)
	}

	return &ProcessResult{
		Record:       rec,
		Inserted:     inserted,
		Matched:      matched,
		Missing:      missing,
		ResumeSkills: resumeSkills.Canonicals(),
		JDSkills:     jdSkills.Canonicals(),
		ResumeText:   resumeText,
		JDText:       jdText,
	}, nil
}

// Dataset returns every ledger row in insertion order.
func (s *Service) Dataset(_ context.Context) ([]ledger.Record, error) {
	return s.ledger.ReadAll()
}

// ReadArtifact returns the raw bytes of a stored document addressed by its
// folder label and name.
func (s *Service) ReadArtifact(_ context.Context, folder, name string) ([]byte, error) {
	switch folder {
	case s.resumes.Label():
		return s.resumes.Read(name)
	case s.jds.Label():
		return s.jds.Read(name)
	}
	return nil, fmt.Errorf("folder %s: %w", folder, apperr.ErrNotFound)
}

// Artifacts lists the stored artifacts of both folders.
func (s *Service) Artifacts(_ context.Context) (resumes, jds []artifact.Info, err error) {
	resumes, err = s.resumes.List()
	if err != nil {
		return nil, nil, err
	}
	jds, err = s.jds.List()
	if err != nil {
		return nil, nil, err
	}
	return resumes, jds, nil
}

// auditf best-effort writes to the audit trail; the comparison has already
// been persisted at this point, so an audit failure only warns.
func (s *Service) auditf(format string, args ...any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Write(format, args...); err != nil {
		slog.Warn("audit write failed", slog.String("error", err.Error()))
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
