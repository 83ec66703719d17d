package api

import (
	"github.com/starford/mannaz/internal/artifact"
	"github.com/starford/mannaz/internal/ledger"
	"github.com/starford/mannaz/internal/matchsvc"
)

// MatchedSkill is one skill present in both documents, shown under the
// résumé's surface form.
type MatchedSkill struct {
	Skill     string `json:"skill"`
	MatchedAs string `json:"matched_as"`
}

// MissingSkill is one skill the job description expects but the résumé
// lacks, shown under the JD's surface form.
type MissingSkill struct {
	Skill      string `json:"skill"`
	ExpectedAs string `json:"expected_as"`
}

// ProcessData is the data portion of a successful /process response.
type ProcessData struct {
	Resume            string  `json:"resume"`
	JobDescription    string  `json:"job_description"`
	TfidfSimilarity   float64 `json:"tfidf_similarity"`
	JaccardSimilarity float64 `json:"jaccard_similarity"`
	LengthRatio       float64 `json:"length_ratio"`
	NumMatchedSkills  int     `json:"num_matched_skills"`
	NumMissingSkills  int     `json:"num_missing_skills"`
	Category          string  `json:"category"`
	Score             float64 `json:"score"`
	Inserted          bool    `json:"inserted"`

	MatchedSkills []MatchedSkill `json:"matched_skills"`
	MissingSkills []MissingSkill `json:"missing_skills"`
	ResumeSkills  []string       `json:"resume_skills"`
	JDSkills      []string       `json:"jd_skills"`
	ResumeText    string         `json:"resume_text"`
	JDText        string         `json:"jd_text"`
}

// ProcessResponse is the full /process response body.
type ProcessResponse struct {
	Message string      `json:"message"`
	Data    ProcessData `json:"data"`
}

// DatasetResponse wraps the full ledger.
type DatasetResponse struct {
	Data []ledger.Record `json:"data"`
}

// ArtifactsResponse lists both artifact folders.
type ArtifactsResponse struct {
	Resumes         []artifact.Info `json:"resumes"`
	JobDescriptions []artifact.Info `json:"job_descriptions"`
}

func toProcessData(res *matchsvc.ProcessResult) ProcessData {
	matched := make([]MatchedSkill, 0, len(res.Matched))
	for _, m := range res.Matched {
		matched = append(matched, MatchedSkill{Skill: m.Skill, MatchedAs: m.Alias})
	}
	missing := make([]MissingSkill, 0, len(res.Missing))
	for _, m := range res.Missing {
		missing = append(missing, MissingSkill{Skill: m.Skill, ExpectedAs: m.Alias})
	}
	return ProcessData{
		Resume:            res.Record.Resume,
		JobDescription:    res.Record.JobDescription,
		TfidfSimilarity:   res.Record.TfidfSimilarity,
		JaccardSimilarity: res.Record.JaccardSimilarity,
		LengthRatio:       res.Record.LengthRatio,
		NumMatchedSkills:  res.Record.MatchedSkills,
		NumMissingSkills:  res.Record.MissingSkills,
		Category:          res.Record.Category,
		Score:             res.Record.Score,
		Inserted:          res.Inserted,
		MatchedSkills:     matched,
		MissingSkills:     missing,
		ResumeSkills:      res.ResumeSkills,
		JDSkills:          res.JDSkills,
		ResumeText:        res.ResumeText,
		JDText:            res.JDText,
	}
}
