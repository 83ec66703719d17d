// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes mannaz comparison tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mannaz/internal/matchsvc"
)

// Server wraps the MCP server with mannaz tools.
type Server struct {
	mcp *server.MCPServer
	svc *matchsvc.Service
}

// New creates a new MCP server with all mannaz tools registered.
func New(svc *matchsvc.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Mannaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("compare_text",
		mcp.WithDescription("Compare a résumé against a job description, both given as "+
			"plain text. Stores both documents, scores their similarity, diffs skills, "+
			"and appends the comparison to the dataset (duplicate pairs are skipped)."),
		mcp.WithString("resume_text", mcp.Required(), mcp.Description("Résumé content as plain text")),
		mcp.WithString("jd_text", mcp.Required(), mcp.Description("Job description content as plain text")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Label for the comparison (e.g. Engineering)")),
		mcp.WithNumber("score", mcp.Required(), mcp.Description("Human-assigned relevance score")),
	), s.compareText)

	s.mcp.AddTool(mcp.NewTool("read_dataset",
		mcp.WithDescription("Read every row of the comparison dataset in insertion order."),
	), s.readDataset)

	s.mcp.AddTool(mcp.NewTool("list_artifacts",
		mcp.WithDescription("List stored résumé and job-description artifacts."),
	), s.listArtifacts)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// compareResult is the JSON payload returned by the compare_text tool.
type compareResult struct {
	Resume            string   `json:"resume"`
	JobDescription    string   `json:"job_description"`
	TfidfSimilarity   float64  `json:"tfidf_similarity"`
	JaccardSimilarity float64  `json:"jaccard_similarity"`
	LengthRatio       float64  `json:"length_ratio"`
	MatchedSkills     []string `json:"matched_skills"`
	MissingSkills     []string `json:"missing_skills"`
	Inserted          bool     `json:"inserted"`
	Message           string   `json:"message"`
}

func (s *Server) compareText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resumeText, err := req.RequireString("resume_text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	jdText, err := req.RequireString("jd_text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	score, err := req.RequireFloat("score")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.svc.Process(ctx, matchsvc.ProcessInput{
		ResumeName: "resume.txt",
		ResumeData: []byte(resumeText),
		JDText:     jdText,
		Category:   category,
		Score:      score,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	message := "Processed successfully"
	if !res.Inserted {
		message = "Duplicate comparison skipped"
	}
	matched := make([]string, 0, len(res.Matched))
	for _, m := range res.Matched {
		matched = append(matched, m.Skill)
	}
	missing := make([]string, 0, len(res.Missing))
	for _, m := range res.Missing {
		missing = append(missing, m.Skill)
	}
	out, _ := json.MarshalIndent(compareResult{
		Resume:            res.Record.Resume,
		JobDescription:    res.Record.JobDescription,
		TfidfSimilarity:   res.Record.TfidfSimilarity,
		JaccardSimilarity: res.Record.JaccardSimilarity,
		LengthRatio:       res.Record.LengthRatio,
		MatchedSkills:     matched,
		MissingSkills:     missing,
		Inserted:          res.Inserted,
		Message:           message,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDataset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := s.svc.Dataset(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(rows, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listArtifacts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resumes, jds, err := s.svc.Artifacts(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("resumes:\n")
	for _, a := range resumes {
		fmt.Fprintf(&b, "  %s\n", a.Name)
	}
	b.WriteString("job_descriptions:\n")
	for _, a := range jds {
		fmt.Fprintf(&b, "  %s\n", a.Name)
	}
	return mcp.NewToolResultText(b.String()), nil
}
