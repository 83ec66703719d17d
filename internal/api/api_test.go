package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/starford/mannaz/internal/audit"
	"github.com/starford/mannaz/internal/extract"
	"github.com/starford/mannaz/internal/matchsvc"
	"github.com/starford/mannaz/internal/skills"
	"github.com/starford/mannaz/internal/testutil"
)

// testEnv sets up temp stores, a ledger, the service, and the router.
// authToken empty means disabled auth mode.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()

	resumes, jds := testutil.TestStores(t)
	led := testutil.TestLedger(t)
	al := audit.NewLog(filepath.Join(t.TempDir(), "logs.txt"))
	svc := matchsvc.NewService(
		resumes, jds, led,
		extract.NewFileExtractor(),
		skills.NewExtractor(skills.DefaultDictionary()),
		matchsvc.LexicalScorer{},
		al,
	)
	return NewRouter(svc, authToken != "", authToken, nil)
}

type formFile struct {
	field, name string
	data        []byte
}

// multipartRequest builds a POST /process request from form values and files.
func multipartRequest(t *testing.T, values map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range values {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(f.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/process", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestProcessEndToEnd(t *testing.T) {
	router := testEnv(t, "")

	req := multipartRequest(t,
		map[string]string{
			"jd_text_input": "Python, AWS",
			"category":      "Engineering",
			"score":         "4.5",
		},
		formFile{field: "resume", name: "alice.txt", data: []byte("Python, SQL")},
	)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp ProcessResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Message != "Processed successfully" {
		t.Errorf("message = %q", resp.Message)
	}
	d := resp.Data
	if d.Resume != "resume_1.txt" || d.JobDescription != "jd_1.txt" {
		t.Errorf("artifacts = %q / %q", d.Resume, d.JobDescription)
	}
	if d.NumMatchedSkills != 1 || d.NumMissingSkills != 1 {
		t.Errorf("matched/missing = %d/%d, want 1/1", d.NumMatchedSkills, d.NumMissingSkills)
	}
	if len(d.MatchedSkills) != 1 || d.MatchedSkills[0].Skill != "python" || d.MatchedSkills[0].MatchedAs != "Python" {
		t.Errorf("matched_skills = %v", d.MatchedSkills)
	}
	if len(d.MissingSkills) != 1 || d.MissingSkills[0].Skill != "aws" || d.MissingSkills[0].ExpectedAs != "AWS" {
		t.Errorf("missing_skills = %v", d.MissingSkills)
	}
	if !d.Inserted {
		t.Error("first submission should insert")
	}
	if d.ResumeText != "Python, SQL" || d.JDText != "Python, AWS" {
		t.Errorf("texts = %q / %q", d.ResumeText, d.JDText)
	}

	// Identical resubmission: same artifacts, no new row, surfaced as a skip.
	req = multipartRequest(t,
		map[string]string{
			"jd_text_input": "Python, AWS",
			"category":      "Engineering",
			"score":         "4.5",
		},
		formFile{field: "resume", name: "copy-of-alice.txt", data: []byte("Python, SQL")},
	)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("duplicate status = %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message != "Duplicate comparison skipped" || resp.Data.Inserted {
		t.Errorf("duplicate response = %q inserted=%v", resp.Message, resp.Data.Inserted)
	}
	if resp.Data.Resume != "resume_1.txt" {
		t.Errorf("duplicate resume artifact = %q, want resume_1.txt", resp.Data.Resume)
	}

	// Exactly one ledger row.
	req = httptest.NewRequest(http.MethodGet, "/dataset", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("dataset status = %d", w.Code)
	}
	var ds DatasetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &ds); err != nil {
		t.Fatal(err)
	}
	if len(ds.Data) != 1 {
		t.Fatalf("rows = %d, want 1", len(ds.Data))
	}
	if ds.Data[0].MatchedSkills != 1 || ds.Data[0].MissingSkills != 1 {
		t.Errorf("row = %+v", ds.Data[0])
	}
}

func TestProcessJDFileUpload(t *testing.T) {
	router := testEnv(t, "")

	req := multipartRequest(t,
		map[string]string{"category": "Data", "score": "3"},
		formFile{field: "resume", name: "bob.txt", data: []byte("SQL and Docker")},
		formFile{field: "jd_file", name: "role.txt", data: []byte("Docker, Kubernetes")},
	)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ProcessResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.JobDescription != "jd_1.txt" {
		t.Errorf("jd artifact = %q", resp.Data.JobDescription)
	}
	if resp.Data.NumMatchedSkills != 1 {
		t.Errorf("matched = %d, want 1 (docker)", resp.Data.NumMatchedSkills)
	}
}

func TestProcessValidationErrors(t *testing.T) {
	router := testEnv(t, "")

	cases := []struct {
		name   string
		values map[string]string
		files  []formFile
	}{
		{
			"missing resume",
			map[string]string{"jd_text_input": "Go", "category": "x", "score": "1"},
			nil,
		},
		{
			"no jd source",
			map[string]string{"category": "x", "score": "1"},
			[]formFile{{field: "resume", name: "a.txt", data: []byte("x")}},
		},
		{
			"both jd sources",
			map[string]string{"jd_text_input": "Go", "category": "x", "score": "1"},
			[]formFile{
				{field: "resume", name: "a.txt", data: []byte("x")},
				{field: "jd_file", name: "b.txt", data: []byte("y")},
			},
		},
		{
			"missing score",
			map[string]string{"jd_text_input": "Go", "category": "x"},
			[]formFile{{field: "resume", name: "a.txt", data: []byte("x")}},
		},
		{
			"non-numeric score",
			map[string]string{"jd_text_input": "Go", "category": "x", "score": "high"},
			[]formFile{{field: "resume", name: "a.txt", data: []byte("x")}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := multipartRequest(t, tc.values, tc.files...)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
			var e errResponse
			if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil || e.Error == "" {
				t.Errorf("expected structured error payload, got %s", w.Body.String())
			}
		})
	}
}

func TestDatasetEmpty(t *testing.T) {
	router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/dataset", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Body.String(); got != "{\"data\":[]}\n" {
		t.Errorf("body = %q, want empty data list", got)
	}
}

func TestArtifactsListing(t *testing.T) {
	router := testEnv(t, "")

	req := multipartRequest(t,
		map[string]string{"jd_text_input": "Go", "category": "x", "score": "1"},
		formFile{field: "resume", name: "a.txt", data: []byte("Go developer")},
	)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("process status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/artifacts", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("artifacts status = %d", w.Code)
	}
	var resp ArtifactsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Resumes) != 1 || len(resp.JobDescriptions) != 1 {
		t.Errorf("artifacts = %d/%d, want 1/1", len(resp.Resumes), len(resp.JobDescriptions))
	}
}

func TestArtifactDownload(t *testing.T) {
	router := testEnv(t, "")

	req := multipartRequest(t,
		map[string]string{"jd_text_input": "Go", "category": "x", "score": "1"},
		formFile{field: "resume", name: "a.txt", data: []byte("Go developer")},
	)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("process status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/artifacts/resumes/resume_1.txt", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("download status = %d", w.Code)
	}
	if got := w.Body.String(); got != "Go developer" {
		t.Errorf("body = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/artifacts/resumes/resume_99.txt", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing artifact status = %d, want 404", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/artifacts/attachments/resume_1.txt", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown folder status = %d, want 404", w.Code)
	}
}

func TestAuthTokenMode(t *testing.T) {
	router := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/dataset", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("without token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/dataset", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("with token: status = %d, want 200", w.Code)
	}
}
