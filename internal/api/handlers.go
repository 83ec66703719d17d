package api

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/matchsvc"
	"github.com/starford/mannaz/internal/sse"
)

const maxUploadBytes = 50 << 20 // 50 MB

// Handler holds API route handlers.
type Handler struct {
	svc    *matchsvc.Service
	broker *sse.Broker
}

// NewHandler creates a new Handler. broker may be nil when SSE is not wired.
func NewHandler(svc *matchsvc.Service, broker *sse.Broker) *Handler {
	return &Handler{svc: svc, broker: broker}
}

// readFormFile returns the bytes and filename of an optional multipart file
// field. A missing field yields (nil, "", nil).
func readFormFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

// Process handles POST /process: persist both documents, score them, diff
// skills, and append to the dataset.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("request too large or invalid multipart form"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	resumeData, resumeName, err := readFormFile(r, "resume")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read 'resume' field"))
		return
	}
	jdData, jdName, err := readFormFile(r, "jd_file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read 'jd_file' field"))
		return
	}

	scoreRaw := r.FormValue("score")
	if scoreRaw == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("score is required"))
		return
	}
	score, err := strconv.ParseFloat(scoreRaw, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("score must be a number"))
		return
	}

	in := matchsvc.ProcessInput{
		ResumeName: resumeName,
		ResumeData: resumeData,
		JDName:     jdName,
		JDData:     jdData,
		JDText:     r.FormValue("jd_text_input"),
		Category:   r.FormValue("category"),
		Score:      score,
	}

	res, err := h.svc.Process(r.Context(), in)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		slog.Error("process failed",
			slog.String("resume", resumeName),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	if h.broker != nil {
		h.broker.PublishDatasetEvent(res.Inserted, res.Record.Resume, res.Record.JobDescription)
	}

	message := "Processed successfully"
	if !res.Inserted {
		message = "Duplicate comparison skipped"
	}
	writeJSON(w, http.StatusOK, ProcessResponse{
		Message: message,
		Data:    toProcessData(res),
	})
}

// Dataset handles GET /dataset: every ledger row in insertion order.
func (h *Handler) Dataset(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Dataset(r.Context())
	if err != nil {
		slog.Error("dataset read failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, DatasetResponse{Data: rows})
}

// Artifacts handles GET /artifacts: the contents of both document folders.
func (h *Handler) Artifacts(w http.ResponseWriter, r *http.Request) {
	resumes, jds, err := h.svc.Artifacts(r.Context())
	if err != nil {
		slog.Error("artifact list failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ArtifactsResponse{Resumes: resumes, JobDescriptions: jds})
}

// Artifact handles GET /artifacts/{folder}/{name}: the raw bytes of one
// stored document.
func (h *Handler) Artifact(w http.ResponseWriter, r *http.Request) {
	folder := chi.URLParam(r, "folder")
	name := chi.URLParam(r, "name")

	data, err := h.svc.ReadArtifact(r.Context(), folder, name)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("artifact not found"))
		case errors.Is(err, apperr.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid artifact name"))
		default:
			slog.Error("artifact read failed",
				slog.String("folder", folder),
				slog.String("name", name),
				slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	ct := mime.TypeByExtension(filepath.Ext(name))
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
