package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mediagrab/backend/internal/download"
	apperrors "github.com/mediagrab/backend/internal/errors"
	"github.com/mediagrab/backend/internal/job"
)

// DownloadService is the job lifecycle surface the handlers depend on.
type DownloadService interface {
	Submit(ctx context.Context, req download.SubmitRequest) (string, error)
	Status(ctx context.Context, id string) (job.Record, error)
	ArtifactPath(ctx context.Context, id string) (string, error)
}

type DownloadHandlers struct {
	downloads DownloadService
}

func NewDownloadHandlers(downloads DownloadService) *DownloadHandlers {
	return &DownloadHandlers{
		downloads: downloads,
	}
}

// CreateDownloadRequest represents the request body for creating a download
type CreateDownloadRequest struct {
	URL     string `json:"url"`
	Format  string `json:"format"`
	Cookies string `json:"cookies,omitempty"`
}

// CreateDownloadResponse represents the response for a created download job
type CreateDownloadResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// CreateDownload handles POST /api/v1/downloads
func (h *DownloadHandlers) CreateDownload(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.RequestIDOrGenerate(r.Context())

	var req CreateDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, requestID, apperrors.ValidationError("invalid request body"))
		return
	}

	jobID, err := h.downloads.Submit(r.Context(), download.SubmitRequest{
		URL:     req.URL,
		Format:  req.Format,
		Cookies: req.Cookies,
	})
	if err != nil {
		apperrors.WriteError(w, requestID, err)
		return
	}

	apperrors.WriteJSON(w, requestID, http.StatusCreated, CreateDownloadResponse{
		JobID:  jobID,
		Status: string(job.StatusQueued),
	})
}

// GetJob handles GET /api/v1/downloads/{job_id}
//
// Unknown or expired jobs answer 200 with the not_found sentinel rather
// than 404, so polling clients read one shape for the whole lifecycle.
func (h *DownloadHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.RequestIDOrGenerate(r.Context())

	jobID := r.PathValue("job_id")
	if jobID == "" {
		apperrors.WriteError(w, requestID, apperrors.ValidationError("job_id is required"))
		return
	}

	rec, err := h.downloads.Status(r.Context(), jobID)
	if err != nil {
		apperrors.WriteError(w, requestID, err)
		return
	}

	apperrors.WriteJSON(w, requestID, http.StatusOK, rec)
}

// GetFile handles GET /api/v1/downloads/{job_id}/file
func (h *DownloadHandlers) GetFile(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.RequestIDOrGenerate(r.Context())

	jobID := r.PathValue("job_id")
	if jobID == "" {
		apperrors.WriteError(w, requestID, apperrors.ValidationError("job_id is required"))
		return
	}

	path, err := h.downloads.ArtifactPath(r.Context(), jobID)
	if err != nil {
		apperrors.WriteError(w, requestID, err)
		return
	}

	// The file can disappear between completion and retrieval.
	if _, err := os.Stat(path); err != nil {
		apperrors.WriteError(w, requestID, apperrors.ArtifactMissing())
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}
