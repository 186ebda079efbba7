package api

import (
	"context"
	"encoding/json"
	"net/http"

	apperrors "github.com/mediagrab/backend/internal/errors"
	"github.com/mediagrab/backend/internal/format"
)

// FormatService resolves the selectable format catalog for a URL.
type FormatService interface {
	List(ctx context.Context, url, cookies string) (*format.Catalog, error)
}

type FormatHandlers struct {
	formats FormatService
}

func NewFormatHandlers(formats FormatService) *FormatHandlers {
	return &FormatHandlers{
		formats: formats,
	}
}

// ListFormatsRequest represents the request body for a format query. The
// POST form exists so cookie material never lands in server logs via the
// query string.
type ListFormatsRequest struct {
	URL     string `json:"url"`
	Cookies string `json:"cookies,omitempty"`
}

// ListFormats handles GET /api/v1/formats?url=...
func (h *FormatHandlers) ListFormats(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.RequestIDOrGenerate(r.Context())

	url := r.URL.Query().Get("url")
	h.respond(w, r, requestID, url, "")
}

// ListFormatsWithCookies handles POST /api/v1/formats
func (h *FormatHandlers) ListFormatsWithCookies(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.RequestIDOrGenerate(r.Context())

	var req ListFormatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, requestID, apperrors.ValidationError("invalid request body"))
		return
	}

	h.respond(w, r, requestID, req.URL, req.Cookies)
}

func (h *FormatHandlers) respond(w http.ResponseWriter, r *http.Request, requestID, url, cookies string) {
	catalog, err := h.formats.List(r.Context(), url, cookies)
	if err != nil {
		apperrors.WriteError(w, requestID, err)
		return
	}

	apperrors.WriteJSON(w, requestID, http.StatusOK, catalog)
}
