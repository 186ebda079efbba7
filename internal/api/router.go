package api

import (
	"net/http"
)

type Router struct {
	mux              *http.ServeMux
	downloadHandlers *DownloadHandlers
	formatHandlers   *FormatHandlers
	wsHandler        http.Handler
	healthHandler    http.Handler
	metricsHandler   http.Handler
}

func NewRouter(downloads DownloadService, formats FormatService, ws, health, metrics http.Handler) *Router {
	r := &Router{
		mux:              http.NewServeMux(),
		downloadHandlers: NewDownloadHandlers(downloads),
		formatHandlers:   NewFormatHandlers(formats),
		wsHandler:        ws,
		healthHandler:    health,
		metricsHandler:   metrics,
	}
	r.setupRoutes()
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) setupRoutes() {
	// Download lifecycle
	r.mux.HandleFunc("POST /api/v1/downloads", r.downloadHandlers.CreateDownload)
	r.mux.HandleFunc("GET /api/v1/downloads/{job_id}", r.downloadHandlers.GetJob)
	r.mux.HandleFunc("GET /api/v1/downloads/{job_id}/file", r.downloadHandlers.GetFile)

	// Format catalog
	r.mux.HandleFunc("GET /api/v1/formats", r.formatHandlers.ListFormats)
	r.mux.HandleFunc("POST /api/v1/formats", r.formatHandlers.ListFormatsWithCookies)

	// Live progress
	if r.wsHandler != nil {
		r.mux.Handle("GET /ws/downloads/{job_id}", r.wsHandler)
	}

	// Operational endpoints
	if r.healthHandler != nil {
		r.mux.Handle("GET /health", r.healthHandler)
	}
	if r.metricsHandler != nil {
		r.mux.Handle("GET /metrics", r.metricsHandler)
	}
}
