package websocket

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mediagrab/backend/internal/job"
	"github.com/mediagrab/backend/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Configure allowed origins for production
		return true
	},
}

// StatusReader reads the current state of a job, used to seed a new
// watcher with a snapshot before live updates flow.
type StatusReader interface {
	Status(ctx context.Context, id string) (job.Record, error)
}

// Handler handles WebSocket connections.
type Handler struct {
	hub    *Hub
	status StatusReader
	log    *logger.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, status StatusReader) *Handler {
	return &Handler{
		hub:    hub,
		status: status,
		log:    logger.Default().WithComponent("websocket"),
	}
}

// ServeHTTP handles GET /ws/downloads/{job_id}: upgrades the connection
// and streams that job's state changes until the peer disconnects.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	if jobID == "" {
		http.Error(w, `{"code":"VALIDATION_ERROR","message":"job_id is required"}`, http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	client := NewClient(h.hub, conn, jobID)
	h.hub.register <- client

	go client.WritePump()
	go client.ReadPump()

	// Seed the watcher with the current snapshot so late joiners see
	// state immediately instead of waiting for the next transition.
	if h.status != nil {
		if rec, err := h.status.Status(r.Context(), jobID); err == nil {
			select {
			case client.send <- recordMessage(rec):
			default:
			}
		}
	}
}

// GetHub returns the hub instance for external access.
func (h *Handler) GetHub() *Hub {
	return h.hub
}
