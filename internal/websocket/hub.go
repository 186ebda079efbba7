package websocket

import (
	"sync"

	"github.com/mediagrab/backend/internal/job"
)

// Hub maintains the set of active clients and fans job updates out to the
// watchers of each job.
type Hub struct {
	// Registered clients by job ID
	clients map[string]map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Broadcast channel for job updates
	broadcast chan *JobMessage

	done chan struct{}

	metrics ConnectionMetrics

	mu sync.RWMutex
}

// ConnectionMetrics counts connected websocket clients.
type ConnectionMetrics interface {
	IncWSConnections()
	DecWSConnections()
}

// JobMessage is one job state snapshot pushed to watchers.
type JobMessage struct {
	Type     string        `json:"type"`
	JobID    string        `json:"job_id"`
	Status   job.Status    `json:"status"`
	Progress *job.Progress `json:"progress,omitempty"`
	Result   *job.Result   `json:"result,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *JobMessage),
		done:       make(chan struct{}),
	}
}

// SetMetrics attaches a connection gauge. Must be called before Run.
func (h *Hub) SetMetrics(m ConnectionMetrics) {
	h.metrics = m
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.jobID] == nil {
				h.clients[client.jobID] = make(map[*Client]bool)
			}
			h.clients[client.jobID][client] = true
			h.mu.Unlock()
			if h.metrics != nil {
				h.metrics.IncWSConnections()
			}

		case client := <-h.unregister:
			removed := false
			h.mu.Lock()
			if clients, ok := h.clients[client.jobID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					removed = true
					if len(clients) == 0 {
						delete(h.clients, client.jobID)
					}
				}
			}
			h.mu.Unlock()
			if removed && h.metrics != nil {
				h.metrics.DecWSConnections()
			}

		case message := <-h.broadcast:
			evicted := 0
			h.mu.Lock()
			if clients, ok := h.clients[message.JobID]; ok {
				for client := range clients {
					select {
					case client.send <- message:
					default:
						// Client's buffer is full, close the connection
						close(client.send)
						delete(clients, client)
						evicted++
					}
				}
				if len(clients) == 0 {
					delete(h.clients, message.JobID)
				}
			}
			h.mu.Unlock()
			for ; evicted > 0 && h.metrics != nil; evicted-- {
				h.metrics.DecWSConnections()
			}
		}
	}
}

// Close stops the hub's main loop.
func (h *Hub) Close() {
	close(h.done)
}

// Broadcast sends a job update to all watchers of that job. Drops the
// message if the hub has been closed.
func (h *Hub) Broadcast(msg *JobMessage) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// WatcherCount returns the number of connected clients for a job.
func (h *Hub) WatcherCount(jobID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.clients[jobID]; ok {
		return len(clients)
	}
	return 0
}

// TotalClients returns the total number of connected clients.
func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	count := 0
	for _, clients := range h.clients {
		count += len(clients)
	}
	return count
}
