// file: internal/realtime/events.go
// version: 2.0.0
// guid: 9e8d7f6a-5c4b-3a21-0f9e-8d7c6b5a4392

package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// EventType defines the type of real-time event
type EventType string

const (
	EventReportCreated EventType = "report.created"
	EventReportDeleted EventType = "report.deleted"
	EventMatchFound    EventType = "match.found"
	EventSystemStatus  EventType = "system.status"
)

// Event represents a real-time event to send to clients
type Event struct {
	Type      EventType      `json:"type"`
	ID        string         `json:"id"` // report the event concerns; empty for system events
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// Client represents a connected SSE client
type Client struct {
	ID      string
	Channel chan *Event
	Reports map[string]bool // Reports this client is interested in
	mu      sync.RWMutex
}

// NewClient creates a new SSE client
func NewClient(id string) *Client {
	return &Client{
		ID:      id,
		Channel: make(chan *Event, 100),
		Reports: make(map[string]bool),
	}
}

// Subscribe subscribes the client to events about one report
func (c *Client) Subscribe(reportID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Reports[reportID] = true
}

// IsSubscribed checks if client is subscribed to a report
func (c *Client) IsSubscribed(reportID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Reports[reportID]
}

func (c *Client) wantsAll() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Reports) == 0
}

// EventHub manages SSE connections and event distribution
type EventHub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewEventHub creates a new event hub
func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[string]*Client),
	}
}

// RegisterClient registers a new client
func (h *EventHub) RegisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("[DEBUG] SSE client %s registered, total clients: %d", client.ID, len(h.clients))
}

// UnregisterClient removes a client
func (h *EventHub) UnregisterClient(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, exists := h.clients[clientID]; exists {
		close(client.Channel)
		delete(h.clients, clientID)
		log.Printf("[DEBUG] SSE client %s unregistered, remaining clients: %d", clientID, len(h.clients))
	}
}

// Broadcast sends an event to all interested clients. A full client
// channel drops the event rather than blocking the publisher.
func (h *EventHub) Broadcast(event *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if event.ID == "" || client.wantsAll() || client.IsSubscribed(event.ID) {
			select {
			case client.Channel <- event:
			default:
				log.Printf("[WARN] SSE client %s channel full, dropping %s event", client.ID, event.Type)
			}
		}
	}
}

// SendReportCreated announces a newly stored report
func (h *EventHub) SendReportCreated(reportID, kind, name string) {
	h.Broadcast(&Event{
		Type:      EventReportCreated,
		ID:        reportID,
		Timestamp: time.Now(),
		Data: map[string]any{
			"report_id": reportID,
			"kind":      kind,
			"name":      name,
		},
	})
}

// SendReportDeleted announces a removed report
func (h *EventHub) SendReportDeleted(reportID string) {
	h.Broadcast(&Event{
		Type:      EventReportDeleted,
		ID:        reportID,
		Timestamp: time.Now(),
		Data:      map[string]any{"report_id": reportID},
	})
}

// SendMatchFound publishes the potential matches computed for a report
func (h *EventHub) SendMatchFound(reportID string, count int, message string, matches any) {
	h.Broadcast(&Event{
		Type:      EventMatchFound,
		ID:        reportID,
		Timestamp: time.Now(),
		Data: map[string]any{
			"report_id": reportID,
			"count":     count,
			"message":   message,
			"matches":   matches,
		},
	})
}

// SendSystemStatus sends a system status event
func (h *EventHub) SendSystemStatus(data map[string]any) {
	h.Broadcast(&Event{
		Type:      EventSystemStatus,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// GetClientCount returns the number of connected clients
func (h *EventHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func writeSSE(c *gin.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}

// HandleSSE handles Server-Sent Events connection. ?report=<id> limits the
// stream to events about that report.
func (h *EventHub) HandleSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache, no-transform")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	clientID := fmt.Sprintf("client-%d", time.Now().UnixNano())
	client := NewClient(clientID)
	if reportID := c.Query("report"); reportID != "" {
		client.Subscribe(reportID)
	}

	h.RegisterClient(client)
	defer h.UnregisterClient(clientID)

	_ = writeSSE(c, &Event{
		Type:      "connection.established",
		Timestamp: time.Now(),
		Data:      map[string]any{"client_id": clientID},
	})

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case event, ok := <-client.Channel:
			if !ok {
				return
			}
			if err := writeSSE(c, event); err != nil {
				log.Printf("[WARN] SSE write to %s failed: %v", clientID, err)
				return
			}
		case <-ticker.C:
			_ = writeSSE(c, map[string]any{"type": "heartbeat", "timestamp": time.Now()})
		}
	}
}

// Global event hub instance
var GlobalHub *EventHub

// InitializeEventHub initializes the global event hub
func InitializeEventHub() {
	if GlobalHub != nil {
		log.Println("[WARN] event hub already initialized")
		return
	}
	GlobalHub = NewEventHub()
}
