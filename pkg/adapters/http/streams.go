package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yannickbattail/scadwrap/pkg/domain"
)

// Event is the SSE payload describing one tool invocation.
type Event struct {
	Type      string           `json:"type"` // "invoke" or "complete"
	Operation domain.Operation `json:"operation"`
	Model     string           `json:"model"`
	Timestamp time.Time        `json:"timestamp"`
	Duration  time.Duration    `json:"duration,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// StreamManager fans invocation events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan<- string]struct{}
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan<- string]struct{}),
	}
}

func (sm *StreamManager) Subscribe() (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			slog.Warn("SSE: Client buffer full, dropping message")
		}
	}
}

// Hooks publishes every invocation start and end to the subscribers.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	publish := func(kind string, e *domain.InvocationEvent) {
		ev := Event{
			Type:      kind,
			Operation: e.Operation,
			Model:     e.ModelFile,
			Timestamp: e.Timestamp,
			Duration:  e.Duration,
		}
		if e.Err != nil {
			ev.Error = e.Err.Error()
		}
		if data, err := json.Marshal(ev); err == nil {
			sm.Broadcast(string(data))
		}
	}
	return domain.LifecycleHooks{
		OnInvoke: func(_ context.Context, e *domain.InvocationEvent) {
			publish("invoke", e)
		},
		OnComplete: func(_ context.Context, e *domain.InvocationEvent) {
			publish("complete", e)
		},
	}
}

// SubscribeEvents handles GET /v1/events (SSE). The optional "operation"
// query parameter is a comma separated filter.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Streams == nil {
		http.Error(w, "Event stream not configured", http.StatusNotFound)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	watch := make(map[domain.Operation]bool)
	if q := r.URL.Query().Get("operation"); q != "" {
		for _, op := range strings.Split(q, ",") {
			watch[domain.Operation(strings.TrimSpace(op))] = true
		}
	}

	ch, cancel := s.cfg.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 {
				var ev Event
				if err := json.Unmarshal([]byte(msg), &ev); err == nil && !watch[ev.Operation] {
					continue
				}
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
