// WebSocket event streaming. Each region has a hub fanning simulation
// events out to connected clients; the hub's publish side runs on the
// tick goroutine and never blocks, so slow clients drop events instead
// of stalling the simulation.
package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mdwalters/symbiants/internal/engine"
)

const (
	maxStreamConns  = 8
	streamBuffer    = 256
	pingInterval    = 15 * time.Second
	writeDeadline   = 10 * time.Second
	catchUpEvents   = 50
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser origins are vetted by corsMiddleware for the REST surface;
	// the stream carries the same public read-only data.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type streamHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan engine.Event
}

func newStreamHub() *streamHub {
	return &streamHub{subs: make(map[int]chan engine.Event)}
}

// publish fans an event out to every subscriber without blocking.
func (h *streamHub) publish(e engine.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (h *streamHub) subscribe() (int, chan engine.Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.subs) >= maxStreamConns {
		return 0, nil, false
	}
	h.nextID++
	ch := make(chan engine.Event, streamBuffer)
	h.subs[h.nextID] = ch
	return h.nextID, ch, true
}

func (h *streamHub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// handleStream upgrades to a WebSocket and streams a region's events as
// JSON messages, starting with a short catch-up of recent ones.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	reg, ok := s.regions[region]
	if !ok {
		http.Error(w, "unknown region (use ?region=)", http.StatusNotFound)
		return
	}

	subID, ch, ok := reg.hub.subscribe()
	if !ok {
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		reg.hub.unsubscribe(subID)
		slog.Warn("stream upgrade failed", "error", err)
		return
	}
	defer reg.hub.unsubscribe(subID)
	defer conn.Close()

	// Catch-up: replay the tail of the in-memory log.
	s.Mu.Lock()
	events := reg.Sim.Events
	start := len(events) - catchUpEvents
	if start < 0 {
		start = 0
	}
	catchUp := make([]engine.Event, len(events)-start)
	copy(catchUp, events[start:])
	s.Mu.Unlock()

	for _, e := range catchUp {
		conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := conn.WriteJSON(e); err != nil {
			return
		}
	}

	slog.Info("stream client connected", "region", region, "sub_id", subID)

	// Reader goroutine: we never expect client messages, but reading is
	// required to process close frames and detect disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case e := <-ch:
			conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteJSON(e); err != nil {
				slog.Info("stream client disconnected", "region", region, "sub_id", subID)
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			slog.Info("stream client disconnected", "region", region, "sub_id", subID)
			return
		case <-r.Context().Done():
			return
		}
	}
}
