package main

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/NotCoffee418/p1_telegram/pkg/interpreter"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins, the API only serves the local network
	},
}

// latestFunc returns the most recent reading, nil before the first telegram.
type latestFunc func() *interpreter.Reading

func newRouter(latest latestFunc, hub *broadcastHub) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "P1 Telegram Interpreter API",
			"status":  "running",
		})
	})

	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		reading := latest()
		if reading == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "No readings available yet",
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(reading.ToJsonBytes())
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.logger.Warn().Err(err).Msg("WebSocket upgrade error")
			return
		}

		hub.Add(conn)

		// Send current reading immediately if available
		if reading := latest(); reading != nil {
			hub.send(conn, reading.ToJsonBytes())
		}

		// Keep connection alive
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				hub.Remove(conn)
				break
			}
		}
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// broadcastHub fans readings out to the connected websocket clients.
type broadcastHub struct {
	logger  zerolog.Logger
	clients map[*websocket.Conn]*sync.Mutex
	mu      sync.RWMutex
}

func newBroadcastHub(logger zerolog.Logger) *broadcastHub {
	return &broadcastHub{
		logger:  logger,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

func (h *broadcastHub) Broadcast(reading *interpreter.Reading) {
	data := reading.ToJsonBytes()

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.send(client, data)
	}
}

// send serializes writes per connection; gorilla allows one writer at a time.
func (h *broadcastHub) send(conn *websocket.Conn, data []byte) {
	h.mu.RLock()
	lock, ok := h.clients[conn]
	h.mu.RUnlock()
	if !ok {
		return
	}

	lock.Lock()
	err := conn.WriteMessage(websocket.TextMessage, data)
	lock.Unlock()
	if err != nil {
		h.Remove(conn)
	}
}

func (h *broadcastHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	h.mu.Unlock()
	h.logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("WebSocket client connected")
}

func (h *broadcastHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		conn.Close()
	}
}

func (h *broadcastHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
