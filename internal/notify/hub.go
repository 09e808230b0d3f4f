package notify

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Notice is a real-time event pushed to connected staff dashboards.
type Notice struct {
	Level   string    `json:"level"` // info, warning, error
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans out notices to every connected websocket client.
type Hub struct {
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan Notice
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Notice, 64),
		done:      make(chan struct{}),
	}
}

// Run delivers queued notices until Stop is called. Start it in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case notice := <-h.broadcast:
			h.deliver(notice)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

// Broadcast queues a notice. Drops it when the queue is full so a burst of
// events never blocks the caller.
func (h *Hub) Broadcast(level, message string) {
	notice := Notice{Level: level, Message: message, Time: time.Now()}
	select {
	case h.broadcast <- notice:
	default:
		log.Printf("[Notify] Dropping notice, queue full: %s", message)
	}
}

func (h *Hub) deliver(notice Notice) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(notice); err != nil {
			// Slow or gone client, disconnect it
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// HandleWebSocket upgrades the request and registers the client.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Notify] WebSocket upgrade failed: %v", err)
		return
	}

	h.clientsMux.Lock()
	h.clients[conn] = true
	h.clientsMux.Unlock()

	// Reader loop only consumes control frames; clients never send data.
	go func() {
		defer func() {
			h.clientsMux.Lock()
			delete(h.clients, conn)
			h.clientsMux.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// ClientCount reports connected clients, used by the health endpoint.
func (h *Hub) ClientCount() int {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	return len(h.clients)
}
