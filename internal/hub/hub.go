package hub

import (
	"log"
	"sync"
)

// Client is one connected display. Send is owned by the hub: it is
// closed on Unregister and written to only under the hub lock.
type Client struct {
	ID   string
	Send chan []byte
}

// Hub fans the latest queue snapshot out to every connected display.
// Delivery is best effort: a client whose buffer is full misses this
// publish and catches up on the next one.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	latest  []byte
}

func New() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Register adds a client and immediately hands it the latest snapshot
// so a freshly connected display is never blank until the next mutation.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	if h.latest != nil {
		select {
		case client.Send <- h.latest:
		default:
		}
	}
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	close(client.Send)
}

func (h *Hub) Publish(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = payload
	for _, client := range h.clients {
		select {
		case client.Send <- payload:
		default:
			log.Printf("hub drop snapshot for client %s", client.ID)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
