package realtime

import (
	"context"
	"sync"

	"github.com/kendall-kelly/estate-inquiries-api/logger"
)

// Hub fans serialized events out to the websocket clients subscribed to a topic
type Hub struct {
	// Subscribed clients grouped by topic
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *delivery

	mu sync.RWMutex
}

type delivery struct {
	topic string
	data  []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *delivery, 256),
	}
}

// Register subscribes a client to its topic
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister drops a client and closes its send queue
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Run processes registrations and deliveries until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.topic] == nil {
				h.clients[client.topic] = make(map[*Client]bool)
			}
			h.clients[client.topic][client] = true
			h.mu.Unlock()
			activeSubscriptions.Inc()

		case client := <-h.unregister:
			h.remove(client)

		case d := <-h.broadcast:
			h.deliver(d)

		case <-ctx.Done():
			return
		}
	}
}

// Publish queues data for every subscriber of topic. It never waits for
// subscribers; a full hub queue drops the delivery.
func (h *Hub) Publish(_ context.Context, topic string, data []byte) error {
	select {
	case h.broadcast <- &delivery{topic: topic, data: data}:
	default:
		notificationsDropped.WithLabelValues("hub").Inc()
		logger.Get().Warn().Str("topic", topic).Msg("hub queue full, dropping delivery")
	}
	return nil
}

// Subscribers reports how many clients listen on topic
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

func (h *Hub) deliver(d *delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[d.topic] {
		select {
		case client.send <- d.data:
		default:
			// slow subscriber
			h.removeLocked(client)
			notificationsDropped.WithLabelValues("subscriber").Inc()
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.topic]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	activeSubscriptions.Dec()
	if len(clients) == 0 {
		delete(h.clients, client.topic)
	}
}
