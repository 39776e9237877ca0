package realtime

import (
	"context"
	"sync"

	"github.com/wonny/liga/backend/internal/contracts"
	"github.com/wonny/liga/backend/internal/realtime/cache"
	"github.com/wonny/liga/backend/pkg/logger"
	"github.com/wonny/liga/backend/pkg/metrics"
)

// Hub fans computed standings out to live display pages.
// Implements contracts.StandingsPublisher.
// ⭐ SSOT: 웹소켓 연결 관리 및 브로드캐스트는 여기서만
type Hub struct {
	clients map[*Client]struct{}
	mu      sync.RWMutex

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	latest  *cache.StandingsCache
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewHub creates a hub; m may be nil
func NewHub(latest *cache.StandingsCache, log *logger.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		latest:     latest,
		logger:     log.WithComponent("hub"),
		metrics:    m,
	}
}

// Run serves registrations and broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// Publish caches the standings and queues them for the division's viewers.
// Never blocks the caller: when the queue is full the update is dropped and
// viewers catch up on the next recompute.
func (h *Hub) Publish(s *contracts.Standings) {
	if s == nil {
		return
	}
	h.latest.Update(s)

	select {
	case h.broadcast <- NewStandingsMessage(s):
	default:
		h.logger.WithField("division", DivisionKey(s.StageID, s.DivisionID)).
			Warn("Broadcast queue full, dropping standings update")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// join hands a client to Run; false when the hub has stopped
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// leave hands a client to Run for removal
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.metrics.LiveClients(total)
	h.logger.WithFields(map[string]interface{}{
		"division":      client.key,
		"total_clients": total,
	}).Debug("WebSocket client registered")

	// 접속 직후 최신 순위 전송
	if client.stageID != "" {
		if s, ok := h.latest.Get(client.stageID, client.divisionID); ok {
			client.trySend(NewStandingsMessage(s))
			return
		}
	}
	client.trySend(&Message{Type: TypeHello, Payload: map[string]string{"division": client.key}})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	_, exists := h.clients[client]
	if exists {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if exists {
		h.metrics.LiveClients(total)
		h.logger.WithFields(map[string]interface{}{
			"division":      client.key,
			"total_clients": total,
		}).Debug("WebSocket client unregistered")
	}
}

func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if message.Key != "" && client.key != "" && client.key != message.Key {
			continue
		}
		if !client.trySend(message) {
			// 채널이 가득 찬 경우 연결 해제
			h.logger.WithField("division", client.key).Warn("Client send channel full, unregistering")
			go h.leave(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
	h.metrics.LiveClients(0)
}
