package stream

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event is a realtime notification delivered to one account.
type Event struct {
	Kind      string    `json:"kind"`
	ActorID   string    `json:"actor_id"`
	ActorName string    `json:"actor_name,omitempty"`
	ShareID   string    `json:"share_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	AccountID string
	Send      chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(accountID string) *Client {
	client := &Client{
		AccountID: accountID,
		Send:      make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[accountID] == nil {
		h.clients[accountID] = map[*Client]struct{}{}
	}
	h.clients[accountID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if accountClients, ok := h.clients[client.AccountID]; ok {
		delete(accountClients, client)
		if len(accountClients) == 0 {
			delete(h.clients, client.AccountID)
		}
	}
	close(client.Send)
}

// Notify fans an event out to the account's local connections and, when
// Redis is configured, to connections held by other instances.
func (h *Hub) Notify(accountID string, event Event) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("notify marshal error: %v", err)
		return
	}
	if h.redis == nil {
		h.broadcast(accountID, payload)
		return
	}

	// With Redis configured, local delivery happens through the
	// subscription so connections on every instance see each event once.
	if err := h.redis.Publish(context.Background(), redisChannel(accountID), payload).Err(); err != nil {
		log.Printf("redis publish error: %v", err)
		h.broadcast(accountID, payload)
	}
}

func (h *Hub) broadcast(accountID string, payload []byte) {
	h.mu.RLock()
	clients := h.clients[accountID]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "notify:*:events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.broadcast(accountIDFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(accountID string) string {
	return "notify:" + accountID + ":events"
}

func accountIDFromChannel(ch string) string {
	// notify:{account}:events
	const prefix = "notify:"
	const suffix = ":events"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
