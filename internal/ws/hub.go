// Package ws pushes review workflow events to connected users over websockets.
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisChannel carries events between instances
const RedisChannel = "wiki:review-events"

const redisPublishTimeout = 2 * time.Second

// Hub tracks connected clients and routes review events to them.
// Admins receive every event; other users only events addressed to them.
type Hub struct {
	clients map[uint64]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan domain.ReviewEvent
	outbound   chan domain.ReviewEvent

	mu          sync.RWMutex
	instanceID  string
	redisClient *redis.Client
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewHub creates a new Hub. redisClient may be nil for a single instance.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[uint64]map[*Client]struct{}),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan domain.ReviewEvent, 256),
		outbound:    make(chan domain.ReviewEvent, 256),
		instanceID:  uuid.NewString(),
		redisClient: redisClient,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Run is the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	if h.redisClient != nil {
		go h.subscribeRedis()
		go h.forwardRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]struct{})
			}
			h.clients[client.userID][client] = struct{}{}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.deliver(event)

		case <-h.ctx.Done():
			h.mu.Lock()
			for _, set := range h.clients {
				for client := range set {
					h.remove(client)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// remove must be called with mu held
func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
}

func (h *Hub) deliver(event domain.ReviewEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.GetLogger().Error().Err(err).Str("type", event.Type).Msg("encode review event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for client := range set {
			if !client.admin && (event.RecipientID == 0 || userID != event.RecipientID) {
				continue
			}
			select {
			case client.send <- data:
			default:
				// slow consumer
				h.remove(client)
			}
		}
	}
}

// Publish queues event for local clients and fans it out to other instances.
// It never blocks the caller; events are dropped when a queue is full.
func (h *Hub) Publish(_ context.Context, event domain.ReviewEvent) {
	select {
	case h.broadcast <- event:
	default:
		logger.GetLogger().Warn().Str("type", event.Type).Msg("review event queue full, dropping event")
	}

	if h.redisClient == nil {
		return
	}
	select {
	case h.outbound <- event:
	default:
		logger.GetLogger().Warn().Str("type", event.Type).Msg("redis fan-out queue full, dropping event")
	}
}

// forwardRedis publishes queued events for other instances, one at a time
func (h *Hub) forwardRedis() {
	for {
		select {
		case event := <-h.outbound:
			data, err := json.Marshal(redisMessage{Origin: h.instanceID, Event: event})
			if err != nil {
				continue
			}
			ctx, cancel := context.WithTimeout(h.ctx, redisPublishTimeout)
			if err := h.redisClient.Publish(ctx, RedisChannel, data).Err(); err != nil {
				logger.GetLogger().Warn().Err(err).Str("type", event.Type).Msg("publish review event to redis")
			}
			cancel()
		case <-h.ctx.Done():
			return
		}
	}
}

type redisMessage struct {
	Origin string             `json:"origin"`
	Event  domain.ReviewEvent `json:"event"`
}

// subscribeRedis relays events published by other instances
func (h *Hub) subscribeRedis() {
	pubsub := h.redisClient.Subscribe(h.ctx, RedisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var rm redisMessage
			if err := json.Unmarshal([]byte(msg.Payload), &rm); err != nil || rm.Origin == h.instanceID {
				continue
			}
			select {
			case h.broadcast <- rm.Event:
			case <-h.ctx.Done():
				return
			}
		case <-h.ctx.Done():
			return
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Stop shuts the hub down and closes every client
func (h *Hub) Stop() {
	h.cancel()
}
