package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"note-summary-be/internal/pkg/logger"
	"note-summary-be/internal/session"
	"note-summary-be/pkg/invalidation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	ClusterChannel = "cluster_events"

	MessageTypeInvalidated = "notes.invalidated"

	kindInvalidate = "invalidate"
	kindSignedOut  = "signed_out"
)

type SignalSource interface {
	Subscribe(ctx context.Context) (<-chan invalidation.Signal, error)
}

type outbound struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// clusterMessage is what instances exchange over Redis pub/sub.
type clusterMessage struct {
	Origin       string          `json:"origin"`
	Kind         string          `json:"kind"`
	TargetUserID string          `json:"target_user_id"`
	SessionID    string          `json:"session_id,omitempty"`
	Message      json.RawMessage `json:"message,omitempty"`
}

// Hub pushes invalidation signals to the sockets of the affected user.
// Only the Run goroutine mutates the client set.
type Hub struct {
	clients map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	remote     chan clusterMessage
	done       chan struct{}

	mu sync.RWMutex

	signals    SignalSource
	broker     *session.Broker
	rdb        *redis.Client
	instanceId string

	logger logger.ILogger
}

func NewHub(signals SignalSource, broker *session.Broker, rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		remote:     make(chan clusterMessage, 64),
		done:       make(chan struct{}),
		signals:    signals,
		broker:     broker,
		rdb:        rdb,
		instanceId: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	signals, err := h.signals.Subscribe(ctx)
	if err != nil {
		return err
	}

	sessions := h.broker.Subscribe(16)
	defer sessions.Unsubscribe()

	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil

		case client := <-h.register:
			h.add(client)

		case client := <-h.unregister:
			h.remove(client)

		case sig, ok := <-signals:
			if !ok {
				h.closeAll()
				return nil
			}
			h.dispatch(ctx, sig)

		case evt, ok := <-sessions.C:
			if !ok {
				continue
			}
			if evt.Type == session.EventSignedOut && evt.Session != nil {
				h.closeSession(evt.Session.UserId, evt.Session.Id)
				h.publishCluster(ctx, clusterMessage{
					Kind:         kindSignedOut,
					TargetUserID: evt.Session.UserId.String(),
					SessionID:    evt.Session.Id,
				})
			}

		case msg := <-h.remote:
			h.handleRemote(msg)
		}
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[client.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[client.UserID] = set
	}
	set[client] = struct{}{}
	h.logger.Info("Hub", "Client registered", map[string]interface{}{
		"user_id":    client.UserID.String(),
		"session_id": client.SessionID,
	})
}

// remove is idempotent; Send is closed exactly once.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.Send)

	if len(set) == 0 {
		delete(h.clients, client.UserID)
		h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID.String()})
	}
}

func (h *Hub) snapshot(userID uuid.UUID) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		out = append(out, c)
	}
	return out
}

func (h *Hub) deliver(userID uuid.UUID, data []byte) {
	for _, client := range h.snapshot(userID) {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"user_id": userID.String()})
			h.remove(client)
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, sig invalidation.Signal) {
	data, err := json.Marshal(outbound{Type: MessageTypeInvalidated, Data: sig})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode signal", map[string]interface{}{"error": err})
		return
	}

	h.deliver(sig.UserId, data)
	h.publishCluster(ctx, clusterMessage{
		Kind:         kindInvalidate,
		TargetUserID: sig.UserId.String(),
		Message:      data,
	})
}

func (h *Hub) closeSession(userID uuid.UUID, sessionID string) {
	for _, client := range h.snapshot(userID) {
		if client.SessionID == sessionID {
			h.remove(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	var all []*Client
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.remove(c)
	}
}

func (h *Hub) publishCluster(ctx context.Context, msg clusterMessage) {
	if h.rdb == nil {
		return
	}
	msg.Origin = h.instanceId
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := h.rdb.Publish(ctx, ClusterChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) handleRemote(msg clusterMessage) {
	uid, err := uuid.Parse(msg.TargetUserID)
	if err != nil {
		return
	}

	switch msg.Kind {
	case kindInvalidate:
		h.deliver(uid, msg.Message)
	case kindSignedOut:
		h.closeSession(uid, msg.SessionID)
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			var msg clusterMessage
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if msg.Origin == h.instanceId {
				continue
			}
			select {
			case h.remote <- msg:
			case <-ctx.Done():
				return
			}
		}
	}
}

// ClientCount is the number of live sockets for a user on this instance.
func (h *Hub) ClientCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Register hands a client to the hub. It returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
