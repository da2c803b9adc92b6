package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"taskdash/internal/infrastructure"
	"taskdash/pkg/contracts/events"
)

const broadcastQueueSize = 16

// ErrHubStopped is returned when broadcasting on a hub that is not running.
var ErrHubStopped = errors.New("websocket hub is not running")

type outbound struct {
	messageType events.MessageType
	payload     []byte
}

// Hub maintains the set of active clients and broadcasts messages to them.
// Only the run loop closes a client's send channel.
type Hub struct {
	clients map[*Client]struct{}

	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	running bool
	quit    chan struct{}
	done    chan struct{}

	logger  *slog.Logger
	metrics *OTelMetrics
}

// NewHub creates a hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *OTelMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan outbound, broadcastQueueSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
	}
}

// Start launches the run loop. Calling it twice is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	go h.run()
}

// Stop shuts the run loop down, disconnects every client and waits for the
// loop to exit.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
	<-h.done
}

// Register hands a client to the run loop. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()
	if !running {
		return false
	}
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues a typed message for every connected client. It never
// blocks: a full queue drops the message.
func (h *Hub) Broadcast(ctx context.Context, messageType events.MessageType, data interface{}) error {
	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()
	if !running {
		return ErrHubStopped
	}

	msg := events.NewMessage(messageType, data)
	msg.TraceID = infrastructure.GetTraceID(ctx)
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", messageType, err)
	}

	select {
	case h.broadcast <- outbound{messageType: messageType, payload: payload}:
		return nil
	default:
		h.metrics.RecordDroppedMessage(ctx, "queue_full")
		h.logger.WarnContext(ctx, "Broadcast queue full, dropping message",
			slog.String("message_type", string(messageType)))
		return nil
	}
}

// BroadcastDatasetReloaded tells clients a new dataset version is available.
func (h *Hub) BroadcastDatasetReloaded(ctx context.Context, payload events.DatasetReloaded) error {
	return h.Broadcast(ctx, events.MessageTypeDatasetReloaded, payload)
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			h.closeAll()
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client, "client_closed")

		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	h.metrics.RecordConnection(ctx)
	h.logger.InfoContext(ctx, "Client registered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr))

	welcome := events.NewMessage(events.MessageTypeConnect, events.ConnectionEstablished{
		ClientID: client.id,
		Status:   "connected",
	})
	welcome.TraceID = client.traceID
	payload, err := json.Marshal(welcome)
	if err != nil {
		return
	}
	select {
	case client.send <- payload:
	default:
		h.logger.WarnContext(ctx, "Failed to send connection message - client buffer full",
			slog.String("client_id", client.id))
	}
}

func (h *Hub) removeClient(client *Client, reason string) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	lifetime := time.Since(client.connectedAt)
	h.metrics.RecordDisconnection(ctx, lifetime, reason)
	h.logger.InfoContext(ctx, "Client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("reason", reason),
		slog.Duration("connection_duration", lifetime))
}

func (h *Hub) fanOut(msg outbound) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	delivered, dropped := 0, 0
	for _, client := range clients {
		select {
		case client.send <- msg.payload:
			delivered++
		default:
			dropped++
			h.removeClient(client, "buffer_full")
		}
	}

	ctx := context.Background()
	h.metrics.RecordBroadcast(ctx, string(msg.messageType), delivered, dropped)
	if dropped > 0 {
		h.metrics.RecordDroppedMessage(ctx, "buffer_full")
		h.logger.Warn("Some clients failed to receive broadcast",
			slog.String("message_type", string(msg.messageType)),
			slog.Int("success_count", delivered),
			slog.Int("fail_count", dropped))
		return
	}
	h.logger.Debug("Broadcast delivered",
		slog.String("message_type", string(msg.messageType)),
		slog.Int("client_count", delivered))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}
