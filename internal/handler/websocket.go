package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/medcatalog/internal/model"
	"github.com/vyrodovalexey/medcatalog/internal/store"
)

// WebSocket configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	replyBuffer    = 4
)

var websocketConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "websocket_connections",
		Help: "Number of open catalog change feed connections",
	},
)

// Subscriber hands out catalog event subscriptions.
type Subscriber interface {
	Subscribe() (<-chan model.CatalogEvent, func())
}

// wsClient is one connected change feed listener.
type wsClient struct {
	conn    *websocket.Conn
	cancel  context.CancelFunc
	replies chan model.WebSocketMessage
}

// WebSocketHandler streams catalog changes to WebSocket clients.
type WebSocketHandler struct {
	upgrader   websocket.Upgrader
	store      store.Store
	subscriber Subscriber
	logger     *zap.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closing bool
	writers sync.WaitGroup
}

// NewWebSocketHandler creates a new WebSocketHandler instance.
func NewWebSocketHandler(s store.Store, subscriber Subscriber, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		store:      s,
		subscriber: subscriber,
		logger:     logger,
		clients:    make(map[*wsClient]struct{}),
	}
}

// RegisterRoutes registers the WebSocket routes with the router.
func (h *WebSocketHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws", h.HandleWebSocket).Methods(http.MethodGet)
}

// HandleWebSocket upgrades the connection, sends a snapshot of the catalog
// and then forwards every catalog event. The subscription is taken before the
// snapshot so no change between the two is lost.
//
//nolint:contextcheck // the feed outlives the upgrade request
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.isClosing() {
		writeError(w, h.logger, http.StatusServiceUnavailable, "server shutting down")
		return
	}

	events, unsubscribe := h.subscriber.Subscribe()

	snapshot, err := h.store.Snapshot(r.Context())
	if err != nil {
		unsubscribe()
		h.logger.Error("failed to snapshot catalog", zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "internal server error")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		unsubscribe()
		h.logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &wsClient{
		conn:    conn,
		cancel:  cancel,
		replies: make(chan model.WebSocketMessage, replyBuffer),
	}
	if !h.addClient(client) {
		cancel()
		unsubscribe()
		h.sendCloseMessage(conn)
		_ = conn.Close()
		return
	}

	h.logger.Info("websocket client connected", zap.String("remote_addr", conn.RemoteAddr().String()))

	go func() {
		defer h.writers.Done()
		defer unsubscribe()
		h.writePump(ctx, client, snapshot, events)
	}()
	go h.readPump(ctx, client)
}

// readPump consumes client messages until the connection fails. Clients may
// send {"type":"ping"}; anything else gets an error reply.
func (h *WebSocketHandler) readPump(ctx context.Context, client *wsClient) {
	conn := client.conn
	defer func() {
		h.removeClient(client)
		if err := conn.Close(); err != nil {
			h.logger.Debug("error closing connection", zap.Error(err))
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.logger.Error("failed to set read deadline", zap.Error(err))
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		var in model.WebSocketMessage
		reply := model.NewPongMessage()
		if err := json.Unmarshal(data, &in); err != nil {
			reply = model.NewErrorMessage("malformed message")
		} else if in.Type != model.WSMessageTypePing {
			reply = model.NewErrorMessage("unsupported message type: " + in.Type)
		}

		select {
		case client.replies <- reply:
		case <-ctx.Done():
			return
		default:
			h.logger.Debug("reply buffer full, dropping reply", zap.String("type", reply.Type))
		}
	}
}

// writePump owns all writes to the connection.
func (h *WebSocketHandler) writePump(
	ctx context.Context,
	client *wsClient,
	snapshot model.Catalog,
	events <-chan model.CatalogEvent,
) {
	conn := client.conn
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	if err := h.writeMessage(conn, model.NewSnapshotMessage(snapshot)); err != nil {
		h.logger.Debug("failed to send snapshot", zap.Error(err))
		return
	}

	for {
		select {
		case <-ctx.Done():
			h.sendCloseMessage(conn)
			return
		case event, ok := <-events:
			if !ok {
				h.sendCloseMessage(conn)
				return
			}
			if err := h.writeMessage(conn, model.NewEventMessage(event)); err != nil {
				h.logger.Debug("failed to send catalog event", zap.Error(err))
				return
			}
		case reply := <-client.replies:
			if err := h.writeMessage(conn, reply); err != nil {
				h.logger.Debug("failed to send reply", zap.Error(err))
				return
			}
		case <-pingTicker.C:
			if err := h.sendPing(conn); err != nil {
				h.logger.Debug("failed to send ping", zap.Error(err))
				return
			}
		}
	}
}

func (h *WebSocketHandler) writeMessage(conn *websocket.Conn, msg model.WebSocketMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

func (h *WebSocketHandler) sendPing(conn *websocket.Conn) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.PingMessage, nil)
}

func (h *WebSocketHandler) sendCloseMessage(conn *websocket.Conn) {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		h.logger.Debug("failed to set write deadline for close", zap.Error(err))
		return
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutting down")
	if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
		h.logger.Debug("failed to send close message", zap.Error(err))
	}
}

// addClient registers client and reserves its writer slot. It fails once
// CloseAllConnections has started.
func (h *WebSocketHandler) addClient(client *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closing {
		return false
	}
	h.clients[client] = struct{}{}
	h.writers.Add(1)
	websocketConnections.Inc()
	return true
}

func (h *WebSocketHandler) isClosing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closing
}

func (h *WebSocketHandler) removeClient(client *wsClient) {
	h.mu.Lock()
	_, exists := h.clients[client]
	delete(h.clients, client)
	h.mu.Unlock()

	client.cancel()
	if exists {
		websocketConnections.Dec()
		h.logger.Info("websocket client disconnected", zap.String("remote_addr", client.conn.RemoteAddr().String()))
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHandler) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAllConnections sends a close frame to every client, waits for the
// writers to finish and closes the connections. New connections are refused
// afterwards.
func (h *WebSocketHandler) CloseAllConnections() {
	h.mu.Lock()
	h.closing = true
	clients := make([]*wsClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		client.cancel()
	}
	h.writers.Wait()

	for _, client := range clients {
		if err := client.conn.Close(); err != nil {
			h.logger.Debug("error closing connection", zap.Error(err))
		}
		h.removeClient(client)
	}

	h.logger.Info("all websocket connections closed", zap.Int("count", len(clients)))
}
