package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Valley1051/VL2025.12.19/internal/logger"
)

const (
	// clientBuffer is the number of messages queued per client before it is dropped.
	clientBuffer = 16
	// writeTimeout bounds a single websocket write.
	writeTimeout = time.Second
	// shutdownTimeout bounds the HTTP server shutdown.
	shutdownTimeout = 2 * time.Second
	// Path is the websocket endpoint.
	Path = "/ws"
)

// errAddressRequired is returned when no listen address is given.
var errAddressRequired = errors.New("monitor address must be provided")

// client is one connected websocket.
type client struct {
	// conn is the websocket connection.
	conn *websocket.Conn
	// send queues encoded messages for the writer goroutine.
	send chan []byte
}

// Hub fans status messages out to websocket clients. Broadcast never blocks:
// a client whose queue is full is disconnected.
type Hub struct {
	// clients are the connected sockets.
	clients map[*client]struct{}
	// upgrader turns HTTP requests into websockets.
	upgrader websocket.Upgrader
	// mu guards clients.
	mu sync.Mutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

// Broadcast encodes v as JSON and queues it for every client.
func (h *Hub) Broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Logger().Warnw("Monitor payload not encodable", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.removeLocked(c)
		}
	}
}

// ServeHTTP upgrades the request and streams messages until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.DebugKV(r.Context(), "Monitor upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.write(c)

	// Reads only detect the close; clients have nothing to say.
	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

// write drains the client queue onto the socket.
func (h *Hub) write(c *client) {
	defer func() {
		_ = c.conn.Close()
	}()

	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))

		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.mu.Lock()
			h.removeLocked(c)
			h.mu.Unlock()

			return
		}
	}

	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// removeLocked unregisters a client and closes its queue. h.mu must be held.
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	delete(h.clients, c)
	close(c.send)
}

// Serve runs an HTTP server exposing the hub at Path until ctx is canceled.
func (h *Hub) Serve(ctx context.Context, address string) error {
	if address == "" {
		return errAddressRequired
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}

	return h.serve(ctx, lis)
}

// serve runs the HTTP server on an existing listener.
func (h *Hub) serve(ctx context.Context, lis net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle(Path, h)

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan struct{})

	go func() {
		defer close(done)

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.InfoKV(ctx, "Monitor listening", "address", lis.Addr().String(), "path", Path)

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve monitor: %w", err)
	}

	<-done

	return nil
}
