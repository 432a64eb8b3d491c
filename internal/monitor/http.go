package monitor

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/videojedi/TSL-UMD-Tester/internal/logging"
	"github.com/videojedi/TSL-UMD-Tester/internal/stream"
	"github.com/videojedi/TSL-UMD-Tester/internal/version"
)

const (
	// Time allowed to write a feed event to a client
	feedWriteWait = 10 * time.Second

	// Events buffered per client before it is considered too slow
	feedSendBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The feed is a local diagnostic endpoint, accept any origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

// feedEvent is the JSON shape broadcast to /feed clients for every
// received packet.
type feedEvent struct {
	Time     string `json:"time"`
	Source   string `json:"source"`
	Protocol string `json:"protocol"`
	Length   int    `json:"length"`
	Payload  string `json:"payload_hex"`
	Summary  string `json:"summary,omitempty"`
	Error    string `json:"error,omitempty"`
}

// feedClient is one connected feed consumer. Its websocket is written
// only by its own writer goroutine; everything else goes through the
// send channel.
type feedClient struct {
	conn *websocket.Conn
	send chan feedEvent
}

// Hub fans received packets out to connected websocket clients.
// Broadcast is safe to call from any number of goroutines.
type Hub struct {
	mu      sync.Mutex
	clients map[*feedClient]bool
	metrics *Metrics
}

func newHub(metrics *Metrics) *Hub {
	return &Hub{
		clients: make(map[*feedClient]bool),
		metrics: metrics,
	}
}

func (h *Hub) add(c *feedClient) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.metrics.FeedClients.Inc()
}

// remove unregisters a client and closes its send channel and
// connection. Safe to call more than once; the send channel is only
// closed while the client is still registered, under the hub lock, so
// Broadcast can never send on a closed channel.
func (h *Hub) remove(c *feedClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.metrics.FeedClients.Dec()
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

// Broadcast queues a packet event for every connected feed client.
// A client whose buffer is full is dropped rather than blocking the
// receive loops.
func (h *Hub) Broadcast(p stream.Packet) {
	ev := feedEvent{
		Time:     p.Time.Format(time.RFC3339Nano),
		Source:   p.Source,
		Protocol: p.Protocol(),
		Length:   len(p.Raw),
		Payload:  hex.EncodeToString(p.Raw),
		Error:    p.ErrText,
	}
	if p.Decoded() {
		ev.Summary = p.Message.String()
	}

	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			logging.Debug("Dropping slow feed client",
				zap.String("remote_addr", c.conn.RemoteAddr().String()),
			)
			delete(h.clients, c)
			close(c.send)
			h.metrics.FeedClients.Dec()
			_ = c.conn.Close()
		}
	}
	h.mu.Unlock()
}

// writeClient is the single writer for one client's websocket. It
// drains the send channel until the client is removed or a write
// fails.
func (h *Hub) writeClient(c *feedClient) {
	defer h.remove(c)
	for ev := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
		if err := c.conn.WriteJSON(ev); err != nil {
			logging.Debug("Feed write failed",
				zap.String("remote_addr", c.conn.RemoteAddr().String()),
				zap.Error(err),
			)
			return
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		h.metrics.FeedClients.Dec()
		_ = c.conn.Close()
	}
	h.mu.Unlock()
}

// handleFeed upgrades the request to a websocket and registers the
// client with the hub, starting its writer goroutine.
func (h *Hub) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("Failed to upgrade feed connection",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	logging.LogConnection(conn.RemoteAddr().String(), "feed_client_connected")

	client := &feedClient{
		conn: conn,
		send: make(chan feedEvent, feedSendBuffer),
	}
	h.add(client)
	go h.writeClient(client)

	// The read loop exists only to detect closure
	go func() {
		defer func() {
			h.remove(client)
			logging.LogConnection(conn.RemoteAddr().String(), "feed_client_disconnected")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// newHTTPServer builds the monitor's HTTP server: websocket feed,
// Prometheus metrics and a small status endpoint.
func newHTTPServer(addr string, hub *Hub, startTime time.Time) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", hub.handleFeed)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"service":   "tsl-monitor",
			"version":   version.Version,
			"uptime":    time.Since(startTime).Round(time.Second).String(),
			"endpoints": []string{"/feed", "/metrics"},
		})
	})

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
