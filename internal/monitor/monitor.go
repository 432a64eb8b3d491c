package monitor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/videojedi/TSL-UMD-Tester/internal/logging"
	"github.com/videojedi/TSL-UMD-Tester/internal/stream"
)

// Config holds the monitor configuration
type Config struct {
	UDPPort    int
	TCPPort    int
	HTTPAddr   string // Listen address for the web feed and metrics (empty = disabled)
	CaptureDir string // Directory to write packet capture logs (empty = disabled)
	LogLevel   string

	// OnPacket, if set, receives every packet after it has been
	// logged, counted and captured. Used by the terminal dashboard.
	OnPacket func(stream.Packet)
}

// Monitor listens for TSL UMD traffic on UDP and TCP and fans every
// received packet out to the log, the metrics, the capture directory
// and the web feed.
type Monitor struct {
	config      *Config
	udpConn     *net.UDPConn
	tcpListener net.Listener
	httpServer  *http.Server
	hub         *Hub
	metrics     *Metrics
	wg          sync.WaitGroup
	mu          sync.Mutex
	activeConns map[string]net.Conn
	startTime   time.Time
}

// New creates a new Monitor instance
func New(config *Config) (*Monitor, error) {
	// Initialize logging
	if err := logging.Initialize(config.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	metrics := NewMetrics()

	return &Monitor{
		config:      config,
		hub:         newHub(metrics),
		metrics:     metrics,
		activeConns: make(map[string]net.Conn),
		startTime:   time.Now(),
	}, nil
}

// Start opens the listeners and starts the receive loops. It does not
// block; use Run for the blocking signal-driven variant.
func (m *Monitor) Start() error {
	udpAddr := &net.UDPAddr{Port: m.config.UDPPort}
	udpConn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("failed to create UDP listener: %w", err)
	}
	m.udpConn = udpConn

	tcpListener, err := net.Listen("tcp", fmt.Sprintf(":%d", m.config.TCPPort))
	if err != nil {
		_ = udpConn.Close()
		return fmt.Errorf("failed to create TCP listener: %w", err)
	}
	m.tcpListener = tcpListener

	logging.Info("Starting TSL UMD monitor",
		zap.Int("udp_port", m.config.UDPPort),
		zap.Int("tcp_port", m.config.TCPPort),
		zap.String("http_addr", m.config.HTTPAddr),
		zap.String("capture_dir", m.config.CaptureDir),
		zap.String("log_level", m.config.LogLevel),
	)

	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		m.udpLoop()
	}()
	go func() {
		defer m.wg.Done()
		m.acceptConnections()
	}()

	if m.config.HTTPAddr != "" {
		m.httpServer = newHTTPServer(m.config.HTTPAddr, m.hub, m.startTime)
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			logging.Info("Web feed listening", zap.String("addr", m.config.HTTPAddr))
			if err := m.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("HTTP server error", zap.Error(err))
			}
		}()
	}

	return nil
}

// Run starts the monitor and blocks until a shutdown signal is received
func (m *Monitor) Run() error {
	if err := m.Start(); err != nil {
		return err
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logging.Info("Shutdown signal received, stopping monitor...")
	return m.Shutdown(context.Background())
}

// udpLoop receives datagrams and decodes each one as a complete
// packet. UDP delivery is message-oriented so no reassembly is needed.
func (m *Monitor) udpLoop() {
	buf := make([]byte, 2048)
	for {
		n, addr, err := m.udpConn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			logging.Error("UDP read error", zap.Error(err))
			continue
		}

		p := stream.NewPacket("udp:"+addr.String(), buf[:n])
		m.emit("udp", p)
	}
}

// acceptConnections accepts and handles incoming TCP connections
func (m *Monitor) acceptConnections() {
	for {
		conn, err := m.tcpListener.Accept()
		if err != nil {
			// Check if listener was closed (during shutdown)
			if errors.Is(err, net.ErrClosed) {
				return
			}
			logging.Error("Failed to accept connection", zap.Error(err))
			continue
		}

		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.handleConnection(conn)
		}()
	}
}

// handleConnection reads a single TCP byte stream, feeding every chunk
// through a per-connection reassembler.
func (m *Monitor) handleConnection(conn net.Conn) {
	remoteAddr := conn.RemoteAddr().String()

	// Track active connection
	m.mu.Lock()
	m.activeConns[remoteAddr] = conn
	m.mu.Unlock()
	m.metrics.ActiveConns.Inc()

	defer func() {
		_ = conn.Close()
		m.mu.Lock()
		delete(m.activeConns, remoteAddr)
		m.mu.Unlock()
		m.metrics.ActiveConns.Dec()
		logging.LogConnection(remoteAddr, "connection_closed")
	}()

	logging.LogConnection(remoteAddr, "connection_accepted")

	reassembler := stream.NewReassembler("tcp:" + remoteAddr)
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			for _, p := range reassembler.Feed(buf[:n]) {
				m.emit("tcp", p)
			}
		}
		if err != nil {
			if pending := reassembler.Pending(); pending > 0 {
				logging.Debug("Connection closed with bytes pending",
					zap.String("remote_addr", remoteAddr),
					zap.Int("pending", pending),
				)
			}
			return
		}
	}
}

// emit fans one received packet out to every sink.
func (m *Monitor) emit(transport string, p stream.Packet) {
	logging.LogPacket(p.Source, "received", p.Protocol(), len(p.Raw), p.Summary())
	if !p.Decoded() {
		logging.LogRawBytes(p.Source, p.Raw)
	}

	m.metrics.RecordPacket(transport, p.Protocol(), !p.Decoded(), len(p.Raw))

	if m.config.CaptureDir != "" {
		if err := savePacketToCapture(m.config.CaptureDir, p); err != nil {
			logging.Error("Failed to write capture record",
				zap.String("source", p.Source),
				zap.Error(err),
			)
		}
	}

	m.hub.Broadcast(p)

	if m.config.OnPacket != nil {
		m.config.OnPacket(p)
	}
}

// Shutdown gracefully stops the monitor
func (m *Monitor) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down monitor...")

	if m.udpConn != nil {
		_ = m.udpConn.Close()
	}
	if m.tcpListener != nil {
		_ = m.tcpListener.Close()
	}

	// Close active TCP connections
	m.mu.Lock()
	for addr, conn := range m.activeConns {
		logging.Info("Closing active connection", zap.String("remote_addr", addr))
		_ = conn.Close()
	}
	m.mu.Unlock()

	m.hub.closeAll()

	if m.httpServer != nil {
		if err := m.httpServer.Shutdown(ctx); err != nil {
			logging.Error("HTTP server shutdown error", zap.Error(err))
		}
	}

	// Wait for the receive loops with a timeout
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All receive loops finished")
	case <-time.After(10 * time.Second):
		logging.Warn("Timeout waiting for receive loops to finish")
	case <-ctx.Done():
		return ctx.Err()
	}

	logging.Info("Monitor shutdown complete")
	logging.Sync()
	return nil
}
