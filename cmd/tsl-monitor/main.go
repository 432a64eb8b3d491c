// Tsl-monitor is a listening and analysis tool for TSL UMD tally traffic.
//
// It receives UMD packets over UDP and TCP, decodes them across protocol
// versions 3.1, 4.0 and 5.0, and makes the traffic available as structured
// logs, capture files, Prometheus metrics, a websocket feed and an
// interactive terminal dashboard.
//
// Usage:
//
//	tsl-monitor listen [flags]
//
// See 'tsl-monitor listen --help' for available options.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/videojedi/TSL-UMD-Tester/internal/config"
	"github.com/videojedi/TSL-UMD-Tester/internal/monitor"
	"github.com/videojedi/TSL-UMD-Tester/internal/stream"
	"github.com/videojedi/TSL-UMD-Tester/internal/tui"
	"github.com/videojedi/TSL-UMD-Tester/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tsl-monitor",
	Short: "TSL UMD tally monitor",
	Long: `A listening and analysis tool for TSL UMD tally traffic.

The monitor receives UMD packets over UDP and TCP simultaneously, detects
the protocol version of each packet (3.1, 4.0 or 5.0) and decodes it.
Received traffic is written to the structured log and can additionally be
captured to JSONL files, exported as Prometheus metrics, streamed to
browser clients over a websocket feed, or shown on an interactive
terminal dashboard.

Note: For sending test packets, use the separate 'tsl-send' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(versionCmd)
}

// Listen command and flags
var (
	udpPort    int
	tcpPort    int
	httpAddr   string
	captureDir string
	logLevel   string
	useTUI     bool
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Listen for TSL UMD traffic",
	Long: `Listen for TSL UMD packets on UDP and TCP.

UDP datagrams are decoded individually. TCP connections are reassembled,
so packets are decoded correctly no matter how the sender chunks its
writes, including DLE/STX framed version 5.0 streams.

To capture packets for offline analysis, use the --capture-dir flag to
specify a directory where JSONL capture files will be written. To watch
traffic live in the terminal, use --tui.`,
	Example: `  # Listen on the default port (40001 UDP and TCP)
  tsl-monitor listen

  # Listen on custom ports with debug logging
  tsl-monitor listen --udp-port 9001 --tcp-port 9002 --log-level debug

  # Enable the websocket feed and Prometheus metrics on :8080
  tsl-monitor listen --http :8080

  # Capture all traffic to JSONL files
  tsl-monitor listen --capture-dir ./captures

  # Watch traffic on the interactive dashboard
  tsl-monitor listen --tui`,
	RunE: runListen,
}

func init() {
	listenCmd.Flags().IntVar(&udpPort, "udp-port", config.DefaultUDPPort, "UDP listen port")
	listenCmd.Flags().IntVar(&tcpPort, "tcp-port", config.DefaultTCPPort, "TCP listen port")
	listenCmd.Flags().StringVar(&httpAddr, "http", "", "Listen address for websocket feed and metrics (disabled if not specified)")
	listenCmd.Flags().StringVar(&captureDir, "capture-dir", "", "Directory to write packet capture files (disabled if not specified)")
	listenCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	listenCmd.Flags().BoolVar(&useTUI, "tui", false, "Show the interactive tally dashboard")
}

func runListen(cmd *cobra.Command, args []string) error {
	// Create the capture directory up front so a bad path fails the
	// command rather than every packet write
	if captureDir != "" {
		if err := os.MkdirAll(captureDir, 0755); err != nil {
			return fmt.Errorf("cannot create capture directory: %w", err)
		}
	}

	// Stored preferences fill in anything not given on the command line
	if registry, err := config.LoadRegistry(); err == nil && registry.Preferences != nil {
		prefs := registry.Preferences
		if !cmd.Flags().Changed("udp-port") && prefs.UDPPort != 0 {
			udpPort = prefs.UDPPort
		}
		if !cmd.Flags().Changed("tcp-port") && prefs.TCPPort != 0 {
			tcpPort = prefs.TCPPort
		}
		if !cmd.Flags().Changed("http") && prefs.HTTPAddr != "" {
			httpAddr = prefs.HTTPAddr
		}
	}

	cfg := &monitor.Config{
		UDPPort:    udpPort,
		TCPPort:    tcpPort,
		HTTPAddr:   httpAddr,
		CaptureDir: captureDir,
		LogLevel:   logLevel,
	}

	if !useTUI {
		mon, err := monitor.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to create monitor: %w", err)
		}
		return mon.Run()
	}

	// Dashboard mode: the log would corrupt the terminal output, so
	// keep it quiet unless the user asked for more.
	if !cmd.Flags().Changed("log-level") {
		cfg.LogLevel = "error"
	}

	packets := make(chan stream.Packet, 64)
	cfg.OnPacket = func(p stream.Packet) {
		select {
		case packets <- p:
		default:
			// Never block the receive loops on a slow dashboard
		}
	}

	mon, err := monitor.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}
	if err := mon.Start(); err != nil {
		return err
	}
	defer func() {
		_ = mon.Shutdown(context.Background())
	}()

	return tui.Run(packets)
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tsl-monitor %s (commit: %s)\n", version.Version, version.Commit)
	},
}
