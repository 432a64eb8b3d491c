// Package monitor implements the TSL UMD listening service.
//
// The monitor listens for tally traffic on UDP and TCP simultaneously
// and fans every received packet out to a set of sinks: the structured
// log, Prometheus metrics, an optional capture directory and an
// optional websocket feed for browser clients.
//
// # Transports
//
// UDP datagrams are message-oriented, so each datagram is decoded
// directly as one packet. TCP is a byte stream with no message
// boundaries, so each connection gets its own stream.Reassembler that
// splits the stream back into packets regardless of how the sender's
// writes were chunked.
//
// # HTTP Endpoints
//
// When an HTTP address is configured the monitor serves:
//   - /feed     websocket feed of received packets as JSON events
//   - /metrics  Prometheus metrics
//   - /         status summary (version, uptime, endpoints)
//
// # Capture Files
//
// When a capture directory is configured every packet is appended to a
// per-day JSONL file (capture-YYYY-MM-DD.jsonl) with timestamp, source,
// detected protocol, hex payload and the decoded summary or decode
// error. The files are suitable for replay and offline analysis.
//
// # Usage Example
//
//	config := &monitor.Config{
//	    UDPPort:  40001,
//	    TCPPort:  40001,
//	    HTTPAddr: ":8080",
//	    LogLevel: "info",
//	}
//
//	mon, err := monitor.New(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Run blocks until SIGINT/SIGTERM
//	if err := mon.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM: the listeners are closed, active TCP
// connections and feed clients are disconnected, and the receive loops
// are drained with a timeout.
package monitor
