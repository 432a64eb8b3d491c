// Package logging provides structured logging for the TSL UMD tester.
//
// It wraps go.uber.org/zap with package-level convenience functions and a
// level controlled by the TSL_LOG_LEVEL environment variable. When no
// level is configured the logger is a no-op, which keeps the CLI tools
// silent by default.
//
// Packet-oriented helpers (LogPacket, LogRawBytes, LogConnection) attach
// the fields the monitor and sender commonly need: source address,
// direction, protocol version and hex/ASCII dumps of raw bytes.
//
// Usage:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    return err
//	}
//	logging.Info("listener started", zap.Int("port", 40001))
//	logging.LogRawBytes("inbound datagram", data)
package logging
