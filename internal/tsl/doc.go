// Package tsl implements the TSL UMD tally/display protocol, versions
// 3.1, 4.0 and 5.0.
//
// TSL UMD is the protocol broadcast studios use to drive under-monitor
// displays: each message carries a display address or index, tally lamp
// states (off/red/green/amber), a brightness level and display text.
//
// # Packet Layouts
//
// V3.1 is a fixed 18-byte packet:
//   - Header byte: 0x80 + address (address range 0-126)
//   - Control byte: bits 0-3 tally lamps 1-4, bits 4-5 brightness
//   - 16 bytes of display text
//
// V4.0 extends the V3.1 packet to 22 bytes:
//   - Byte 18: checksum, the 2's complement of the sum of bytes 0-17
//     masked to 7 bits
//   - Byte 19: VBC, minor version in bits 4-6 and XDATA byte count in
//     bits 0-3 (always 2 here)
//   - Bytes 20-21: left and right display tally triples, each packing
//     left/text/right lamps into one byte
//
// V5.0 is variable length with little-endian 16-bit fields:
//   - Packet byte count (total length minus 2), minor version, flags
//     (unicode text, screen control), 16-bit screen index
//   - A sequence of display entries: index, control word, text length and
//     text (ASCII or UTF-16LE per the unicode flag)
//
// # Version Detection
//
// Packets carry no version tag. Detect classifies bytes by a fixed
// precedence: the V5.0 packet byte count heuristic first, then the
// V3.1/V4.0 header range with a checksum probe to tell 4.0 from 3.1. See
// Detect for the ambiguity this implies.
//
// # Framing
//
// Over TCP, V5.0 packets are delimited with DLE/STX byte stuffing:
// WrapFrame and UnwrapFrame implement the stuffing. UDP needs no framing;
// each datagram is one packet.
//
// # Usage Example
//
//	msg := &tsl.V31Message{Address: 1, Tally1: true, Brightness: tsl.BrightnessFull, Text: "CAM 1"}
//	pkt, err := tsl.BuildV31(msg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// send pkt over UDP...
//
//	decoded, err := tsl.Decode(pkt)
//	if err != nil {
//	    // structural failure: show raw bytes instead
//	}
//
// # Error Handling
//
// Decode failures are structural (short packet, header out of range,
// checksum mismatch, inconsistent packet byte count) and never fatal to
// the caller: a bad packet degrades to a raw-bytes display. Sentinel
// errors (ErrChecksum, ErrPacketByteCount, ...) are wrapped with context
// and matchable with errors.Is.
//
// # Thread Safety
//
// All functions are stateless, pure byte/value transformations and safe
// for concurrent use.
package tsl
