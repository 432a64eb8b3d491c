package stream

import "github.com/videojedi/TSL-UMD-Tester/internal/tsl"

// Reassembler extracts complete TSL packets from a byte stream. Each TCP
// connection owns exactly one Reassembler; it is not safe for concurrent
// use and is simply discarded on connection teardown.
//
// Three framing styles coexist on the stream: DLE/STX-framed V5.0
// packets, fixed 18-byte V3.1 packets and fixed 22-byte V4.0 packets.
type Reassembler struct {
	source string
	buf    []byte
}

// NewReassembler creates a Reassembler whose packets carry the given
// source label.
func NewReassembler(source string) *Reassembler {
	return &Reassembler{source: source}
}

// Feed appends an inbound chunk and extracts every complete packet now
// available, in order:
//
//  1. A DLE/STX frame anywhere in the buffer is unwrapped and emitted as
//     one packet, and the whole buffer is cleared (the framer assumes the
//     frame extends to the end of the buffer).
//  2. With at least 18 bytes buffered, a detected V3.1 packet consumes
//     exactly 18 bytes and a detected V4.0 packet exactly 22; the loop
//     then continues on the remainder.
//  3. At least 18 bytes that match neither style are flushed as a single
//     undecodable packet. This caps buffer growth on garbage input at the
//     cost of occasionally splitting a legitimate packet that straddles
//     the flush.
//
// Anything shorter than a complete packet stays buffered for the next
// chunk.
func (r *Reassembler) Feed(chunk []byte) []Packet {
	r.buf = append(r.buf, chunk...)

	var out []Packet
	for len(r.buf) > 0 {
		if payload, ok := tsl.UnwrapFrame(r.buf); ok {
			out = append(out, NewPacket(r.source, payload))
			r.buf = r.buf[:0]
			break
		}

		if len(r.buf) < tsl.V31PacketLen {
			break
		}

		ver, ok := tsl.Detect(r.buf)
		if ok && ver == tsl.V31 {
			out = append(out, NewPacket(r.source, r.buf[:tsl.V31PacketLen]))
			r.buf = r.buf[tsl.V31PacketLen:]
			continue
		}
		if ok && ver == tsl.V40 {
			if len(r.buf) < tsl.V40PacketLen {
				break
			}
			out = append(out, NewPacket(r.source, r.buf[:tsl.V40PacketLen]))
			r.buf = r.buf[tsl.V40PacketLen:]
			continue
		}

		out = append(out, NewPacket(r.source, r.buf))
		r.buf = r.buf[:0]
	}
	return out
}

// Pending returns the number of buffered bytes not yet assembled into a
// packet.
func (r *Reassembler) Pending() int { return len(r.buf) }

// Reset discards any buffered bytes.
func (r *Reassembler) Reset() { r.buf = r.buf[:0] }
