package stream

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/videojedi/TSL-UMD-Tester/internal/tsl"
)

// Packet is one inbound or outbound packet event, ready for display and
// logging. It is constructed once and never mutated.
type Packet struct {
	Time    time.Time
	Source  string // Transport label, e.g. "udp:10.0.0.5:40001"
	Raw     []byte // For framed TCP packets this is the de-stuffed payload
	Dump    string // Hex+ASCII dump of Raw
	Message tsl.Message
	ErrText string // Human-readable decode failure, empty on success
}

// NewPacket builds a Packet from raw bytes: it formats the dump and runs
// the decoder once. A decode failure is recorded in ErrText, not returned;
// the packet still stands as a raw-bytes event.
func NewPacket(source string, raw []byte) Packet {
	p := Packet{
		Time:   time.Now(),
		Source: source,
		Raw:    append([]byte(nil), raw...),
		Dump:   strings.TrimRight(hex.Dump(raw), "\n"),
	}

	msg, err := tsl.Decode(p.Raw)
	if err != nil {
		p.ErrText = err.Error()
		return p
	}
	p.Message = msg
	return p
}

// Decoded reports whether the packet carries a decoded message.
func (p Packet) Decoded() bool { return p.Message != nil }

// Protocol returns the detected protocol version name, or "raw" for an
// undecodable packet.
func (p Packet) Protocol() string {
	if p.Message == nil {
		return "raw"
	}
	return p.Message.Version().String()
}

// Summary returns a one-line description for logs and feeds.
func (p Packet) Summary() string {
	if p.Message != nil {
		return p.Message.String()
	}
	return "undecoded: " + p.ErrText
}
