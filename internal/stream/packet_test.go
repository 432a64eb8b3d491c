package stream

import (
	"strings"
	"testing"

	"github.com/videojedi/TSL-UMD-Tester/internal/tsl"
)

func TestNewPacketDecoded(t *testing.T) {
	raw, err := tsl.BuildV31(&tsl.V31Message{Address: 1, Tally1: true, Brightness: tsl.BrightnessFull, Text: "CAM 1"})
	if err != nil {
		t.Fatalf("BuildV31() error = %v", err)
	}

	p := NewPacket("udp:10.0.0.5:40001", raw)

	if !p.Decoded() {
		t.Fatalf("packet should decode, got error %q", p.ErrText)
	}
	if p.Protocol() != "3.1" {
		t.Errorf("protocol = %q, want %q", p.Protocol(), "3.1")
	}
	if p.Source != "udp:10.0.0.5:40001" {
		t.Errorf("source = %q", p.Source)
	}
	if p.Time.IsZero() {
		t.Error("timestamp should be set")
	}
	if !strings.Contains(p.Dump, "CAM 1") {
		t.Errorf("dump should contain the ASCII text, got:\n%s", p.Dump)
	}
	if !strings.Contains(p.Summary(), "addr=1") {
		t.Errorf("summary = %q", p.Summary())
	}

	// The packet owns its bytes: mutating the caller's buffer afterwards
	// must not change it.
	raw[0] = 0x00
	if p.Raw[0] != 0x81 {
		t.Error("packet raw bytes should be an independent copy")
	}
}

func TestNewPacketUndecodable(t *testing.T) {
	p := NewPacket("tcp:10.0.0.9:52000", []byte{0x01, 0x02, 0x03})

	if p.Decoded() {
		t.Fatal("three junk bytes should not decode")
	}
	if p.Protocol() != "raw" {
		t.Errorf("protocol = %q, want %q", p.Protocol(), "raw")
	}
	if p.ErrText == "" {
		t.Error("decode failure should be described")
	}
	if !strings.HasPrefix(p.Summary(), "undecoded:") {
		t.Errorf("summary = %q", p.Summary())
	}
}
