package tsl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"testing"
)

func TestBuildV31(t *testing.T) {
	t.Run("camera one", func(t *testing.T) {
		pkt, err := BuildV31(&V31Message{
			Address:    1,
			Tally1:     true,
			Brightness: BrightnessFull,
			Text:       "CAM 1",
		})
		if err != nil {
			t.Fatalf("BuildV31() error = %v", err)
		}
		if len(pkt) != V31PacketLen {
			t.Fatalf("packet length = %d, want %d", len(pkt), V31PacketLen)
		}
		if pkt[0] != 0x81 {
			t.Errorf("header = 0x%02x, want 0x81", pkt[0])
		}
		if pkt[1] != 0x31 {
			t.Errorf("control = 0x%02x, want 0x31", pkt[1])
		}
		wantText := []byte("CAM 1           ")
		if !bytes.Equal(pkt[2:], wantText) {
			t.Errorf("text bytes = %q, want %q", pkt[2:], wantText)
		}
	})

	t.Run("text truncated to 16", func(t *testing.T) {
		pkt, err := BuildV31(&V31Message{Address: 0, Text: "THIS NAME IS FAR TOO LONG"})
		if err != nil {
			t.Fatalf("BuildV31() error = %v", err)
		}
		if !bytes.Equal(pkt[2:], []byte("THIS NAME IS FAR")) {
			t.Errorf("text bytes = %q, want first 16 chars", pkt[2:])
		}
	})

	t.Run("address out of range", func(t *testing.T) {
		if _, err := BuildV31(&V31Message{Address: 127}); !errors.Is(err, ErrAddressRange) {
			t.Errorf("BuildV31() error = %v, want %v", err, ErrAddressRange)
		}
	})
}

func TestBuildV40Layout(t *testing.T) {
	pkt, err := BuildV40(&V40Message{
		V31Message:   V31Message{Address: 10, Tally2: true, Brightness: BrightnessLow, Text: "SAT"},
		LeftTallies:  TallyTriple{Left: TallyRed, Text: TallyGreen, Right: TallyAmber},
		RightTallies: TallyTriple{Left: TallyOff, Text: TallyRed, Right: TallyRed},
	})
	if err != nil {
		t.Fatalf("BuildV40() error = %v", err)
	}
	if len(pkt) != V40PacketLen {
		t.Fatalf("packet length = %d, want %d", len(pkt), V40PacketLen)
	}
	if pkt[18] != Checksum(pkt[:18]) {
		t.Errorf("checksum byte = 0x%02x, want 0x%02x", pkt[18], Checksum(pkt[:18]))
	}
	if pkt[19] != 0x02 {
		t.Errorf("VBC = 0x%02x, want 0x02", pkt[19])
	}
	// red=1 green=2 amber=3: left<<4 | text<<2 | right
	if want := byte(1<<4 | 2<<2 | 3); pkt[20] != want {
		t.Errorf("left triple byte = 0x%02x, want 0x%02x", pkt[20], want)
	}
	if want := byte(0<<4 | 1<<2 | 1); pkt[21] != want {
		t.Errorf("right triple byte = 0x%02x, want 0x%02x", pkt[21], want)
	}
}

func TestBuildV50Layout(t *testing.T) {
	pkt, err := BuildV50(&V50Message{
		MinorVersion: 1,
		Screen:       2,
		Displays:     []Display{{Index: 4, Left: TallyGreen, Brightness: BrightnessFull, TextLabel: "CAM 4"}},
	})
	if err != nil {
		t.Fatalf("BuildV50() error = %v", err)
	}

	pbc := binary.LittleEndian.Uint16(pkt[0:2])
	if int(pbc) != len(pkt)-2 {
		t.Errorf("PBC = %d, want %d", pbc, len(pkt)-2)
	}
	if pkt[2] != 1 {
		t.Errorf("minor version = %d, want 1", pkt[2])
	}
	if pkt[3] != 0x00 {
		t.Errorf("flags = 0x%02x, want 0x00", pkt[3])
	}
	if screen := binary.LittleEndian.Uint16(pkt[4:6]); screen != 2 {
		t.Errorf("screen = %d, want 2", screen)
	}
	if idx := binary.LittleEndian.Uint16(pkt[6:8]); idx != 4 {
		t.Errorf("display index = %d, want 4", idx)
	}
	// green=2 in bits 4-5, full brightness=3 in bits 6-7
	if ctrl := binary.LittleEndian.Uint16(pkt[8:10]); ctrl != 2<<4|3<<6 {
		t.Errorf("control word = 0x%04x, want 0x%04x", ctrl, 2<<4|3<<6)
	}
	if tl := binary.LittleEndian.Uint16(pkt[10:12]); tl != 5 {
		t.Errorf("text length = %d, want 5", tl)
	}
	if !bytes.Equal(pkt[12:], []byte("CAM 4")) {
		t.Errorf("text = %q, want %q", pkt[12:], "CAM 4")
	}
}

func TestBuildV50Errors(t *testing.T) {
	t.Run("display index out of range", func(t *testing.T) {
		_, err := BuildV50(&V50Message{Displays: []Display{{Index: 65535}}})
		if !errors.Is(err, ErrDisplayIndex) {
			t.Errorf("BuildV50() error = %v, want %v", err, ErrDisplayIndex)
		}
	})

	t.Run("packet exceeds 16-bit byte count", func(t *testing.T) {
		big := make([]byte, 70000)
		for i := range big {
			big[i] = 'a'
		}
		_, err := BuildV50(&V50Message{Displays: []Display{{Index: 1, TextLabel: string(big)}}})
		if !errors.Is(err, ErrPacketTooLarge) {
			t.Errorf("BuildV50() error = %v, want %v", err, ErrPacketTooLarge)
		}
	})
}

func TestRoundTrips(t *testing.T) {
	t.Run("v3.1", func(t *testing.T) {
		orig := &V31Message{
			Address:    42,
			Tally1:     true,
			Tally3:     true,
			Brightness: BrightnessMedium,
			Text:       "STUDIO B        ", // already 16 chars, survives exactly
		}
		pkt, err := BuildV31(orig)
		if err != nil {
			t.Fatalf("BuildV31() error = %v", err)
		}
		got, err := DecodeV31(pkt)
		if err != nil {
			t.Fatalf("DecodeV31() error = %v", err)
		}
		if !reflect.DeepEqual(got, orig) {
			t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, orig)
		}
	})

	t.Run("v4.0", func(t *testing.T) {
		orig := &V40Message{
			V31Message: V31Message{
				Address:    0,
				Tally4:     true,
				Brightness: BrightnessOff,
				Text:       "REMOTE 7        ",
			},
			LeftTallies:  TallyTriple{Left: TallyAmber, Text: TallyRed, Right: TallyGreen},
			RightTallies: TallyTriple{Left: TallyGreen, Text: TallyGreen, Right: TallyGreen},
		}
		pkt, err := BuildV40(orig)
		if err != nil {
			t.Fatalf("BuildV40() error = %v", err)
		}
		got, err := DecodeV40(pkt)
		if err != nil {
			t.Fatalf("DecodeV40() error = %v", err)
		}
		if !reflect.DeepEqual(got, orig) {
			t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, orig)
		}
	})

	t.Run("v5.0 ascii", func(t *testing.T) {
		orig := &V50Message{
			MinorVersion: 0,
			Screen:       1,
			Displays: []Display{
				{Index: 0, Left: TallyRed, Text: TallyRed, Right: TallyRed, Brightness: BrightnessFull, TextLabel: "PGM"},
				{Index: 65534, Brightness: BrightnessLow, TextLabel: ""},
				{Index: 12, Text: TallyGreen, TextLabel: "A LONGER SOURCE NAME"},
			},
		}
		pkt, err := BuildV50(orig)
		if err != nil {
			t.Fatalf("BuildV50() error = %v", err)
		}
		got, err := DecodeV50(pkt)
		if err != nil {
			t.Fatalf("DecodeV50() error = %v", err)
		}
		if !reflect.DeepEqual(got, orig) {
			t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, orig)
		}
	})

	t.Run("v5.0 unicode", func(t *testing.T) {
		orig := &V50Message{
			Unicode: true,
			Displays: []Display{
				{Index: 9, Brightness: BrightnessFull, TextLabel: "КАМЕРА 9"},
			},
		}
		pkt, err := BuildV50(orig)
		if err != nil {
			t.Fatalf("BuildV50() error = %v", err)
		}
		got, err := DecodeV50(pkt)
		if err != nil {
			t.Fatalf("DecodeV50() error = %v", err)
		}
		if !reflect.DeepEqual(got, orig) {
			t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, orig)
		}
	})

	t.Run("build dispatch matches decode dispatch", func(t *testing.T) {
		msgs := []Message{
			&V31Message{Address: 3, Text: "X               "},
			&V50Message{Displays: []Display{{Index: 1, TextLabel: "X"}}},
		}
		for _, m := range msgs {
			pkt, err := Build(m)
			if err != nil {
				t.Fatalf("Build(%T) error = %v", m, err)
			}
			got, err := Decode(pkt)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got.Version() != m.Version() {
				t.Errorf("version = %s, want %s", got.Version(), m.Version())
			}
		}
	})
}
