package tsl

import (
	"bytes"
	"errors"
	"testing"
)

// v31Bytes builds the fixed V3.1 packet for address/control/text without
// going through the encoder.
func v31Bytes(header, control byte, text string) []byte {
	b := make([]byte, V31PacketLen)
	b[0] = header
	b[1] = control
	for i := 2; i < V31PacketLen; i++ {
		b[i] = ' '
	}
	copy(b[2:], text)
	return b
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantVer Version
		wantOK  bool
	}{
		{
			name:    "minimal v5.0 via PBC heuristic",
			data:    []byte{0x06, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
			wantVer: V50,
			wantOK:  true,
		},
		{
			name:    "6-byte v5.0 header only",
			data:    []byte{0x04, 0x00, 0x00, 0x00, 0x00, 0x00},
			wantVer: V50,
			wantOK:  true,
		},
		{
			name:    "v3.1 address 0",
			data:    v31Bytes(0x80, 0x00, ""),
			wantVer: V31,
			wantOK:  true,
		},
		{
			name:    "v3.1 address 126",
			data:    v31Bytes(0xFE, 0x00, ""),
			wantVer: V31,
			wantOK:  true,
		},
		{
			name: "v4.0 via checksum probe",
			data: func() []byte {
				b := append(v31Bytes(0x81, 0x31, "CAM 1"), 0x00, 0x02, 0x00, 0x00)
				b[18] = Checksum(b[:18])
				return b
			}(),
			wantVer: V40,
			wantOK:  true,
		},
		{
			name: "v4.0-sized packet with bad checksum stays v3.1",
			data: func() []byte {
				b := append(v31Bytes(0x81, 0x31, "CAM 1"), 0x00, 0x02, 0x00, 0x00)
				b[18] = Checksum(b[:18]) ^ 0x01
				return b
			}(),
			wantVer: V31,
			wantOK:  true,
		},
		{
			name:   "empty",
			data:   nil,
			wantOK: false,
		},
		{
			name:   "first byte below header range",
			data:   []byte{0x7F, 0x00, 0x00, 0x00, 0x00, 0x00},
			wantOK: false,
		},
		{
			name:   "0xFF first byte is never a header",
			data:   bytes.Repeat([]byte{0xFF}, V31PacketLen),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ver, ok := Detect(tt.data)
			if ok != tt.wantOK {
				t.Fatalf("Detect() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && ver != tt.wantVer {
				t.Errorf("Detect() version = %s, want %s", ver, tt.wantVer)
			}
		})
	}
}

func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want byte
	}{
		{name: "empty", data: nil, want: 0x00},
		{name: "zeros", data: make([]byte, 18), want: 0x00},
		{name: "single 0x01", data: []byte{0x01}, want: 0x7F},
		{name: "single 0x80", data: []byte{0x80}, want: 0x00},
		{name: "wraps mod 128", data: []byte{0x40, 0x40}, want: 0x00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(tt.data); got != tt.want {
				t.Errorf("Checksum() = 0x%02x, want 0x%02x", got, tt.want)
			}
		})
	}
}

func TestDecodeV31(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
		verify  func(t *testing.T, msg *V31Message)
	}{
		{
			name: "camera one full brightness",
			data: v31Bytes(0x81, 0x31, "CAM 1"),
			verify: func(t *testing.T, msg *V31Message) {
				if msg.Address != 1 {
					t.Errorf("address = %d, want 1", msg.Address)
				}
				if !msg.Tally1 || msg.Tally2 || msg.Tally3 || msg.Tally4 {
					t.Errorf("tallies = %v %v %v %v, want on off off off",
						msg.Tally1, msg.Tally2, msg.Tally3, msg.Tally4)
				}
				if msg.Brightness != BrightnessFull {
					t.Errorf("brightness = %s, want full", msg.Brightness)
				}
				if msg.Text != "CAM 1           " {
					t.Errorf("text = %q, want %q", msg.Text, "CAM 1           ")
				}
			},
		},
		{
			name: "all tallies and medium brightness",
			data: v31Bytes(0xFE, 0x0F|0x20, "PREVIEW"),
			verify: func(t *testing.T, msg *V31Message) {
				if msg.Address != 126 {
					t.Errorf("address = %d, want 126", msg.Address)
				}
				if !(msg.Tally1 && msg.Tally2 && msg.Tally3 && msg.Tally4) {
					t.Error("all four tallies should be on")
				}
				if msg.Brightness != BrightnessMedium {
					t.Errorf("brightness = %s, want medium", msg.Brightness)
				}
			},
		},
		{
			name: "control characters normalized to spaces",
			data: func() []byte {
				b := v31Bytes(0x80, 0x00, "")
				b[2] = 0x00
				b[3] = 0x1F
				b[4] = 0x7F
				b[5] = 'A'
				b[6] = 0xFF
				return b
			}(),
			verify: func(t *testing.T, msg *V31Message) {
				if msg.Text[:5] != "   A " {
					t.Errorf("text prefix = %q, want %q", msg.Text[:5], "   A ")
				}
			},
		},
		{
			name:    "too short",
			data:    make([]byte, 17),
			wantErr: ErrTooShort,
		},
		{
			name:    "header below range",
			data:    v31Bytes(0x20, 0x00, ""),
			wantErr: ErrHeaderRange,
		},
		{
			name:    "header above range",
			data:    v31Bytes(0xFF, 0x00, ""),
			wantErr: ErrHeaderRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeV31(tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeV31() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeV31() error = %v", err)
			}
			tt.verify(t, msg)
		})
	}
}

func TestDecodeV40(t *testing.T) {
	valid := func() []byte {
		pkt, err := BuildV40(&V40Message{
			V31Message: V31Message{
				Address:    5,
				Tally1:     true,
				Brightness: BrightnessFull,
				Text:       "VT 1",
			},
			LeftTallies:  TallyTriple{Left: TallyRed, Text: TallyOff, Right: TallyGreen},
			RightTallies: TallyTriple{Left: TallyAmber, Text: TallyAmber, Right: TallyOff},
		})
		if err != nil {
			panic(err)
		}
		return pkt
	}

	t.Run("valid packet", func(t *testing.T) {
		msg, err := DecodeV40(valid())
		if err != nil {
			t.Fatalf("DecodeV40() error = %v", err)
		}
		if msg.Address != 5 {
			t.Errorf("address = %d, want 5", msg.Address)
		}
		if msg.LeftTallies.Left != TallyRed || msg.LeftTallies.Right != TallyGreen {
			t.Errorf("left triple = %s, want red/off/green", msg.LeftTallies)
		}
		if msg.RightTallies.Left != TallyAmber || msg.RightTallies.Text != TallyAmber {
			t.Errorf("right triple = %s, want amber/amber/off", msg.RightTallies)
		}
	})

	t.Run("too short", func(t *testing.T) {
		if _, err := DecodeV40(valid()[:21]); !errors.Is(err, ErrTooShort) {
			t.Errorf("DecodeV40() error = %v, want %v", err, ErrTooShort)
		}
	})

	t.Run("body mutation breaks checksum", func(t *testing.T) {
		for i := 0; i < V31PacketLen; i++ {
			pkt := valid()
			pkt[i] ^= 0x01
			if _, err := DecodeV40(pkt); err == nil {
				t.Errorf("DecodeV40() with byte %d mutated should fail", i)
			}
		}
	})

	t.Run("checksum byte mutation", func(t *testing.T) {
		pkt := valid()
		pkt[18] ^= 0x40
		if _, err := DecodeV40(pkt); !errors.Is(err, ErrChecksum) {
			t.Errorf("DecodeV40() error = %v, want %v", err, ErrChecksum)
		}
	})

	t.Run("unsupported xdata count", func(t *testing.T) {
		pkt := valid()
		pkt[19] = 0x01
		if _, err := DecodeV40(pkt); !errors.Is(err, ErrXData) {
			t.Errorf("DecodeV40() error = %v, want %v", err, ErrXData)
		}
	})

	t.Run("xdata larger than packet", func(t *testing.T) {
		pkt := valid()
		pkt[19] = 0x0F
		if _, err := DecodeV40(pkt); !errors.Is(err, ErrTooShort) {
			t.Errorf("DecodeV40() error = %v, want %v", err, ErrTooShort)
		}
	})
}

func TestDecodeV50(t *testing.T) {
	build := func(msg *V50Message) []byte {
		pkt, err := BuildV50(msg)
		if err != nil {
			panic(err)
		}
		return pkt
	}

	t.Run("two ascii displays", func(t *testing.T) {
		pkt := build(&V50Message{
			Screen: 3,
			Displays: []Display{
				{Index: 1, Left: TallyRed, Text: TallyOff, Right: TallyGreen, Brightness: BrightnessFull, TextLabel: "CAM 1"},
				{Index: 2, Brightness: BrightnessLow, TextLabel: "CAM 2"},
			},
		})
		msg, err := DecodeV50(pkt)
		if err != nil {
			t.Fatalf("DecodeV50() error = %v", err)
		}
		if msg.Screen != 3 {
			t.Errorf("screen = %d, want 3", msg.Screen)
		}
		if len(msg.Displays) != 2 {
			t.Fatalf("displays = %d, want 2", len(msg.Displays))
		}
		if msg.Displays[0].Left != TallyRed || msg.Displays[0].Right != TallyGreen {
			t.Errorf("display 0 tallies = %s", msg.Displays[0])
		}
		if msg.Displays[1].TextLabel != "CAM 2" {
			t.Errorf("display 1 text = %q, want %q", msg.Displays[1].TextLabel, "CAM 2")
		}
	})

	t.Run("unicode text", func(t *testing.T) {
		pkt := build(&V50Message{
			Unicode:  true,
			Displays: []Display{{Index: 7, TextLabel: "KAMERA ÅÄÖ"}},
		})
		msg, err := DecodeV50(pkt)
		if err != nil {
			t.Fatalf("DecodeV50() error = %v", err)
		}
		if !msg.Unicode {
			t.Error("unicode flag should be set")
		}
		if msg.Displays[0].TextLabel != "KAMERA ÅÄÖ" {
			t.Errorf("text = %q, want %q", msg.Displays[0].TextLabel, "KAMERA ÅÄÖ")
		}
	})

	t.Run("screen control payload keeps display list empty", func(t *testing.T) {
		pkt := build(&V50Message{ScreenControl: true, Screen: 1})
		msg, err := DecodeV50(pkt)
		if err != nil {
			t.Fatalf("DecodeV50() error = %v", err)
		}
		if !msg.ScreenControl {
			t.Error("screen control flag should be set")
		}
		if len(msg.Displays) != 0 {
			t.Errorf("displays = %d, want 0", len(msg.Displays))
		}
	})

	t.Run("pbc off by one fails", func(t *testing.T) {
		pkt := build(&V50Message{Displays: []Display{{Index: 1, TextLabel: "X"}}})

		if _, err := DecodeV50(pkt[:len(pkt)-1]); !errors.Is(err, ErrPacketByteCount) {
			t.Errorf("truncated: error = %v, want %v", err, ErrPacketByteCount)
		}
		if _, err := DecodeV50(append(append([]byte(nil), pkt...), 0x00)); !errors.Is(err, ErrPacketByteCount) {
			t.Errorf("padded: error = %v, want %v", err, ErrPacketByteCount)
		}
	})

	t.Run("too short", func(t *testing.T) {
		if _, err := DecodeV50([]byte{0x03, 0x00, 0x00, 0x00, 0x00}); !errors.Is(err, ErrTooShort) {
			t.Errorf("DecodeV50() error = %v, want %v", err, ErrTooShort)
		}
	})

	t.Run("control data terminates display walk", func(t *testing.T) {
		// One display entry, then an entry whose control word has bit 15
		// set followed by arbitrary bytes.
		pkt := build(&V50Message{Displays: []Display{{Index: 1, TextLabel: "A"}}})
		tail := []byte{0x02, 0x00, 0x00, 0x80, 0xAA, 0xBB}
		pkt = append(pkt, tail...)
		// Fix the PBC for the extended packet.
		pkt[0] = byte(len(pkt) - 2)
		pkt[1] = byte((len(pkt) - 2) >> 8)

		msg, err := DecodeV50(pkt)
		if err != nil {
			t.Fatalf("DecodeV50() error = %v", err)
		}
		if len(msg.Displays) != 1 {
			t.Errorf("displays = %d, want 1 (walk stops at control data)", len(msg.Displays))
		}
	})

	t.Run("truncated display entry ends walk without error", func(t *testing.T) {
		// Second entry declares 10 text bytes but only 2 follow.
		pkt := build(&V50Message{Displays: []Display{{Index: 1, TextLabel: "A"}}})
		tail := []byte{0x02, 0x00, 0x00, 0x00, 0x0A, 0x00, 'x', 'y'}
		pkt = append(pkt, tail...)
		pkt[0] = byte(len(pkt) - 2)
		pkt[1] = byte((len(pkt) - 2) >> 8)

		msg, err := DecodeV50(pkt)
		if err != nil {
			t.Fatalf("DecodeV50() error = %v", err)
		}
		if len(msg.Displays) != 1 {
			t.Errorf("displays = %d, want 1 (truncated entry dropped)", len(msg.Displays))
		}
	})
}

func TestDecodeDispatch(t *testing.T) {
	t.Run("unknown version", func(t *testing.T) {
		_, err := Decode([]byte{0x10, 0x20, 0x30})
		if !errors.Is(err, ErrUnknownVersion) {
			t.Errorf("Decode() error = %v, want %v", err, ErrUnknownVersion)
		}
	})

	t.Run("dispatches v3.1", func(t *testing.T) {
		msg, err := Decode(v31Bytes(0x82, 0x00, "IN 2"))
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if msg.Version() != V31 {
			t.Errorf("version = %s, want 3.1", msg.Version())
		}
	})

	t.Run("dispatches v5.0", func(t *testing.T) {
		pkt, err := BuildV50(&V50Message{Displays: []Display{{Index: 1, TextLabel: "CAM 1"}}})
		if err != nil {
			t.Fatalf("BuildV50() error = %v", err)
		}
		msg, err := Decode(pkt)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if msg.Version() != V50 {
			t.Errorf("version = %s, want 5.0", msg.Version())
		}
	})
}
