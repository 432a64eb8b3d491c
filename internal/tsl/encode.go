package tsl

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// BuildV31 encodes a V3.1 message into its fixed 18-byte wire form.
//
// Packet layout:
//
//	[0]      header  0x80 + address
//	[1]      control bits 0-3 tally1-4, bits 4-5 brightness
//	[2-17]   display text, space-padded/truncated to 16 bytes
func BuildV31(msg *V31Message) ([]byte, error) {
	if msg.Address > MaxAddress {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrAddressRange, msg.Address, MaxAddress)
	}

	out := make([]byte, V31PacketLen)
	out[0] = HeaderMin + msg.Address
	out[1] = packControl(msg)
	copy(out[2:], padDisplayText(msg.Text))
	return out, nil
}

// BuildV40 encodes a V4.0 message into its fixed 22-byte wire form: the
// embedded V3.1 body, the checksum over it, VBC=0x02 (minor version 0,
// two XDATA bytes) and the two tally-triple bytes.
func BuildV40(msg *V40Message) ([]byte, error) {
	base, err := BuildV31(&msg.V31Message)
	if err != nil {
		return nil, err
	}

	out := make([]byte, V40PacketLen)
	copy(out, base)
	out[18] = Checksum(out[:V31PacketLen])
	out[19] = 0x02
	out[20] = packTriple(msg.LeftTallies)
	out[21] = packTriple(msg.RightTallies)
	return out, nil
}

// BuildV50 encodes a V5.0 message into its variable-length wire form.
//
// Packet layout (16-bit fields little-endian):
//
//	[0-1]   PBC = total length - 2
//	[2]     minor version
//	[3]     flags (bit 0 unicode, bit 1 screen control)
//	[4-5]   screen index
//	per display:
//	[+0-1]  display index
//	[+2-3]  control word (bits 0-1 right, 2-3 text, 4-5 left, 6-7 brightness)
//	[+4-5]  text byte length
//	[+6..]  text, ASCII or UTF-16LE per the unicode flag
//
// The text encoding is selected once for the whole packet by the Unicode
// flag and applied to every display.
func BuildV50(msg *V50Message) ([]byte, error) {
	texts := make([][]byte, len(msg.Displays))
	size := 4 // minor version + flags + screen index
	for i, d := range msg.Displays {
		if d.Index > MaxDisplayIndex {
			return nil, fmt.Errorf("%w: %d (max %d)", ErrDisplayIndex, d.Index, MaxDisplayIndex)
		}
		if msg.Unicode {
			texts[i] = encodeUTF16(d.TextLabel)
		} else {
			texts[i] = []byte(d.TextLabel)
		}
		size += 6 + len(texts[i])
	}
	if size > 0xFFFF {
		return nil, fmt.Errorf("%w: %d data bytes", ErrPacketTooLarge, size)
	}

	var flags byte
	if msg.Unicode {
		flags |= FlagUnicode
	}
	if msg.ScreenControl {
		flags |= FlagScreenControl
	}

	out := make([]byte, 2+size)
	binary.LittleEndian.PutUint16(out[0:2], uint16(size))
	out[2] = msg.MinorVersion
	out[3] = flags
	binary.LittleEndian.PutUint16(out[4:6], msg.Screen)

	off := V50MinLen
	for i, d := range msg.Displays {
		binary.LittleEndian.PutUint16(out[off:off+2], d.Index)
		binary.LittleEndian.PutUint16(out[off+2:off+4], packDisplayControl(d))
		binary.LittleEndian.PutUint16(out[off+4:off+6], uint16(len(texts[i])))
		copy(out[off+6:], texts[i])
		off += 6 + len(texts[i])
	}

	return out, nil
}

// Build encodes any message variant.
func Build(msg Message) ([]byte, error) {
	switch m := msg.(type) {
	case *V31Message:
		return BuildV31(m)
	case *V40Message:
		return BuildV40(m)
	case *V50Message:
		return BuildV50(m)
	default:
		return nil, fmt.Errorf("tsl: cannot encode %T", msg)
	}
}

// packControl packs the V3.1/V4.0 control byte.
func packControl(msg *V31Message) byte {
	var control byte
	if msg.Tally1 {
		control |= 0x01
	}
	if msg.Tally2 {
		control |= 0x02
	}
	if msg.Tally3 {
		control |= 0x04
	}
	if msg.Tally4 {
		control |= 0x08
	}
	control |= byte(msg.Brightness&0x03) << 4
	return control
}

// packTriple packs a V4.0 XDATA tally byte: bits 4-5 left, 2-3 text,
// 0-1 right.
func packTriple(t TallyTriple) byte {
	return byte(t.Right&0x03) | byte(t.Text&0x03)<<2 | byte(t.Left&0x03)<<4
}

// packDisplayControl packs a V5.0 display-data control word. The
// control-data bit stays clear: this encoder only emits display data.
func packDisplayControl(d Display) uint16 {
	return uint16(d.Right&0x03) |
		uint16(d.Text&0x03)<<2 |
		uint16(d.Left&0x03)<<4 |
		uint16(d.Brightness&0x03)<<6
}

// padDisplayText truncates or space-pads text to the fixed 16-byte field.
func padDisplayText(s string) []byte {
	out := make([]byte, DisplayTextLen)
	for i := range out {
		out[i] = ' '
	}
	copy(out, s)
	return out
}

// encodeUTF16 encodes text as little-endian UTF-16.
func encodeUTF16(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[2*i:], u)
	}
	return out
}
