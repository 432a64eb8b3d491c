package tsl

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// Detect classifies raw bytes into a protocol version before full decode.
//
// The protocol carries no self-describing version tag, so detection is a
// heuristic with a fixed precedence that must be preserved for
// compatibility with existing senders:
//
//  1. If the buffer is at least 6 bytes and its first 16 bits, read
//     little-endian as a packet byte count, equal the buffer length minus
//     2, the packet is V5.0. A V3.1/V4.0 packet whose first two bytes
//     happen to encode its own length would misclassify here; that
//     ambiguity is inherent to the wire format and accepted.
//  2. Otherwise, if the first byte lies in the 0x80-0xFE display-address
//     header range the packet is V3.1, upgraded to V4.0 when a checksum
//     byte follows the fixed 18-byte body and matches.
//  3. Otherwise no version is detected and the caller should treat the
//     bytes as raw.
func Detect(data []byte) (Version, bool) {
	if len(data) >= V50MinLen {
		pbc := binary.LittleEndian.Uint16(data[0:2])
		if int(pbc) == len(data)-2 {
			return V50, true
		}
	}

	if len(data) >= 1 && data[0] >= HeaderMin && data[0] <= HeaderMax {
		if len(data) > V31PacketLen && Checksum(data[:V31PacketLen]) == data[V31PacketLen] {
			return V40, true
		}
		return V31, true
	}

	return 0, false
}

// Checksum computes the V4.0 checksum over data: the 2's complement of the
// byte sum, masked to 7 bits. V4.0 packets carry it over their first 18
// bytes at byte 18.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return (^sum + 1) & 0x7F
}

// Decode detects the protocol version of data and decodes it into a typed
// message. Failures are structural (length, header range, checksum, packet
// byte count) and always recoverable: the caller degrades to displaying
// the raw bytes.
func Decode(data []byte) (Message, error) {
	ver, ok := Detect(data)
	if !ok {
		if len(data) == 0 {
			return nil, fmt.Errorf("%w: empty packet", ErrUnknownVersion)
		}
		return nil, fmt.Errorf("%w: first byte 0x%02x, length %d", ErrUnknownVersion, data[0], len(data))
	}

	switch ver {
	case V31:
		return DecodeV31(data)
	case V40:
		return DecodeV40(data)
	default:
		return DecodeV50(data)
	}
}

// DecodeV31 decodes a fixed 18-byte V3.1 packet.
func DecodeV31(data []byte) (*V31Message, error) {
	if len(data) < V31PacketLen {
		return nil, fmt.Errorf("%w: V3.1 needs %d bytes, got %d", ErrTooShort, V31PacketLen, len(data))
	}

	header := data[0]
	if header < HeaderMin || header > HeaderMax {
		return nil, fmt.Errorf("%w: 0x%02x", ErrHeaderRange, header)
	}

	control := data[1]
	msg := &V31Message{
		Address:    header - HeaderMin,
		Tally1:     control&0x01 != 0,
		Tally2:     control&0x02 != 0,
		Tally3:     control&0x04 != 0,
		Tally4:     control&0x08 != 0,
		Brightness: Brightness((control >> 4) & 0x03),
		Text:       printableASCII(data[2:V31PacketLen]),
	}
	return msg, nil
}

// DecodeV40 decodes a fixed 22-byte V4.0 packet: a V3.1 body, a checksum,
// a VBC byte and the 2-byte XDATA tally-triple extension.
func DecodeV40(data []byte) (*V40Message, error) {
	if len(data) < V40PacketLen {
		return nil, fmt.Errorf("%w: V4.0 needs %d bytes, got %d", ErrTooShort, V40PacketLen, len(data))
	}

	base, err := DecodeV31(data)
	if err != nil {
		return nil, fmt.Errorf("V4.0 base decode: %w", err)
	}

	if want := Checksum(data[:V31PacketLen]); data[V31PacketLen] != want {
		return nil, fmt.Errorf("%w: got 0x%02x, computed 0x%02x", ErrChecksum, data[V31PacketLen], want)
	}

	vbc := data[19]
	xdata := int(vbc & 0x0F)
	if V31PacketLen+2+xdata > len(data) {
		return nil, fmt.Errorf("%w: VBC declares %d XDATA bytes", ErrTooShort, xdata)
	}
	if xdata != 2 {
		return nil, fmt.Errorf("%w: %d", ErrXData, xdata)
	}

	return &V40Message{
		V31Message:   *base,
		LeftTallies:  unpackTriple(data[20]),
		RightTallies: unpackTriple(data[21]),
	}, nil
}

// DecodeV50 decodes a variable-length V5.0 packet.
//
// The display list is walked sequentially. A control word with the
// control-data bit set, or an entry whose declared text would run past the
// end of the packet, terminates the walk without failing the packet:
// everything decoded up to that point stands.
func DecodeV50(data []byte) (*V50Message, error) {
	if len(data) < V50MinLen {
		return nil, fmt.Errorf("%w: V5.0 needs at least %d bytes, got %d", ErrTooShort, V50MinLen, len(data))
	}

	pbc := binary.LittleEndian.Uint16(data[0:2])
	if int(pbc) != len(data)-2 {
		return nil, fmt.Errorf("%w: PBC %d, packet length %d", ErrPacketByteCount, pbc, len(data))
	}

	flags := data[3]
	msg := &V50Message{
		MinorVersion:  data[2],
		Unicode:       flags&FlagUnicode != 0,
		ScreenControl: flags&FlagScreenControl != 0,
		Screen:        binary.LittleEndian.Uint16(data[4:6]),
	}

	// Screen-control payloads are out of scope; the display list stays empty.
	if msg.ScreenControl {
		return msg, nil
	}

	off := V50MinLen
	for len(data)-off >= 6 {
		control := binary.LittleEndian.Uint16(data[off+2 : off+4])
		if control&ControlDataBit != 0 {
			break
		}

		textLen := int(binary.LittleEndian.Uint16(data[off+4 : off+6]))
		if off+6+textLen > len(data) {
			// Truncated entry: no more complete displays.
			break
		}

		textBytes := data[off+6 : off+6+textLen]
		var text string
		if msg.Unicode {
			text = decodeUTF16(textBytes)
		} else {
			text = string(textBytes)
		}

		msg.Displays = append(msg.Displays, Display{
			Index:      binary.LittleEndian.Uint16(data[off : off+2]),
			Right:      TallyState(control & 0x03),
			Text:       TallyState((control >> 2) & 0x03),
			Left:       TallyState((control >> 4) & 0x03),
			Brightness: Brightness((control >> 6) & 0x03),
			TextLabel:  text,
		})
		off += 6 + textLen
	}

	return msg, nil
}

// printableASCII decodes fixed display text, replacing every byte outside
// the printable range with a space. This is a display-safety normalization
// for the consumer, not a protocol requirement.
func printableASCII(data []byte) string {
	out := make([]byte, len(data))
	for i, b := range data {
		if b < 0x20 || b > 0x7E {
			out[i] = ' '
		} else {
			out[i] = b
		}
	}
	return string(out)
}

// unpackTriple unpacks a V4.0 XDATA tally byte: bits 4-5 left, 2-3 text,
// 0-1 right.
func unpackTriple(b byte) TallyTriple {
	return TallyTriple{
		Left:  TallyState((b >> 4) & 0x03),
		Text:  TallyState((b >> 2) & 0x03),
		Right: TallyState(b & 0x03),
	}
}

// decodeUTF16 decodes little-endian UTF-16 text. A trailing odd byte is
// ignored.
func decodeUTF16(data []byte) string {
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, binary.LittleEndian.Uint16(data[i:i+2]))
	}
	return string(utf16.Decode(units))
}
