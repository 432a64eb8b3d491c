package tsl

import "errors"

// Decode failures are always structural and recoverable: callers are
// expected to fall back to showing the raw bytes, never to abort the
// connection or the process.
var (
	// ErrUnknownVersion means the bytes match none of the version
	// detection rules.
	ErrUnknownVersion = errors.New("tsl: unrecognized protocol version")

	// ErrTooShort means the buffer is shorter than the fixed or declared
	// packet size for its version.
	ErrTooShort = errors.New("tsl: packet too short")

	// ErrHeaderRange means a V3.1/V4.0 header byte lies outside 0x80-0xFE.
	ErrHeaderRange = errors.New("tsl: header byte outside V3.1/V4.0 range")

	// ErrChecksum means a V4.0 packet's checksum byte does not match the
	// checksum recomputed over its first 18 bytes.
	ErrChecksum = errors.New("tsl: checksum mismatch")

	// ErrXData means a V4.0 VBC declares an XDATA size this decoder does
	// not support (only the 2-byte tally-triple extension is defined).
	ErrXData = errors.New("tsl: unsupported XDATA count")

	// ErrPacketByteCount means a V5.0 packet's declared PBC does not
	// equal the actual packet length minus 2.
	ErrPacketByteCount = errors.New("tsl: packet byte count mismatch")

	// ErrAddressRange means an encode request carries an address outside
	// 0-126.
	ErrAddressRange = errors.New("tsl: address out of range")

	// ErrDisplayIndex means an encode request carries a display index
	// outside 0-65534.
	ErrDisplayIndex = errors.New("tsl: display index out of range")

	// ErrPacketTooLarge means an encoded V5.0 packet would exceed the
	// 16-bit packet byte count.
	ErrPacketTooLarge = errors.New("tsl: packet exceeds 16-bit byte count")
)
