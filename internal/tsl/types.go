package tsl

import (
	"fmt"
	"strings"
)

// Wire constants shared by all protocol versions
const (
	HeaderMin = 0x80 // Lowest valid V3.1/V4.0 header byte (address 0)
	HeaderMax = 0xFE // Highest valid V3.1/V4.0 header byte (address 126)

	MaxAddress = 126 // V3.1/V4.0 display address range is 0-126

	V31PacketLen = 18 // Fixed V3.1 packet size
	V40PacketLen = 22 // Fixed V4.0 packet size (V3.1 + checksum + VBC + XDATA)
	V50MinLen    = 6  // PBC(2) + minor version + flags + screen(2)

	DisplayTextLen = 16 // V3.1/V4.0 display text is always 16 bytes

	MaxDisplayIndex = 65534 // V5.0 display index range is 0-65534
)

// V5.0 flag bits (packet byte 3)
const (
	FlagUnicode       = 0x01 // Display text is UTF-16LE instead of ASCII
	FlagScreenControl = 0x02 // Payload is screen-control data, not display data
)

// ControlDataBit marks a V5.0 display control word as control data rather
// than display data. Parsing of the display list stops at the first entry
// carrying this bit.
const ControlDataBit = 0x8000

// TallyState is the state of a single tally indicator.
type TallyState uint8

const (
	TallyOff TallyState = iota
	TallyRed
	TallyGreen
	TallyAmber
)

// String returns a human-readable tally state name.
func (t TallyState) String() string {
	switch t {
	case TallyOff:
		return "off"
	case TallyRed:
		return "red"
	case TallyGreen:
		return "green"
	case TallyAmber:
		return "amber"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// ParseTallyState parses a tally state name as used in CLI flags and presets.
func ParseTallyState(s string) (TallyState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "":
		return TallyOff, nil
	case "red":
		return TallyRed, nil
	case "green":
		return TallyGreen, nil
	case "amber":
		return TallyAmber, nil
	default:
		return TallyOff, fmt.Errorf("invalid tally state %q (want off, red, green or amber)", s)
	}
}

// Brightness is the display brightness level. The wire encoding uses the
// 2-bit value directly, so the enum order matches the protocol.
type Brightness uint8

const (
	BrightnessOff    Brightness = iota
	BrightnessLow               // 1/7 brightness
	BrightnessMedium            // 1/2 brightness
	BrightnessFull
)

// String returns a human-readable brightness name.
func (b Brightness) String() string {
	switch b {
	case BrightnessOff:
		return "off"
	case BrightnessLow:
		return "low"
	case BrightnessMedium:
		return "medium"
	case BrightnessFull:
		return "full"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(b))
	}
}

// ParseBrightness parses a brightness name as used in CLI flags and presets.
func ParseBrightness(s string) (Brightness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return BrightnessOff, nil
	case "low":
		return BrightnessLow, nil
	case "medium":
		return BrightnessMedium, nil
	case "full", "":
		return BrightnessFull, nil
	default:
		return BrightnessOff, fmt.Errorf("invalid brightness %q (want off, low, medium or full)", s)
	}
}

// Version identifies which TSL UMD protocol version a packet uses.
type Version uint8

const (
	V31 Version = iota
	V40
	V50
)

// String returns the protocol version as written in the TSL specifications.
func (v Version) String() string {
	switch v {
	case V31:
		return "3.1"
	case V40:
		return "4.0"
	case V50:
		return "5.0"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(v))
	}
}

// Message is a decoded TSL UMD message of any protocol version.
type Message interface {
	Version() Version
	String() string
}

// V31Message is a decoded TSL UMD V3.1 message: one display address, four
// independent tally lamps, a brightness level and 16 characters of text.
type V31Message struct {
	Address    uint8 // 0-126, encoded as header byte 0x80+Address
	Tally1     bool
	Tally2     bool
	Tally3     bool
	Tally4     bool
	Brightness Brightness
	Text       string // Space-padded/truncated to 16 characters on encode
}

func (m *V31Message) Version() Version { return V31 }

func (m *V31Message) String() string {
	return fmt.Sprintf("V3.1{addr=%d, tallies=[%s %s %s %s], brightness=%s, text=%q}",
		m.Address,
		tallyFlag(m.Tally1), tallyFlag(m.Tally2), tallyFlag(m.Tally3), tallyFlag(m.Tally4),
		m.Brightness, m.Text)
}

func tallyFlag(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// TallyTriple is the V4.0 extension tally set for one display half: the
// lamps to the left of the text, behind the text, and to the right of it.
type TallyTriple struct {
	Left  TallyState
	Text  TallyState
	Right TallyState
}

// String returns the triple as "left/text/right".
func (t TallyTriple) String() string {
	return fmt.Sprintf("%s/%s/%s", t.Left, t.Text, t.Right)
}

// V40Message is a decoded TSL UMD V4.0 message. It is a V3.1 message plus
// two tally triples carried in the 2-byte XDATA extension. The checksum is
// derived from the encoded bytes and never stored on the message.
type V40Message struct {
	V31Message
	LeftTallies  TallyTriple // XDATA byte 20 (left display)
	RightTallies TallyTriple // XDATA byte 21 (right display)
}

func (m *V40Message) Version() Version { return V40 }

func (m *V40Message) String() string {
	return fmt.Sprintf("V4.0{addr=%d, tallies=[%s %s %s %s], brightness=%s, text=%q, left=%s, right=%s}",
		m.Address,
		tallyFlag(m.Tally1), tallyFlag(m.Tally2), tallyFlag(m.Tally3), tallyFlag(m.Tally4),
		m.Brightness, m.Text, m.LeftTallies, m.RightTallies)
}

// Display is one display entry in a V5.0 message.
type Display struct {
	Index      uint16 // 0-65534
	Left       TallyState
	Text       TallyState
	Right      TallyState
	Brightness Brightness
	TextLabel  string // ASCII or UTF-16 depending on the message Unicode flag
}

// String returns a compact single-display summary.
func (d Display) String() string {
	return fmt.Sprintf("{index=%d, l/t/r=%s/%s/%s, brightness=%s, text=%q}",
		d.Index, d.Left, d.Text, d.Right, d.Brightness, d.TextLabel)
}

// V50Message is a decoded TSL UMD V5.0 message: a screen index and an
// ordered list of display entries with variable-length text.
type V50Message struct {
	MinorVersion  uint8
	Unicode       bool // Text is UTF-16LE for every display
	ScreenControl bool // Payload is screen-control data; Displays is empty
	Screen        uint16
	Displays      []Display
}

func (m *V50Message) Version() Version { return V50 }

func (m *V50Message) String() string {
	if m.ScreenControl {
		return fmt.Sprintf("V5.0{minor=%d, screen=%d, screen-control}", m.MinorVersion, m.Screen)
	}
	parts := make([]string, len(m.Displays))
	for i, d := range m.Displays {
		parts[i] = d.String()
	}
	return fmt.Sprintf("V5.0{minor=%d, screen=%d, unicode=%v, displays=[%s]}",
		m.MinorVersion, m.Screen, m.Unicode, strings.Join(parts, " "))
}
