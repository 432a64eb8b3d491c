package config

import (
	"fmt"
	"strings"

	"github.com/videojedi/TSL-UMD-Tester/internal/tsl"
)

// Registry represents the entire user configuration file: saved send
// presets and monitor preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Presets     map[string]*Preset `yaml:"presets,omitempty"` // Keyed by preset name
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Preset is a saved tally message that can be sent by name. The Protocol
// field selects which message variant the remaining fields populate.
type Preset struct {
	Protocol string `yaml:"protocol"` // "3.1", "4.0" or "5.0"

	// V3.1/V4.0 fields
	Address    int    `yaml:"address,omitempty"`
	Tally1     bool   `yaml:"tally1,omitempty"`
	Tally2     bool   `yaml:"tally2,omitempty"`
	Tally3     bool   `yaml:"tally3,omitempty"`
	Tally4     bool   `yaml:"tally4,omitempty"`
	Brightness string `yaml:"brightness,omitempty"` // off, low, medium, full
	Text       string `yaml:"text,omitempty"`

	// V4.0 XDATA tally triples, e.g. "red,off,green" (left,text,right)
	LeftTallies  string `yaml:"left_tallies,omitempty"`
	RightTallies string `yaml:"right_tallies,omitempty"`

	// V5.0 fields
	Screen   int             `yaml:"screen,omitempty"`
	Unicode  bool            `yaml:"unicode,omitempty"`
	Displays []PresetDisplay `yaml:"displays,omitempty"`
}

// PresetDisplay is one V5.0 display entry in a preset.
type PresetDisplay struct {
	Index      int    `yaml:"index"`
	Left       string `yaml:"left,omitempty"`
	Tally      string `yaml:"tally,omitempty"` // Text tally lamp
	Right      string `yaml:"right,omitempty"`
	Brightness string `yaml:"brightness,omitempty"`
	Text       string `yaml:"text,omitempty"`
}

// Preferences represents application-wide user preferences for the
// monitor.
type Preferences struct {
	UDPPort  int    `yaml:"udp_port"`
	TCPPort  int    `yaml:"tcp_port"`
	HTTPAddr string `yaml:"http_addr,omitempty"` // Web feed/metrics listen address
}

// Default listener ports. 40001 is the port TSL senders conventionally
// target.
const (
	DefaultUDPPort = 40001
	DefaultTCPPort = 40001
)

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Presets: make(map[string]*Preset),
		Preferences: &Preferences{
			UDPPort: DefaultUDPPort,
			TCPPort: DefaultTCPPort,
		},
	}
}

// GetPreset retrieves a preset by name. Returns nil if it doesn't exist.
func (r *Registry) GetPreset(name string) *Preset {
	return r.Presets[name]
}

// SetPreset stores or replaces a preset under the given name.
func (r *Registry) SetPreset(name string, p *Preset) {
	if r.Presets == nil {
		r.Presets = make(map[string]*Preset)
	}
	r.Presets[name] = p
}

// DeletePreset removes a preset. Returns false if it didn't exist.
func (r *Registry) DeletePreset(name string) bool {
	if _, ok := r.Presets[name]; !ok {
		return false
	}
	delete(r.Presets, name)
	return true
}

// Message converts the preset into a wire-model message ready for
// encoding.
func (p *Preset) Message() (tsl.Message, error) {
	switch p.Protocol {
	case "3.1":
		base, err := p.v31()
		if err != nil {
			return nil, err
		}
		return base, nil

	case "4.0":
		base, err := p.v31()
		if err != nil {
			return nil, err
		}
		left, err := parseTriple(p.LeftTallies)
		if err != nil {
			return nil, fmt.Errorf("left_tallies: %w", err)
		}
		right, err := parseTriple(p.RightTallies)
		if err != nil {
			return nil, fmt.Errorf("right_tallies: %w", err)
		}
		return &tsl.V40Message{V31Message: *base, LeftTallies: left, RightTallies: right}, nil

	case "5.0":
		if p.Screen < 0 || p.Screen > tsl.MaxDisplayIndex {
			return nil, fmt.Errorf("screen %d out of range 0-%d", p.Screen, tsl.MaxDisplayIndex)
		}
		msg := &tsl.V50Message{
			Unicode: p.Unicode,
			Screen:  uint16(p.Screen),
		}
		for i, d := range p.Displays {
			disp, err := d.display()
			if err != nil {
				return nil, fmt.Errorf("display %d: %w", i, err)
			}
			msg.Displays = append(msg.Displays, disp)
		}
		return msg, nil

	default:
		return nil, fmt.Errorf("unknown protocol %q (want 3.1, 4.0 or 5.0)", p.Protocol)
	}
}

func (p *Preset) v31() (*tsl.V31Message, error) {
	if p.Address < 0 || p.Address > tsl.MaxAddress {
		return nil, fmt.Errorf("address %d out of range 0-%d", p.Address, tsl.MaxAddress)
	}
	brightness, err := tsl.ParseBrightness(p.Brightness)
	if err != nil {
		return nil, err
	}
	return &tsl.V31Message{
		Address:    uint8(p.Address),
		Tally1:     p.Tally1,
		Tally2:     p.Tally2,
		Tally3:     p.Tally3,
		Tally4:     p.Tally4,
		Brightness: brightness,
		Text:       p.Text,
	}, nil
}

func (d *PresetDisplay) display() (tsl.Display, error) {
	var out tsl.Display
	if d.Index < 0 || d.Index > tsl.MaxDisplayIndex {
		return out, fmt.Errorf("index %d out of range 0-%d", d.Index, tsl.MaxDisplayIndex)
	}
	left, err := tsl.ParseTallyState(d.Left)
	if err != nil {
		return out, err
	}
	text, err := tsl.ParseTallyState(d.Tally)
	if err != nil {
		return out, err
	}
	right, err := tsl.ParseTallyState(d.Right)
	if err != nil {
		return out, err
	}
	brightness, err := tsl.ParseBrightness(d.Brightness)
	if err != nil {
		return out, err
	}
	return tsl.Display{
		Index:      uint16(d.Index),
		Left:       left,
		Text:       text,
		Right:      right,
		Brightness: brightness,
		TextLabel:  d.Text,
	}, nil
}

// ParseTriple parses a "left,text,right" tally triple as used in preset
// files and CLI flags. An empty string is all-off.
func ParseTriple(s string) (tsl.TallyTriple, error) {
	return parseTriple(s)
}

func parseTriple(s string) (tsl.TallyTriple, error) {
	var t tsl.TallyTriple
	if s == "" {
		return t, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return t, fmt.Errorf("invalid tally triple %q (want left,text,right)", s)
	}
	var err error
	if t.Left, err = tsl.ParseTallyState(parts[0]); err != nil {
		return t, err
	}
	if t.Text, err = tsl.ParseTallyState(parts[1]); err != nil {
		return t, err
	}
	if t.Right, err = tsl.ParseTallyState(parts[2]); err != nil {
		return t, err
	}
	return t, nil
}
