package main

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/videojedi/TSL-UMD-Tester/internal/config"
	"github.com/videojedi/TSL-UMD-Tester/internal/tsl"
)

// Send command flags
var (
	target   string
	useTCP   bool
	count    int
	interval int

	address    int
	tally1     bool
	tally2     bool
	tally3     bool
	tally4     bool
	brightness string
	text       string

	leftTallies  string
	rightTallies string

	screen       int
	unicodeText  bool
	displayFlags []string

	presetProtocol string
)

func init() {
	// Common flags for send commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&target, "target", fmt.Sprintf("127.0.0.1:%d", config.DefaultUDPPort), "Destination host:port")
	rootCmd.PersistentFlags().BoolVar(&useTCP, "tcp", false, "Send over TCP instead of UDP")
	rootCmd.PersistentFlags().IntVar(&count, "count", 1, "Number of packets to send")
	rootCmd.PersistentFlags().IntVar(&interval, "interval", 1000, "Delay between packets in milliseconds")

	rootCmd.AddCommand(v31Cmd)
	rootCmd.AddCommand(v40Cmd)
	rootCmd.AddCommand(v50Cmd)
	rootCmd.AddCommand(presetCmd)
}

// v31Cmd sends a version 3.1 packet
var v31Cmd = &cobra.Command{
	Use:   "v31",
	Short: "Send a version 3.1 packet",
	Long: `Build and send a TSL version 3.1 packet.

Version 3.1 packets are 18 bytes: a display address (0-126), four
on/off tally lamps, a brightness level and a 16 character text label.
Longer text is truncated, shorter text is space padded.`,
	Example: `  # Light tally 1 on display 5
  tsl-send v31 --address 5 --tally1 --text "CAM 5"

  # Send to a specific target over TCP
  tsl-send v31 --address 0 --text "PGM" --target 10.0.0.20:40001 --tcp

  # Send ten packets one second apart
  tsl-send v31 --address 5 --tally1 --text "CAM 5" --count 10`,
	RunE: runV31,
}

// v40Cmd sends a version 4.0 packet
var v40Cmd = &cobra.Command{
	Use:   "v40",
	Short: "Send a version 4.0 packet",
	Long: `Build and send a TSL version 4.0 packet.

Version 4.0 packets extend version 3.1 with a checksum and two tally
triples (left lamp, text lamp, right lamp), each lamp being off, red,
green or amber. Triples are given as comma separated lists, e.g.
"red,off,green".`,
	Example: `  # Red left lamp, green right lamp on display 3
  tsl-send v40 --address 3 --text "CAM 3" --left "red,off,off" --right "off,off,green"`,
	RunE: runV40,
}

// v50Cmd sends a version 5.0 packet
var v50Cmd = &cobra.Command{
	Use:   "v50",
	Short: "Send a version 5.0 packet",
	Long: `Build and send a TSL version 5.0 packet.

Version 5.0 packets address a screen and carry any number of display
updates. Each display is given with the --display flag in the form

	index:left,text,right:label

where the lamps are off, red, green or amber. The flag may be repeated
to update several displays in one packet. With --unicode the labels are
encoded as UTF-16, allowing non-ASCII text. Over TCP the packet is
wrapped in DLE/STX framing automatically.`,
	Example: `  # Update two displays on screen 0
  tsl-send v50 --display "1:red,off,off:CAM 1" --display "2:off,off,green:CAM 2"

  # Non-ASCII label on screen 2
  tsl-send v50 --screen 2 --unicode --display "7:red,red,red:KAMERA ÅÄÖ"`,
	RunE: runV50,
}

func init() {
	addV31Flags(v31Cmd)

	addV31Flags(v40Cmd)
	v40Cmd.Flags().StringVar(&leftTallies, "left", "", "Left tally triple, e.g. \"red,off,green\"")
	v40Cmd.Flags().StringVar(&rightTallies, "right", "", "Right tally triple, e.g. \"red,off,green\"")

	v50Cmd.Flags().IntVar(&screen, "screen", 0, "Screen index (0-65534)")
	v50Cmd.Flags().BoolVar(&unicodeText, "unicode", false, "Encode labels as UTF-16")
	v50Cmd.Flags().StringVar(&brightness, "brightness", "full", "Lamp brightness (off, low, medium, full)")
	v50Cmd.Flags().StringArrayVar(&displayFlags, "display", nil, "Display update as index:left,text,right:label (repeatable)")
}

func addV31Flags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&address, "address", 0, "Display address (0-126)")
	cmd.Flags().BoolVar(&tally1, "tally1", false, "Light tally lamp 1")
	cmd.Flags().BoolVar(&tally2, "tally2", false, "Light tally lamp 2")
	cmd.Flags().BoolVar(&tally3, "tally3", false, "Light tally lamp 3")
	cmd.Flags().BoolVar(&tally4, "tally4", false, "Light tally lamp 4")
	cmd.Flags().StringVar(&brightness, "brightness", "full", "Display brightness (off, low, medium, full)")
	cmd.Flags().StringVar(&text, "text", "", "Display text (16 characters)")
}

func buildV31Message() (*tsl.V31Message, error) {
	if address < 0 || address > tsl.MaxAddress {
		return nil, fmt.Errorf("address must be 0-%d, got %d", tsl.MaxAddress, address)
	}
	bri, err := tsl.ParseBrightness(brightness)
	if err != nil {
		return nil, err
	}
	return &tsl.V31Message{
		Address:    uint8(address),
		Tally1:     tally1,
		Tally2:     tally2,
		Tally3:     tally3,
		Tally4:     tally4,
		Brightness: bri,
		Text:       text,
	}, nil
}

func runV31(cmd *cobra.Command, args []string) error {
	msg, err := buildV31Message()
	if err != nil {
		return err
	}
	return sendMessage(msg)
}

func runV40(cmd *cobra.Command, args []string) error {
	base, err := buildV31Message()
	if err != nil {
		return err
	}
	left, err := config.ParseTriple(leftTallies)
	if err != nil {
		return fmt.Errorf("invalid --left: %w", err)
	}
	right, err := config.ParseTriple(rightTallies)
	if err != nil {
		return fmt.Errorf("invalid --right: %w", err)
	}
	return sendMessage(&tsl.V40Message{
		V31Message:   *base,
		LeftTallies:  left,
		RightTallies: right,
	})
}

func runV50(cmd *cobra.Command, args []string) error {
	if len(displayFlags) == 0 {
		return fmt.Errorf("at least one --display is required")
	}
	if screen < 0 || screen > tsl.MaxDisplayIndex {
		return fmt.Errorf("screen must be 0-%d, got %d", tsl.MaxDisplayIndex, screen)
	}
	bri, err := tsl.ParseBrightness(brightness)
	if err != nil {
		return err
	}

	displays := make([]tsl.Display, 0, len(displayFlags))
	for _, spec := range displayFlags {
		d, err := parseDisplaySpec(spec, bri)
		if err != nil {
			return fmt.Errorf("invalid --display %q: %w", spec, err)
		}
		displays = append(displays, d)
	}

	return sendMessage(&tsl.V50Message{
		Unicode:  unicodeText,
		Screen:   uint16(screen),
		Displays: displays,
	})
}

// parseDisplaySpec parses "index:left,text,right:label". The label may
// contain further colons.
func parseDisplaySpec(spec string, bri tsl.Brightness) (tsl.Display, error) {
	var d tsl.Display

	parts := strings.SplitN(spec, ":", 3)
	if len(parts) < 2 {
		return d, fmt.Errorf("expected index:left,text,right:label")
	}

	index, err := strconv.Atoi(parts[0])
	if err != nil {
		return d, fmt.Errorf("bad index: %w", err)
	}
	if index < 0 || index > tsl.MaxDisplayIndex {
		return d, fmt.Errorf("index must be 0-%d", tsl.MaxDisplayIndex)
	}

	triple, err := config.ParseTriple(parts[1])
	if err != nil {
		return d, err
	}

	d.Index = uint16(index)
	d.Left = triple.Left
	d.Text = triple.Text
	d.Right = triple.Right
	d.Brightness = bri
	if len(parts) == 3 {
		d.TextLabel = parts[2]
	}
	return d, nil
}

// sendMessage encodes a message and transmits it --count times.
func sendMessage(msg tsl.Message) error {
	data, err := tsl.Build(msg)
	if err != nil {
		return fmt.Errorf("failed to build packet: %w", err)
	}

	network := "udp"
	if useTCP {
		network = "tcp"
		// The stream transport requires framing for variable-length
		// version 5.0 packets
		if msg.Version() == tsl.V50 {
			data = tsl.WrapFrame(data)
		}
	}

	conn, err := net.Dial(network, target)
	if err != nil {
		return fmt.Errorf("failed to connect to %s %s: %w", network, target, err)
	}
	defer conn.Close()

	for i := 0; i < count; i++ {
		if i > 0 {
			time.Sleep(time.Duration(interval) * time.Millisecond)
		}
		if _, err := conn.Write(data); err != nil {
			return fmt.Errorf("failed to send packet %d: %w", i+1, err)
		}
		fmt.Printf("Sent %d bytes (v%s) to %s %s\n", len(data), msg.Version(), network, target)
	}

	fmt.Printf("\n%s\n", msg)
	return nil
}

// Preset commands

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage and send stored packet presets",
	Long: `Manage named packet presets.

Presets are stored in a YAML registry in the user's config directory
and describe a complete packet in any protocol version. Edit the
registry file directly to set version 4.0 triples or multi-display
version 5.0 presets.`,
}

var presetSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the given flags as a named preset",
	Example: `  # Save a v3.1 preset
  tsl-send preset save cam5 --protocol 3.1 --address 5 --tally1 --text "CAM 5"

  # Save a v4.0 preset with tally triples
  tsl-send preset save pgm --protocol 4.0 --address 0 --text "PGM" --left "red,off,off"`,
	Args: cobra.ExactArgs(1),
	RunE: runPresetSave,
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored presets",
	RunE:  runPresetList,
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored preset",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetDelete,
}

var presetSendCmd = &cobra.Command{
	Use:   "send <name>",
	Short: "Send a stored preset",
	Example: `  # Send a preset to the default target
  tsl-send preset send cam5

  # Send a preset repeatedly over TCP
  tsl-send preset send cam5 --target 10.0.0.20:40001 --tcp --count 5`,
	Args: cobra.ExactArgs(1),
	RunE: runPresetSend,
}

func init() {
	addV31Flags(presetSaveCmd)
	presetSaveCmd.Flags().StringVar(&presetProtocol, "protocol", "3.1", "Protocol version (3.1, 4.0, 5.0)")
	presetSaveCmd.Flags().StringVar(&leftTallies, "left", "", "Left tally triple (v4.0)")
	presetSaveCmd.Flags().StringVar(&rightTallies, "right", "", "Right tally triple (v4.0)")
	presetSaveCmd.Flags().IntVar(&screen, "screen", 0, "Screen index (v5.0)")

	presetCmd.AddCommand(presetSaveCmd)
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetDeleteCmd)
	presetCmd.AddCommand(presetSendCmd)
}

func runPresetSave(cmd *cobra.Command, args []string) error {
	name := args[0]

	switch presetProtocol {
	case "3.1", "4.0", "5.0":
	default:
		return fmt.Errorf("protocol must be 3.1, 4.0 or 5.0, got %q", presetProtocol)
	}

	preset := &config.Preset{
		Protocol:     presetProtocol,
		Address:      address,
		Tally1:       tally1,
		Tally2:       tally2,
		Tally3:       tally3,
		Tally4:       tally4,
		Brightness:   brightness,
		Text:         text,
		LeftTallies:  leftTallies,
		RightTallies: rightTallies,
		Screen:       screen,
	}

	// Validate before saving so the registry never holds a preset
	// that cannot be built
	if presetProtocol != "5.0" {
		if _, err := preset.Message(); err != nil {
			return fmt.Errorf("invalid preset: %w", err)
		}
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	registry.SetPreset(name, preset)
	if err := registry.Save(); err != nil {
		return fmt.Errorf("failed to save registry: %w", err)
	}

	fmt.Printf("Saved preset %q (v%s)\n", name, presetProtocol)
	return nil
}

func runPresetList(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	if len(registry.Presets) == 0 {
		fmt.Println("No presets stored.")
		fmt.Println("\nUse 'tsl-send preset save <name>' to create one.")
		return nil
	}

	names := make([]string, 0, len(registry.Presets))
	for name := range registry.Presets {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("%d preset(s):\n\n", len(names))
	for _, name := range names {
		p := registry.Presets[name]
		desc := p.Text
		if p.Protocol == "5.0" {
			desc = fmt.Sprintf("screen %d, %d display(s)", p.Screen, len(p.Displays))
		}
		fmt.Printf("  %-20s v%-4s %s\n", name, p.Protocol, desc)
	}
	return nil
}

func runPresetDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	if !registry.DeletePreset(name) {
		return fmt.Errorf("preset not found: %s", name)
	}
	if err := registry.Save(); err != nil {
		return fmt.Errorf("failed to save registry: %w", err)
	}

	fmt.Printf("Deleted preset %q\n", name)
	return nil
}

func runPresetSend(cmd *cobra.Command, args []string) error {
	name := args[0]

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	preset := registry.GetPreset(name)
	if preset == nil {
		return fmt.Errorf("preset not found: %s", name)
	}

	msg, err := preset.Message()
	if err != nil {
		return fmt.Errorf("invalid preset %q: %w", name, err)
	}
	return sendMessage(msg)
}
