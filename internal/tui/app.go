package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/videojedi/TSL-UMD-Tester/internal/stream"
	"github.com/videojedi/TSL-UMD-Tester/internal/tsl"
)

const maxLogLines = 200

// Message types for async events
type packetMsg stream.Packet
type feedClosedMsg struct{}

// displayKey identifies one display cell: screen in the high half,
// display index in the low half. Fixed-format packets use screen 0
// with the display address as index.
type displayKey uint32

func newDisplayKey(screen, index uint16) displayKey {
	return displayKey(uint32(screen)<<16 | uint32(index))
}

func (k displayKey) screen() uint16 { return uint16(k >> 16) }
func (k displayKey) index() uint16  { return uint16(k & 0xFFFF) }

// displayEntry is the last known state of one display
type displayEntry struct {
	label    string
	lamps    []tsl.TallyState
	protocol string
	source   string
	updated  time.Time
}

// dashboardKeyMap defines key bindings for the dashboard
type dashboardKeyMap struct {
	Clear key.Binding
	Quit  key.Binding
}

var dashboardKeys = dashboardKeyMap{
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Model is the tally dashboard: a grid of display cells fed by the
// monitor's packet channel, with a scrolling packet log below.
type Model struct {
	packets <-chan stream.Packet

	displays map[displayKey]displayEntry
	logLines []string

	packetCount int
	errorCount  int
	feedClosed  bool

	spinner  spinner.Model
	viewport viewport.Model
	width    int
	height   int
	ready    bool
}

// NewModel creates a dashboard model reading from the given channel.
func NewModel(packets <-chan stream.Packet) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	width, height := GetTerminalSize()

	return Model{
		packets:  packets,
		displays: make(map[displayKey]displayEntry),
		spinner:  sp,
		width:    width,
		height:   height,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForPacket(m.packets))
}

// waitForPacket blocks on the packet channel and delivers the next
// packet as a message.
func waitForPacket(ch <-chan stream.Packet) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return feedClosedMsg{}
		}
		return packetMsg(p)
	}
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, dashboardKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, dashboardKeys.Clear):
			m.displays = make(map[displayKey]displayEntry)
			m.logLines = nil
			m.viewport.SetContent("")
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(msg.Width, LogHeight)
		m.viewport.SetContent(strings.Join(m.logLines, "\n"))
		m.viewport.GotoBottom()
		m.ready = true
		return m, nil

	case packetMsg:
		m.applyPacket(stream.Packet(msg))
		return m, waitForPacket(m.packets)

	case feedClosedMsg:
		m.feedClosed = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// applyPacket updates the display grid and the packet log from one
// received packet.
func (m *Model) applyPacket(p stream.Packet) {
	m.packetCount++
	if !p.Decoded() {
		m.errorCount++
	}

	line := fmt.Sprintf("%s  %-21s %s",
		p.Time.Format("15:04:05.000"), p.Source, p.Summary())
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
	if m.ready {
		m.viewport.SetContent(strings.Join(m.logLines, "\n"))
		m.viewport.GotoBottom()
	}

	if !p.Decoded() {
		return
	}

	switch msg := p.Message.(type) {
	case *tsl.V31Message:
		m.displays[newDisplayKey(0, uint16(msg.Address))] = displayEntry{
			label:    msg.Text,
			lamps:    v31Lamps(msg),
			protocol: "3.1",
			source:   p.Source,
			updated:  p.Time,
		}
	case *tsl.V40Message:
		m.displays[newDisplayKey(0, uint16(msg.Address))] = displayEntry{
			label:    msg.Text,
			lamps:    v40Lamps(msg),
			protocol: "4.0",
			source:   p.Source,
			updated:  p.Time,
		}
	case *tsl.V50Message:
		for _, d := range msg.Displays {
			m.displays[newDisplayKey(msg.Screen, d.Index)] = displayEntry{
				label:    d.TextLabel,
				lamps:    []tsl.TallyState{d.Left, d.Text, d.Right},
				protocol: "5.0",
				source:   p.Source,
				updated:  p.Time,
			}
		}
	}
}

// v31Lamps maps the four on/off lamps to red/off states.
func v31Lamps(msg *tsl.V31Message) []tsl.TallyState {
	lamps := make([]tsl.TallyState, 4)
	for i, on := range []bool{msg.Tally1, msg.Tally2, msg.Tally3, msg.Tally4} {
		if on {
			lamps[i] = tsl.TallyRed
		}
	}
	return lamps
}

// v40Lamps shows the left triple followed by the right triple.
func v40Lamps(msg *tsl.V40Message) []tsl.TallyState {
	return []tsl.TallyState{
		msg.LeftTallies.Left, msg.LeftTallies.Text, msg.LeftTallies.Right,
		msg.RightTallies.Left, msg.RightTallies.Text, msg.RightTallies.Right,
	}
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	title := TitleStyle.Render("TSL UMD Monitor")
	status := StatusStyle.Render(fmt.Sprintf("%d packets, %d errors, %d displays",
		m.packetCount, m.errorCount, len(m.displays)))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, title, status))
	b.WriteString("\n\n")

	if len(m.displays) == 0 {
		if m.feedClosed {
			b.WriteString(CellMetaStyle.Render("  feed closed"))
		} else {
			b.WriteString(fmt.Sprintf("  %s waiting for packets...", m.spinner.View()))
		}
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderGrid())
	}

	b.WriteString("\n")
	b.WriteString(LogTitleStyle.Render("Packet Log"))
	b.WriteString("\n")
	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(strings.Join(m.logLines, "\n"))
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("c clear • q quit"))
	return b.String()
}

// renderGrid lays the display cells out in rows sized to the terminal.
func (m Model) renderGrid() string {
	keys := make([]displayKey, 0, len(m.displays))
	for k := range m.displays {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	perRow := m.width / CellWidth
	if perRow < 1 {
		perRow = 1
	}

	var rows []string
	for start := 0; start < len(keys); start += perRow {
		end := start + perRow
		if end > len(keys) {
			end = len(keys)
		}
		cells := make([]string, 0, end-start)
		for _, k := range keys[start:end] {
			cells = append(cells, m.renderCell(k, m.displays[k]))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

// renderCell draws one bordered display cell: lamps, label, meta line.
func (m Model) renderCell(k displayKey, e displayEntry) string {
	var lamps strings.Builder
	for i, s := range e.lamps {
		if i > 0 {
			lamps.WriteString(" ")
		}
		lamps.WriteString(TallyStyle(s).Render(LampChar))
	}

	label := e.label
	if label == "" {
		label = "(blank)"
	}

	meta := fmt.Sprintf("#%d v%s", k.index(), e.protocol)
	if k.screen() != 0 {
		meta = fmt.Sprintf("s%d/%s", k.screen(), meta)
	}

	content := lamps.String() + "\n" +
		CellLabelStyle.Render(label) + "\n" +
		CellMetaStyle.Render(meta)
	return CellStyle.Render(content)
}

// Run starts the dashboard program and blocks until the user quits.
func Run(packets <-chan stream.Packet) error {
	p := tea.NewProgram(NewModel(packets), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
