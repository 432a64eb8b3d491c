// Package tui implements the interactive tally dashboard.
//
// The dashboard renders a grid of display cells, one per known tally
// display, driven by the packets the monitor receives. Each cell shows
// the display's lamps (colored by tally state), its text label and the
// protocol version that last updated it. A scrolling packet log sits
// below the grid.
//
// Displays are keyed by screen and display index. Fixed-format
// packets, which carry a single display address, map to screen 0.
//
// The dashboard is a Bubble Tea program fed through a channel:
//
//	packets := make(chan stream.Packet, 64)
//	config.OnPacket = func(p stream.Packet) {
//	    select {
//	    case packets <- p:
//	    default: // never block the receive loops
//	    }
//	}
//	if err := tui.Run(packets); err != nil {
//	    log.Fatal(err)
//	}
package tui
