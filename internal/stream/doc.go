// Package stream turns transport byte streams into TSL packet events.
//
// The Reassembler owns one growable receive buffer per TCP connection and
// extracts complete packets across chunk boundaries, handling all three
// framings carried on a TSL stream: DLE/STX-framed V5.0, fixed 18-byte
// V3.1 and fixed 22-byte V4.0.
//
// Packet is the immutable per-event record handed to consumers: the raw
// bytes, a hex+ASCII dump, the decoded message when the codec succeeded
// and the failure text when it did not. UDP transports skip reassembly and
// call NewPacket directly on each datagram.
package stream
