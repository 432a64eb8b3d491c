package tsl

// DLE/STX framing for carrying V5.0 packets over a byte-oriented
// transport. A frame starts with the two-byte delimiter DLE,STX; every
// literal DLE inside the payload is doubled so the delimiter sequence
// cannot reappear by accident.
const (
	DLE = 0xFE // Data Link Escape
	STX = 0x02 // Start of Text
)

// WrapFrame frames a payload for TCP transmission: the DLE,STX delimiter
// followed by the payload with every literal DLE byte doubled.
func WrapFrame(payload []byte) []byte {
	out := make([]byte, 2, 2+len(payload)+4)
	out[0] = DLE
	out[1] = STX
	for _, b := range payload {
		if b == DLE {
			out = append(out, DLE, DLE)
		} else {
			out = append(out, b)
		}
	}
	return out
}

// UnwrapFrame scans buf for the first DLE,STX delimiter and de-stuffs
// everything after it. A DLE immediately followed by another DLE collapses
// to one literal DLE; any other byte passes through unchanged.
//
// The second return is false when no delimiter is present yet, which is
// not a failure: more bytes may still arrive.
//
// The frame is assumed to extend to the end of buf, which is only correct
// when exactly one frame is buffered; no end-of-frame delimiter is
// located. Concatenated frames therefore de-stuff as a single oversized
// payload whose decode fails on the packet byte count.
func UnwrapFrame(buf []byte) ([]byte, bool) {
	start := -1
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] == DLE && buf[i+1] == STX {
			start = i + 2
			break
		}
	}
	if start < 0 {
		return nil, false
	}

	out := make([]byte, 0, len(buf)-start)
	for i := start; i < len(buf); {
		if buf[i] == DLE && i+1 < len(buf) && buf[i+1] == DLE {
			out = append(out, DLE)
			i += 2
			continue
		}
		out = append(out, buf[i])
		i++
	}
	return out, true
}
