package monitor

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/videojedi/TSL-UMD-Tester/internal/stream"
)

// captureRecord is the JSON shape written to capture files, one line
// per packet.
type captureRecord struct {
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
	Protocol  string `json:"protocol"`
	Length    int    `json:"length"`
	Payload   string `json:"payload_hex"`
	Summary   string `json:"summary,omitempty"`
	Error     string `json:"error,omitempty"`
}

// savePacketToCapture appends a packet record to the current day's
// capture file under captureDir, creating the directory and file as
// needed.
func savePacketToCapture(captureDir string, p stream.Packet) error {
	if err := os.MkdirAll(captureDir, 0755); err != nil {
		return fmt.Errorf("failed to create capture directory: %w", err)
	}

	rec := captureRecord{
		Timestamp: p.Time.Format(time.RFC3339Nano),
		Source:    p.Source,
		Protocol:  p.Protocol(),
		Length:    len(p.Raw),
		Payload:   hex.EncodeToString(p.Raw),
		Error:     p.ErrText,
	}
	if p.Decoded() {
		rec.Summary = p.Message.String()
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal capture record: %w", err)
	}

	filename := fmt.Sprintf("capture-%s.jsonl", p.Time.Format("2006-01-02"))
	path := filepath.Join(captureDir, filename)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write capture record: %w", err)
	}
	return nil
}
