package logging

import (
	"encoding/json"
)

// BroadcastWriter is an io.Writer that forwards JSON log lines to a
// LogBroadcaster.
type BroadcastWriter struct {
	broadcaster *LogBroadcaster
}

// NewBroadcastWriter creates a writer that sends log data to b.
func NewBroadcastWriter(b *LogBroadcaster) *BroadcastWriter {
	return &BroadcastWriter{broadcaster: b}
}

// Write parses one JSON record and submits it. Non-JSON input is ignored.
func (w *BroadcastWriter) Write(p []byte) (int, error) {
	var rawLog map[string]any
	if err := json.Unmarshal(p, &rawLog); err != nil {
		return len(p), nil
	}

	w.broadcaster.SubmitLog(LogEntry{
		Timestamp: getString(rawLog, "time"),
		Level:     getString(rawLog, "level"),
		Channel:   getString(rawLog, "channel"),
		Message:   getString(rawLog, "msg"),
	})
	return len(p), nil
}

func getString(data map[string]any, key string) string {
	if val, ok := data[key]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}
