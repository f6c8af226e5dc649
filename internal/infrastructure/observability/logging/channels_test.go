package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelLoggerTagsChannel(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Console = &buf

	cl, err := NewChanneledLogger(cfg, nil)
	require.NoError(t, err)

	cl.Inventory().Info("pool updated", "packageId", "starter")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "inventory", rec["channel"])
	assert.Equal(t, "pool updated", rec["msg"])
	assert.Equal(t, "starter", rec["packageId"])
}

func TestSetChannelLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Console = &buf

	cl, err := NewChanneledLogger(cfg, nil)
	require.NoError(t, err)

	cl.Reservation().Debug("hidden")
	assert.Empty(t, buf.String())

	require.NoError(t, cl.SetChannelLevel(ChannelReservation, slog.LevelDebug))
	buf.Reset()
	cl.Reservation().Debug("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Equal(t, "DEBUG", cl.GetChannelLevels()["reservation"])
	assert.Equal(t, "INFO", cl.GetChannelLevels()["system"])

	assert.Error(t, cl.SetChannelLevel(Channel("nope"), slog.LevelDebug))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("whatever"))
}

func TestSanitizeSessionID(t *testing.T) {
	assert.Equal(t, "********", SanitizeSessionID("short"))
	assert.Equal(t, "abcd****wxyz", SanitizeSessionID("abcdefghijklmnopqrstuvwxyz"))
}

func TestBroadcasterStreamsFilteredEntries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewLogBroadcaster()
	go b.Run(ctx)

	cfg := DefaultLoggerConfig()
	cfg.OutputToConsole = false
	cl, err := NewChanneledLogger(cfg, b)
	require.NoError(t, err)

	client := b.NewClient(AppliedFilters{Channel: ChannelAlert, Level: slog.LevelWarn})
	require.True(t, b.RegisterClient(ctx, client))
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cl.Alert().Info("below level")
	cl.Inventory().Warn("other channel")
	cl.Alert().Warn("package sold out")

	select {
	case msg := <-client.Channel:
		var entry LogEntry
		require.NoError(t, json.Unmarshal(msg, &entry))
		assert.Equal(t, "alert", entry.Channel)
		assert.True(t, strings.Contains(entry.Message, "sold out"))
	case <-time.After(2 * time.Second):
		t.Fatal("no log entry delivered")
	}

	b.UnregisterClient(ctx, client)
	require.Eventually(t, func() bool { return b.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}
