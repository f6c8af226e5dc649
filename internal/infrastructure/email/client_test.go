package email

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/email/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceFallsBackToLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	svc := NewService("", "from@example.com", "ops@example.com", logger)
	require.IsType(t, &LogService{}, svc)

	err := svc.SendSoldOutAlert(templates.SoldOutProps{PackageName: "Starter", PackageID: "starter", Total: 50})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Starter is sold out")

	assert.IsType(t, &LogService{}, NewService("key", "from@example.com", "", logger))
	assert.IsType(t, &ResendClient{}, NewService("key", "from@example.com", "ops@example.com", logger))
}

func TestSoldOutContent(t *testing.T) {
	html, err := templates.GetSoldOutEmailContent(templates.SoldOutProps{
		PackageName: "Enterprise <Emergency>",
		PackageID:   "enterprise_emergency",
		Total:       10,
		SoldAt:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Remaining:   []templates.RemainingPackage{{Name: "Starter", Available: 4}},
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Enterprise &lt;Emergency&gt;")
	assert.Contains(t, html, "last of 10 units at 2025-03-01 12:00:00 UTC")
	assert.Contains(t, html, "<li>Starter: 4</li>")

	none, err := templates.GetSoldOutEmailContent(templates.SoldOutProps{PackageName: "Starter"})
	require.NoError(t, err)
	assert.Contains(t, none, "Every package is now sold out.")
}
