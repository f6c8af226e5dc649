package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/domain/inventory"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/email/templates"
	"github.com/AtRiskMedia/scarcity-go/internal/infrastructure/observability/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu     sync.Mutex
	alerts []templates.SoldOutProps
}

func (m *recordingMailer) SendSoldOutAlert(props templates.SoldOutProps) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, props)
	return nil
}

func (m *recordingMailer) sent() []templates.SoldOutProps {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]templates.SoldOutProps(nil), m.alerts...)
}

func TestAlertOnSoldOut(t *testing.T) {
	mailer := &recordingMailer{}
	alerts := NewAlertService(mailer, map[string]string{"enterprise": "Enterprise"}, logging.NewDiscardLogger())

	engine, err := inventory.NewEngine(
		inventory.Config{Packages: []inventory.Package{{ID: "starter", Total: 3}, {ID: "enterprise", Total: 1}}},
		inventory.WithListener(alerts),
	)
	require.NoError(t, err)
	alerts.SetEngine(engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go alerts.Run(ctx)

	_, err = engine.Reserve("starter", "a", 0)
	require.NoError(t, err)
	_, err = engine.Complete("a")
	require.NoError(t, err)
	_, err = engine.Reserve("enterprise", "b", 0)
	require.NoError(t, err)
	_, err = engine.Complete("b")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(mailer.sent()) == 1 }, time.Second, 5*time.Millisecond)
	alert := mailer.sent()[0]
	assert.Equal(t, "Enterprise", alert.PackageName)
	assert.Equal(t, uint(1), alert.Total)
	require.Len(t, alert.Remaining, 1)
	assert.Equal(t, "starter", alert.Remaining[0].Name)
	assert.Equal(t, uint(2), alert.Remaining[0].Available)
}
