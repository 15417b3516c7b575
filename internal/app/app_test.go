package app

import (
	"context"
	"testing"
	"time"

	"github.com/haierkeys/interview-link-service/internal/dao"
	"github.com/haierkeys/interview-link-service/internal/domain"
	"github.com/haierkeys/interview-link-service/pkg/mailer"
	"github.com/haierkeys/interview-link-service/pkg/timex"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T, reg prometheus.Registerer) *App {
	t.Helper()
	cfg, err := ParseConfig([]byte("{}"))
	require.NoError(t, err)
	cfg.Database.Path = ":memory:"
	cfg.Database.MaxOpenConns = 1

	db, err := dao.NewDBEngine(*cfg.DaoConfig())
	require.NoError(t, err)

	clock := timex.NewFakeClock(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	a, err := NewApp(cfg, zap.NewNop(), db,
		WithClock(clock),
		WithMailer(mailer.NewLogSender(zap.NewNop())),
		WithRegisterer(reg),
	)
	require.NoError(t, err)
	return a
}

func TestNewAppRequiresDependencies(t *testing.T) {
	_, err := NewApp(nil, zap.NewNop(), nil)
	assert.Error(t, err)
	cfg, _ := ParseConfig([]byte("{}"))
	_, err = NewApp(cfg, nil, nil)
	assert.Error(t, err)
	_, err = NewApp(cfg, zap.NewNop(), nil)
	assert.Error(t, err)
}

func TestAppWiresServices(t *testing.T) {
	a := newTestApp(t, prometheus.NewRegistry())
	ctx := context.Background()

	link, _, err := a.LinkService.Generate(ctx, domain.GenerateLinkParams{
		CandidateEmail: "grace@example.com",
		CandidateName:  "Grace Hopper",
		InterviewDate:  a.Clock().Now().Add(10 * time.Minute),
		Position:       "Compiler Engineer",
	})
	require.NoError(t, err)

	res, err := a.LinkService.Validate(ctx, link.SessionID, link.Token)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	flow := a.NewFlow(link.SessionID, link.Token)
	defer flow.Close()
	assert.Equal(t, domain.FlowReady, flow.Start(ctx))

	status, err := a.SessionService.RoomStatus(ctx, link.SessionID)
	require.NoError(t, err)
	assert.False(t, status.IsActive)

	require.NoError(t, a.Shutdown(ctx))
	assert.True(t, a.IsShuttingDown())
	// second shutdown is a no-op
	assert.NoError(t, a.Shutdown(ctx))
}

func TestAppReusesMetricsOnReload(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := newTestApp(t, reg)
	second := newTestApp(t, reg)
	assert.NotPanics(t, func() { second.Metrics.LinkGenerated() })
	_ = first.Shutdown(context.Background())
	_ = second.Shutdown(context.Background())
}
