package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	internalApp "github.com/haierkeys/interview-link-service/internal/app"
	"github.com/haierkeys/interview-link-service/internal/dao"
	"github.com/haierkeys/interview-link-service/internal/domain"
	"github.com/haierkeys/interview-link-service/pkg/mailer"
	"github.com/haierkeys/interview-link-service/pkg/timex"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewBootstrapLoggerLevels(t *testing.T) {
	assert.True(t, newBootstrapLogger("", false).Core().Enabled(zapcore.InfoLevel))
	assert.False(t, newBootstrapLogger("", false).Core().Enabled(zapcore.DebugLevel))
	assert.False(t, newBootstrapLogger("warn", false).Core().Enabled(zapcore.InfoLevel))
	assert.True(t, newBootstrapLogger("warn", true).Core().Enabled(zapcore.DebugLevel))
	assert.True(t, newBootstrapLogger("nonsense", false).Core().Enabled(zapcore.InfoLevel))
}

func TestResolveConfigWritesDefaultWithRandomKey(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	configDefault = "security:\n  link-token-key: " + internalApp.DefaultLinkTokenKey + "\n"

	path, err := resolveConfig("")
	require.NoError(t, err)
	assert.Equal(t, "config/config.yaml", path)

	cfg, _, err := internalApp.LoadConfig(filepath.Join(dir, path))
	require.NoError(t, err)
	assert.NotEqual(t, internalApp.DefaultLinkTokenKey, cfg.Security.LinkTokenKey)
	assert.Len(t, cfg.Security.LinkTokenKey, 32)

	// an existing file is found and left untouched
	again, err := resolveConfig("")
	require.NoError(t, err)
	assert.Equal(t, path, again)

	explicit, err := resolveConfig("custom.yaml")
	require.NoError(t, err)
	assert.Equal(t, "custom.yaml", explicit)
}

func TestRootRegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "version", "link"} {
		assert.True(t, names[want], want)
	}
}

func newCommandApp(t *testing.T) *internalApp.App {
	t.Helper()
	cfg, err := internalApp.ParseConfig([]byte("security:\n  link-token-key: cmd-test-key\n"))
	require.NoError(t, err)
	cfg.Database.Path = ":memory:"
	cfg.Database.MaxOpenConns = 1

	db, err := dao.NewDBEngine(*cfg.DaoConfig())
	require.NoError(t, err)
	a, err := internalApp.NewApp(cfg, zap.NewNop(), db,
		internalApp.WithClock(timex.NewFakeClock(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))),
		internalApp.WithMailer(mailer.NewLogSender(zap.NewNop())),
		internalApp.WithRegisterer(prometheus.NewRegistry()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

func TestCheckLink(t *testing.T) {
	a := newCommandApp(t)
	ctx := context.Background()

	_, url, err := a.LinkService.Generate(ctx, domain.GenerateLinkParams{
		CandidateEmail: "ada@example.com",
		CandidateName:  "Ada Lovelace",
		InterviewDate:  a.Clock().Now().Add(5 * time.Minute),
		Position:       "Backend Engineer",
	})
	require.NoError(t, err)

	report := checkLink(ctx, a, url, " ADA@example.com ")
	assert.Equal(t, domain.FlowReady, report.State)
	require.NotNil(t, report.WithinWindow)
	assert.True(t, *report.WithinWindow)
	require.NotNil(t, report.IdentityVerified)
	assert.True(t, *report.IdentityVerified)

	other := checkLink(ctx, a, url, "eve@example.com")
	require.NotNil(t, other.IdentityVerified)
	assert.False(t, *other.IdentityVerified)

	noEmail := checkLink(ctx, a, url, "")
	assert.Nil(t, noEmail.IdentityVerified)

	broken := checkLink(ctx, a, "https://hr.example.com/interview/", "")
	assert.Equal(t, domain.FlowNoToken, broken.State)
	assert.Nil(t, broken.WithinWindow)
}
