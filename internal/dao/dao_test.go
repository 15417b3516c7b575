package dao

import (
	"context"
	"testing"
	"time"

	"github.com/haierkeys/interview-link-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type repos struct {
	links    domain.LinkRepository
	sessions domain.SessionRepository
	issues   domain.IssueRepository
}

func newSQLiteRepos(t *testing.T) repos {
	t.Helper()
	db, err := NewDBEngine(DatabaseConfig{Type: "sqlite", Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	d := New(db, context.Background(), WithConfig(&DatabaseConfig{AutoMigrate: true}))
	return repos{NewLinkRepository(d), NewSessionRepository(d), NewIssueRepository(d)}
}

func newMemoryRepos(t *testing.T) repos {
	s := NewMemoryStore()
	return repos{s.Links(), s.Sessions(), s.Issues()}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, r repos)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLiteRepos(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, newMemoryRepos(t)) })
}

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func sampleLink(id string, date time.Time) *domain.InterviewLink {
	return &domain.InterviewLink{
		SessionID:      id,
		Token:          "tok-" + id,
		CandidateEmail: id + "@example.com",
		CandidateName:  "Candidate " + id,
		InterviewDate:  date,
		Duration:       60,
		Position:       "Backend Engineer",
		InterviewType:  domain.InterviewTypeTechnical,
		Difficulty:     domain.DifficultyMiddle,
		ExpiresAt:      date.Add(24 * time.Hour),
	}
}

func TestLinkRepositorySaveAndGet(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r repos) {
		ctx := context.Background()

		_, err := r.links.GetBySessionID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrLinkNotFound)

		_, err = r.links.Save(ctx, sampleLink("s1", base))
		require.NoError(t, err)

		updated := sampleLink("s1", base.Add(time.Hour))
		updated.Token = "tok-2"
		_, err = r.links.Save(ctx, updated)
		require.NoError(t, err)

		got, err := r.links.GetBySessionID(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "tok-2", got.Token)
		assert.True(t, got.InterviewDate.Equal(base.Add(time.Hour)))
		assert.Equal(t, domain.InterviewTypeTechnical, got.InterviewType)
		assert.False(t, got.Reminded())
	})
}

func TestLinkRepositoryQueries(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r repos) {
		ctx := context.Background()
		for _, l := range []*domain.InterviewLink{
			sampleLink("past", base.Add(-2*time.Hour)),
			sampleLink("soon", base.Add(20*time.Minute)),
			sampleLink("later", base.Add(3*time.Hour)),
		} {
			_, err := r.links.Save(ctx, l)
			require.NoError(t, err)
		}

		stale, err := r.links.ListStale(ctx, base.Add(-time.Hour), base)
		require.NoError(t, err)
		require.Len(t, stale, 1)
		assert.Equal(t, "past", stale[0].SessionID)

		due, err := r.links.ListDueForReminder(ctx, base, base.Add(30*time.Minute))
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, "soon", due[0].SessionID)

		require.NoError(t, r.links.MarkReminded(ctx, "soon", base))
		due, err = r.links.ListDueForReminder(ctx, base, base.Add(30*time.Minute))
		require.NoError(t, err)
		assert.Empty(t, due)

		assert.ErrorIs(t, r.links.MarkReminded(ctx, "nope", base), domain.ErrLinkNotFound)
	})
}

func TestSessionRepository(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r repos) {
		ctx := context.Background()

		_, err := r.sessions.Get(ctx, "s1")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)

		require.NoError(t, r.sessions.Save(ctx, &domain.Session{SessionID: "s1", Status: domain.SessionScheduled}))
		require.NoError(t, r.sessions.Save(ctx, &domain.Session{SessionID: "s2", Status: domain.SessionScheduled}))
		require.NoError(t, r.sessions.Save(ctx, &domain.Session{SessionID: "s1", Status: domain.SessionInProgress, StartedAt: base}))

		got, err := r.sessions.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, domain.SessionInProgress, got.Status)
		assert.True(t, got.StartedAt.Equal(base))
		assert.True(t, got.EndedAt.IsZero())

		counts, err := r.sessions.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[domain.SessionScheduled])
		assert.Equal(t, int64(1), counts[domain.SessionInProgress])
	})
}

func TestIssueRepository(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r repos) {
		ctx := context.Background()
		require.NoError(t, r.issues.Create(ctx, &domain.TechnicalIssue{
			TicketID: "TICKET-1-ABCDE", SessionID: "s1", IssueType: domain.IssueAudio, Description: "no sound", CreatedAt: base,
		}))
		require.NoError(t, r.issues.Create(ctx, &domain.TechnicalIssue{
			TicketID: "TICKET-2-ABCDE", SessionID: "s2", IssueType: domain.IssueOther, CreatedAt: base,
		}))

		list, err := r.issues.ListBySession(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, domain.IssueAudio, list[0].IssueType)
	})
}

func TestUnsupportedDatabaseType(t *testing.T) {
	_, err := NewDBEngine(DatabaseConfig{Type: "oracle"})
	assert.Error(t, err)
}

func TestTracingPluginRegistration(t *testing.T) {
	db, err := NewDBEngine(DatabaseConfig{Type: "sqlite", Path: ":memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	assert.Contains(t, db.Plugins, "opentracingPlugin")

	err = useTracing(db)
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRegistered)
	assert.Contains(t, err.Error(), "register tracing plugin")
}
