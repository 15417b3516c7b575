package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/haierkeys/interview-link-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyLinks fails the first n validations with an infrastructure error
type flakyLinks struct {
	LinkService
	mu    sync.Mutex
	fails int
}

func (l *flakyLinks) Validate(ctx context.Context, sessionID, token string) (*domain.LinkValidationResult, error) {
	l.mu.Lock()
	if l.fails > 0 {
		l.fails--
		l.mu.Unlock()
		return nil, errors.New("dial tcp: connection refused")
	}
	l.mu.Unlock()
	return l.LinkService.Validate(ctx, sessionID, token)
}

type recorder struct {
	mu     sync.Mutex
	events []FlowEvent
}

func (r *recorder) listen(e FlowEvent) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) states() []domain.FlowState {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.FlowState
	for _, e := range r.events {
		if e.From != e.To {
			out = append(out, e.To)
		}
	}
	return out
}

func (r *recorder) last() FlowEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func (f *fixture) flow(sessionID, token string, links LinkService) (*Flow, *recorder) {
	if links == nil {
		links = f.links
	}
	fl := NewFlow(sessionID, token, FlowDeps{
		Links:    links,
		Sessions: f.sessions,
		Errors:   f.errors,
		Clock:    f.clock,
	})
	rec := &recorder{}
	fl.OnTransition(rec.listen)
	return fl, rec
}

func TestFlowHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	link, _ := f.generate(t, 10*time.Minute)
	fl, rec := f.flow(link.SessionID, link.Token, nil)
	defer fl.Close()

	assert.Equal(t, domain.FlowLoading, fl.State())
	assert.Equal(t, domain.FlowReady, fl.Start(ctx))
	assert.Equal(t, 10, fl.Snapshot().TimeUntilInterview)

	creds, err := fl.Join(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, creds.Token)
	assert.Equal(t, creds, fl.Snapshot().Credentials)

	f.clock.Advance(20 * time.Minute)
	result, err := fl.Leave(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1200, result.Duration)

	assert.Equal(t, []domain.FlowState{
		domain.FlowValidating, domain.FlowReady, domain.FlowInProgress, domain.FlowLeft,
	}, rec.states())
	assert.Equal(t, 0, f.clock.Pending())
}

func TestFlowWithoutToken(t *testing.T) {
	f := newFixture(t)
	fl, rec := f.flow("interview-1", "", nil)
	defer fl.Close()

	assert.Equal(t, domain.FlowNoToken, fl.Start(context.Background()))
	assert.Equal(t, []domain.FlowState{domain.FlowNoToken}, rec.states())

	_, err := fl.Join(context.Background())
	assert.ErrorIs(t, err, ErrFlowState)
}

func TestFlowMapsReasons(t *testing.T) {
	cases := []struct {
		name     string
		in       time.Duration
		token    func(l *domain.InterviewLink) string
		want     domain.FlowState
		redirect bool
	}{
		{"expired", -2 * time.Hour, func(l *domain.InterviewLink) string { return l.Token }, domain.FlowExpired, true},
		{"invalid", 0, func(l *domain.InterviewLink) string { return "junk" }, domain.FlowInvalid, true},
		{"not scheduled", 3 * time.Hour, func(l *domain.InterviewLink) string { return l.Token }, domain.FlowNotScheduled, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			link, _ := f.generate(t, tc.in)
			fl, rec := f.flow(link.SessionID, tc.token(link), nil)
			defer fl.Close()

			assert.Equal(t, tc.want, fl.Start(context.Background()))
			snap := fl.Snapshot()
			if !tc.redirect {
				assert.Nil(t, snap.RedirectAt)
				assert.Equal(t, 0, f.clock.Pending())
				return
			}
			require.NotNil(t, snap.RedirectAt)
			assert.Equal(t, issueTime.Add(5*time.Second), *snap.RedirectAt)
			assert.Equal(t, 1, f.clock.Pending())

			f.clock.Advance(5 * time.Second)
			last := rec.last()
			assert.True(t, last.Redirect)
			assert.Equal(t, tc.want, last.To)
		})
	}
}

func TestFlowAlreadyUsed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	link, _ := f.generate(t, time.Minute)

	first, _ := f.flow(link.SessionID, link.Token, nil)
	second, _ := f.flow(link.SessionID, link.Token, nil)
	defer first.Close()
	defer second.Close()

	require.Equal(t, domain.FlowReady, first.Start(ctx))
	require.Equal(t, domain.FlowReady, second.Start(ctx))
	_, err := first.Join(ctx)
	require.NoError(t, err)

	_, err = second.Join(ctx)
	require.Error(t, err)
	assert.Equal(t, domain.FlowAlreadyUsed, second.State())
}

func TestFlowRetriesAfterConnectionLoss(t *testing.T) {
	f := newFixture(t)
	link, _ := f.generate(t, time.Minute)
	flaky := &flakyLinks{LinkService: f.links, fails: 2}
	fl, rec := f.flow(link.SessionID, link.Token, flaky)
	defer fl.Close()

	assert.Equal(t, domain.FlowError, fl.Start(context.Background()))
	snap := fl.Snapshot()
	require.NotNil(t, snap.Error)
	assert.Equal(t, domain.ErrTypeConnectionLost, snap.Error.Type)
	assert.True(t, f.errors.HasRecent(domain.ErrTypeConnectionLost, 0))
	assert.Equal(t, 1, f.clock.Pending())

	f.clock.Advance(4 * time.Second)
	assert.Equal(t, domain.FlowError, fl.State())

	f.clock.Advance(time.Second)
	assert.Equal(t, domain.FlowError, fl.State())
	assert.True(t, rec.last().Retry)

	f.clock.Advance(5 * time.Second)
	assert.Equal(t, domain.FlowReady, fl.State())
	assert.Nil(t, fl.Snapshot().Error)
	assert.Len(t, f.errors.RecentOfType(domain.ErrTypeConnectionLost, 0), 2)
	assert.Equal(t, 0, f.clock.Pending())
}

func TestFlowCloseCancelsTimers(t *testing.T) {
	f := newFixture(t)
	link, _ := f.generate(t, time.Minute)
	fl, rec := f.flow(link.SessionID, link.Token, &flakyLinks{LinkService: f.links, fails: 1})

	assert.Equal(t, domain.FlowError, fl.Start(context.Background()))
	require.Equal(t, 1, f.clock.Pending())

	fl.Close()
	fl.Close()
	assert.Equal(t, 0, f.clock.Pending())

	n := len(rec.states())
	f.clock.Advance(time.Minute)
	assert.Equal(t, domain.FlowError, fl.State())
	assert.Len(t, rec.states(), n)

	_, err := fl.Join(context.Background())
	assert.ErrorIs(t, err, ErrFlowClosed)
}
