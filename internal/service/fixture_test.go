package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/haierkeys/interview-link-service/internal/dao"
	"github.com/haierkeys/interview-link-service/internal/domain"
	pkgapp "github.com/haierkeys/interview-link-service/pkg/app"
	"github.com/haierkeys/interview-link-service/pkg/timex"

	"github.com/stretchr/testify/require"
)

var issueTime = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type fixture struct {
	clock    *timex.FakeClock
	store    *dao.MemoryStore
	tokens   pkgapp.TokenManager
	links    LinkService
	sessions SessionService
	errors   ErrorService
	presence *fakePresence
}

type fakePresence struct {
	mu           sync.Mutex
	participants map[string]int
	ai           map[string]bool
}

func (p *fakePresence) Participants(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.participants[id]
}

func (p *fakePresence) AIAttached(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ai[id]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithWriter(t, nil)
}

func newFixtureWithWriter(t *testing.T, w KeyedWriter) *fixture {
	t.Helper()
	f := &fixture{
		clock:    timex.NewFakeClock(issueTime),
		store:    dao.NewMemoryStore(),
		presence: &fakePresence{participants: map[string]int{}, ai: map[string]bool{}},
	}
	cfg := DefaultServiceConfig()
	cfg.Link.BaseURL = "https://hr.example.com/"
	cfg.Room.RoomBaseURL = "https://rooms.example.com"

	f.tokens = pkgapp.NewTokenManager(pkgapp.TokenConfig{SecretKey: "link-secret", RoomSecretKey: "room-secret", Now: f.clock.Now})
	f.links = NewLinkService(LinkServiceDeps{
		Links:    f.store.Links(),
		Sessions: f.store.Sessions(),
		Tokens:   f.tokens,
		Writer:   w,
		Clock:    f.clock,
	}, cfg.Link)
	f.sessions = NewSessionService(SessionServiceDeps{
		Links:    f.links,
		LinkRepo: f.store.Links(),
		Sessions: f.store.Sessions(),
		Tokens:   f.tokens,
		Presence: f.presence,
		Writer:   w,
		Clock:    f.clock,
	}, &cfg)
	f.errors = NewErrorService(f.store.Issues(), f.clock, nil, nil, cfg.ErrorHistory)
	return f
}

// generate issues a link for an interview starting in the given offset from the fake now
func (f *fixture) generate(t *testing.T, in time.Duration) (*domain.InterviewLink, string) {
	t.Helper()
	link, url, err := f.links.Generate(context.Background(), domain.GenerateLinkParams{
		CandidateEmail: "ada@example.com",
		CandidateName:  "Ada Lovelace",
		InterviewDate:  f.clock.Now().Add(in),
		Position:       "Backend Engineer",
		InterviewType:  domain.InterviewTypeTechnical,
	})
	require.NoError(t, err)
	return link, url
}
