package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/haierkeys/interview-link-service/internal/domain"
	"github.com/haierkeys/interview-link-service/pkg/code"
	"github.com/haierkeys/interview-link-service/pkg/mailer"
	"github.com/haierkeys/interview-link-service/pkg/workerpool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu     sync.Mutex
	sent   []mailer.Message
	reject string
}

func (s *fakeSender) Send(ctx context.Context, msg mailer.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.To == s.reject {
		return "", errors.New("550 mailbox unavailable")
	}
	s.sent = append(s.sent, msg)
	return "msg-" + msg.To, nil
}

func (s *fakeSender) messages() []mailer.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mailer.Message(nil), s.sent...)
}

func newInvitationService(t *testing.T, f *fixture, sender mailer.Sender) InvitationService {
	pool := workerpool.New(&workerpool.Config{MaxWorkers: 4, QueueSize: 16}, nil)
	t.Cleanup(func() { _ = pool.Shutdown(context.Background()) })
	return NewInvitationService(InvitationServiceDeps{
		Links:    f.links,
		LinkRepo: f.store.Links(),
		Sessions: f.sessions,
		Sender:   sender,
		Pool:     pool,
		Clock:    f.clock,
	}, InvitationConfig{CompanyName: "Acme"})
}

func TestSendBatch(t *testing.T) {
	f := newFixture(t)
	sender := &fakeSender{reject: "bob@example.com"}
	svc := newInvitationService(t, f, sender)

	results, summary, err := svc.SendBatch(context.Background(), domain.InvitationBatch{
		Candidates: []domain.Candidate{
			{ID: "c1", Name: "Ada", Email: "ada@example.com", Score: 92},
			{ID: "c2", Name: "Bob", Email: "bob@example.com", Score: 70},
			{ID: "c3", Name: "Cy", Email: "cy@example.com"},
		},
		Vacancy: domain.Vacancy{Title: "Backend Engineer"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationSummary{Total: 3, Sent: 2, Failed: 1}, summary)

	require.Len(t, results, 3)
	assert.Equal(t, "c1", results[0].CandidateID)
	assert.True(t, results[0].Success)
	assert.Equal(t, "msg-ada@example.com", results[0].EmailID)
	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Error, "mailbox unavailable")
	assert.NotEmpty(t, results[1].SessionID)
	assert.True(t, results[2].Success)

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	for _, m := range msgs {
		assert.Equal(t, "Interview invitation - Backend Engineer", m.Subject)
		assert.Contains(t, m.Text, "Acme")
		assert.Contains(t, m.Text, "https://hr.example.com/interview/interview-")
		assert.NotEmpty(t, m.HTML)
	}

	// default interview date is one day out
	link, err := f.links.Get(context.Background(), results[0].SessionID)
	require.NoError(t, err)
	assert.Equal(t, issueTime.Add(24*time.Hour), link.InterviewDate)
	assert.Equal(t, "ada@example.com", link.CandidateEmail)
}

func TestSendBatchRejectsEmpty(t *testing.T) {
	f := newFixture(t)
	svc := newInvitationService(t, f, &fakeSender{})

	_, _, err := svc.SendBatch(context.Background(), domain.InvitationBatch{})
	assert.ErrorIs(t, err, code.ErrorInvitationEmpty)
}

func TestSendBatchUsesVacancyCompanyAndDate(t *testing.T) {
	f := newFixture(t)
	sender := &fakeSender{}
	svc := newInvitationService(t, f, sender)
	date := issueTime.Add(72 * time.Hour)

	results, _, err := svc.SendBatch(context.Background(), domain.InvitationBatch{
		Candidates:    []domain.Candidate{{ID: "c1", Name: "Ada", Email: "ada@example.com"}},
		Vacancy:       domain.Vacancy{Title: "SRE", Company: "Initech"},
		InterviewDate: date,
		Duration:      45,
	})
	require.NoError(t, err)
	require.True(t, results[0].Success)
	assert.True(t, strings.Contains(sender.messages()[0].Text, "Initech"))

	link, err := f.links.Get(context.Background(), results[0].SessionID)
	require.NoError(t, err)
	assert.Equal(t, date, link.InterviewDate)
	assert.Equal(t, 45, link.Duration)
}

func TestSendReminders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sender := &fakeSender{}
	svc := newInvitationService(t, f, sender)

	soon, _ := f.generate(t, 20*time.Minute)
	f.generate(t, 2*time.Hour)
	cancelled, _ := f.generate(t, 25*time.Minute)
	require.NoError(t, f.sessions.Cancel(ctx, cancelled.SessionID))

	n, err := svc.SendReminders(ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "ada@example.com", msgs[0].To)
	assert.Contains(t, msgs[0].Text, soon.Token)

	stored, err := f.store.Links().GetBySessionID(ctx, soon.SessionID)
	require.NoError(t, err)
	assert.True(t, stored.Reminded())

	n, err = svc.SendReminders(ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSendBatchLargerThanQueue(t *testing.T) {
	f := newFixture(t)
	sender := &fakeSender{}
	svc := newInvitationService(t, f, sender)

	candidates := make([]domain.Candidate, 60)
	for i := range candidates {
		id := strconv.Itoa(i)
		candidates[i] = domain.Candidate{ID: "c" + id, Name: "Candidate " + id, Email: "c" + id + "@example.com"}
	}

	results, summary, err := svc.SendBatch(context.Background(), domain.InvitationBatch{
		Candidates: candidates,
		Vacancy:    domain.Vacancy{Title: "Backend Engineer"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationSummary{Total: 60, Sent: 60}, summary)
	for _, r := range results {
		assert.True(t, r.Success, r.Error)
	}
	assert.Len(t, sender.messages(), 60)
}
