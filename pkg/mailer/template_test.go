package mailer

import (
	"context"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLink = "https://interviews.example.com/interview/sess-1?token=abc.def.ghi"

func TestInvitationMessageGolden(t *testing.T) {
	msg, err := InvitationMessage("anna@example.com", InvitationData{
		CandidateName: "Anna Petrova",
		Position:      "Backend Engineer",
		Company:       "Acme",
		Score:         87,
		InterviewDate: time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC),
		Duration:      45,
		Link:          testLink,
		ExpiresAt:     time.Date(2026, 10, 22, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "Interview invitation - Backend Engineer", msg.Subject)
	assert.Equal(t, "Anna Petrova", msg.ToName)

	g := goldie.New(t)
	g.Assert(t, "invitation_text", []byte(msg.Text))
	g.Assert(t, "invitation_html", []byte(msg.HTML))
}

func TestInvitationEscapesHTML(t *testing.T) {
	msg, err := InvitationMessage("x@example.com", InvitationData{
		CandidateName: "<script>alert(1)</script>",
		Position:      "Dev",
		Company:       "Acme",
		Link:          testLink,
	})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>alert(1)</script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.NotContains(t, msg.Text, "Your match score")
}

func TestReminderMessageGolden(t *testing.T) {
	msg, err := ReminderMessage("anna@example.com", ReminderData{
		CandidateName: "Anna Petrova",
		Position:      "Backend Engineer",
		Company:       "Acme",
		InterviewDate: time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC),
		MinutesLeft:   25,
		Link:          testLink,
	})
	require.NoError(t, err)
	assert.Empty(t, msg.HTML)

	goldie.New(t).Assert(t, "reminder_text", []byte(msg.Text))
}

func TestLogSender(t *testing.T) {
	s := NewSender(SMTPConfig{}, nil)
	_, isLog := s.(*LogSender)
	require.True(t, isLog)

	id, err := s.Send(context.Background(), Message{To: "a@example.com", Subject: "hi"})
	require.NoError(t, err)
	assert.Contains(t, id, "@localhost")

	_, err = s.Send(context.Background(), Message{})
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestNewSenderSMTP(t *testing.T) {
	s := NewSender(SMTPConfig{Host: "smtp.example.com"}, nil)
	smtp, ok := s.(*SMTPSender)
	require.True(t, ok)
	assert.Equal(t, 587, smtp.cfg.Port)

	_, err := smtp.Send(context.Background(), Message{To: " "})
	assert.ErrorIs(t, err, ErrNoRecipient)
}
