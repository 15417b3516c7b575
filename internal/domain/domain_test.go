package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to SessionStatus
		want     bool
	}{
		{SessionScheduled, SessionInProgress, true},
		{SessionScheduled, SessionCancelled, true},
		{SessionScheduled, SessionExpired, true},
		{SessionScheduled, SessionCompleted, false},
		{SessionInProgress, SessionCompleted, true},
		{SessionInProgress, SessionScheduled, false},
		{SessionInProgress, SessionCancelled, false},
		{SessionCompleted, SessionInProgress, false},
		{SessionCompleted, SessionScheduled, false},
		{SessionCancelled, SessionScheduled, false},
		{SessionExpired, SessionInProgress, false},
		{SessionCompleted, SessionCompleted, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.False(t, SessionScheduled.IsTerminal())
	assert.False(t, SessionInProgress.IsTerminal())
	assert.True(t, SessionCompleted.IsTerminal())
	assert.True(t, SessionCancelled.IsTerminal())
	assert.True(t, SessionExpired.IsTerminal())
	assert.False(t, SessionStatus("paused").Valid())
}

func TestErrorCatalogComplete(t *testing.T) {
	types := ErrorTypes()
	assert.Len(t, types, 19)
	for _, typ := range types {
		meta, ok := LookupErrorMeta(typ)
		assert.True(t, ok, typ)
		assert.NotEmpty(t, meta.Message, typ)
		assert.NotEmpty(t, meta.Details, typ)
	}

	meta, ok := LookupErrorMeta("SOMETHING_ELSE")
	assert.False(t, ok)
	assert.Equal(t, "An unexpected error occurred", meta.Message)

	lost, _ := LookupErrorMeta(ErrTypeConnectionLost)
	assert.True(t, lost.Recoverable)
	assert.True(t, lost.Reportable)
	expired, _ := LookupErrorMeta(ErrTypeSessionExpired)
	assert.False(t, expired.Recoverable)
	assert.False(t, expired.Reportable)
}

func TestFlowStateForReason(t *testing.T) {
	assert.Equal(t, FlowExpired, FlowStateForReason(ReasonExpired))
	assert.Equal(t, FlowInvalid, FlowStateForReason(ReasonInvalid))
	assert.Equal(t, FlowInvalid, FlowStateForReason(ReasonNotFound))
	assert.Equal(t, FlowAlreadyUsed, FlowStateForReason(ReasonAlreadyUsed))
	assert.Equal(t, FlowNotScheduled, FlowStateForReason(ReasonNotScheduled))
	assert.True(t, FlowNoToken.IsFailure())
	assert.False(t, FlowReady.IsFailure())
}

func TestLinkHelpers(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := &InterviewLink{ExpiresAt: now}
	assert.False(t, l.IsExpired(now))
	assert.True(t, l.IsExpired(now.Add(time.Second)))
	assert.False(t, l.Reminded())
	l.RemindedAt = now
	assert.True(t, l.Reminded())
}
