package convert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type srcLink struct {
	SessionID     string
	CandidateName string
	InterviewDate time.Time
	Internal      string
}

type dstLink struct {
	SessionID     string    `json:"sessionId"`
	CandidateName string    `json:"candidateName"`
	InterviewDate time.Time `json:"interviewDate"`
}

func TestStructAssign(t *testing.T) {
	at := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	got, err := StructAssign(&srcLink{SessionID: "s-1", CandidateName: "Ann", InterviewDate: at, Internal: "x"}, &dstLink{})
	require.NoError(t, err)
	assert.Equal(t, "s-1", got.SessionID)
	assert.Equal(t, "Ann", got.CandidateName)
	assert.True(t, at.Equal(got.InterviewDate))
}

func TestStructToMap(t *testing.T) {
	m, err := StructToMap(dstLink{SessionID: "s-2", CandidateName: "Bo"})
	require.NoError(t, err)
	assert.Equal(t, "s-2", m["sessionId"])
	assert.Equal(t, "Bo", m["candidateName"])
}

func TestStrTo(t *testing.T) {
	assert.Equal(t, 5, StrTo(" 5 ").MustInt())
	assert.Equal(t, 5, StrTo("").IntOr(5))
	assert.Equal(t, 5, StrTo("-3").IntOr(5))
	assert.Equal(t, 12, StrTo("12").IntOr(5))
}
