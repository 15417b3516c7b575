package timex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClockFiresDueTimersInOrder(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)

	var fired []string
	c.AfterFunc(5*time.Second, func() { fired = append(fired, "retry") })
	c.AfterFunc(3*time.Second, func() { fired = append(fired, "reconnect") })
	stopped := c.AfterFunc(4*time.Second, func() { fired = append(fired, "stopped") })

	assert.Equal(t, 3, c.Pending())
	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop())

	c.Advance(2 * time.Second)
	assert.Empty(t, fired)

	c.Advance(3 * time.Second)
	assert.Equal(t, []string{"reconnect", "retry"}, fired)
	assert.Equal(t, start.Add(5*time.Second), c.Now())
	assert.Equal(t, 0, c.Pending())
}

func TestSystemClockAfterFunc(t *testing.T) {
	done := make(chan struct{})
	System.AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("system timer did not fire")
	}
}
