package limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCtx(path, ip string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, path, nil)
	c.Request.RemoteAddr = ip + ":1234"
	return c
}

func TestMethodLimiterLongestPrefix(t *testing.T) {
	l := NewMethodLimiter().AddBuckets(
		BucketRule{Key: "/api/interviews", FillInterval: time.Hour, Capacity: 10, Quantum: 1},
		BucketRule{Key: "/api/interviews/validate", FillInterval: time.Hour, Capacity: 1, Quantum: 1},
	)

	key := l.Key(newCtx("/api/interviews/validate/s-1", "10.0.0.1"))
	assert.Equal(t, "/api/interviews/validate", key)

	bucket, ok := l.GetBucket(key)
	require.True(t, ok)
	assert.Equal(t, int64(1), bucket.TakeAvailable(1))
	assert.Equal(t, int64(0), bucket.TakeAvailable(1))

	assert.Equal(t, "", l.Key(newCtx("/api/health", "10.0.0.1")))
	_, ok = l.GetBucket("")
	assert.False(t, ok)
}

func TestClientLimiterSeparatesClients(t *testing.T) {
	l := NewClientLimiter().AddBuckets(
		BucketRule{Key: "/api/interviews/validate", FillInterval: time.Hour, Capacity: 1, Quantum: 1},
	)

	k1 := l.Key(newCtx("/api/interviews/validate/s-1", "10.0.0.1"))
	k2 := l.Key(newCtx("/api/interviews/validate/s-1", "10.0.0.2"))
	require.NotEqual(t, k1, k2)

	b1, ok := l.GetBucket(k1)
	require.True(t, ok)
	assert.Equal(t, int64(1), b1.TakeAvailable(1))
	assert.Equal(t, int64(0), b1.TakeAvailable(1))

	b2, ok := l.GetBucket(k2)
	require.True(t, ok)
	assert.Equal(t, int64(1), b2.TakeAvailable(1))
}
