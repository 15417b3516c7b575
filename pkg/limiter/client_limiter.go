package limiter

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// ClientLimiter gives every client IP its own bucket per rule.
// Used on token-validation routes so one client guessing links cannot starve others.
// ClientLimiter 按客户端 IP 独立限流
type ClientLimiter struct {
	mu      sync.Mutex
	rules   map[string]BucketRule
	buckets map[string]*ratelimit.Bucket
}

func NewClientLimiter() *ClientLimiter {
	return &ClientLimiter{
		rules:   make(map[string]BucketRule),
		buckets: make(map[string]*ratelimit.Bucket),
	}
}

func (l *ClientLimiter) Key(c *gin.Context) string {
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	best := ""
	for key := range l.rules {
		if strings.HasPrefix(path, key) && len(key) > len(best) {
			best = key
		}
	}
	if best == "" {
		return ""
	}
	return best + "|" + c.ClientIP()
}

func (l *ClientLimiter) GetBucket(key string) (*ratelimit.Bucket, bool) {
	if key == "" {
		return nil, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if bucket, ok := l.buckets[key]; ok {
		return bucket, true
	}
	ruleKey, _, _ := strings.Cut(key, "|")
	rule, ok := l.rules[ruleKey]
	if !ok {
		return nil, false
	}
	bucket := ratelimit.NewBucketWithQuantum(rule.FillInterval, rule.Capacity, rule.Quantum)
	l.buckets[key] = bucket
	return bucket, true
}

func (l *ClientLimiter) AddBuckets(rules ...BucketRule) Face {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, rule := range rules {
		l.rules[rule.Key] = rule
	}
	return l
}
