package relay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/haierkeys/interview-link-service/internal/domain"
	pkgapp "github.com/haierkeys/interview-link-service/pkg/app"
	"github.com/haierkeys/interview-link-service/pkg/logger"
	"github.com/haierkeys/interview-link-service/pkg/timex"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrUpstreamUnavailable the AI service is not connected for this candidate
	ErrUpstreamUnavailable = errors.New("ai interviewer is not connected")
	// ErrHubClosed Attach after Shutdown
	ErrHubClosed = errors.New("relay hub is closed")
)

// Config 转发配置
type Config struct {
	UpstreamURL    string
	ReconnectDelay time.Duration // 默认 3s
	DialTimeout    time.Duration // 默认 10s
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		UpstreamURL:    "ws://localhost:8000/ws",
		ReconnectDelay: 3 * time.Second,
		DialTimeout:    10 * time.Second,
	}
}

// Peer is the candidate side of a bridge
type Peer interface {
	Send(env pkgapp.Envelope) error
}

// ErrorRecorder records interview errors raised by the relay
type ErrorRecorder interface {
	CreateForSession(sessionID string, t domain.InterviewErrorType, details string) domain.InterviewError
}

// Metrics relay counters
type Metrics interface {
	RelayConnected(delta float64)
	RelayReconnect()
}

// Deps Hub 依赖
type Deps struct {
	Dialer  Dialer
	Errors  ErrorRecorder
	Metrics Metrics
	Clock   timex.Clock
	Logger  *zap.Logger
}

// Hub tracks the bridges of every session and answers presence queries
// Hub 管理所有会话的转发连接
type Hub struct {
	config Config
	deps   Deps

	mu       sync.Mutex
	sessions map[string]map[*Bridge]struct{}
	closed   bool

	dials sync.WaitGroup // first upstream dial of each Attach
}

// NewHub 创建 Hub，Dialer 为空时使用 websocket 拨号
func NewHub(cfg Config, deps Deps) *Hub {
	def := DefaultConfig()
	if cfg.UpstreamURL == "" {
		cfg.UpstreamURL = def.UpstreamURL
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = def.ReconnectDelay
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = def.DialTimeout
	}
	if deps.Clock == nil {
		deps.Clock = timex.System
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Dialer == nil {
		deps.Dialer = &GWSDialer{URL: cfg.UpstreamURL, DialTimeout: cfg.DialTimeout, Logger: deps.Logger}
	}
	return &Hub{
		config:   cfg,
		deps:     deps,
		sessions: make(map[string]map[*Bridge]struct{}),
	}
}

// Attach registers a candidate connection and dials the AI service for it in the background,
// so the websocket upgrade never waits on the upstream. Until the dial finishes Forward
// returns ErrUpstreamUnavailable; a failed dial is retried after ReconnectDelay.
func (h *Hub) Attach(sessionID, candidateName string, peer Peer) (*Bridge, error) {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		hub:           h,
		sessionID:     sessionID,
		candidateName: candidateName,
		peer:          peer,
		ctx:           ctx,
		cancel:        cancel,
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		cancel()
		return nil, ErrHubClosed
	}
	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[*Bridge]struct{})
	}
	h.sessions[sessionID][b] = struct{}{}
	h.dials.Add(1)
	h.mu.Unlock()

	if h.deps.Metrics != nil {
		h.deps.Metrics.RelayConnected(1)
	}
	h.deps.Logger.Info("relay attached",
		zap.String(logger.FieldSessionID, sessionID),
		zap.String(logger.FieldUpstream, h.config.UpstreamURL))

	go func() {
		defer h.dials.Done()
		b.connect()
	}()
	return b, nil
}

func (h *Hub) detach(b *Bridge) {
	h.mu.Lock()
	group := h.sessions[b.sessionID]
	if _, ok := group[b]; !ok {
		h.mu.Unlock()
		return
	}
	delete(group, b)
	if len(group) == 0 {
		delete(h.sessions, b.sessionID)
	}
	h.mu.Unlock()

	if h.deps.Metrics != nil {
		h.deps.Metrics.RelayConnected(-1)
	}
	h.deps.Logger.Info("relay detached", zap.String(logger.FieldSessionID, b.sessionID))
}

// Participants 会话当前连接的候选人数量
func (h *Hub) Participants(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions[sessionID])
}

// AIAttached reports whether any bridge of the session has a live upstream
func (h *Hub) AIAttached(sessionID string) bool {
	h.mu.Lock()
	bridges := make([]*Bridge, 0, len(h.sessions[sessionID]))
	for b := range h.sessions[sessionID] {
		bridges = append(bridges, b)
	}
	h.mu.Unlock()

	for _, b := range bridges {
		if b.Connected() {
			return true
		}
	}
	return false
}

// Shutdown closes every bridge and waits for dials still in flight
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	var bridges []*Bridge
	for _, group := range h.sessions {
		for b := range group {
			bridges = append(bridges, b)
		}
	}
	h.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, b := range bridges {
		g.Go(func() error {
			b.Close()
			return nil
		})
	}
	done := make(chan error, 1)
	go func() {
		err := g.Wait()
		h.dials.Wait()
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) record(sessionID string, t domain.InterviewErrorType, details string) string {
	if h.deps.Errors != nil {
		return h.deps.Errors.CreateForSession(sessionID, t, details).Message
	}
	meta, _ := domain.LookupErrorMeta(t)
	return meta.Message
}
