package relay

import (
	"context"
	"sync"

	"github.com/haierkeys/interview-link-service/internal/domain"
	pkgapp "github.com/haierkeys/interview-link-service/pkg/app"
	"github.com/haierkeys/interview-link-service/pkg/logger"
	"github.com/haierkeys/interview-link-service/pkg/timex"

	"go.uber.org/zap"
)

// Bridge pipes envelopes between one candidate connection and the AI service
// Bridge 候选人连接与 AI 服务之间的转发
type Bridge struct {
	hub           *Hub
	sessionID     string
	candidateName string
	peer          Peer

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	upstream  Upstream
	gen       uint64
	reconnect timex.Timer
	closed    bool
}

// upstreamLink ties callbacks to the connection attempt that produced them
type upstreamLink struct {
	b   *Bridge
	gen uint64
}

func (l *upstreamLink) OnEnvelope(env pkgapp.Envelope) { l.b.fromUpstream(l.gen, env) }
func (l *upstreamLink) OnClose(err error)              { l.b.upstreamClosed(l.gen, err) }

func (b *Bridge) SessionID() string { return b.sessionID }

// Connected 是否已连接 AI 服务
func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.upstream != nil
}

func (b *Bridge) connect() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.gen++
	link := &upstreamLink{b: b, gen: b.gen}
	b.mu.Unlock()

	log := b.hub.deps.Logger.With(zap.String(logger.FieldSessionID, b.sessionID))
	ctx, cancel := context.WithTimeout(b.ctx, b.hub.config.DialTimeout)
	up, err := b.hub.deps.Dialer.Dial(ctx, b.sessionID, link)
	cancel()
	if err != nil {
		log.Warn("relay dial failed", zap.String(logger.FieldUpstream, b.hub.config.UpstreamURL), zap.Error(err))
		msg := b.hub.record(b.sessionID, domain.ErrTypeAIBotTimeout, err.Error())
		_ = b.peer.Send(pkgapp.ErrorEnvelope(msg))
		b.scheduleReconnect()
		return
	}

	b.mu.Lock()
	if b.closed || b.gen != link.gen {
		b.mu.Unlock()
		_ = up.Close()
		return
	}
	b.upstream = up
	b.mu.Unlock()

	if err := up.Send(pkgapp.Envelope{
		Type:          pkgapp.EnvelopeSessionStart,
		SessionID:     b.sessionID,
		CandidateName: b.candidateName,
	}); err != nil {
		log.Warn("relay session_start failed", zap.Error(err))
	}
	_ = b.peer.Send(pkgapp.Envelope{Type: pkgapp.EnvelopeStatus, Message: "ai_connected"})
	log.Debug("relay upstream connected")
}

// Forward sends a candidate envelope to the AI service
func (b *Bridge) Forward(env pkgapp.Envelope) error {
	b.mu.Lock()
	up := b.upstream
	b.mu.Unlock()
	if up == nil {
		return ErrUpstreamUnavailable
	}
	env.SessionID = b.sessionID
	return up.Send(env)
}

func (b *Bridge) fromUpstream(gen uint64, env pkgapp.Envelope) {
	b.mu.Lock()
	stale := b.closed || gen != b.gen
	b.mu.Unlock()
	if stale {
		return
	}
	switch env.Type {
	case pkgapp.EnvelopeAudio, pkgapp.EnvelopeTranscription, pkgapp.EnvelopeError, pkgapp.EnvelopeStatus:
		if err := b.peer.Send(env); err != nil {
			b.hub.deps.Logger.Debug("relay write to candidate failed",
				zap.String(logger.FieldSessionID, b.sessionID), zap.Error(err))
		}
	default:
		b.hub.deps.Logger.Debug("relay dropped upstream envelope",
			zap.String(logger.FieldSessionID, b.sessionID), zap.String("type", env.Type))
	}
}

func (b *Bridge) upstreamClosed(gen uint64, err error) {
	b.mu.Lock()
	if b.closed || gen != b.gen {
		b.mu.Unlock()
		return
	}
	b.upstream = nil
	b.mu.Unlock()

	details := ""
	if err != nil {
		details = err.Error()
	}
	b.hub.deps.Logger.Warn("relay upstream closed",
		zap.String(logger.FieldSessionID, b.sessionID), zap.Error(err))
	msg := b.hub.record(b.sessionID, domain.ErrTypeAIBotDisconnected, details)
	_ = b.peer.Send(pkgapp.ErrorEnvelope(msg))
	if b.hub.deps.Metrics != nil {
		b.hub.deps.Metrics.RelayReconnect()
	}
	b.scheduleReconnect()
}

func (b *Bridge) scheduleReconnect() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.reconnect != nil {
		return
	}
	b.reconnect = b.hub.deps.Clock.AfterFunc(b.hub.config.ReconnectDelay, func() {
		b.mu.Lock()
		b.reconnect = nil
		b.mu.Unlock()
		b.connect()
	})
}

// Close stops reconnecting, closes the upstream and leaves the hub
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	if b.reconnect != nil {
		b.reconnect.Stop()
		b.reconnect = nil
	}
	up := b.upstream
	b.upstream = nil
	b.mu.Unlock()

	b.cancel()
	if up != nil {
		_ = up.Close()
	}
	b.hub.detach(b)
}
