// Package relay pipes a candidate's audio channel to the AI interviewer service.
// Package relay 将候选人音频通道转发到 AI 面试官服务
package relay

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	pkgapp "github.com/haierkeys/interview-link-service/pkg/app"

	"github.com/lxzan/gws"
	"go.uber.org/zap"
)

// Upstream is one open connection to the AI service
type Upstream interface {
	Send(env pkgapp.Envelope) error
	Close() error
}

// UpstreamHandler receives what the AI service sends. OnClose is called exactly once.
type UpstreamHandler interface {
	OnEnvelope(env pkgapp.Envelope)
	OnClose(err error)
}

// Dialer opens upstream connections
type Dialer interface {
	Dial(ctx context.Context, sessionID string, h UpstreamHandler) (Upstream, error)
}

// GWSDialer dials the AI service over websocket
type GWSDialer struct {
	URL         string
	DialTimeout time.Duration
	Logger      *zap.Logger
}

func (d *GWSDialer) Dial(ctx context.Context, sessionID string, h UpstreamHandler) (Upstream, error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("sessionId", sessionID)
	u.RawQuery = q.Encode()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := d.DialTimeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); timeout <= 0 || left < timeout {
			timeout = left
		}
	}

	ev := &upstreamEvents{handler: h, logger: d.Logger}
	socket, resp, err := gws.NewClient(ev, &gws.ClientOption{
		Addr:             u.String(),
		HandshakeTimeout: timeout,
		RequestHeader:    http.Header{"X-Session-Id": []string{sessionID}},
	})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	go socket.ReadLoop()
	return &gwsUpstream{conn: socket}, nil
}

type gwsUpstream struct {
	conn *gws.Conn
}

func (u *gwsUpstream) Send(env pkgapp.Envelope) error {
	b, err := pkgapp.EncodeEnvelope(env)
	if err != nil {
		return err
	}
	return u.conn.WriteMessage(gws.OpcodeText, b)
}

func (u *gwsUpstream) Close() error {
	return u.conn.WriteClose(1000, []byte("candidate left"))
}

// upstreamEvents adapts gws callbacks to an UpstreamHandler
type upstreamEvents struct {
	gws.BuiltinEventHandler
	handler UpstreamHandler
	logger  *zap.Logger
	once    sync.Once
}

func (e *upstreamEvents) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	if message.Opcode != gws.OpcodeText {
		return
	}
	env, err := pkgapp.DecodeEnvelope(message.Bytes())
	if err != nil {
		if e.logger != nil {
			e.logger.Debug("relay upstream sent undecodable frame", zap.Error(err))
		}
		return
	}
	e.handler.OnEnvelope(env)
}

func (e *upstreamEvents) OnClose(socket *gws.Conn, err error) {
	e.once.Do(func() {
		var ce *gws.CloseError
		if errors.As(err, &ce) && ce.Code == 1000 {
			err = nil
		}
		e.handler.OnClose(err)
	})
}
