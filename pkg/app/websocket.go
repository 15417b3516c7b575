package app

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lxzan/gws"
	"go.uber.org/zap"
)

const (
	WebSocketServerPingInterval = 25 * time.Second
	WebSocketServerPingWait     = 40 * time.Second
)

// WebsocketServerConfig 音频通道服务配置
type WebsocketServerConfig struct {
	GWSOption    gws.ServerOption
	PingInterval time.Duration
	PingWait     time.Duration
	Logger       *zap.Logger
}

// ClientIdentity is what the verify hook resolves from the upgrade request
type ClientIdentity struct {
	SessionID     string
	CandidateName string
}

// WebsocketClient 存储每个 WebSocket 连接及其相关状态
type WebsocketClient struct {
	conn     *gws.Conn
	done     chan struct{}
	doneOnce sync.Once
	Identity ClientIdentity
	logger   *zap.Logger

	mu         sync.Mutex
	attachment any
}

// Send writes one envelope to the candidate
func (c *WebsocketClient) Send(e Envelope) error {
	b, err := EncodeEnvelope(e)
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(gws.OpcodeText, b)
}

// SetAttachment stores per-connection state owned by the message handlers
func (c *WebsocketClient) SetAttachment(v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attachment = v
}

func (c *WebsocketClient) Attachment() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attachment
}

// Close closes the connection with a normal closure code
func (c *WebsocketClient) Close(reason string) {
	_ = c.conn.WriteClose(1000, []byte(reason))
}

// 定期发送 Ping 消息
func (c *WebsocketClient) pingLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.conn.WritePing(nil); err != nil {
				c.logger.Warn("websocket ping failed", zap.Error(err))
				return
			}
		}
	}
}

func (c *WebsocketClient) stop() {
	c.doneOnce.Do(func() { close(c.done) })
}

// ConnStorage open connections keyed by socket
type ConnStorage = map[*gws.Conn]*WebsocketClient

// WebsocketServer 面试音频通道服务端，实现 gws.Event
type WebsocketServer struct {
	handlers map[string]func(*WebsocketClient, Envelope)
	verify   func(c *gin.Context) (ClientIdentity, error)
	onOpen   func(*WebsocketClient)
	onClose  func(*WebsocketClient, error)
	onReject func(c *gin.Context, err error)
	clients  ConnStorage
	mu       sync.Mutex
	up       *gws.Upgrader
	config   WebsocketServerConfig
}

func NewWebsocketServer(c WebsocketServerConfig) *WebsocketServer {
	if c.PingInterval == 0 {
		c.PingInterval = WebSocketServerPingInterval
	}
	if c.PingWait == 0 {
		c.PingWait = WebSocketServerPingWait
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	w := &WebsocketServer{
		handlers: make(map[string]func(*WebsocketClient, Envelope)),
		clients:  make(ConnStorage),
		config:   c,
	}
	w.up = gws.NewUpgrader(w, &w.config.GWSOption)
	return w
}

// Use registers a handler for an envelope type
func (w *WebsocketServer) Use(messageType string, handler func(*WebsocketClient, Envelope)) {
	w.handlers[messageType] = handler
}

// UseVerify sets the hook that authorises the upgrade request
func (w *WebsocketServer) UseVerify(fn func(c *gin.Context) (ClientIdentity, error)) {
	w.verify = fn
}

// UseReject sets the hook that answers a request refused by the verify hook
func (w *WebsocketServer) UseReject(fn func(c *gin.Context, err error)) {
	w.onReject = fn
}

// UseOpen / UseClose hook connection lifecycle
func (w *WebsocketServer) UseOpen(fn func(*WebsocketClient)) {
	w.onOpen = fn
}

func (w *WebsocketServer) UseClose(fn func(*WebsocketClient, error)) {
	w.onClose = fn
}

// Run verifies the request, upgrades it and starts the read loop
func (w *WebsocketServer) Run() gin.HandlerFunc {
	return func(c *gin.Context) {
		var identity ClientIdentity
		if w.verify != nil {
			id, err := w.verify(c)
			if err != nil {
				w.config.Logger.Info("websocket upgrade rejected", zap.Error(err))
				if w.onReject != nil {
					w.onReject(c, err)
				}
				c.Abort()
				return
			}
			identity = id
		}

		socket, err := w.up.Upgrade(c.Writer, c.Request)
		if err != nil {
			w.config.Logger.Error("websocket upgrade failed", zap.Error(err))
			return
		}
		client := &WebsocketClient{conn: socket, done: make(chan struct{}), Identity: identity, logger: w.config.Logger}
		w.addClient(client)
		if w.onOpen != nil {
			w.onOpen(client)
		}
		go client.pingLoop(w.config.PingInterval)
		go socket.ReadLoop()
	}
}

func (w *WebsocketServer) getClient(conn *gws.Conn) *WebsocketClient {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clients[conn]
}

func (w *WebsocketServer) addClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[c.conn] = c
}

func (w *WebsocketServer) removeClient(conn *gws.Conn) *WebsocketClient {
	w.mu.Lock()
	defer w.mu.Unlock()
	c := w.clients[conn]
	delete(w.clients, conn)
	return c
}

func (w *WebsocketServer) OnOpen(conn *gws.Conn) {
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait))
}

func (w *WebsocketServer) OnClose(conn *gws.Conn, err error) {
	c := w.removeClient(conn)
	if c == nil {
		return
	}
	c.stop()
	if w.onClose != nil {
		w.onClose(c, err)
	}
	w.config.Logger.Info("websocket client leave", zap.String("sessionId", c.Identity.SessionID))
}

func (w *WebsocketServer) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait))
	_ = socket.WritePong(nil)
}

func (w *WebsocketServer) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait))
}

func (w *WebsocketServer) OnMessage(conn *gws.Conn, message *gws.Message) {
	defer message.Close()
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait))
	if message.Opcode != gws.OpcodeText {
		return
	}

	c := w.getClient(conn)
	if c == nil {
		return
	}

	env, err := DecodeEnvelope(message.Bytes())
	if err != nil {
		_ = c.Send(ErrorEnvelope("invalid message format"))
		return
	}

	handler, exists := w.handlers[env.Type]
	if !exists {
		w.config.Logger.Debug("websocket unknown message type", zap.String("type", env.Type))
		_ = c.Send(ErrorEnvelope("unknown message type: " + env.Type))
		return
	}
	handler(c, env)
}
