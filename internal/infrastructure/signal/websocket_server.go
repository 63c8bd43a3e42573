package signal

import (
	"context"
	"encoding/json"
	"net/http"

	"beamcast/internal/core/domain"
	"beamcast/internal/core/ports"
	"beamcast/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // TLS and origin policy are handled by the front-line proxy
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// WebSocketServer accepts relay connections, runs the per-connection
// read loop and hands envelopes to the relay service. One handler
// goroutine per connection; handlers never block on sends.
type WebSocketServer struct {
	relay    ports.RelayService
	registry *Registry
	metrics  ports.Metrics
	logger   *zap.SugaredLogger

	msgRate  rate.Limit
	msgBurst int
}

func NewWebSocketServer(relay ports.RelayService, registry *Registry, metrics ports.Metrics, logger *zap.SugaredLogger) *WebSocketServer {
	return &WebSocketServer{
		relay:    relay,
		registry: registry,
		metrics:  metrics,
		logger:   logger,
	}
}

// SetMessageRateLimit caps inbound envelopes per connection. Zero
// disables the limiter.
func (s *WebSocketServer) SetMessageRateLimit(perSecond float64, burst int) {
	s.msgRate = rate.Limit(perSecond)
	s.msgBurst = burst
}

func (s *WebSocketServer) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		s.logger.Errorw("websocket upgrade failed", "error", err, "remote", c.Request.RemoteAddr)
		return
	}

	client := newClient(conn, s.logger)
	sess := domain.NewSession()

	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		client.MarkAlive()
		return nil
	})

	s.registry.Add(client)
	s.metrics.ConnectionOpened()
	s.logger.Infow("connection opened", "remote", c.Request.RemoteAddr)

	go client.writePump()
	s.readLoop(client, sess)

	// Disconnect cleanup runs exactly once per connection, whether the
	// close was graceful or forced by the liveness sweep.
	s.registry.Remove(client)
	s.relay.Disconnect(context.Background(), sess)
	client.close()
	s.metrics.ConnectionClosed()
	s.logger.Infow("connection closed", "room", sess.Room, "role", sess.Role)
}

func (s *WebSocketServer) readLoop(client *Client, sess *domain.Session) {
	var limiter *rate.Limiter
	if s.msgRate > 0 {
		limiter = rate.NewLimiter(s.msgRate, s.msgBurst)
	}

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Infow("read failed", "error", err)
			}
			return
		}

		if limiter != nil && !limiter.Allow() {
			s.metrics.EnvelopeDropped("rate_limited")
			continue
		}

		var env domain.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			// Malformed frames are logged and skipped; the connection
			// stays open.
			s.logger.Warnw("malformed envelope", "error", err)
			continue
		}

		s.dispatch(client, sess, env)
	}
}

func (s *WebSocketServer) dispatch(client *Client, sess *domain.Session, env domain.Envelope) {
	ctx, span := tracing.StartSpan(context.Background(), "signal."+env.Type)
	defer span.End()

	if sess.Joined() {
		span.SetAttributes(
			attribute.String("room", string(sess.Room)),
			attribute.String("role", string(sess.Role)),
		)
	}

	switch env.Type {
	case domain.EnvJoin:
		s.relay.Join(ctx, sess, client, env)
	case domain.EnvSignal:
		s.relay.Signal(ctx, sess, env)
	case domain.EnvPong:
		client.MarkAlive()
	default:
		s.logger.Debugw("unknown envelope type", "type", env.Type)
	}
}
