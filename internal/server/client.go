package server

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tokenScope/internal/model"
	"tokenScope/internal/session"
)

const (
	// writeWait bounds a single frame or control write.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent before the read
	// pump gives up on it.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait so pongs arrive in time.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize caps inbound messages; client messages are small, a
	// full filter update included.
	maxMessageSize = 64 * 1024
)

// wsClient bridges one WebSocket connection and its session: the read pump
// decodes client messages into the session mailbox, the write pump encodes
// render frames back out.
type wsClient struct {
	conn   *websocket.Conn
	sess   *session.Session
	logger *zap.Logger
}

func newWSClient(conn *websocket.Conn, sess *session.Session, logger *zap.Logger) *wsClient {
	return &wsClient{
		conn:   conn,
		sess:   sess,
		logger: logger.With(zap.String("session", sess.ID())),
	}
}

// run owns the connection lifetime. It starts the session loop and the write
// pump, then blocks in the read pump until the client goes away or the server
// shuts down, and tears everything down in order.
func (c *wsClient) run(ctx context.Context, release func()) {
	defer release()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.sess.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Warn("session loop ended", zap.Error(err))
		}
	}()
	go c.writePump(runCtx)

	c.readPump(runCtx)

	// Closing the mailbox lets the session loop drain and exit cleanly;
	// cancelling stops the write pump.
	c.sess.Close()
	cancel()
	<-done
	c.logger.Info("connection closed")
}

// readPump forwards decoded client messages to the session until the
// connection drops.
func (c *wsClient) readPump(ctx context.Context) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("read pump closed", zap.Error(err))
			}
			return
		}
		var msg model.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("discarding malformed client message", zap.Error(err))
			continue
		}
		select {
		case c.sess.Messages() <- msg:
		case <-ctx.Done():
			return
		}
	}
}

// writePump sends render frames and keepalive pings. It closes the connection
// on exit so the read pump unblocks immediately.
func (c *wsClient) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		case frame := <-c.sess.Frames():
			data, err := json.Marshal(frame)
			if err != nil {
				c.logger.Error("marshal render frame", zap.Error(err))
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("write pump closed", zap.Error(err))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
