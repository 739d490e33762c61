package stream

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/livecoll/internal/errors"
	"github.com/vango-dev/livecoll/pkg/pipeline"
	"github.com/vango-dev/livecoll/pkg/protocol"
)

// client is one WebSocket connection following one feed.
type client struct {
	id     string
	server *Server
	conn   *websocket.Conn
	logger *slog.Logger

	// initial frames are written before anything queued on send.
	initial [][]byte
	send    chan []byte

	// claims is nil when the client may not apply operations.
	claims *Claims

	done        chan struct{}
	stopOnce    sync.Once
	closeReason protocol.CloseReason
	closeMsg    string
}

// enqueue queues a frame without blocking. A client whose queue is full is
// stopped; it must reconnect and resume.
func (c *client) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		c.logger.Warn("send queue overflow", "capacity", cap(c.send))
		if c.server.metrics != nil {
			c.server.metrics.RecordOverflow()
		}
		c.stop(protocol.CloseQueueOverflow, errors.New("E163").Error())
		return false
	}
}

// stop asks the write loop to send a close frame and drop the connection.
func (c *client) stop(reason protocol.CloseReason, message string) {
	c.stopOnce.Do(func() {
		c.closeReason = reason
		c.closeMsg = message
		close(c.done)
	})
}

// readLoop reads frames until the connection fails or the client is
// stopped.
func (c *client) readLoop() {
	readTimeout := 2 * c.server.heartbeat
	for {
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))

		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("read error", "error", err)
				c.server.recordWSError("read")
			}
			c.stop(protocol.CloseGoingAway, "")
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			c.logger.Error("frame decode error", "error", err)
			c.server.recordWSError("decode")
			c.enqueue(protocol.NewError(protocol.ErrInvalidFrame, err.Error()).Frame().Encode())
			continue
		}

		switch frame.Type {
		case protocol.FrameOp:
			c.handleOpFrame(frame.Payload)

		case protocol.FrameControl:
			if !c.handleControlFrame(frame.Payload) {
				return
			}

		default:
			c.logger.Warn("unexpected frame type", "type", frame.Type)
			c.enqueue(protocol.NewError(protocol.ErrInvalidFrame, "unexpected "+frame.Type.String()+" frame").Frame().Encode())
		}
	}
}

// handleOpFrame applies the operations of an op frame and answers with an
// ack or an error.
func (c *client) handleOpFrame(payload []byte) {
	msg, err := protocol.DecodeOp(payload)
	if err != nil {
		c.enqueue(protocol.NewError(protocol.ErrInvalidFrame, err.Error()).Frame().Encode())
		return
	}

	ops, err := pipeline.ParseOps(msg.Body)
	if err != nil {
		c.enqueue(c.errorFrame(msg.ID, protocol.ErrInvalidOp, err))
		return
	}
	if code, err := c.server.authorize(c.claims, ops); err != nil {
		c.enqueue(c.errorFrame(msg.ID, code, err))
		return
	}

	applied, err := c.server.applyOps(context.Background(), ops)
	if err != nil {
		c.enqueue(c.errorFrame(msg.ID, errorCode(err), err))
		return
	}
	ack := protocol.EncodeAck(&protocol.Ack{ID: msg.ID, Applied: uint64(applied)})
	c.enqueue(protocol.NewFrame(protocol.FrameAck, ack).Encode())
}

func (c *client) errorFrame(id uint64, code protocol.ErrorCode, err error) []byte {
	em := protocol.NewError(code, err.Error())
	em.ID = id
	return em.Frame().Encode()
}

// handleControlFrame answers pings and handles close requests. It returns
// false when the client is closing.
func (c *client) handleControlFrame(payload []byte) bool {
	ct, data, err := protocol.DecodeControl(payload)
	if err != nil {
		c.logger.Error("control decode error", "error", err)
		return true
	}

	switch ct {
	case protocol.ControlPing:
		if pp, ok := data.(*protocol.PingPong); ok {
			c.enqueue(protocol.NewControlFrame(protocol.ControlPong, &protocol.PingPong{Timestamp: pp.Timestamp}).Encode())
		}

	case protocol.ControlPong:
		c.logger.Debug("received pong")

	case protocol.ControlClose:
		if cm, ok := data.(*protocol.CloseMessage); ok {
			c.logger.Info("client closing", "reason", cm.Reason, "message", cm.Message)
		}
		c.stop(protocol.CloseNormal, "")
		return false
	}
	return true
}

// writeLoop writes initial frames, then queued frames and heartbeats, until
// the client is stopped. It closes the connection on exit.
func (c *client) writeLoop() {
	ticker := time.NewTicker(c.server.heartbeat)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for _, frame := range c.initial {
		if err := c.write(frame); err != nil {
			c.stop(protocol.CloseError, "")
			return
		}
	}
	c.initial = nil

	for {
		select {
		case frame := <-c.send:
			if err := c.write(frame); err != nil {
				c.logger.Debug("write error", "error", err)
				c.server.recordWSError("write")
				c.stop(protocol.CloseError, "")
				return
			}

		case <-ticker.C:
			ping := protocol.NewControlFrame(protocol.ControlPing, &protocol.PingPong{Timestamp: uint64(time.Now().UnixMilli())})
			if err := c.write(ping.Encode()); err != nil {
				c.stop(protocol.CloseError, "")
				return
			}

		case <-c.done:
			c.writeClose()
			return
		}
	}
}

// writeClose sends the final frames explaining why the client is closed.
func (c *client) writeClose() {
	if c.closeReason == protocol.CloseGoingAway || c.closeReason == protocol.CloseError && c.closeMsg == "" {
		return
	}
	if c.closeReason == protocol.CloseQueueOverflow {
		c.write(protocol.NewFatalError(protocol.ErrQueueOverflow, c.closeMsg).Frame().Encode())
	}
	c.write(protocol.NewControlFrame(protocol.ControlClose, &protocol.CloseMessage{Reason: c.closeReason, Message: c.closeMsg}).Encode())

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, c.closeReason.String()))
}

func (c *client) write(frame []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.BinaryMessage, frame)
}
