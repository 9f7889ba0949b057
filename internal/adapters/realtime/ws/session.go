package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"kydu/internal/core/notify"
	"kydu/internal/platform/logger"
)

// ErrClosed is returned when sending on a closed session
var ErrClosed = errors.New("ws: session closed")

// Session is one authenticated websocket connection
// every write goes through its queue and a single writer goroutine
type Session struct {
	id     string
	userID string
	conn   *websocket.Conn
	cfg    Config
	log    logger.Logger

	send chan []byte
	done chan struct{}

	closeOnce sync.Once
	closeCode int
	closeMsg  string
}

func newSession(conn *websocket.Conn, userID string, cfg Config, log logger.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:     id,
		userID: userID,
		conn:   conn,
		cfg:    cfg,
		log:    log.With().Str("session_id", id).Str("user_id", userID).Logger(),
		send:   make(chan []byte, cfg.SendQueue),
		done:   make(chan struct{}),
	}
}

// ID identifies the connection
func (s *Session) ID() string { return s.id }

// UserID is the authenticated owner of the connection
func (s *Session) UserID() string { return s.userID }

// Done is closed once the session starts shutting down
func (s *Session) Done() <-chan struct{} { return s.done }

// Relay queues p for the writer; queueing is success
func (s *Session) Relay(ctx context.Context, p notify.Payload) error {
	return s.Send(ctx, Frame{Type: string(p.Kind), GigID: p.GigID, Payload: p})
}

// Send queues f, waiting for room until ctx ends
func (s *Session) Send(ctx context.Context, f Frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.send <- b:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends the session with a close frame; later calls are ignored
func (s *Session) Close(code int, reason string) {
	s.closeOnce.Do(func() {
		s.closeCode, s.closeMsg = code, reason
		close(s.done)
	})
}

// writeLoop is the only writer on conn
func (s *Session) writeLoop() {
	ping := time.NewTicker(s.cfg.PingPeriod)
	defer func() {
		ping.Stop()
		_ = s.conn.Close()
	}()
	for {
		select {
		case b := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				s.log.Debug().Err(err).Msg("write failed")
				s.Close(websocket.CloseAbnormalClosure, "")
				return
			}
		case <-ping.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteTimeout)); err != nil {
				s.Close(websocket.CloseAbnormalClosure, "")
				return
			}
		case <-s.done:
			code := s.closeCode
			if code == 0 {
				code = websocket.CloseNormalClosure
			}
			if code != websocket.CloseAbnormalClosure {
				msg := websocket.FormatCloseMessage(code, s.closeMsg)
				_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.cfg.WriteTimeout))
			}
			return
		}
	}
}

// readLoop decodes frames until the peer goes away or the session closes
func (s *Session) readLoop(ctx context.Context, handle func(context.Context, *Session, Frame)) {
	s.conn.SetReadLimit(s.cfg.MaxMessage)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Err(err).Msg("read ended")
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))

		var f Frame
		if err := json.Unmarshal(data, &f); err != nil || f.Type == "" {
			_ = s.Send(ctx, ErrorFrame("", "bad_frame", "frame must be a JSON object with a type"))
			continue
		}
		f.Raw = data
		if f.Type == TypePing {
			_ = s.Send(ctx, Frame{Type: TypePong, ID: f.ID})
			continue
		}
		handle(ctx, s, f)
	}
}
