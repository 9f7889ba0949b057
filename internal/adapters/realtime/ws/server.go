// Package ws is the websocket realtime transport: authenticate once at upgrade,
// then run one reader and one writer per connection
package ws

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"kydu/internal/platform/config"
	"kydu/internal/platform/logger"
	pnet "kydu/internal/platform/net"
	phttp "kydu/internal/platform/net/http"
)

// Config tunes sessions
type Config struct {
	SendQueue      int
	WriteTimeout   time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessage     int64
	AllowedOrigins []string
}

// FromConfig reads REALTIME_ style keys from c
func FromConfig(c config.Conf) Config {
	return Config{
		SendQueue:      c.MayInt("SEND_QUEUE", 64),
		WriteTimeout:   c.MayDuration("WRITE_TIMEOUT", 10*time.Second),
		PongWait:       c.MayDuration("PONG_WAIT", 60*time.Second),
		PingPeriod:     c.MayDuration("PING_PERIOD", 50*time.Second),
		MaxMessage:     int64(c.MayInt("MAX_MESSAGE", 16<<10)),
		AllowedOrigins: c.MayCSV("ALLOWED_ORIGINS", []string{"*"}),
	}
}

func (c Config) withDefaults() Config {
	if c.SendQueue <= 0 {
		c.SendQueue = 64
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.PingPeriod <= 0 || c.PingPeriod >= c.PongWait {
		c.PingPeriod = c.PongWait * 9 / 10
	}
	if c.MaxMessage <= 0 {
		c.MaxMessage = 16 << 10
	}
	return c
}

// Authenticator resolves the caller of an upgrade request
type Authenticator func(r *http.Request) (userID string, err error)

// Hooks connect sessions to the application
// Open runs before any frame is read; Close runs once after the reader exits
type Hooks struct {
	Open    func(s *Session)
	Close   func(s *Session)
	Message func(ctx context.Context, s *Session, f Frame)
}

// Server upgrades requests and owns the live sessions
type Server struct {
	cfg      Config
	auth     Authenticator
	hooks    Hooks
	upgrader websocket.Upgrader
	log      logger.Logger

	mu       sync.Mutex
	sessions map[*Session]struct{}
	wg       sync.WaitGroup
}

// NewServer builds a transport
func NewServer(cfg Config, auth Authenticator, hooks Hooks) *Server {
	cfg = cfg.withDefaults()
	s := &Server{
		cfg:      cfg,
		auth:     auth,
		hooks:    hooks,
		log:      *logger.Named("realtime"),
		sessions: make(map[*Session]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(s.cfg.AllowedOrigins, "*") {
		return true
	}
	return slices.Contains(s.cfg.AllowedOrigins, origin)
}

// ServeHTTP authenticates, upgrades and blocks for the life of the session
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid, err := s.auth(r)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already answered
		s.log.Debug().Err(err).Msg("upgrade failed")
		return
	}

	ctx := pnet.WithUser(context.WithoutCancel(r.Context()), uid)
	ctx = logger.WithRequest(ctx, pnet.RequestID(ctx), uid)
	sess := newSession(conn, uid, s.cfg, *logger.C(ctx))

	s.wg.Add(1)
	defer s.wg.Done()
	s.track(sess, true)
	defer s.track(sess, false)

	if s.hooks.Open != nil {
		s.hooks.Open(sess)
	}
	go sess.writeLoop()

	handle := s.hooks.Message
	if handle == nil {
		handle = func(ctx context.Context, sess *Session, f Frame) {
			_ = sess.Send(ctx, ErrorFrame(f.ID, "unknown_type", "unsupported frame type "+f.Type))
		}
	}
	sess.readLoop(ctx, handle)

	sess.Close(websocket.CloseNormalClosure, "")
	if s.hooks.Close != nil {
		s.hooks.Close(sess)
	}
}

func (s *Server) track(sess *Session, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.sessions[sess] = struct{}{}
	} else {
		delete(s.sessions, sess)
	}
}

// Len reports the sessions this server is serving
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Shutdown sends going-away to every session and waits for their readers
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for sess := range s.sessions {
		sess.Close(websocket.CloseGoingAway, "server shutting down")
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() { s.wg.Wait(); close(done) }()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
