// Package delivery routes a payload to a user over their live session, falling
// back to push when they are offline or the relay fails
package delivery

import (
	"context"
	"time"

	"kydu/internal/core/notify"
	"kydu/internal/core/presence"
	"kydu/internal/platform/logger"
)

// Presence finds the live session of a user
type Presence interface {
	Lookup(userID string) (presence.Handle, bool)
}

// Tokens reads the stored device token; "" means none on file
type Tokens interface {
	PushToken(ctx context.Context, userID string) (string, error)
}

// Pusher sends one push notification
type Pusher interface {
	Send(ctx context.Context, deviceToken string, p notify.Payload) error
}

// Recorder observes every outcome
type Recorder interface {
	RecordDelivery(outcome string)
}

// Config bounds the relay and push attempts
type Config struct {
	RelayTimeout time.Duration
	PushTimeout  time.Duration
}

const (
	defaultRelayTimeout = 2 * time.Second
	defaultPushTimeout  = 10 * time.Second
)

// Router implements the relay then push algorithm; it holds no state
type Router struct {
	presence Presence
	tokens   Tokens
	pusher   Pusher
	rec      Recorder
	cfg      Config
}

// NewRouter builds a Router; rec may be nil
func NewRouter(p Presence, t Tokens, push Pusher, rec Recorder, cfg Config) *Router {
	if cfg.RelayTimeout <= 0 {
		cfg.RelayTimeout = defaultRelayTimeout
	}
	if cfg.PushTimeout <= 0 {
		cfg.PushTimeout = defaultPushTimeout
	}
	return &Router{presence: p, tokens: t, pusher: push, rec: rec, cfg: cfg}
}

// Deliver tries the live session first and falls back to push
// failures are logged and reported in the Outcome, never returned
func (r *Router) Deliver(ctx context.Context, recipientID string, p notify.Payload) Outcome {
	log := logger.C(ctx).With().
		Str("recipient_id", recipientID).
		Str("kind", string(p.Kind)).
		Str("gig_id", p.GigID).
		Logger()

	if h, ok := r.presence.Lookup(recipientID); ok {
		rctx, cancel := context.WithTimeout(ctx, r.cfg.RelayTimeout)
		err := h.Relay(rctx, p)
		cancel()
		if err == nil {
			return r.done(Outcome{Path: InSession})
		}
		log.Debug().Err(err).Str("session_id", h.ID()).Msg("relay failed, falling back to push")
	}

	token, err := r.tokens.PushToken(ctx, recipientID)
	if err != nil {
		log.Warn().Err(err).Msg("push token lookup failed")
		return r.done(Outcome{Path: Failed, Reason: ReasonTokenLookup})
	}
	if token == "" {
		log.Info().Msg("recipient offline with no push token")
		return r.done(Outcome{Path: Failed, Reason: ReasonNoToken})
	}

	pctx, cancel := context.WithTimeout(ctx, r.cfg.PushTimeout)
	defer cancel()
	if err := r.pusher.Send(pctx, token, p); err != nil {
		log.Warn().Err(err).Msg("push failed")
		return r.done(Outcome{Path: Failed, Reason: ReasonPush})
	}
	return r.done(Outcome{Path: ViaPush})
}

func (r *Router) done(o Outcome) Outcome {
	if r.rec != nil {
		r.rec.RecordDelivery(o.Path.String())
	}
	return o
}
