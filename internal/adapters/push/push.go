// Package push selects the push dispatcher the delivery router falls back to
package push

import (
	"context"

	"kydu/internal/adapters/push/fcm"
	"kydu/internal/core/delivery"
	"kydu/internal/core/notify"
	"kydu/internal/platform/config"
	perr "kydu/internal/platform/errors"
	"kydu/internal/platform/logger"
)

// Providers known to New
const (
	ProviderFCM  = "fcm"
	ProviderLog  = "log"
	ProviderNone = "none"
)

// New builds the pusher named by PROVIDER under c (normally PUSH_)
// fcm needs credentials; log and none never reach a device. Unset means
// none, so offline deliveries are counted as failed until fcm is configured.
func New(ctx context.Context, c config.Conf, obs fcm.Observer) (delivery.Pusher, error) {
	switch c.MayEnum("PROVIDER", ProviderNone, ProviderFCM, ProviderLog, ProviderNone) {
	case ProviderFCM:
		return fcm.New(ctx, fcm.FromConfig(c), obs)
	case ProviderLog:
		return NewLog(*logger.Named("push")), nil
	default:
		return Disabled{}, nil
	}
}

// Log writes each push to the log and reports success; opt in for local runs
type Log struct {
	log logger.Logger
}

// NewLog returns a Log pusher writing to l
func NewLog(l logger.Logger) *Log { return &Log{log: l} }

// Send logs the payload
func (l *Log) Send(_ context.Context, token string, p notify.Payload) error {
	l.log.Info().
		Str("token_tail", tail(token)).
		Str("kind", string(p.Kind)).
		Str("gig_id", p.GigID).
		Str("title", p.Title).
		Msg("push (log only)")
	return nil
}

// Disabled refuses every push so deliveries to offline users fail fast
type Disabled struct{}

// Send always fails
func (Disabled) Send(context.Context, string, notify.Payload) error {
	return perr.Unavailablef("push disabled")
}

func tail(tok string) string {
	if len(tok) <= 4 {
		return "****"
	}
	return "…" + tok[len(tok)-4:]
}
