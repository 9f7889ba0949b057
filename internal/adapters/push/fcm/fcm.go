// Package fcm sends push notifications through Firebase Cloud Messaging
package fcm

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"kydu/internal/core/notify"
	"kydu/internal/platform/config"
	perr "kydu/internal/platform/errors"
	"kydu/internal/platform/logger"
)

const defaultTimeout = 10 * time.Second

// Config selects the service account and send behaviour
// either CredentialsFile or the ProjectID, ClientEmail and PrivateKey triple
type Config struct {
	CredentialsFile string
	ProjectID       string
	ClientEmail     string
	PrivateKey      string
	Timeout         time.Duration
	DryRun          bool
}

// FromConfig reads FCM_* keys from c, typically prefixed PUSH_
func FromConfig(c config.Conf) Config {
	f := c.Prefix("FCM_")
	return Config{
		CredentialsFile: f.MayString("CREDENTIALS_FILE", ""),
		ProjectID:       f.MayString("PROJECT_ID", ""),
		ClientEmail:     f.MayString("CLIENT_EMAIL", ""),
		PrivateKey:      strings.ReplaceAll(f.MayString("PRIVATE_KEY", ""), `\n`, "\n"),
		Timeout:         f.MayDuration("TIMEOUT", defaultTimeout),
		DryRun:          f.MayBool("DRY_RUN", false),
	}
}

// sender is the slice of *messaging.Client the adapter uses
type sender interface {
	Send(ctx context.Context, m *messaging.Message) (string, error)
	SendDryRun(ctx context.Context, m *messaging.Message) (string, error)
}

// Observer sees the provider round trip
type Observer interface {
	ObservePush(d time.Duration)
}

// Client implements the push dispatcher over FCM
type Client struct {
	msg     sender
	timeout time.Duration
	dryRun  bool
	obs     Observer
	log     logger.Logger
	now     func() time.Time
}

// New initialises the firebase app and its messaging client
func New(ctx context.Context, cfg Config, obs Observer) (*Client, error) {
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "firebase app")
	}
	m, err := app.Messaging(ctx)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "firebase messaging")
	}
	return newClient(m, cfg, obs), nil
}

func newClient(m sender, cfg Config, obs Observer) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		msg:     m,
		timeout: cfg.Timeout,
		dryRun:  cfg.DryRun,
		obs:     obs,
		log:     *logger.Named("fcm"),
		now:     time.Now,
	}
}

func clientOptions(cfg Config) ([]option.ClientOption, error) {
	if cfg.CredentialsFile != "" {
		return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}, nil
	}
	if cfg.ClientEmail == "" || cfg.PrivateKey == "" {
		// application default credentials
		return nil, nil
	}
	raw, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   cfg.ProjectID,
		"client_email": cfg.ClientEmail,
		"private_key":  cfg.PrivateKey,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "encode service account")
	}
	return []option.ClientOption{option.WithCredentialsJSON(raw)}, nil
}

// Message builds the FCM message for p
func Message(token string, p notify.Payload) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data: p.Flatten(),
		Android: &messaging.AndroidConfig{
			Priority:    "high",
			CollapseKey: p.GigID,
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: &messaging.APNSPayload{Aps: &messaging.Aps{Sound: "default"}},
		},
	}
}

// Send pushes p to token once; the caller owns any retry policy
func (c *Client) Send(ctx context.Context, token string, p notify.Payload) error {
	if token == "" {
		return perr.InvalidArgf("empty device token")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := c.now()
	var (
		id  string
		err error
	)
	if c.dryRun {
		id, err = c.msg.SendDryRun(ctx, Message(token, p))
	} else {
		id, err = c.msg.Send(ctx, Message(token, p))
	}
	if c.obs != nil {
		c.obs.ObservePush(c.now().Sub(start))
	}
	if err != nil {
		return classify(err)
	}
	c.log.Debug().Str("message_id", id).Str("kind", string(p.Kind)).Msg("push sent")
	return nil
}

// classify maps provider failures onto error codes
func classify(err error) error {
	switch {
	case messaging.IsUnregistered(err), messaging.IsInvalidArgument(err), messaging.IsSenderIDMismatch(err):
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "push token rejected")
	case messaging.IsQuotaExceeded(err):
		return perr.Wrap(err, perr.ErrorCodeTooManyRequests, "push quota exceeded")
	case messaging.IsUnavailable(err), messaging.IsInternal(err):
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "push provider unavailable")
	default:
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "push failed")
	}
}
