package module

import (
	"time"

	"kydu/internal/platform/config"
)

// Options controls the delivery workers
type Options struct {
	Workers      int
	Queue        int
	RelayTimeout time.Duration
	PushTimeout  time.Duration

	// analytics sink, used only when clickhouse is configured
	SinkBatch    int
	SinkInterval time.Duration
}

// FromConfig reads with the DELIVERY_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("DELIVERY_")
	return Options{
		Workers:      c.MayInt("WORKERS", 4),
		Queue:        c.MayInt("QUEUE", 1024),
		RelayTimeout: c.MayDuration("RELAY_TIMEOUT", 2*time.Second),
		PushTimeout:  c.MayDuration("PUSH_TIMEOUT", 10*time.Second),
		SinkBatch:    c.MayInt("SINK_BATCH", 500),
		SinkInterval: c.MayDuration("SINK_INTERVAL", 2*time.Second),
	}
}
