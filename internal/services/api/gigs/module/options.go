package module

import (
	"time"

	"kydu/internal/platform/config"
	"kydu/internal/services/api/gigs/repo"
)

// Options are the GIGS_ settings
type Options struct {
	Timeout       time.Duration // per request bound on gig routes
	LockTimeoutMS int           // row lock wait for close and delete
}

// FromConfig reads GIGS_* values from process config
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("GIGS_")
	return Options{
		Timeout:       c.MayDuration("TIMEOUT", 10*time.Second),
		LockTimeoutMS: c.MayInt("LOCK_TIMEOUT_MS", repo.DefaultLockTimeoutMS),
	}
}
