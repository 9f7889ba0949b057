package module

import (
	"kydu/internal/platform/config"
	"kydu/internal/services/api/accounts/service"
)

// Options are the AUTH_ settings accounts reads besides the token ones
type Options struct {
	BcryptCost int
	AlertLimit int
}

// FromConfig reads with the AUTH_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("AUTH_")
	return Options{
		BcryptCost: c.MayInt("BCRYPT_COST", service.DefaultCost),
		AlertLimit: c.MayInt("ALERT_LIMIT", service.DefaultAlertLimit),
	}
}
