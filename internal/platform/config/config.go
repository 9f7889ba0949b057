// Package config reads service configuration from environment variables
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"kydu/internal/platform/logger"
)

// Conf is a namespaced view over the environment, e.g. Prefix("AUTH_")
type Conf struct{ prefix string }

// New returns the root view
func New() Conf { return Conf{} }

// Prefix returns a child view with p appended to the prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

// value returns the trimmed value and whether it was set to something non blank
func (c Conf) value(k string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(c.key(k)))
	return v, v != ""
}

func (c Conf) missing(k string) {
	logger.Get().Panic().Str("key", c.key(k)).Msg("missing required env")
}

func (c Conf) invalid(k, v, want string) {
	logger.Get().Panic().Str("key", c.key(k)).Str("value", v).Msg("invalid env value, want " + want)
}

// MustString panics when key is unset or blank
func (c Conf) MustString(key string) string {
	v, ok := c.value(key)
	if !ok {
		c.missing(key)
	}
	return v
}

// MustInt panics when key is unset or not an int
func (c Conf) MustInt(key string) int {
	s := c.MustString(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		c.invalid(key, s, "int")
	}
	return n
}

// MustDuration panics when key is unset or not a Go duration
func (c Conf) MustDuration(key string) time.Duration {
	s := c.MustString(key)
	d, err := time.ParseDuration(s)
	if err != nil {
		c.invalid(key, s, "duration like 250ms or 2h")
	}
	return d
}

// MustSecret panics when key is unset or shorter than minLen bytes
// the value itself is never logged
func (c Conf) MustSecret(key string, minLen int) string {
	v := c.MustString(key)
	if len(v) < minLen {
		logger.Get().Panic().Str("key", c.key(key)).Int("min_len", minLen).Msg("secret too short")
	}
	return v
}

// Require panics on the first key that is unset
func (c Conf) Require(keys ...string) {
	for _, k := range keys {
		if _, ok := c.value(k); !ok {
			c.missing(k)
		}
	}
}

// MayString returns def when key is unset
func (c Conf) MayString(key, def string) string {
	if v, ok := c.value(key); ok {
		return v
	}
	return def
}

// MayInt returns def when key is unset, and warns when it is malformed
func (c Conf) MayInt(key string, def int) int {
	s, ok := c.value(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Int("default", def).Msg("invalid int; using default")
		return def
	}
	return n
}

// MayFloat64 returns def when key is unset, and warns when it is malformed
func (c Conf) MayFloat64(key string, def float64) float64 {
	s, ok := c.value(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Float64("default", def).Msg("invalid float; using default")
		return def
	}
	return f
}

// MayBool returns def when key is unset, and warns when it is malformed
func (c Conf) MayBool(key string, def bool) bool {
	s, ok := c.value(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Bool("default", def).Msg("invalid bool; using default")
		return def
	}
	return b
}

// MayDuration returns def when key is unset, and warns when it is malformed
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	s, ok := c.value(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Dur("default", def).Msg("invalid duration; using default")
		return def
	}
	return d
}

// MayCSV splits a comma separated value, dropping blanks
func (c Conf) MayCSV(key string, def []string) []string {
	s, ok := c.value(key)
	if !ok {
		return def
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the value when it is one of allowed (case insensitive), def when unset, and panics otherwise
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return strings.ToLower(v)
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
