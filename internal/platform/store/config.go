package store

import (
	"time"

	"kydu/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int
	PingTimeout    time.Duration
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string
	// Role is reported to the server in client info
	Role string
}

// PGFromConfig reads a PGConfig from a prefixed view such as SERVICE_PGSQL_
func PGFromConfig(c config.Conf) PGConfig {
	pc := PGConfig{
		Enabled:        c.MayBool("ENABLED", true),
		MaxConns:       int32(c.MayInt("MAX_CONNS", 10)),
		LogSQL:         c.MayBool("LOG_SQL", false),
		SlowQueryMs:    c.MayInt("SLOW_MS", 250),
		ConnectRetries: c.MayInt("CONNECT_RETRIES", 20),
		PingTimeout:    c.MayDuration("PING_TIMEOUT", 3*time.Second),
	}
	if pc.Enabled {
		pc.URL = c.MustString("URL")
	}
	return pc
}

// CHFromConfig reads a CHConfig from a prefixed view such as SERVICE_CLICKHOUSE_
func CHFromConfig(c config.Conf, role string) CHConfig {
	cc := CHConfig{Enabled: c.MayBool("ENABLED", false), Role: role}
	if cc.Enabled {
		cc.URL = c.MustString("URL")
	}
	return cc
}
