package httpkit

import (
	"net/http"
	"time"

	"kydu/internal/platform/config"
	phttp "kydu/internal/platform/net/http"
	"kydu/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	CORS middleware.CORSOptions
	Slow time.Duration
}

// StackFromConfig reads CORS_ORIGINS and SLOW_REQUEST from c
func StackFromConfig(c config.Conf) StackOptions {
	return StackOptions{
		CORS: middleware.CORSOptions{
			AllowedOrigins:   c.MayCSV("CORS_ORIGINS", []string{"*"}),
			AllowCredentials: c.MayBool("CORS_CREDENTIALS", false),
		},
		Slow: c.MayDuration("SLOW_REQUEST", 500*time.Millisecond),
	}
}

// CommonStack is the baseline applied under /api/v1
// it carries no timeout so websocket upgrades are not cut short
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: o.Slow}),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.CORS(o.CORS),
		middleware.StripSlashes(),
	}
}

// Auth wires the auth middleware to the platform JSON writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.JSON)
}

// RateLimit wires a limiter to the platform JSON writer
func RateLimit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	return rl.Middleware(phttp.JSON)
}
