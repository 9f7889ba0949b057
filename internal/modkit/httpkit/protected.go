package httpkit

import (
	"net/http"

	"kydu/internal/platform/net/middleware"
)

// Protected groups routes under bearer auth, followed by any extra middleware
func Protected(r Router, p middleware.AuthPort, fn func(Router), mw ...func(http.Handler) http.Handler) {
	r.Group(func(gr Router) {
		gr.Use(Auth(p))
		if len(mw) > 0 {
			gr.Use(mw...)
		}
		fn(gr)
	})
}
