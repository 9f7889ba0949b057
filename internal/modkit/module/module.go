// Package module defines the contract every API module satisfies and the
// port lookups used to wire modules together at startup
package module

import (
	phttp "kydu/internal/platform/net/http"
)

// Module mounts routes and exposes ports for other modules
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
