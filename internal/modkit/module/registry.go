package module

import (
	"fmt"
	"sync"
)

// Registry maps module names to their exported port sets
type Registry struct {
	mu  sync.RWMutex
	reg map[string]any
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry { return &Registry{reg: map[string]any{}} }

// Register stores a port set under name, replacing any previous one
func (g *Registry) Register(name string, ports any) {
	g.mu.Lock()
	g.reg[name] = ports
	g.mu.Unlock()
}

// Lookup returns the raw port set for name
func (g *Registry) Lookup(name string) (any, bool) {
	g.mu.RLock()
	v, ok := g.reg[name]
	g.mu.RUnlock()
	return v, ok
}

// Names lists registered modules in no particular order
func (g *Registry) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.reg))
	for k := range g.reg {
		out = append(out, k)
	}
	return out
}

// Reset clears the registry
func (g *Registry) Reset() {
	g.mu.Lock()
	g.reg = map[string]any{}
	g.mu.Unlock()
}

// PortsIn fetches and type asserts the port set registered under name
func PortsIn[T any](g *Registry, name string) (T, bool) {
	v, ok := g.Lookup(name)
	if !ok {
		var zero T
		return zero, false
	}
	out, ok := v.(T)
	return out, ok
}

// MustPortsIn panics when name is missing or holds another type
func MustPortsIn[T any](g *Registry, name string) T {
	v, ok := PortsIn[T](g, name)
	if !ok {
		var zero T
		panic(fmt.Sprintf("module: %s has no ports of type %T", name, zero))
	}
	return v
}

var std = NewRegistry()

// Register stores ports in the process wide registry
func Register(name string, ports any) { std.Register(name, ports) }

// PortsAs reads from the process wide registry
func PortsAs[T any](name string) (T, bool) { return PortsIn[T](std, name) }

// Reset clears the process wide registry
func Reset() { std.Reset() }
