// Package actions holds the handlers hotkeys are bound to. Handlers reach
// the desktop only through the backend interfaces in this package.
package actions

import (
	"sort"
	"sync"

	"github.com/taglme/macrokeys/internal/hotkey"
)

// Info describes a registered action for listings.
type Info struct {
	Name  string
	Usage string
}

// Catalog maps action names to handlers. It implements hotkey.Resolver.
type Catalog struct {
	mu       sync.RWMutex
	handlers map[string]hotkey.Handler
	usage    map[string]string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		handlers: make(map[string]hotkey.Handler),
		usage:    make(map[string]string),
	}
}

// Register adds or replaces the handler for name.
func (c *Catalog) Register(name, usage string, h hotkey.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[name] = h
	c.usage[name] = usage
}

// Resolve implements hotkey.Resolver.
func (c *Catalog) Resolve(name string) (hotkey.Handler, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.handlers[name]
	return h, ok
}

// List returns the registered actions sorted by name.
func (c *Catalog) List() []Info {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Info, 0, len(c.handlers))
	for name := range c.handlers {
		out = append(out, Info{Name: name, Usage: c.usage[name]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
