package news

import (
	"strings"
	"sync"
)

// Registry hands out one Client per API key so each key keeps its
// circuit breaker between refreshes.
type Registry struct {
	opts Options

	mu      sync.Mutex
	clients map[string]*Client
}

func NewRegistry(opts Options) *Registry {
	return &Registry{opts: opts, clients: make(map[string]*Client)}
}

// For returns the client bound to apiKey.
func (r *Registry) For(apiKey string) *Client {
	apiKey = strings.TrimSpace(apiKey)

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[apiKey]; ok {
		return c
	}
	c := NewClient(apiKey, r.opts)
	r.clients[apiKey] = c
	return c
}
