// internal/pkg/authsession/registry.go
package authsession

import "sync"

// Registry tracks one controller per live admin session token.
type Registry struct {
	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewRegistry() *Registry {
	return &Registry{controllers: make(map[string]*Controller)}
}

func (r *Registry) Get(token string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[token]
	return c, ok
}

func (r *Registry) Put(token string, c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.controllers[token] = c
}

// Remove drops and closes the controller for token, if any.
func (r *Registry) Remove(token string) {
	r.mu.Lock()
	c, ok := r.controllers[token]
	delete(r.controllers, token)
	r.mu.Unlock()

	if ok {
		c.Close()
	}
}

// CloseAll tears down every tracked controller. Called on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	controllers := make([]*Controller, 0, len(r.controllers))
	for _, c := range r.controllers {
		controllers = append(controllers, c)
	}
	r.controllers = make(map[string]*Controller)
	r.mu.Unlock()

	for _, c := range controllers {
		c.Close()
	}
}
