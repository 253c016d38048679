package bot

import "sync"

// sessionRegistry maps session ids to live controllers so component
// interactions can be routed. Unknown ids (expired or closed sessions)
// simply find no controller.
type sessionRegistry struct {
	mu sync.Mutex
	m  map[string]*Controller
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{m: make(map[string]*Controller)}
}

func (r *sessionRegistry) add(id string, c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[id] = c
}

func (r *sessionRegistry) get(id string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m[id]
}

func (r *sessionRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
}
