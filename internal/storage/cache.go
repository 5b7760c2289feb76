package storage

import (
	"sync"

	"tap-redirect-engine/internal/engine"
)

// ProfileCache keeps resolved profiles in memory between data-change
// notifications. Profiles are immutable snapshots, so handing out the
// stored value is safe.
type ProfileCache struct {
	mu       sync.RWMutex
	profiles map[string]engine.Profile
}

func NewProfileCache() *ProfileCache {
	return &ProfileCache{profiles: map[string]engine.Profile{}}
}

func (c *ProfileCache) Get(id string) (engine.Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.profiles[id]
	return p, ok
}

func (c *ProfileCache) Put(p engine.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles[p.ID] = p
}

func (c *ProfileCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles = map[string]engine.Profile{}
}

func (c *ProfileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.profiles)
}
