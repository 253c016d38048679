package bot

import (
	"sync"

	"gitea.jw6.us/james/coursebot/internal/schedule"
)

// FetchCache holds each user's most recent successful fetch for the
// reminder command to index into. An entry lives until that user's next
// successful fetch replaces it wholesale.
type FetchCache struct {
	mu     sync.RWMutex
	byUser map[string][]schedule.Event
}

func NewFetchCache() *FetchCache {
	return &FetchCache{byUser: make(map[string][]schedule.Event)}
}

// Put replaces the user's cached batch.
func (c *FetchCache) Put(userID string, events []schedule.Event) {
	cp := make([]schedule.Event, len(events))
	copy(cp, events)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.byUser[userID] = cp
}

// Get returns a copy of the user's cached batch, if any.
func (c *FetchCache) Get(userID string) ([]schedule.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	events, ok := c.byUser[userID]
	if !ok {
		return nil, false
	}
	cp := make([]schedule.Event, len(events))
	copy(cp, events)
	return cp, true
}
