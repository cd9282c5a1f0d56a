// Package usercache holds recently-resolved participant details behind a
// fixed-capacity LRU, so the reducer's user lookups rarely leave the
// process.
package usercache

import (
	"container/list"
	"context"
	"log/slog"
	"sync"

	"github.com/mmynk/billsync/internal/models"
)

// DefaultCapacity bounds the cache when callers pass a non-positive size.
const DefaultCapacity = 128

// Fetcher loads user details on a cache miss.
type Fetcher interface {
	GetUsers(ctx context.Context, userIDs []string) ([]models.UserDetails, error)
}

// Cache is a fixed-capacity LRU of user details keyed by user id.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	fetch    Fetcher
}

// New creates a cache of the given capacity backed by the fetcher.
// The fetcher may be nil, in which case misses stay misses.
func New(capacity int, fetch Fetcher) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
		fetch:    fetch,
	}
}

// Resolve returns the details for a user id, consulting the cache first and
// falling back to the fetcher. Fetch failures are logged and reported as an
// unresolved user.
func (c *Cache) Resolve(ctx context.Context, userID string) (models.UserDetails, bool) {
	if user, ok := c.get(userID); ok {
		return user, true
	}
	if c.fetch == nil {
		return models.UserDetails{}, false
	}

	users, err := c.fetch.GetUsers(ctx, []string{userID})
	if err != nil {
		slog.Warn("User lookup failed", "user_id", userID, "error", err)
		return models.UserDetails{}, false
	}
	for _, u := range users {
		c.Put(u)
	}
	return c.get(userID)
}

// Put inserts or refreshes a user, evicting the least-recently-used entry
// when the cache is full.
func (c *Cache) Put(user models.UserDetails) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[user.ID]; ok {
		elem.Value = user
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(models.UserDetails).ID)
		}
	}
	c.entries[user.ID] = c.order.PushFront(user)
}

// Len returns the number of cached users.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) get(userID string) (models.UserDetails, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[userID]
	if !ok {
		return models.UserDetails{}, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(models.UserDetails), true
}
