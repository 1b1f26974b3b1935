package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Local is an in-process cache with TTL expiry and a size bound.
// The least recently used entry is evicted once maxEntries is exceeded.
type Local struct {
	mu         sync.Mutex
	maxEntries int
	items      map[string]*list.Element
	lru        *list.List
	now        func() time.Time

	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

type localItem struct {
	key       string
	data      []byte
	expiresAt time.Time
}

// NewLocal creates a Local cache; maxEntries <= 0 means unbounded
func NewLocal(maxEntries int) *Local {
	return &Local{
		maxEntries: maxEntries,
		items:      make(map[string]*list.Element),
		lru:        list.New(),
		now:        time.Now,
	}
}

func (c *Local) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.lookup(key)
	return ok, nil
}

func (c *Local) Set(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	data, ok, err := encode(key, value)
	if err != nil || !ok {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	item := &localItem{key: key, data: data, expiresAt: c.now().Add(effectiveTTL(ttl))}
	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return true, nil
	}

	c.items[key] = c.lru.PushFront(item)
	if c.maxEntries > 0 && c.lru.Len() > c.maxEntries {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
	return true, nil
}

func (c *Local) Get(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	item, ok := c.lookup(key)
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := decode(key, item.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Local) Remove(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *Local) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// lookup must be called with mu held
func (c *Local) lookup(key string) (*localItem, bool) {
	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	item := elem.Value.(*localItem)
	if c.now().After(item.expiresAt) {
		c.removeElement(elem)
		return nil, false
	}
	c.lru.MoveToFront(elem)
	return item, true
}

func (c *Local) removeElement(elem *list.Element) {
	item := elem.Value.(*localItem)
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

// CleanExpired removes all expired entries and returns how many were dropped
func (c *Local) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var expired []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*localItem).expiresAt) {
			expired = append(expired, elem)
		}
	}
	for _, elem := range expired {
		c.removeElement(elem)
	}
	return len(expired)
}

// StartCleanup drops expired entries every interval until Stop is called
func (c *Local) StartCleanup(interval time.Duration) {
	c.mu.Lock()
	if c.stopCleanup != nil {
		c.mu.Unlock()
		return
	}
	c.stopCleanup = make(chan struct{})
	c.cleanupDone = make(chan struct{})
	c.mu.Unlock()

	go func() {
		defer close(c.cleanupDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.CleanExpired()
			case <-c.stopCleanup:
				return
			}
		}
	}()
}

// Stop ends the cleanup goroutine started by StartCleanup
func (c *Local) Stop() {
	c.mu.Lock()
	stop := c.stopCleanup
	c.stopCleanup = nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
		<-c.cleanupDone
	}
}
