package igra

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// archiveCache keeps the most recently used uncompressed station files so
// the hour retry loop does not download the same archive up to eight times.
// Entries older than ttl are treated as absent.
type archiveCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock

	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
}

type entry struct {
	station   string
	text      []byte
	fetchedAt time.Time
	prev      *entry
	next      *entry
}

func newArchiveCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) *archiveCache {
	return &archiveCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

func (c *archiveCache) get(station string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[station]
	if !ok {
		return nil, false
	}
	if c.clock.Since(e.fetchedAt) > c.ttl {
		delete(c.entries, station)
		c.remove(e)
		return nil, false
	}
	c.moveToFront(e)
	return e.text, true
}

func (c *archiveCache) put(station string, text []byte) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if e, ok := c.entries[station]; ok {
		e.text = text
		e.fetchedAt = now
		c.moveToFront(e)
		return
	}

	e := &entry{station: station, text: text, fetchedAt: now}
	c.entries[station] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *archiveCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *archiveCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *archiveCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *archiveCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *archiveCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.station)
	c.remove(c.tail)
}
