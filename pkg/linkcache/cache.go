package linkcache

import "sync"

// Cache is a tree of levels addressed by a fixed-length key path. Every level
// has its own capacity and eviction policy; the innermost level holds the
// cached strings. A Cache is safe for concurrent use.
type Cache struct {
	name      string
	specs     []LevelSpec
	mu        sync.Mutex
	root      level
	evictions int
}

// NewCache creates a cache with one level per spec, outermost first.
func NewCache(name string, specs ...LevelSpec) *Cache {
	if len(specs) == 0 {
		panic("linkcache: a cache needs at least one level")
	}
	c := &Cache{name: name, specs: specs}
	c.root = c.newLevel(0)
	return c
}

func (c *Cache) Name() string {
	return c.name
}

// Depth is the number of keys in a full key path.
func (c *Cache) Depth() int {
	return len(c.specs)
}

// Put stores value under keys. Missing trailing keys are the empty key;
// surplus keys are ignored.
func (c *Cache) Put(value string, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(value, keys)
}

// Get returns the value stored under keys.
func (c *Cache) Get(keys ...string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.get(keys)
}

// Remove drops the subtree addressed by the key prefix. Without keys the
// whole cache is cleared.
func (c *Cache) Remove(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(keys)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.root = c.newLevel(0)
}

// Len counts the entries of the level addressed by the key prefix. Len()
// counts the outermost level.
func (c *Cache) Len(keys ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.walk(keys)
	if !ok {
		return 0
	}
	return l.len()
}

// Evictions returns how many entries were dropped to honour a capacity.
func (c *Cache) Evictions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictions
}

// Batch runs fn with the cache locked. Readers observe either none or all of
// the changes made through the Batch.
func (c *Cache) Batch(fn func(b *Batch)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&Batch{c: c})
}

// Batch applies changes to a locked Cache. It is only valid inside the
// function passed to Cache.Batch.
type Batch struct {
	c *Cache
}

func (b *Batch) Put(value string, keys ...string) {
	b.c.put(value, keys)
}

func (b *Batch) Remove(keys ...string) {
	b.c.remove(keys)
}

func (c *Cache) newLevel(depth int) level {
	return newLevel(c.specs[depth], func() { c.evictions++ })
}

func (c *Cache) key(keys []string, depth int) string {
	if depth < len(keys) {
		return keys[depth]
	}
	return ""
}

func (c *Cache) put(value string, keys []string) {
	l := c.root
	last := len(c.specs) - 1
	for depth := 0; depth < last; depth++ {
		k := c.key(keys, depth)
		child, ok := l.get(k)
		if !ok {
			child = c.newLevel(depth + 1)
			l.put(k, child)
		}
		l = child.(level)
	}
	l.put(c.key(keys, last), value)
}

func (c *Cache) get(keys []string) (string, bool) {
	l := c.root
	last := len(c.specs) - 1
	for depth := 0; depth < last; depth++ {
		child, ok := l.get(c.key(keys, depth))
		if !ok {
			return "", false
		}
		l = child.(level)
	}
	v, ok := l.get(c.key(keys, last))
	if !ok {
		return "", false
	}
	return v.(string), true
}

// walk returns the level below the key prefix without creating anything.
func (c *Cache) walk(keys []string) (level, bool) {
	if len(keys) >= len(c.specs) {
		return nil, false
	}
	l := c.root
	for _, k := range keys {
		child, ok := l.get(k)
		if !ok {
			return nil, false
		}
		l = child.(level)
	}
	return l, true
}

func (c *Cache) remove(keys []string) {
	if len(keys) == 0 {
		c.root = c.newLevel(0)
		return
	}
	if len(keys) > len(c.specs) {
		keys = keys[:len(c.specs)]
	}
	parent, ok := c.walk(keys[:len(keys)-1])
	if !ok {
		return
	}
	parent.remove(keys[len(keys)-1])
}
