package linkcache

import (
	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Policy selects how a cache level stores its keys and what it evicts when
// full.
type Policy int

const (
	// PolicyBounded is an unordered map. Inserting a new key into a full level
	// evicts an arbitrary entry.
	PolicyBounded Policy = iota
	// PolicyLRU evicts the least recently used key.
	PolicyLRU
	// PolicyContentType keys entries by media type. The empty key is the
	// wildcard "any type".
	PolicyContentType
)

// LevelSpec describes one level of a Cache.
type LevelSpec struct {
	Policy   Policy
	Capacity int
}

func Bounded(capacity int) LevelSpec {
	return LevelSpec{Policy: PolicyBounded, Capacity: capacity}
}

func LRU(capacity int) LevelSpec {
	return LevelSpec{Policy: PolicyLRU, Capacity: capacity}
}

func ContentType(capacity int) LevelSpec {
	return LevelSpec{Policy: PolicyContentType, Capacity: capacity}
}

// level is one node of the key tree. Values are child levels, except at the
// innermost level where they are the cached strings. Levels are not
// synchronized; Cache serializes access.
type level interface {
	get(key string) (any, bool)
	put(key string, value any)
	remove(key string)
	len() int
}

func newLevel(spec LevelSpec, onEvict func()) level {
	capacity := spec.Capacity
	if capacity < 1 {
		capacity = 1
	}
	switch spec.Policy {
	case PolicyLRU:
		return newLRULevel(capacity, onEvict)
	case PolicyContentType:
		return newContentTypeLevel(capacity, onEvict)
	default:
		return newBoundedLevel(capacity, onEvict)
	}
}

type boundedLevel struct {
	capacity int
	entries  map[string]any
	onEvict  func()
}

func newBoundedLevel(capacity int, onEvict func()) *boundedLevel {
	return &boundedLevel{
		capacity: capacity,
		entries:  make(map[string]any, capacity),
		onEvict:  onEvict,
	}
}

func (l *boundedLevel) get(key string) (any, bool) {
	v, ok := l.entries[key]
	return v, ok
}

func (l *boundedLevel) put(key string, value any) {
	if _, ok := l.entries[key]; !ok && len(l.entries) >= l.capacity {
		for victim := range l.entries {
			delete(l.entries, victim)
			l.onEvict()
			break
		}
	}
	l.entries[key] = value
}

func (l *boundedLevel) remove(key string) {
	delete(l.entries, key)
}

func (l *boundedLevel) len() int {
	return len(l.entries)
}

type lruLevel struct {
	entries *simplelru.LRU[string, any]
	// removing is set while an explicit remove runs, so that the eviction
	// callback only counts capacity evictions.
	removing bool
}

func newLRULevel(capacity int, onEvict func()) *lruLevel {
	l := &lruLevel{}
	// NewLRU only fails for a non-positive size.
	l.entries, _ = simplelru.NewLRU[string, any](capacity, func(string, any) {
		if !l.removing {
			onEvict()
		}
	})
	return l
}

func (l *lruLevel) get(key string) (any, bool) {
	return l.entries.Get(key)
}

func (l *lruLevel) put(key string, value any) {
	l.entries.Add(key, value)
}

func (l *lruLevel) remove(key string) {
	l.removing = true
	l.entries.Remove(key)
	l.removing = false
}

func (l *lruLevel) len() int {
	return l.entries.Len()
}
