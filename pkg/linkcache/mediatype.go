package linkcache

import (
	"mime"
	"strings"
)

type mediaType struct {
	base   string
	params map[string]string
}

func parseMediaType(s string) mediaType {
	base, params, err := mime.ParseMediaType(s)
	if err != nil {
		// Keep whatever precedes the parameters; servers are not always
		// strict about media type syntax.
		base, _, _ = strings.Cut(s, ";")
		params = nil
	}
	mt := mediaType{base: strings.ToLower(strings.TrimSpace(base))}
	if len(params) > 0 {
		mt.params = make(map[string]string, len(params))
		for k, v := range params {
			mt.params[strings.ToLower(k)] = strings.ToLower(v)
		}
	}
	return mt
}

// matches reports whether a stored media type satisfies a requested one: the
// base types are equal and every requested parameter has the same value.
func (stored mediaType) matches(requested mediaType) bool {
	if stored.base != requested.base {
		return false
	}
	for k, v := range requested.params {
		if stored.params[k] != v {
			return false
		}
	}
	return true
}

type contentTypeEntry struct {
	key   string
	mt    mediaType
	value any
}

// contentTypeLevel holds the few representations of one relation, e.g. the
// feed and the tree flavour of a "down" link. Entries are kept in insertion
// order and the oldest is evicted when full.
type contentTypeLevel struct {
	capacity int
	entries  []contentTypeEntry
	onEvict  func()
}

func newContentTypeLevel(capacity int, onEvict func()) *contentTypeLevel {
	return &contentTypeLevel{capacity: capacity, onEvict: onEvict}
}

// get with the empty key returns the untyped entry, or else the most recently
// stored one. A typed key returns the first matching entry, or else the
// untyped one.
func (l *contentTypeLevel) get(key string) (any, bool) {
	if len(l.entries) == 0 {
		return nil, false
	}
	if key == "" {
		if i := l.index(""); i >= 0 {
			return l.entries[i].value, true
		}
		return l.entries[len(l.entries)-1].value, true
	}

	requested := parseMediaType(key)
	for _, e := range l.entries {
		if e.key != "" && e.mt.matches(requested) {
			return e.value, true
		}
	}
	if i := l.index(""); i >= 0 {
		return l.entries[i].value, true
	}
	return nil, false
}

func (l *contentTypeLevel) put(key string, value any) {
	if i := l.index(key); i >= 0 {
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
	} else if len(l.entries) >= l.capacity {
		l.entries = l.entries[1:]
		l.onEvict()
	}
	e := contentTypeEntry{key: key, value: value}
	if key != "" {
		e.mt = parseMediaType(key)
	}
	l.entries = append(l.entries, e)
}

func (l *contentTypeLevel) remove(key string) {
	if i := l.index(key); i >= 0 {
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
	}
}

func (l *contentTypeLevel) len() int {
	return len(l.entries)
}

// index finds the entry stored under an equivalent key.
func (l *contentTypeLevel) index(key string) int {
	if key == "" {
		for i, e := range l.entries {
			if e.key == "" {
				return i
			}
		}
		return -1
	}
	mt := parseMediaType(key)
	for i, e := range l.entries {
		if e.key != "" && e.mt.base == mt.base && sameParams(e.mt.params, mt.params) {
			return i
		}
	}
	return -1
}

func sameParams(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
