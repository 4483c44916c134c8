package linkcache

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/cmisgo/cmis.go/pkg/atom"
)

const (
	DefaultRepositories = 10
	DefaultTypes        = 100
	DefaultObjects      = 400

	relationsPerEntity     = 32
	typesPerRelation       = 3
	collectionsPerRepo     = 8
	templatesPerRepo       = 6
	repositoryLinksPerRepo = 6
)

// Config sets the capacities of a LinkCache. A value below 1 selects the
// default.
type Config struct {
	Repositories int
	Types        int
	Objects      int
	Logger       *zerolog.Logger
}

func DefaultConfig() Config {
	return Config{
		Repositories: DefaultRepositories,
		Types:        DefaultTypes,
		Objects:      DefaultObjects,
	}
}

// LinkCache holds the hypermedia links learned from previous responses of one
// session: object links, type links, collections, URI templates and
// repository links, each keyed by repository first.
//
// Individual calls are safe for concurrent use. ClearRepository and Clear
// exclude every other call so that readers never see a partially cleared
// repository.
type LinkCache struct {
	mu sync.RWMutex

	objects     *Cache
	types       *Cache
	collections *Cache
	templates   *Cache
	repository  *Cache

	log zerolog.Logger
}

func New(cfg Config) *LinkCache {
	repos := orDefault(cfg.Repositories, DefaultRepositories)
	types := orDefault(cfg.Types, DefaultTypes)
	objects := orDefault(cfg.Objects, DefaultObjects)

	lc := &LinkCache{log: zerolog.Nop()}
	lc.objects = NewCache("objects",
		Bounded(repos), LRU(objects), Bounded(relationsPerEntity), ContentType(typesPerRelation))
	lc.types = NewCache("types",
		Bounded(repos), LRU(types), Bounded(relationsPerEntity), ContentType(typesPerRelation))
	lc.collections = NewCache("collections", Bounded(repos), Bounded(collectionsPerRepo))
	lc.templates = NewCache("templates", Bounded(repos), Bounded(templatesPerRepo))
	lc.repository = NewCache("repository", Bounded(repos), Bounded(repositoryLinksPerRepo))
	if cfg.Logger != nil {
		lc.log = cfg.Logger.With().Str("component", "linkcache").Logger()
	}
	return lc
}

func orDefault(v, def int) int {
	if v < 1 {
		return def
	}
	return v
}

// AddLink stores the href of an object link. typ may be empty.
func (lc *LinkCache) AddLink(repositoryID, objectID, rel, typ, href string) {
	if repositoryID == "" {
		return
	}
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	lc.objects.Put(href, repositoryID, objectID, rel, typ)
}

// GetLink looks up an object link. An empty typ matches any type.
func (lc *LinkCache) GetLink(repositoryID, objectID, rel, typ string) (string, bool) {
	if repositoryID == "" {
		return "", false
	}
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return lc.objects.Get(repositoryID, objectID, rel, typ)
}

// RemoveLinks drops every link of an object.
func (lc *LinkCache) RemoveLinks(repositoryID, objectID string) {
	if repositoryID == "" {
		return
	}
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	lc.objects.Remove(repositoryID, objectID)
	lc.log.Debug().Str("repository", repositoryID).Str("object", objectID).Msg("object links removed")
}

// ReplaceLinks drops every link of an object and stores links in its place.
// No reader observes the object without links in between.
func (lc *LinkCache) ReplaceLinks(repositoryID, objectID string, links []*atom.Link) {
	if repositoryID == "" {
		return
	}
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	replace(lc.objects, repositoryID, objectID, links)
}

// ObjectCount returns the number of objects with cached links.
func (lc *LinkCache) ObjectCount(repositoryID string) int {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return lc.objects.Len(repositoryID)
}

func (lc *LinkCache) AddTypeLink(repositoryID, typeID, rel, typ, href string) {
	if repositoryID == "" {
		return
	}
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	lc.types.Put(href, repositoryID, typeID, rel, typ)
}

func (lc *LinkCache) GetTypeLink(repositoryID, typeID, rel, typ string) (string, bool) {
	if repositoryID == "" {
		return "", false
	}
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return lc.types.Get(repositoryID, typeID, rel, typ)
}

func (lc *LinkCache) RemoveTypeLinks(repositoryID, typeID string) {
	if repositoryID == "" {
		return
	}
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	lc.types.Remove(repositoryID, typeID)
}

func (lc *LinkCache) ReplaceTypeLinks(repositoryID, typeID string, links []*atom.Link) {
	if repositoryID == "" {
		return
	}
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	replace(lc.types, repositoryID, typeID, links)
}

func replace(c *Cache, repositoryID, id string, links []*atom.Link) {
	c.Batch(func(b *Batch) {
		b.Remove(repositoryID, id)
		for _, l := range links {
			if l == nil || l.Rel == "" || l.Href == "" {
				continue
			}
			b.Put(l.Href, repositoryID, id, l.Rel, l.Type)
		}
	})
}

func (lc *LinkCache) AddCollection(repositoryID, collection, href string) {
	if repositoryID == "" {
		return
	}
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	lc.collections.Put(href, repositoryID, collection)
}

func (lc *LinkCache) GetCollection(repositoryID, collection string) (string, bool) {
	if repositoryID == "" {
		return "", false
	}
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return lc.collections.Get(repositoryID, collection)
}

func (lc *LinkCache) AddTemplate(repositoryID, templateType, template string) {
	if repositoryID == "" {
		return
	}
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	lc.templates.Put(template, repositoryID, templateType)
}

func (lc *LinkCache) GetTemplate(repositoryID, templateType string) (string, bool) {
	if repositoryID == "" {
		return "", false
	}
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return lc.templates.Get(repositoryID, templateType)
}

// GetTemplateLink returns the URI template of templateType expanded with
// params.
func (lc *LinkCache) GetTemplateLink(repositoryID, templateType string, params map[string]any) (string, bool) {
	template, ok := lc.GetTemplate(repositoryID, templateType)
	if !ok {
		return "", false
	}
	return ExpandTemplate(template, params), true
}

func (lc *LinkCache) AddRepositoryLink(repositoryID, rel, href string) {
	if repositoryID == "" {
		return
	}
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	lc.repository.Put(href, repositoryID, rel)
}

func (lc *LinkCache) GetRepositoryLink(repositoryID, rel string) (string, bool) {
	if repositoryID == "" {
		return "", false
	}
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return lc.repository.Get(repositoryID, rel)
}

// HasRepository reports whether anything was learned about a repository from
// its service document.
func (lc *LinkCache) HasRepository(repositoryID string) bool {
	if repositoryID == "" {
		return false
	}
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return lc.collections.Len(repositoryID) > 0 ||
		lc.templates.Len(repositoryID) > 0 ||
		lc.repository.Len(repositoryID) > 0
}

// ClearRepository drops everything cached for a repository in all stores.
func (lc *LinkCache) ClearRepository(repositoryID string) {
	if repositoryID == "" {
		return
	}
	lc.mu.Lock()
	defer lc.mu.Unlock()
	for _, c := range lc.stores() {
		c.Remove(repositoryID)
	}
	lc.log.Debug().Str("repository", repositoryID).Msg("repository links cleared")
}

// Clear drops everything.
func (lc *LinkCache) Clear() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	for _, c := range lc.stores() {
		c.Clear()
	}
	lc.log.Debug().Msg("link cache cleared")
}

func (lc *LinkCache) stores() []*Cache {
	return []*Cache{lc.objects, lc.types, lc.collections, lc.templates, lc.repository}
}
