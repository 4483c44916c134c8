package cmis

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/cmisgo/cmis.go/pkg/atom"
	"github.com/cmisgo/cmis.go/pkg/connection"
	"github.com/cmisgo/cmis.go/pkg/constants"
	"github.com/cmisgo/cmis.go/pkg/models"
)

func (s *Session) fetch(ctx context.Context, req *connection.Request) (*connection.Response, error) {
	resp, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		s.log.Debug().Err(err).Str("method", req.Method).Str("url", req.URL).Msg("request failed")
		return nil, err
	}
	return resp, nil
}

// read fetches href and parses the body, whatever document it is.
func (s *Session) read(ctx context.Context, href string) (any, error) {
	resp, err := s.fetch(ctx, connection.NewRequest(http.MethodGet, href))
	if err != nil {
		return nil, err
	}
	return atom.Parse(resp.Body)
}

func (s *Session) readFeed(ctx context.Context, href string) (*atom.Feed, error) {
	resp, err := s.fetch(ctx, connection.NewRequest(http.MethodGet, href))
	if err != nil {
		return nil, err
	}
	return atom.ParseFeed(resp.Body)
}

func (s *Session) readEntry(ctx context.Context, href string) (*atom.Entry, error) {
	resp, err := s.fetch(ctx, connection.NewRequest(http.MethodGet, href))
	if err != nil {
		return nil, err
	}
	return atom.ParseEntry(resp.Body)
}

// send performs a write and parses the response, if it has a body. A nil
// result means the server sent nothing to parse.
func (s *Session) send(ctx context.Context, method, href, contentType string, body io.Reader) (any, error) {
	req := connection.NewRequest(method, href)
	if body != nil {
		req.WithBody(contentType, body)
	}
	resp, err := s.fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, resp.Close()
	}
	return atom.Parse(resp.Body)
}

// checkRepository fails for repositories that were never discovered in this
// session, so that link misses on them are not reported as missing objects.
func (s *Session) checkRepository(repositoryID string) error {
	if !s.links.HasRepository(repositoryID) {
		return fmt.Errorf("%w: %q", ErrRepositoryUnknown, repositoryID)
	}
	return nil
}

func (s *Session) linkNotFound(repositoryID, objectID, rel, typ string) error {
	s.log.Debug().
		Str("repository", repositoryID).
		Str("object", objectID).
		Str("rel", rel).
		Str("type", typ).
		Msg("link not found")
	return &LinkNotFoundError{RepositoryID: repositoryID, ObjectID: objectID, Relation: rel, Type: typ}
}

// loadLink resolves an object link. typ may be empty for "any type".
func (s *Session) loadLink(repositoryID, objectID, rel, typ string) (string, error) {
	if err := s.checkRepository(repositoryID); err != nil {
		return "", err
	}
	href, ok := s.links.GetLink(repositoryID, objectID, rel, typ)
	if !ok {
		return "", s.linkNotFound(repositoryID, objectID, rel, typ)
	}
	return href, nil
}

// loadLinkFallback resolves the first relation that has a link.
func (s *Session) loadLinkFallback(repositoryID, objectID, typ string, rels ...string) (string, error) {
	if err := s.checkRepository(repositoryID); err != nil {
		return "", err
	}
	for _, rel := range rels {
		if href, ok := s.links.GetLink(repositoryID, objectID, rel, typ); ok {
			return href, nil
		}
	}
	return "", s.linkNotFound(repositoryID, objectID, rels[0], typ)
}

func (s *Session) loadCollection(repositoryID, collection string) (string, error) {
	if err := s.checkRepository(repositoryID); err != nil {
		return "", err
	}
	href, ok := s.links.GetCollection(repositoryID, collection)
	if !ok {
		return "", s.linkNotFound(repositoryID, "", collection, "")
	}
	return href, nil
}

func (s *Session) loadTemplateLink(repositoryID, templateType string, params map[string]any) (string, error) {
	if err := s.checkRepository(repositoryID); err != nil {
		return "", err
	}
	href, ok := s.links.GetTemplateLink(repositoryID, templateType, params)
	if !ok {
		return "", s.linkNotFound(repositoryID, "", templateType, "")
	}
	return href, nil
}

func (s *Session) loadRepositoryLink(repositoryID, rel string) (string, error) {
	if err := s.checkRepository(repositoryID); err != nil {
		return "", err
	}
	href, ok := s.links.GetRepositoryLink(repositoryID, rel)
	if !ok {
		return "", s.linkNotFound(repositoryID, "", rel, "")
	}
	return href, nil
}

// entryData is what orchestration needs from one parsed entry.
type entryData struct {
	id                  string
	object              *models.ObjectData
	typeDefinition      models.TypeDefinition
	pathSegment         string
	relativePathSegment string
	children            *atom.Feed
	links               []*atom.Link
}

func splitEntry(entry *atom.Entry) *entryData {
	d := &entryData{id: entry.ID}
	for _, el := range entry.Elements {
		switch v := el.Object.(type) {
		case *models.ObjectData:
			d.object = v
		case models.TypeDefinition:
			d.typeDefinition = v
		case *atom.Link:
			d.links = append(d.links, v)
		case *atom.Feed:
			d.children = v
		case string:
			switch el.Name {
			case atom.NamePathSegment:
				d.pathSegment = v
			case atom.NameRelativePathSegment:
				d.relativePathSegment = v
			}
		}
	}
	return d
}

// harvest replaces the cached links of the entry's object or type with the
// links of the entry. Entries without id are not cached.
func (s *Session) harvest(repositoryID string, entry *atom.Entry) *entryData {
	d := splitEntry(entry)
	if d.id == "" {
		return d
	}
	switch {
	case d.typeDefinition != nil:
		s.links.ReplaceTypeLinks(repositoryID, d.id, d.links)
	default:
		s.links.ReplaceLinks(repositoryID, d.id, d.links)
	}
	return d
}

// page holds the paging metadata of a feed.
type page struct {
	hasMoreItems bool
	numItems     *big.Int
	next         string
}

func feedPage(feed *atom.Feed) page {
	var p page
	for _, el := range feed.Elements {
		switch v := el.Object.(type) {
		case *atom.Link:
			if v.Rel == constants.RelNext {
				p.hasMoreItems = true
				p.next = v.Href
			}
		case *big.Int:
			if el.Name == atom.NameNumItems {
				p.numItems = v
			}
		}
	}
	return p
}

// objectList harvests every entry of feed and collects its objects.
func (s *Session) objectList(repositoryID string, feed *atom.Feed) *models.ObjectList {
	p := feedPage(feed)
	list := &models.ObjectList{HasMoreItems: p.hasMoreItems, NumItems: p.numItems}
	for _, entry := range feed.Entries {
		if d := s.harvest(repositoryID, entry); d.object != nil {
			list.Objects = append(list.Objects, d.object)
		}
	}
	return list
}

func missingObject(href string) error {
	return fmt.Errorf("%w: response of %s carries no CMIS object", ErrRuntime, href)
}
