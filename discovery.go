package cmis

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cmisgo/cmis.go/pkg/atom"
	"github.com/cmisgo/cmis.go/pkg/constants"
	"github.com/cmisgo/cmis.go/pkg/models"
)

// Query runs a CMIS query statement and returns one page of results. The
// query URI template is used when the repository has one; otherwise the
// statement is posted to the query collection.
func (s *Session) Query(ctx context.Context, repositoryID, statement string, opts *QueryOptions) (*models.ObjectList, error) {
	if statement == "" {
		return nil, fmt.Errorf("%w: query statement must be set", ErrInvalidArgument)
	}
	if err := s.checkRepository(repositoryID); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &QueryOptions{}
	}

	var (
		feed *atom.Feed
		err  error
	)
	if _, ok := s.links.GetTemplate(repositoryID, constants.TemplateQuery); ok {
		feed, err = s.queryByTemplate(ctx, repositoryID, statement, opts)
	} else {
		feed, err = s.queryByCollection(ctx, repositoryID, statement, opts)
	}
	if err != nil {
		return nil, err
	}
	return s.objectList(repositoryID, feed), nil
}

func (s *Session) queryByTemplate(ctx context.Context, repositoryID, statement string, opts *QueryOptions) (*atom.Feed, error) {
	params := map[string]any{
		constants.ParamQ:                 statement,
		constants.ParamSearchAllVersions: opts.SearchAllVersions,
		constants.ParamAllowableActions:  opts.IncludeAllowableActions,
		constants.ParamRelationships:     string(opts.IncludeRelationships),
		constants.ParamRenditionFilter:   opts.RenditionFilter,
		constants.ParamMaxItems:          positive(opts.MaxItems),
		constants.ParamSkipCount:         positive(opts.SkipCount),
	}
	href, err := s.loadTemplateLink(repositoryID, constants.TemplateQuery, params)
	if err != nil {
		return nil, err
	}
	return s.readFeed(ctx, href)
}

func (s *Session) queryByCollection(ctx context.Context, repositoryID, statement string, opts *QueryOptions) (*atom.Feed, error) {
	href, err := s.loadCollection(repositoryID, constants.CollectionQuery)
	if err != nil {
		return nil, err
	}
	body, err := renderQuery(statement, opts)
	if err != nil {
		return nil, err
	}

	result, err := s.send(ctx, http.MethodPost, href, constants.MediaTypeQuery, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	feed, ok := result.(*atom.Feed)
	if !ok {
		return nil, atom.UnexpectedDocument(result, feed)
	}
	return feed, nil
}

// positive maps non-positive paging values to nil, which expands to nothing.
func positive(n int) any {
	if n <= 0 {
		return nil
	}
	return n
}

// GetContentChanges returns the change log entries after changeLogToken, or
// from the start of the log when the token is empty.
func (s *Session) GetContentChanges(ctx context.Context, repositoryID, changeLogToken string, opts *ChangeOptions) (*models.ChangeLog, error) {
	href, err := s.loadRepositoryLink(repositoryID, constants.RelChanges)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &ChangeOptions{}
	}
	href, err = newURLBuilder(href).
		param(constants.ParamChangeLogToken, changeLogToken).
		param(constants.ParamIncludeProperties, opts.IncludeProperties).
		param(constants.ParamIncludePolicyIDs, opts.IncludePolicyIDs).
		param(constants.ParamACL, opts.IncludeACL).
		param(constants.ParamMaxItems, opts.MaxItems).
		build()
	if err != nil {
		return nil, err
	}

	feed, err := s.readFeed(ctx, href)
	if err != nil {
		return nil, err
	}
	changes := &models.ChangeLog{ObjectList: *s.objectList(repositoryID, feed)}
	if next := feedPage(feed).next; next != "" {
		changes.LatestChangeLogToken = tokenFromLink(next)
	}
	return changes, nil
}

// tokenFromLink extracts the changeLogToken parameter of a next link.
func tokenFromLink(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get(constants.ParamChangeLogToken)
}
