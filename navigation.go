package cmis

import (
	"context"
	"fmt"

	"github.com/cmisgo/cmis.go/pkg/atom"
	"github.com/cmisgo/cmis.go/pkg/constants"
	"github.com/cmisgo/cmis.go/pkg/models"
)

// GetChildren returns one page of the children of a folder.
func (s *Session) GetChildren(ctx context.Context, repositoryID, folderID string, opts *NavigationOptions) (*models.ObjectInFolderList, error) {
	href, err := s.loadLink(repositoryID, folderID, constants.RelDown, constants.MediaTypeChildren)
	if err != nil {
		return nil, err
	}
	href, err = opts.apply(newURLBuilder(href)).build()
	if err != nil {
		return nil, err
	}

	feed, err := s.readFeed(ctx, href)
	if err != nil {
		return nil, err
	}

	p := feedPage(feed)
	list := &models.ObjectInFolderList{HasMoreItems: p.hasMoreItems, NumItems: p.numItems}
	for _, entry := range feed.Entries {
		d := s.harvest(repositoryID, entry)
		if d.object == nil {
			continue
		}
		list.Objects = append(list.Objects, &models.ObjectInFolderData{
			Object:      d.object,
			PathSegment: d.pathSegment,
		})
	}
	return list, nil
}

// GetDescendants returns the tree below a folder, depth levels deep. A depth
// of -1 asks for the whole tree, 0 for the server default.
func (s *Session) GetDescendants(ctx context.Context, repositoryID, folderID string, depth int, opts *NavigationOptions) ([]*models.ObjectInFolderContainer, error) {
	href, err := s.loadLink(repositoryID, folderID, constants.RelDown, constants.MediaTypeDescendants)
	if err != nil {
		return nil, err
	}
	return s.readTree(ctx, repositoryID, href, depth, opts)
}

// GetFolderTree is GetDescendants restricted to folders.
func (s *Session) GetFolderTree(ctx context.Context, repositoryID, folderID string, depth int, opts *NavigationOptions) ([]*models.ObjectInFolderContainer, error) {
	href, err := s.loadLink(repositoryID, folderID, constants.RelFolderTree, constants.MediaTypeDescendants)
	if err != nil {
		return nil, err
	}
	return s.readTree(ctx, repositoryID, href, depth, opts)
}

func (s *Session) readTree(ctx context.Context, repositoryID, href string, depth int, opts *NavigationOptions) ([]*models.ObjectInFolderContainer, error) {
	b := opts.apply(newURLBuilder(href))
	if depth != 0 {
		b.param(constants.ParamDepth, fmt.Sprint(depth))
	}
	href, err := b.build()
	if err != nil {
		return nil, err
	}

	feed, err := s.readFeed(ctx, href)
	if err != nil {
		return nil, err
	}
	return s.containers(repositoryID, feed), nil
}

// containers converts a tree feed. Nested children feeds are handled like the
// top-level one.
func (s *Session) containers(repositoryID string, feed *atom.Feed) []*models.ObjectInFolderContainer {
	var result []*models.ObjectInFolderContainer
	for _, entry := range feed.Entries {
		d := s.harvest(repositoryID, entry)
		if d.object == nil {
			continue
		}
		c := &models.ObjectInFolderContainer{
			Object: &models.ObjectInFolderData{Object: d.object, PathSegment: d.pathSegment},
		}
		if d.children != nil {
			c.Children = s.containers(repositoryID, d.children)
		}
		result = append(result, c)
	}
	return result
}

// GetFolderParent returns the parent of a folder.
func (s *Session) GetFolderParent(ctx context.Context, repositoryID, folderID, filter string) (*models.ObjectData, error) {
	href, err := s.loadLink(repositoryID, folderID, constants.RelUp, constants.MediaTypeEntry)
	if err != nil {
		return nil, err
	}
	href, err = newURLBuilder(href).param(constants.ParamFilter, filter).build()
	if err != nil {
		return nil, err
	}

	// Some servers answer with a feed holding the single parent.
	result, err := s.read(ctx, href)
	if err != nil {
		return nil, err
	}
	var entry *atom.Entry
	switch v := result.(type) {
	case *atom.Entry:
		entry = v
	case *atom.Feed:
		if len(v.Entries) > 0 {
			entry = v.Entries[0]
		}
	default:
		return nil, atom.UnexpectedDocument(result, entry)
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: folder %q has no parent", ErrInvalidArgument, folderID)
	}

	d := s.harvest(repositoryID, entry)
	if d.object == nil {
		return nil, missingObject(href)
	}
	return d.object, nil
}

// GetObjectParents returns the parent folders of a fileable object.
func (s *Session) GetObjectParents(ctx context.Context, repositoryID, objectID string, includeRelativePathSegment bool, opts *NavigationOptions) ([]*models.ObjectParentData, error) {
	href, err := s.loadLink(repositoryID, objectID, constants.RelUp, constants.MediaTypeFeed)
	if err != nil {
		return nil, err
	}
	href, err = opts.apply(newURLBuilder(href)).
		param(constants.ParamIncludeRelativePathSegment, includeRelativePathSegment).
		build()
	if err != nil {
		return nil, err
	}

	result, err := s.read(ctx, href)
	if err != nil {
		return nil, err
	}
	var entries []*atom.Entry
	switch v := result.(type) {
	case *atom.Entry:
		entries = []*atom.Entry{v}
	case *atom.Feed:
		entries = v.Entries
	default:
		return nil, atom.UnexpectedDocument(result, (*atom.Feed)(nil))
	}

	var parents []*models.ObjectParentData
	for _, entry := range entries {
		d := s.harvest(repositoryID, entry)
		if d.object == nil {
			continue
		}
		parents = append(parents, &models.ObjectParentData{
			Object:              d.object,
			RelativePathSegment: d.relativePathSegment,
		})
	}
	return parents, nil
}

// GetCheckedOutDocs returns one page of the private working copies of the
// repository, or of one folder when folderID is set.
func (s *Session) GetCheckedOutDocs(ctx context.Context, repositoryID, folderID string, opts *NavigationOptions) (*models.ObjectList, error) {
	href, err := s.loadCollection(repositoryID, constants.CollectionCheckedOut)
	if err != nil {
		return nil, err
	}
	href, err = opts.apply(newURLBuilder(href)).
		param(constants.ParamFolderID, folderID).
		build()
	if err != nil {
		return nil, err
	}

	feed, err := s.readFeed(ctx, href)
	if err != nil {
		return nil, err
	}
	return s.objectList(repositoryID, feed), nil
}
