package cmis

import (
	"context"
	"fmt"

	"github.com/cmisgo/cmis.go/pkg/atom"
	"github.com/cmisgo/cmis.go/pkg/constants"
	"github.com/cmisgo/cmis.go/pkg/models"
)

// GetRepositoryInfos reads the service document and returns every repository
// it describes. Collections, URI templates and links of each repository are
// cached, which makes the repository known to the session.
func (s *Session) GetRepositoryInfos(ctx context.Context) ([]*models.RepositoryInfo, error) {
	doc, err := s.readServiceDoc(ctx, "")
	if err != nil {
		return nil, err
	}
	var infos []*models.RepositoryInfo
	for _, ws := range doc.Workspaces {
		if info := s.harvestWorkspace(ws); info != nil {
			infos = append(infos, info)
		}
	}
	return infos, nil
}

// GetRepositoryInfo reads the service document of one repository.
func (s *Session) GetRepositoryInfo(ctx context.Context, repositoryID string) (*models.RepositoryInfo, error) {
	if repositoryID == "" {
		return nil, fmt.Errorf("%w: repository id must be set", ErrInvalidArgument)
	}
	doc, err := s.readServiceDoc(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	var found *models.RepositoryInfo
	for _, ws := range doc.Workspaces {
		info := s.harvestWorkspace(ws)
		if info != nil && info.ID == repositoryID {
			found = info
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: repository %q", ErrObjectNotFound, repositoryID)
	}
	return found, nil
}

func (s *Session) readServiceDoc(ctx context.Context, repositoryID string) (*atom.ServiceDoc, error) {
	href, err := newURLBuilder(s.serviceURL).
		param(constants.ParamRepositoryID, repositoryID).
		build()
	if err != nil {
		return nil, err
	}
	result, err := s.read(ctx, href)
	if err != nil {
		return nil, err
	}
	doc, ok := result.(*atom.ServiceDoc)
	if !ok {
		return nil, atom.UnexpectedDocument(result, doc)
	}
	return doc, nil
}

func (s *Session) harvestWorkspace(ws *atom.Workspace) *models.RepositoryInfo {
	repositoryID := ws.RepositoryID
	if repositoryID == "" {
		return nil
	}
	var info *models.RepositoryInfo
	for _, el := range ws.Elements {
		switch v := el.Object.(type) {
		case *models.RepositoryInfo:
			info = v
		case *atom.Collection:
			s.links.AddCollection(repositoryID, v.CollectionType, v.Href)
		case *atom.URITemplate:
			s.links.AddTemplate(repositoryID, v.Type, v.Template)
		case *atom.Link:
			s.links.AddRepositoryLink(repositoryID, v.Rel, v.Href)
		}
	}
	s.log.Debug().Str("repository", repositoryID).Msg("repository discovered")
	return info
}
