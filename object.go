package cmis

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/cmisgo/cmis.go/pkg/atom"
	"github.com/cmisgo/cmis.go/pkg/connection"
	"github.com/cmisgo/cmis.go/pkg/constants"
	"github.com/cmisgo/cmis.go/pkg/models"
)

// GetObject reads an object by id through the objectbyid URI template.
func (s *Session) GetObject(ctx context.Context, repositoryID, objectID string, opts *ObjectOptions) (*models.ObjectData, error) {
	params := opts.templateParams()
	params[constants.ParamID] = objectID
	href, err := s.loadTemplateLink(repositoryID, constants.TemplateObjectByID, params)
	if err != nil {
		return nil, err
	}
	return s.readObject(ctx, repositoryID, href)
}

// GetObjectByPath reads a fileable object by path through the objectbypath
// URI template.
func (s *Session) GetObjectByPath(ctx context.Context, repositoryID, path string, opts *ObjectOptions) (*models.ObjectData, error) {
	params := opts.templateParams()
	params[constants.ParamPath] = path
	href, err := s.loadTemplateLink(repositoryID, constants.TemplateObjectByPath, params)
	if err != nil {
		return nil, err
	}
	return s.readObject(ctx, repositoryID, href)
}

func (s *Session) readObject(ctx context.Context, repositoryID, href string) (*models.ObjectData, error) {
	entry, err := s.readEntry(ctx, href)
	if err != nil {
		return nil, err
	}
	d := s.harvest(repositoryID, entry)
	if d.object == nil {
		return nil, missingObject(href)
	}
	return d.object, nil
}

func (s *Session) GetAllowableActions(ctx context.Context, repositoryID, objectID string) (*models.AllowableActions, error) {
	href, err := s.loadLink(repositoryID, objectID, constants.RelAllowableActions, constants.MediaTypeAllowableAction)
	if err != nil {
		return nil, err
	}
	resp, err := s.fetch(ctx, connection.NewRequest(http.MethodGet, href))
	if err != nil {
		return nil, err
	}
	return atom.ParseAllowableActions(resp.Body)
}

func (s *Session) GetACL(ctx context.Context, repositoryID, objectID string, onlyBasicPermissions bool) (*models.ACL, error) {
	href, err := s.loadLink(repositoryID, objectID, constants.RelACL, constants.MediaTypeACL)
	if err != nil {
		return nil, err
	}
	href, err = newURLBuilder(href).flag(constants.ParamOnlyBasicPermissions, onlyBasicPermissions).build()
	if err != nil {
		return nil, err
	}
	resp, err := s.fetch(ctx, connection.NewRequest(http.MethodGet, href))
	if err != nil {
		return nil, err
	}
	return atom.ParseACL(resp.Body)
}

// GetContentStream opens the content of a document, or one of its renditions
// when streamID is set. The caller closes the returned stream.
func (s *Session) GetContentStream(ctx context.Context, repositoryID, objectID, streamID string) (*models.ContentStream, error) {
	href, err := s.loadLinkFallback(repositoryID, objectID, "", constants.RelContent, constants.RelEditMedia)
	if err != nil {
		return nil, err
	}
	href, err = newURLBuilder(href).param(constants.ParamStreamID, streamID).build()
	if err != nil {
		return nil, err
	}

	resp, err := s.fetch(ctx, connection.NewRequest(http.MethodGet, href))
	if err != nil {
		return nil, err
	}
	cs := &models.ContentStream{
		MimeType: resp.Header.Get(connection.HeaderContentType),
		Length:   -1,
		Stream:   resp.Body,
	}
	if n, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64); err == nil {
		cs.Length = n
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		cs.FileName = params["filename"]
	}
	return cs, nil
}

// GetTypeDefinition reads a type through the typebyid URI template.
func (s *Session) GetTypeDefinition(ctx context.Context, repositoryID, typeID string) (models.TypeDefinition, error) {
	href, err := s.loadTemplateLink(repositoryID, constants.TemplateTypeByID, map[string]any{constants.ParamID: typeID})
	if err != nil {
		return nil, err
	}
	entry, err := s.readEntry(ctx, href)
	if err != nil {
		return nil, err
	}
	d := s.harvest(repositoryID, entry)
	if d.typeDefinition == nil {
		return nil, fmt.Errorf("%w: response of %s carries no type definition", ErrRuntime, href)
	}
	return d.typeDefinition, nil
}

// UpdateProperties changes properties of an object and returns its id, which
// differs from objectID when the repository created a new version.
func (s *Session) UpdateProperties(ctx context.Context, repositoryID, objectID, changeToken string, props *models.Properties) (string, error) {
	href, err := s.loadLinkFallback(repositoryID, objectID, "", constants.RelEdit, constants.RelSelf)
	if err != nil {
		return "", err
	}
	href, err = newURLBuilder(href).param(constants.ParamChangeToken, changeToken).build()
	if err != nil {
		return "", err
	}
	body, err := renderEntry(props)
	if err != nil {
		return "", err
	}

	result, err := s.send(ctx, http.MethodPut, href, constants.MediaTypeEntry, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return s.afterMutation(repositoryID, objectID, result), nil
}

// DeleteObject deletes an object, or all versions of a document.
func (s *Session) DeleteObject(ctx context.Context, repositoryID, objectID string, allVersions bool) error {
	href, err := s.loadLinkFallback(repositoryID, objectID, "", constants.RelEdit, constants.RelSelf)
	if err != nil {
		return err
	}
	href, err = newURLBuilder(href).flag(constants.ParamAllVersions, allVersions).build()
	if err != nil {
		return err
	}

	if _, err := s.send(ctx, http.MethodDelete, href, "", nil); err != nil {
		return err
	}
	s.afterMutation(repositoryID, objectID, nil)
	return nil
}

// SetContentStream replaces the content of a document and returns the
// document id, which changes when the repository created a new version.
func (s *Session) SetContentStream(ctx context.Context, repositoryID, objectID string, overwrite bool, changeToken string, content *models.ContentStream) (string, error) {
	if content == nil || content.Stream == nil {
		return "", fmt.Errorf("%w: content stream must be set", ErrInvalidArgument)
	}
	defer content.Stream.Close()

	href, err := s.loadLink(repositoryID, objectID, constants.RelEditMedia, "")
	if err != nil {
		return "", err
	}
	href, err = newURLBuilder(href).
		flag(constants.ParamOverwriteFlag, overwrite).
		param(constants.ParamChangeToken, changeToken).
		build()
	if err != nil {
		return "", err
	}

	mimeType := content.MimeType
	if mimeType == "" {
		mimeType = constants.MediaTypeOctetStream
	}
	req := connection.NewRequest(http.MethodPut, href).WithBody(mimeType, content.Stream)
	if content.FileName != "" {
		req.Header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": content.FileName}))
	}
	resp, err := s.fetch(ctx, req)
	if err != nil {
		return "", err
	}

	var result any
	if resp.StatusCode != http.StatusNoContent {
		result, err = atom.Parse(resp.Body)
		if err != nil {
			return "", err
		}
	} else if err := resp.Close(); err != nil {
		return "", err
	}
	return s.afterMutation(repositoryID, objectID, result), nil
}

// DeleteContentStream removes the content of a document.
func (s *Session) DeleteContentStream(ctx context.Context, repositoryID, objectID, changeToken string) error {
	href, err := s.loadLink(repositoryID, objectID, constants.RelEditMedia, "")
	if err != nil {
		return err
	}
	href, err = newURLBuilder(href).param(constants.ParamChangeToken, changeToken).build()
	if err != nil {
		return err
	}

	if _, err := s.send(ctx, http.MethodDelete, href, "", nil); err != nil {
		return err
	}
	s.afterMutation(repositoryID, objectID, nil)
	return nil
}

// afterMutation drops the links of the changed object, then caches the links
// of the entry the server answered with, if any. It returns the id of that
// entry, or objectID.
func (s *Session) afterMutation(repositoryID, objectID string, result any) string {
	s.links.RemoveLinks(repositoryID, objectID)
	entry, ok := result.(*atom.Entry)
	if !ok {
		return objectID
	}
	if d := s.harvest(repositoryID, entry); d.id != "" {
		return d.id
	}
	return objectID
}
