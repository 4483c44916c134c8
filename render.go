package cmis

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cmisgo/cmis.go/pkg/constants"
	"github.com/cmisgo/cmis.go/pkg/models"
)

type atomEntryDoc struct {
	XMLName xml.Name      `xml:"http://www.w3.org/2005/Atom entry"`
	ID      string        `xml:"id"`
	Title   string        `xml:"title"`
	Updated string        `xml:"updated"`
	Object  atomObjectDoc `xml:"http://docs.oasis-open.org/ns/cmis/restatom/200908/ object"`
}

type atomObjectDoc struct {
	Properties *models.Properties `xml:"http://docs.oasis-open.org/ns/cmis/core/200908/ properties"`
}

// renderEntry writes an Atom entry carrying properties, as expected by
// updateProperties.
func renderEntry(props *models.Properties) ([]byte, error) {
	doc := atomEntryDoc{
		ID:      "urn:uuid:" + uuid.NewString(),
		Title:   props.Value(constants.PropertyName),
		Updated: time.Now().UTC().Format(time.RFC3339),
		Object:  atomObjectDoc{Properties: renderable(props)},
	}
	return marshalDocument(doc)
}

// renderable drops the element name decoded with the properties, so that the
// field tag names the element.
func renderable(props *models.Properties) *models.Properties {
	if props == nil {
		return &models.Properties{}
	}
	return &models.Properties{Items: props.Items}
}

type queryDoc struct {
	XMLName                 xml.Name `xml:"http://docs.oasis-open.org/ns/cmis/core/200908/ query"`
	Statement               string   `xml:"statement"`
	SearchAllVersions       bool     `xml:"searchAllVersions"`
	IncludeAllowableActions bool     `xml:"includeAllowableActions"`
	IncludeRelationships    string   `xml:"includeRelationships,omitempty"`
	RenditionFilter         string   `xml:"renditionFilter,omitempty"`
	MaxItems                int      `xml:"maxItems,omitempty"`
	SkipCount               int      `xml:"skipCount,omitempty"`
}

func renderQuery(statement string, opts *QueryOptions) ([]byte, error) {
	return marshalDocument(queryDoc{
		Statement:               statement,
		SearchAllVersions:       opts.SearchAllVersions,
		IncludeAllowableActions: opts.IncludeAllowableActions,
		IncludeRelationships:    string(opts.IncludeRelationships),
		RenditionFilter:         opts.RenditionFilter,
		MaxItems:                max(opts.MaxItems, 0),
		SkipCount:               max(opts.SkipCount, 0),
	})
}

func marshalDocument(doc any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("%w: rendering request: %w", ErrInvalidArgument, err)
	}
	return buf.Bytes(), nil
}
