package cmis

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmisgo/cmis.go/pkg/atom"
	"github.com/cmisgo/cmis.go/pkg/constants"
	"github.com/cmisgo/cmis.go/pkg/models"
)

func TestRenderEntry(t *testing.T) {
	props := &models.Properties{}
	props.Add(models.PropertyTypeString, constants.PropertyName, "report & summary.txt")
	props.Add(models.PropertyTypeInteger, "custom:pages", "12")

	body, err := renderEntry(props)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte(xml.Header)))
	assert.Contains(t, string(body), "<id>urn:uuid:")

	// The rendered entry is read back by the same parser responses go through.
	entry, err := atom.ParseEntry(io.NopCloser(bytes.NewReader(body)))
	require.NoError(t, err)
	var obj *models.ObjectData
	for _, el := range entry.Elements {
		if o, ok := el.Object.(*models.ObjectData); ok {
			obj = o
		}
	}
	require.NotNil(t, obj)
	assert.Equal(t, "report & summary.txt", obj.Name())
	pages := obj.Properties.Get("custom:pages")
	require.NotNil(t, pages)
	assert.Equal(t, models.PropertyTypeInteger, pages.Type())
	assert.Equal(t, "12", pages.FirstValue())
}

func TestRenderEntryWithoutProperties(t *testing.T) {
	body, err := renderEntry(nil)
	require.NoError(t, err)
	assert.Contains(t, string(body), "properties")
}

func TestRenderQuery(t *testing.T) {
	body, err := renderQuery("SELECT * FROM cmis:document WHERE cmis:name < 'b'", &QueryOptions{
		SearchAllVersions: true,
		MaxItems:          10,
		SkipCount:         -1,
	})
	require.NoError(t, err)

	var doc struct {
		XMLName           xml.Name
		Statement         string `xml:"statement"`
		SearchAllVersions bool   `xml:"searchAllVersions"`
		MaxItems          int    `xml:"maxItems"`
		SkipCount         *int   `xml:"skipCount"`
	}
	require.NoError(t, xml.Unmarshal(body, &doc))
	assert.Equal(t, xml.Name{Space: constants.NamespaceCMIS, Local: "query"}, doc.XMLName)
	assert.Equal(t, "SELECT * FROM cmis:document WHERE cmis:name < 'b'", doc.Statement)
	assert.True(t, doc.SearchAllVersions)
	assert.Equal(t, 10, doc.MaxItems)
	assert.Nil(t, doc.SkipCount)
	assert.False(t, strings.Contains(string(body), "includeRelationships"))
}
