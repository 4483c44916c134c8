package atom_test

import (
	"bytes"
	"errors"
	"io"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmisgo/cmis.go/pkg/atom"
	"github.com/cmisgo/cmis.go/pkg/constants"
	"github.com/cmisgo/cmis.go/pkg/models"
)

const nsDecl = `xmlns="http://www.w3.org/2005/Atom" xmlns:app="http://www.w3.org/2007/app" ` +
	`xmlns:cmis="http://docs.oasis-open.org/ns/cmis/core/200908/" ` +
	`xmlns:cmisra="http://docs.oasis-open.org/ns/cmis/restatom/200908/" ` +
	`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"`

// trackedStream records whether it was fully consumed and closed.
type trackedStream struct {
	r      *bytes.Reader
	closed bool
}

func newTrackedStream(s string) *trackedStream {
	return &trackedStream{r: bytes.NewReader([]byte(s))}
}

func (t *trackedStream) Read(p []byte) (int, error) {
	return t.r.Read(p)
}

func (t *trackedStream) Close() error {
	t.closed = true
	return nil
}

func (t *trackedStream) drained() bool {
	return t.r.Len() == 0
}

type failingStream struct {
	data []byte
	err  error
}

func (f *failingStream) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, f.err
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func (f *failingStream) Close() error {
	return errors.New("close failed")
}

func parse(t *testing.T, doc string) any {
	t.Helper()
	result, err := atom.Parse(io.NopCloser(strings.NewReader(doc)))
	require.NoError(t, err)
	return result
}

func entryXML(body string) string {
	return `<entry ` + nsDecl + `>` + body + `</entry>`
}

func objectXML(id, name string) string {
	return `<cmisra:object><cmis:properties>` +
		`<cmis:propertyId propertyDefinitionId="cmis:objectId"><cmis:value>` + id + `</cmis:value></cmis:propertyId>` +
		`<cmis:propertyString propertyDefinitionId="cmis:name"><cmis:value>` + name + `</cmis:value></cmis:propertyString>` +
		`</cmis:properties></cmisra:object>`
}

func TestParseNilStream(t *testing.T) {
	_, err := atom.Parse(nil)
	require.ErrorIs(t, err, constants.ErrNilStream)
}

func TestParseUnrecognizedDocument(t *testing.T) {
	assert.Nil(t, parse(t, `<root><child/></root>`))
	assert.Nil(t, parse(t, ``))
}

func TestParseHTML(t *testing.T) {
	result := parse(t, `<HTML><body><entry xmlns="http://www.w3.org/2005/Atom"/></body></HTML>`)
	assert.IsType(t, &atom.HTMLDoc{}, result)
}

func TestParseFindsFirstRecognizedElement(t *testing.T) {
	result := parse(t, `<wrapper><entry xmlns="http://www.w3.org/2005/Atom"/></wrapper>`)
	assert.IsType(t, &atom.Entry{}, result)
}

func TestParseFeedPagination(t *testing.T) {
	result := parse(t, `<feed `+nsDecl+`>
  <title>children</title>
  <link rel="next" href="http://x/next" type="application/atom+xml;type=feed"/>
  <cmisra:numItems>42</cmisra:numItems>
</feed>`)

	feed, ok := result.(*atom.Feed)
	require.True(t, ok)
	require.Len(t, feed.Elements, 2)

	link, ok := feed.Elements[0].Object.(*atom.Link)
	require.True(t, ok)
	assert.Equal(t, constants.RelNext, link.Rel)
	assert.Equal(t, "http://x/next", link.Href)
	assert.Equal(t, constants.MediaTypeFeed, link.Type)

	n, ok := feed.Elements[1].Object.(*big.Int)
	require.True(t, ok)
	assert.Equal(t, int64(42), n.Int64())
	assert.Empty(t, feed.Entries)
}

func TestParseFeedWithoutNumItems(t *testing.T) {
	feed, err := atom.ParseFeed(io.NopCloser(strings.NewReader(`<feed ` + nsDecl + `>` +
		`<entry>` + objectXML("a", "A") + `</entry>` +
		`<entry>` + objectXML("b", "B") + `</entry>` +
		`</feed>`)))
	require.NoError(t, err)
	require.Len(t, feed.Entries, 2)
	assert.Empty(t, feed.Elements)
	assert.Equal(t, "a", feed.Entries[0].ID)
	assert.Equal(t, "b", feed.Entries[1].ID)
}

func TestParseInvalidNumItems(t *testing.T) {
	_, err := atom.Parse(io.NopCloser(strings.NewReader(`<feed ` + nsDecl + `><cmisra:numItems>many</cmisra:numItems></feed>`)))
	require.Error(t, err)
	assert.True(t, atom.IsParseError(err))
}

func TestParseEntryCMISNameWinsOverTitle(t *testing.T) {
	entry, err := atom.ParseEntry(io.NopCloser(strings.NewReader(entryXML(
		`<title>atom title</title>` + objectXML("doc-7", "cmis name")))))
	require.NoError(t, err)
	assert.Equal(t, "doc-7", entry.ID)
	require.Len(t, entry.Elements, 1)

	obj, ok := entry.Elements[0].Object.(*models.ObjectData)
	require.True(t, ok)
	assert.Equal(t, "cmis name", obj.Name())
}

func TestParseLatin1Entry(t *testing.T) {
	doc := `<?xml version="1.0" encoding="ISO-8859-1"?>` + entryXML(objectXML("doc-8", "r\xe9sum\xe9.txt"))
	entry, err := atom.ParseEntry(io.NopCloser(strings.NewReader(doc)))
	require.NoError(t, err)

	obj, ok := entry.Elements[0].Object.(*models.ObjectData)
	require.True(t, ok)
	assert.Equal(t, "résumé.txt", obj.Name())
}

func TestParseEntryElements(t *testing.T) {
	entry, err := atom.ParseEntry(io.NopCloser(strings.NewReader(entryXML(`
  <id>urn:uuid:1</id>
  <link rel="self" href="http://x/self"/>
  <link rel="down" href="http://x/children" type="application/atom+xml;type=feed"><unexpected/></link>
  <content type="application/pdf" src="http://x/stream"/>
  <cmisra:pathSegment>report.pdf</cmisra:pathSegment>
  <cmisra:relativePathSegment><![CDATA[rel&path]]></cmisra:relativePathSegment>
  ` + objectXML("doc-1", "report.pdf")))))
	require.NoError(t, err)
	require.Len(t, entry.Elements, 6)

	var links []*atom.Link
	var texts []string
	for _, el := range entry.Elements {
		switch v := el.Object.(type) {
		case *atom.Link:
			links = append(links, v)
		case string:
			texts = append(texts, v)
		}
	}

	require.Len(t, links, 3)
	assert.Equal(t, &atom.Link{Rel: "self", Href: "http://x/self"}, links[0])
	assert.Equal(t, constants.MediaTypeFeed, links[1].Type)
	assert.Equal(t, &atom.Link{Rel: constants.RelContent, Href: "http://x/stream"}, links[2])
	assert.Equal(t, []string{"report.pdf", "rel&path"}, texts)
	assert.Equal(t, atom.NamePathSegment, entry.Elements[3].Name)
	assert.Equal(t, "doc-1", entry.ID)
}

func TestParseContentWithoutSrc(t *testing.T) {
	entry, err := atom.ParseEntry(io.NopCloser(strings.NewReader(entryXML(`<content type="text">inline <b>text</b></content>`))))
	require.NoError(t, err)
	assert.Empty(t, entry.Elements)
}

func TestParseSkipIsLossless(t *testing.T) {
	entry, err := atom.ParseEntry(io.NopCloser(strings.NewReader(entryXML(`
  <ext:a xmlns:ext="urn:ext"><ext:b><ext:c><ext:d>deep</ext:d><ext:d/></ext:c></ext:b><ext:b/></ext:a>
  <cmisra:pathSegment>after</cmisra:pathSegment>
  <ext:e xmlns:ext="urn:ext"><cmisra:pathSegment>inside extension</cmisra:pathSegment></ext:e>
  <link rel="self" href="http://x/self"/>`))))
	require.NoError(t, err)
	require.Len(t, entry.Elements, 2)
	assert.Equal(t, "after", entry.Elements[0].Object)
	assert.Equal(t, "http://x/self", entry.Elements[1].Object.(*atom.Link).Href)
}

func TestParseMarkupInTextIsFatal(t *testing.T) {
	stream := newTrackedStream(entryXML(`<cmisra:pathSegment><x/></cmisra:pathSegment>`))
	result, err := atom.Parse(stream)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, atom.IsParseError(err))
	assert.Contains(t, err.Error(), "pathSegment")
	assert.True(t, stream.closed)
	assert.True(t, stream.drained())
}

func TestParseTypeDefinitions(t *testing.T) {
	for kind, want := range map[string]any{
		"cmis:cmisTypeDocumentDefinitionType":     &models.DocumentTypeDefinition{},
		"cmis:cmisTypeFolderDefinitionType":       &models.FolderTypeDefinition{},
		"cmis:cmisTypeRelationshipDefinitionType": &models.RelationshipTypeDefinition{},
		"cmis:cmisTypePolicyDefinitionType":       &models.PolicyTypeDefinition{},
	} {
		t.Run(kind, func(t *testing.T) {
			entry, err := atom.ParseEntry(io.NopCloser(strings.NewReader(entryXML(
				`<cmisra:type xsi:type="` + kind + `"><cmis:id>my:type</cmis:id><cmis:baseId>cmis:document</cmis:baseId><cmis:creatable>true</cmis:creatable></cmisra:type>`))))
			require.NoError(t, err)
			require.Len(t, entry.Elements, 1)
			assert.IsType(t, want, entry.Elements[0].Object)

			def := entry.Elements[0].Object.(models.TypeDefinition)
			assert.Equal(t, "my:type", def.TypeID())
			assert.Equal(t, models.BaseTypeDocument, def.BaseType())
			assert.True(t, def.Base().Creatable)
			assert.Equal(t, "my:type", entry.ID)
		})
	}
}

func TestParseTypeDefinitionResolvesPrefix(t *testing.T) {
	entry, err := atom.ParseEntry(io.NopCloser(strings.NewReader(entryXML(
		`<cmisra:type xmlns:c="http://docs.oasis-open.org/ns/cmis/core/200908/" xsi:type="c:cmisTypeDocumentDefinitionType">` +
			`<cmis:id>cmis:document</cmis:id><cmis:versionable>true</cmis:versionable><cmis:contentStreamAllowed>allowed</cmis:contentStreamAllowed></cmisra:type>`))))
	require.NoError(t, err)

	def, ok := entry.Elements[0].Object.(*models.DocumentTypeDefinition)
	require.True(t, ok)
	assert.True(t, def.Versionable)
	assert.Equal(t, "allowed", def.ContentStreamAllowed)
}

func TestParseUnknownTypeDefinitionIsFatal(t *testing.T) {
	for _, doc := range []string{
		entryXML(`<cmisra:type xsi:type="cmis:cmisTypeSecretDefinitionType"><cmis:id>x</cmis:id></cmisra:type>`),
		entryXML(`<cmisra:type><cmis:id>x</cmis:id></cmisra:type>`),
		entryXML(`<cmisra:type xsi:type="nope:cmisTypeDocumentDefinitionType"><cmis:id>x</cmis:id></cmisra:type>`),
		entryXML(`<cmisra:type xsi:type="other:cmisTypeDocumentDefinitionType" xmlns:other="urn:other"><cmis:id>x</cmis:id></cmisra:type>`),
	} {
		_, err := atom.Parse(io.NopCloser(strings.NewReader(doc)))
		require.Error(t, err, doc)
		assert.True(t, atom.IsParseError(err), doc)
	}
}

func TestParseNestedChildren(t *testing.T) {
	entry, err := atom.ParseEntry(io.NopCloser(strings.NewReader(entryXML(
		objectXML("folder-1", "Folder") +
			`<cmisra:children><feed>` +
			`<cmisra:numItems>1</cmisra:numItems>` +
			`<entry>` + objectXML("doc-1", "Doc") + `<cmisra:children><feed/></cmisra:children></entry>` +
			`</feed></cmisra:children>`))))
	require.NoError(t, err)
	assert.Equal(t, "folder-1", entry.ID)
	require.Len(t, entry.Elements, 2)

	children, ok := entry.Elements[1].Object.(*atom.Feed)
	require.True(t, ok)
	assert.Equal(t, atom.NameChildren, entry.Elements[1].Name)
	require.Len(t, children.Entries, 1)
	assert.Equal(t, "doc-1", children.Entries[0].ID)

	grandChildren, ok := children.Entries[0].Elements[1].Object.(*atom.Feed)
	require.True(t, ok)
	assert.Empty(t, grandChildren.Entries)
}

func TestParseServiceDoc(t *testing.T) {
	doc, err := atom.ParseServiceDoc(io.NopCloser(strings.NewReader(`<app:service ` + nsDecl + `>
  <app:workspace>
    <title>Main</title>
    <cmisra:repositoryInfo>
      <cmis:repositoryId>repo1</cmis:repositoryId>
      <cmis:repositoryName>Main Repository</cmis:repositoryName>
      <cmis:rootFolderId>root-id</cmis:rootFolderId>
      <cmis:capabilities><cmis:capabilityGetDescendants>true</cmis:capabilityGetDescendants><cmis:capabilityACL>manage</cmis:capabilityACL></cmis:capabilities>
    </cmisra:repositoryInfo>
    <app:collection href="http://x/checkedout">
      <title>Checked out</title>
      <cmisra:collectionType>checkedout</cmisra:collectionType>
    </app:collection>
    <cmisra:uritemplate>
      <cmisra:template>http://x/id?id={id}&amp;filter={filter}</cmisra:template>
      <cmisra:type>objectbyid</cmisra:type>
      <cmisra:mediatype>application/atom+xml;type=entry</cmisra:mediatype>
    </cmisra:uritemplate>
    <link rel="http://docs.oasis-open.org/ns/cmis/link/200908/changes" href="http://x/changes"/>
  </app:workspace>
  <app:workspace>
    <cmisra:repositoryInfo><cmis:repositoryId>repo2</cmis:repositoryId></cmisra:repositoryInfo>
  </app:workspace>
</app:service>`)))
	require.NoError(t, err)
	require.Len(t, doc.Workspaces, 2)

	ws := doc.Workspaces[0]
	assert.Equal(t, "repo1", ws.RepositoryID)
	require.Len(t, ws.Elements, 4)

	info := ws.Elements[0].Object.(*models.RepositoryInfo)
	assert.Equal(t, "Main Repository", info.Name)
	assert.Equal(t, "root-id", info.RootFolderID)
	assert.True(t, info.Capabilities.GetDescendants)
	assert.Equal(t, "manage", info.Capabilities.ACL)

	assert.Equal(t, &atom.Collection{Href: "http://x/checkedout", CollectionType: "checkedout"}, ws.Elements[1].Object)
	assert.Equal(t, &atom.URITemplate{
		Template:  "http://x/id?id={id}&filter={filter}",
		Type:      "objectbyid",
		MediaType: constants.MediaTypeEntry,
	}, ws.Elements[2].Object)
	assert.Equal(t, constants.RelChanges, ws.Elements[3].Object.(*atom.Link).Rel)

	assert.Equal(t, "repo2", doc.Workspaces[1].RepositoryID)
}

func TestParseAllowableActionsAndACL(t *testing.T) {
	actions, err := atom.ParseAllowableActions(io.NopCloser(strings.NewReader(
		`<cmis:allowableActions xmlns:cmis="http://docs.oasis-open.org/ns/cmis/core/200908/"><cmis:canGetProperties>true</cmis:canGetProperties></cmis:allowableActions>`)))
	require.NoError(t, err)
	assert.True(t, actions.Allowed("canGetProperties"))

	acl, err := atom.ParseACL(io.NopCloser(strings.NewReader(
		`<cmis:acl xmlns:cmis="http://docs.oasis-open.org/ns/cmis/core/200908/"><cmis:permission><cmis:principal><cmis:principalId>bob</cmis:principalId></cmis:principal><cmis:permission>cmis:write</cmis:permission></cmis:permission></cmis:acl>`)))
	require.NoError(t, err)
	assert.Equal(t, []string{"cmis:write"}, acl.Permissions("bob"))
}

func TestParseTypedMismatch(t *testing.T) {
	_, err := atom.ParseFeed(io.NopCloser(strings.NewReader(entryXML(``))))
	require.ErrorIs(t, err, constants.ErrUnexpectedDocument)

	_, err = atom.ParseEntry(io.NopCloser(strings.NewReader(`<html/>`)))
	require.ErrorIs(t, err, constants.ErrUnexpectedDocument)
	assert.Contains(t, err.Error(), "HTML")

	_, err = atom.ParseEntry(io.NopCloser(strings.NewReader(``)))
	require.ErrorIs(t, err, constants.ErrUnexpectedDocument)
}

func TestParseDrainsAndClosesStream(t *testing.T) {
	stream := newTrackedStream(entryXML(objectXML("a", "b")) + `<!-- trailing bytes the parser never needs -->`)
	_, err := atom.Parse(stream)
	require.NoError(t, err)
	assert.True(t, stream.closed)
	assert.True(t, stream.drained())
}

func TestParseStreamError(t *testing.T) {
	stream := &failingStream{data: []byte(`<feed ` + nsDecl + `><entry>`), err: errors.New("connection reset")}
	_, err := atom.Parse(stream)
	require.Error(t, err)
	require.ErrorIs(t, err, constants.ErrConnection)
	assert.Contains(t, err.Error(), "connection reset")
	assert.False(t, atom.IsParseError(err))
}

func TestParseMalformedXML(t *testing.T) {
	_, err := atom.Parse(io.NopCloser(strings.NewReader(`<feed ` + nsDecl + `><entry></feed>`)))
	require.Error(t, err)
	assert.True(t, atom.IsParseError(err))
}
