package fakecmis

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmisgo/cmis.go/pkg/atom"
	"github.com/cmisgo/cmis.go/pkg/constants"
	"github.com/cmisgo/cmis.go/pkg/models"
)

func startServer(t *testing.T) *Server {
	t.Helper()
	server := NewServer("repo1")
	server.AddFolder("f1", "docs", "")
	server.AddDocument("d1", "a.txt", "f1", "text/plain", []byte("hello"))
	server.AddDocument("d2", "b.txt", "f1", "text/plain", nil)
	server.Start()
	t.Cleanup(server.Close)
	return server
}

func get(t *testing.T, server *Server, href string) *http.Response {
	t.Helper()
	resp, err := server.Client().Get(href)
	require.NoError(t, err)
	return resp
}

func TestServiceDocument(t *testing.T) {
	server := startServer(t)

	result, err := atom.Parse(get(t, server, server.URL()).Body)
	require.NoError(t, err)
	doc, ok := result.(*atom.ServiceDoc)
	require.True(t, ok)
	require.Len(t, doc.Workspaces, 1)

	ws := doc.Workspaces[0]
	assert.Equal(t, "repo1", ws.RepositoryID)

	var collections, templates, links int
	for _, el := range ws.Elements {
		switch v := el.Object.(type) {
		case *models.RepositoryInfo:
			assert.Equal(t, "root", v.RootFolderID)
			assert.True(t, v.Capabilities.GetDescendants)
		case *atom.Collection:
			collections++
		case *atom.URITemplate:
			templates++
			assert.Contains(t, v.Template, server.URL())
		case *atom.Link:
			links++
		}
	}
	assert.Equal(t, 4, collections)
	assert.Equal(t, 4, templates)
	assert.Equal(t, 3, links)

	resp := get(t, server, server.URL()+"?repositoryId=other")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEntryLinks(t *testing.T) {
	server := startServer(t)

	entry, err := atom.ParseEntry(get(t, server, server.URL()+"/id?id=d1").Body)
	require.NoError(t, err)
	assert.Equal(t, "d1", entry.ID)

	rels := map[string]string{}
	for _, el := range entry.Elements {
		if l, ok := el.Object.(*atom.Link); ok {
			rels[l.Rel] = l.Href
		}
	}
	assert.Equal(t, server.URL()+"/content?id=d1", rels[constants.RelEditMedia])
	assert.Equal(t, server.URL()+"/content?id=d1", rels[constants.RelContent])
	assert.Contains(t, rels, constants.RelUp)

	server.RemoveLink("d1", constants.RelEditMedia)
	entry, err = atom.ParseEntry(get(t, server, server.URL()+"/id?id=d1").Body)
	require.NoError(t, err)
	for _, el := range entry.Elements {
		if l, ok := el.Object.(*atom.Link); ok {
			assert.NotEqual(t, constants.RelEditMedia, l.Rel)
		}
	}
}

func TestChildrenPaging(t *testing.T) {
	server := startServer(t)

	feed, err := atom.ParseFeed(get(t, server, server.URL()+"/children?id=f1&maxItems=1").Body)
	require.NoError(t, err)
	require.Len(t, feed.Entries, 1)
	assert.Equal(t, "d1", feed.Entries[0].ID)

	var next string
	for _, el := range feed.Elements {
		if l, ok := el.Object.(*atom.Link); ok && l.Rel == constants.RelNext {
			next = l.Href
		}
	}
	require.NotEmpty(t, next)

	feed, err = atom.ParseFeed(get(t, server, next).Body)
	require.NoError(t, err)
	require.Len(t, feed.Entries, 1)
	assert.Equal(t, "d2", feed.Entries[0].ID)
}

func TestDescendantsNesting(t *testing.T) {
	server := startServer(t)

	feed, err := atom.ParseFeed(get(t, server, server.URL()+"/descendants?id=root").Body)
	require.NoError(t, err)
	require.Len(t, feed.Entries, 1)

	var children *atom.Feed
	for _, el := range feed.Entries[0].Elements {
		if f, ok := el.Object.(*atom.Feed); ok {
			children = f
		}
	}
	require.NotNil(t, children)
	assert.Len(t, children.Entries, 2)

	feed, err = atom.ParseFeed(get(t, server, server.URL()+"/descendants?id=root&depth=1").Body)
	require.NoError(t, err)
	for _, el := range feed.Entries[0].Elements {
		_, nested := el.Object.(*atom.Feed)
		assert.False(t, nested)
	}
}

func TestContentRoundTrip(t *testing.T) {
	server := startServer(t)

	resp := get(t, server, server.URL()+"/content?id=d1")
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))

	req, err := http.NewRequest(http.MethodPut, server.URL()+"/content?id=d2", strings.NewReader("new"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/csv")
	resp, err = server.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	o, ok := server.Object("d2")
	require.True(t, ok)
	assert.Equal(t, "new", string(o.Content))
	assert.Equal(t, "text/csv", o.MimeType)
}

func TestQueryStatements(t *testing.T) {
	server := startServer(t)

	tests := []struct {
		statement string
		status    int
		hits      int
	}{
		{"SELECT * FROM cmis:document", http.StatusOK, 2},
		{"select * from cmis:folder", http.StatusOK, 1},
		{"SELECT * FROM cmis:document WHERE cmis:name = 'b.txt'", http.StatusOK, 1},
		{"SELECT * FROM cmis:policy", http.StatusBadRequest, 0},
		{"DELETE everything", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.statement, func(t *testing.T) {
			resp := get(t, server, server.URL()+"/query?q="+strings.ReplaceAll(tt.statement, " ", "+"))
			require.Equal(t, tt.status, resp.StatusCode)
			if tt.status != http.StatusOK {
				resp.Body.Close()
				return
			}
			feed, err := atom.ParseFeed(resp.Body)
			require.NoError(t, err)
			assert.Len(t, feed.Entries, tt.hits)
		})
	}
}

func TestFailureInjection(t *testing.T) {
	server := startServer(t)

	server.AddFailure(FailureConfig{Type: FailureStatus, Path: "/atom/id", Status: http.StatusForbidden, Message: "denied", Times: 1})
	resp := get(t, server, server.URL()+"/id?id=d1")
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = get(t, server, server.URL()+"/id?id=d1")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	server.AddFailure(FailureConfig{Type: FailureHTML, Path: "/atom/children"})
	result, err := atom.Parse(get(t, server, server.URL()+"/children?id=f1").Body)
	require.NoError(t, err)
	assert.IsType(t, &atom.HTMLDoc{}, result)

	server.ClearFailures()
	server.AddFailure(FailureConfig{Type: FailureRequestDelay, Delay: 20 * time.Millisecond})
	start := time.Now()
	resp = get(t, server, server.URL())
	resp.Body.Close()
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	assert.NotEmpty(t, server.RequestsTo("/atom/children"))
	server.ResetRequests()
	assert.Empty(t, server.Requests())
}

func TestBasicAuth(t *testing.T) {
	server := NewServer("repo1")
	server.User = "admin"
	server.Password = "secret"
	server.Start()
	defer server.Close()

	resp := get(t, server, server.URL())
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, server.URL(), nil)
	require.NoError(t, err)
	req.SetBasicAuth("admin", "secret")
	resp, err = server.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestChangeLog(t *testing.T) {
	server := startServer(t)

	req, err := http.NewRequest(http.MethodDelete, server.URL()+"/entry?id=d2", nil)
	require.NoError(t, err)
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	feed, err := atom.ParseFeed(get(t, server, server.URL()+"/changes?changeLogToken=1").Body)
	require.NoError(t, err)
	require.Len(t, feed.Entries, 4)

	last := feed.Entries[3]
	assert.Equal(t, "d2", last.ID)
	for _, el := range last.Elements {
		if obj, ok := el.Object.(*models.ObjectData); ok {
			require.NotNil(t, obj.ChangeEventInfo)
			assert.Equal(t, "deleted", obj.ChangeEventInfo.ChangeType)
		}
	}
}
