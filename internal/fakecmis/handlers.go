package fakecmis

import (
	"encoding/xml"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/cmisgo/cmis.go/pkg/constants"
)

// All handlers run with s.mu held.

func (s *Server) serveService(w http.ResponseWriter, repositoryID string) {
	if repositoryID != "" && repositoryID != s.repo.id {
		notFound(w, "repository "+repositoryID)
		return
	}
	d := s.newDocument()
	s.writeService(d)
	writeXML(w, http.StatusOK, constants.MediaTypeService, d.String())
}

func (s *Server) lookup(w http.ResponseWriter, id string) (*Object, bool) {
	o, ok := s.repo.objects[id]
	if !ok {
		notFound(w, id)
	}
	return o, ok
}

func (s *Server) lookupFolder(w http.ResponseWriter, id string) (*Object, bool) {
	o, ok := s.lookup(w, id)
	if ok && !o.isFolder() {
		http.Error(w, "invalidArgument: not a folder: "+id, http.StatusBadRequest)
		return nil, false
	}
	return o, ok
}

func (s *Server) lookupDocument(w http.ResponseWriter, id string) (*Object, bool) {
	o, ok := s.lookup(w, id)
	if ok && o.isFolder() {
		http.Error(w, "constraint: not a document: "+id, http.StatusConflict)
		return nil, false
	}
	return o, ok
}

// checkChangeToken rejects stale writes. An empty token is not checked.
func checkChangeToken(w http.ResponseWriter, o *Object, q url.Values) bool {
	token := q.Get(constants.ParamChangeToken)
	if token != "" && token != o.ChangeToken {
		http.Error(w, fmt.Sprintf("updateConflict: change token %s is stale", token), http.StatusConflict)
		return false
	}
	return true
}

func (s *Server) serveEntry(w http.ResponseWriter, id string) {
	o, ok := s.lookup(w, id)
	if !ok {
		return
	}
	d := s.newDocument()
	s.repo.writeEntry(d, o, entryExtra{}, true)
	writeXML(w, http.StatusOK, constants.MediaTypeEntry, d.String())
}

// window selects a page of total items from the skipCount and maxItems
// parameters. maxItems below 1 means all remaining items.
func window(total int, q url.Values) (start, end int) {
	start, _ = strconv.Atoi(q.Get(constants.ParamSkipCount))
	maxItems, _ := strconv.Atoi(q.Get(constants.ParamMaxItems))
	start = min(max(start, 0), total)
	end = total
	if maxItems > 0 {
		end = min(start+maxItems, total)
	}
	return start, end
}

// nextPage is the next link of a paged feed, or "".
func nextPage(d *document, path string, q url.Values, end, total int) string {
	if end >= total {
		return ""
	}
	next := url.Values{}
	for k, v := range q {
		next[k] = v
	}
	next.Set(constants.ParamSkipCount, strconv.Itoa(end))
	return d.base + "/atom" + path + "?" + next.Encode()
}

func (s *Server) serveChildren(w http.ResponseWriter, id string, q url.Values) {
	folder, ok := s.lookupFolder(w, id)
	if !ok {
		return
	}
	children := s.repo.children(folder.ID)
	start, end := window(len(children), q)
	withSegment := q.Get(constants.ParamIncludePathSegment) == "true"

	d := s.newDocument()
	d.openFeed(feedHeader{
		id:       "urn:fakecmis:children:" + folder.ID,
		title:    "Children of " + folder.Name,
		self:     d.href("/children", "id", folder.ID),
		next:     nextPage(d, "/children", q, end, len(children)),
		numItems: len(children),
		links:    []link{{constants.RelVia, d.href("/id", "id", folder.ID), constants.MediaTypeEntry}},
	}, true)
	for _, child := range children[start:end] {
		var extra entryExtra
		if withSegment {
			extra.pathSegment = child.Name
		}
		s.repo.writeEntry(d, child, extra, false)
	}
	d.WriteString("</feed>")
	writeXML(w, http.StatusOK, constants.MediaTypeFeed, d.String())
}

func (s *Server) serveTree(w http.ResponseWriter, id string, q url.Values, foldersOnly bool) {
	folder, ok := s.lookupFolder(w, id)
	if !ok {
		return
	}
	depth := -1
	if v, err := strconv.Atoi(q.Get(constants.ParamDepth)); err == nil && v != 0 {
		depth = v
	}
	withSegment := q.Get(constants.ParamIncludePathSegment) == "true"

	var level func(d *document, parentID string, depth int)
	level = func(d *document, parentID string, depth int) {
		for _, child := range s.repo.children(parentID) {
			if foldersOnly && !child.isFolder() {
				continue
			}
			var extra entryExtra
			if withSegment {
				extra.pathSegment = child.Name
			}
			if child.isFolder() && depth != 1 && len(s.repo.children(child.ID)) > 0 {
				childID := child.ID
				extra.children = func(d *document) {
					d.openFeed(feedHeader{
						id:       "urn:fakecmis:descendants:" + childID,
						title:    "Descendants of " + childID,
						numItems: -1,
					}, false)
					level(d, childID, depth-1)
					d.WriteString("</feed>")
				}
			}
			s.repo.writeEntry(d, child, extra, false)
		}
	}

	path := "/descendants"
	if foldersOnly {
		path = "/foldertree"
	}
	d := s.newDocument()
	d.openFeed(feedHeader{
		id:       "urn:fakecmis:tree:" + folder.ID,
		title:    "Tree of " + folder.Name,
		self:     d.href(path, "id", folder.ID),
		numItems: -1,
		links:    []link{{constants.RelVia, d.href("/id", "id", folder.ID), constants.MediaTypeEntry}},
	}, true)
	level(d, folder.ID, depth)
	d.WriteString("</feed>")
	writeXML(w, http.StatusOK, constants.MediaTypeDescendants, d.String())
}

func (s *Server) serveFolderParent(w http.ResponseWriter, id string) {
	folder, ok := s.lookupFolder(w, id)
	if !ok {
		return
	}
	if folder.ID == rootID {
		http.Error(w, "invalidArgument: the root folder has no parent", http.StatusBadRequest)
		return
	}
	s.serveEntry(w, folder.ParentID)
}

func (s *Server) serveParents(w http.ResponseWriter, id string, q url.Values) {
	o, ok := s.lookup(w, id)
	if !ok {
		return
	}
	d := s.newDocument()
	count := 1
	if o.ID == rootID {
		count = 0
	}
	d.openFeed(feedHeader{
		id:       "urn:fakecmis:parents:" + o.ID,
		title:    "Parents of " + o.Name,
		self:     d.href("/parents", "id", o.ID),
		numItems: count,
	}, true)
	if parent, ok := s.repo.objects[o.ParentID]; ok && o.ID != rootID {
		var extra entryExtra
		if q.Get(constants.ParamIncludeRelativePathSegment) == "true" {
			extra.relativePathSegment = o.Name
		}
		s.repo.writeEntry(d, parent, extra, false)
	}
	d.WriteString("</feed>")
	writeXML(w, http.StatusOK, constants.MediaTypeFeed, d.String())
}

func (s *Server) serveAllowableActions(w http.ResponseWriter, id string) {
	o, ok := s.lookup(w, id)
	if !ok {
		return
	}
	d := s.newDocument()
	writeAllowableActions(d, o)
	writeXML(w, http.StatusOK, constants.MediaTypeAllowableAction, d.String())
}

func (s *Server) serveACL(w http.ResponseWriter, id string, q url.Values) {
	if _, ok := s.lookup(w, id); !ok {
		return
	}
	d := s.newDocument()
	writeACL(d, q.Get(constants.ParamOnlyBasicPermissions) != "false")
	writeXML(w, http.StatusOK, constants.MediaTypeACL, d.String())
}

func (s *Server) serveContent(w http.ResponseWriter, id string) {
	o, ok := s.lookupDocument(w, id)
	if !ok {
		return
	}
	if o.Content == nil {
		http.Error(w, "constraint: document has no content: "+id, http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", o.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(o.Content)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": o.Name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(o.Content)
}

func (s *Server) setContent(w http.ResponseWriter, r *http.Request, id string, body []byte) {
	o, ok := s.lookupDocument(w, id)
	if !ok {
		return
	}
	q := r.URL.Query()
	if !checkChangeToken(w, o, q) {
		return
	}
	if o.Content != nil && q.Get(constants.ParamOverwriteFlag) == "false" {
		http.Error(w, "contentAlreadyExists: "+id, http.StatusConflict)
		return
	}
	o.Content = append([]byte{}, body...)
	o.MimeType = r.Header.Get("Content-Type")
	if o.MimeType == "" {
		o.MimeType = constants.MediaTypeOctetStream
	}
	if _, params, err := mime.ParseMediaType(r.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		o.Name = params["filename"]
	}
	s.repo.touch(o)
	s.repo.log(o.ID, "updated")

	d := s.newDocument()
	s.repo.writeEntry(d, o, entryExtra{}, true)
	w.Header().Set("Location", d.href("/id", "id", o.ID))
	writeXML(w, http.StatusCreated, constants.MediaTypeEntry, d.String())
}

func (s *Server) deleteContent(w http.ResponseWriter, id string, q url.Values) {
	o, ok := s.lookupDocument(w, id)
	if !ok {
		return
	}
	if !checkChangeToken(w, o, q) {
		return
	}
	o.Content = nil
	o.MimeType = ""
	s.repo.touch(o)
	s.repo.log(o.ID, "updated")
	w.WriteHeader(http.StatusNoContent)
}

// updateRequest is the part of a posted entry the server reads.
type updateRequest struct {
	Properties struct {
		Items []struct {
			ID     string   `xml:"propertyDefinitionId,attr"`
			Values []string `xml:"value"`
		} `xml:",any"`
	} `xml:"object>properties"`
}

func (s *Server) updateProperties(w http.ResponseWriter, id string, q url.Values, body []byte) {
	o, ok := s.lookup(w, id)
	if !ok {
		return
	}
	if !checkChangeToken(w, o, q) {
		return
	}
	var req updateRequest
	if err := xml.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalidArgument: "+err.Error(), http.StatusBadRequest)
		return
	}
	for _, p := range req.Properties.Items {
		if p.ID == constants.PropertyName && len(p.Values) > 0 {
			o.Name = p.Values[0]
		}
	}
	s.repo.touch(o)
	s.repo.log(o.ID, "updated")

	d := s.newDocument()
	s.repo.writeEntry(d, o, entryExtra{}, true)
	writeXML(w, http.StatusOK, constants.MediaTypeEntry, d.String())
}

func (s *Server) deleteObject(w http.ResponseWriter, id string) {
	o, ok := s.lookup(w, id)
	if !ok {
		return
	}
	switch {
	case o.ID == rootID:
		http.Error(w, "constraint: the root folder cannot be deleted", http.StatusConflict)
		return
	case o.isFolder() && len(s.repo.children(o.ID)) > 0:
		http.Error(w, "constraint: folder is not empty: "+id, http.StatusConflict)
		return
	}
	s.repo.remove(o.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) serveCheckedOut(w http.ResponseWriter, q url.Values) {
	folderID := q.Get(constants.ParamFolderID)
	var docs []*Object
	for _, id := range s.repo.order {
		o := s.repo.objects[id]
		if o.CheckedOut && (folderID == "" || o.ParentID == folderID) {
			docs = append(docs, o)
		}
	}
	s.writeObjectFeed(w, http.StatusOK, "/checkedout", "Checked out documents", docs, q)
}

func (s *Server) writeObjectFeed(w http.ResponseWriter, status int, path, title string, objects []*Object, q url.Values) {
	start, end := window(len(objects), q)
	d := s.newDocument()
	d.openFeed(feedHeader{
		id:       "urn:fakecmis:" + strings.TrimPrefix(path, "/"),
		title:    title,
		self:     d.href(path),
		next:     nextPage(d, path, q, end, len(objects)),
		numItems: len(objects),
	}, true)
	for _, o := range objects[start:end] {
		s.repo.writeEntry(d, o, entryExtra{}, false)
	}
	d.WriteString("</feed>")
	writeXML(w, status, constants.MediaTypeFeed, d.String())
}

func (s *Server) serveChanges(w http.ResponseWriter, q url.Values) {
	changes := s.repo.changes
	start, _ := strconv.Atoi(q.Get(constants.ParamChangeLogToken))
	start = min(max(start, 0), len(changes))
	end := len(changes)
	if maxItems, _ := strconv.Atoi(q.Get(constants.ParamMaxItems)); maxItems > 0 {
		end = min(start+maxItems, len(changes))
	}

	d := s.newDocument()
	h := feedHeader{
		id:       "urn:fakecmis:changes",
		title:    "Content changes",
		self:     d.href("/changes"),
		numItems: len(changes) - start,
	}
	if end < len(changes) {
		next := url.Values{}
		for k, v := range q {
			next[k] = v
		}
		next.Set(constants.ParamChangeLogToken, strconv.Itoa(end))
		h.next = d.base + "/atom/changes?" + next.Encode()
	}
	d.openFeed(h, true)
	for i := start; i < end; i++ {
		c := changes[i]
		if o, ok := s.repo.objects[c.ObjectID]; ok {
			s.repo.writeEntry(d, o, entryExtra{change: &c}, false)
		} else {
			writeDeletedEntry(d, &c)
		}
	}
	d.WriteString("</feed>")
	writeXML(w, http.StatusOK, constants.MediaTypeFeed, d.String())
}

var queryPattern = regexp.MustCompile(`(?i)^\s*SELECT\s+.+?\s+FROM\s+(\S+)(\s+WHERE\s+cmis:name\s*=\s*'((?:[^']|'')*)')?\s*$`)

func (s *Server) serveQuery(w http.ResponseWriter, status int, statement string, q url.Values) {
	m := queryPattern.FindStringSubmatch(statement)
	if m == nil {
		http.Error(w, "invalidArgument: unsupported statement: "+statement, http.StatusBadRequest)
		return
	}
	from := strings.ToLower(m[1])
	if from != BaseDocument && from != BaseFolder {
		http.Error(w, "invalidArgument: unknown type "+m[1], http.StatusBadRequest)
		return
	}
	byName := m[2] != ""
	name := strings.ReplaceAll(m[3], "''", "'")

	var hits []*Object
	for _, id := range s.repo.order {
		o := s.repo.objects[id]
		if o.ID == rootID || o.BaseType != from {
			continue
		}
		if byName && o.Name != name {
			continue
		}
		hits = append(hits, o)
	}
	s.writeObjectFeed(w, status, "/query", "Query results", hits, q)
}

// queryRequest is a posted cmis:query document.
type queryRequest struct {
	Statement string `xml:"statement"`
	MaxItems  int    `xml:"maxItems"`
	SkipCount int    `xml:"skipCount"`
}

func (s *Server) postQuery(w http.ResponseWriter, body []byte) {
	var req queryRequest
	if err := xml.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalidArgument: "+err.Error(), http.StatusBadRequest)
		return
	}
	q := url.Values{constants.ParamQ: {req.Statement}}
	if req.MaxItems > 0 {
		q.Set(constants.ParamMaxItems, strconv.Itoa(req.MaxItems))
	}
	if req.SkipCount > 0 {
		q.Set(constants.ParamSkipCount, strconv.Itoa(req.SkipCount))
	}
	s.serveQuery(w, http.StatusCreated, req.Statement, q)
}

func (s *Server) serveType(w http.ResponseWriter, id string) {
	if id != BaseDocument && id != BaseFolder {
		notFound(w, "type "+id)
		return
	}
	d := s.newDocument()
	writeType(d, id)
	writeXML(w, http.StatusOK, constants.MediaTypeEntry, d.String())
}
