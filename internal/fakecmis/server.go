// Package fakecmis provides a fake CMIS AtomPub server for testing purposes.
// It keeps one in-memory repository of folders and documents and serves the
// service document, entries, feeds, trees, content streams, queries and the
// change log the way a real AtomPub binding does, links included.
//
// Every request is recorded so tests can assert which URLs a client
// followed. To test error paths, failures can be injected per path: HTTP
// error statuses, HTML login pages, garbage or truncated bodies and delays.
package fakecmis

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"

	"github.com/cmisgo/cmis.go/pkg/constants"
)

// FailureType represents the type of failure to inject during request processing
type FailureType string

const (
	// FailureNone indicates no failure injection
	FailureNone FailureType = "none"
	// FailureStatus answers with Status and a plain text body
	FailureStatus FailureType = "status"
	// FailureHTML answers 200 with an HTML page, like a login redirect would
	FailureHTML FailureType = "html"
	// FailureInvalidResponse answers 200 with malformed XML
	FailureInvalidResponse FailureType = "invalid_response"
	// FailurePartialMessage sends only half of the response body
	FailurePartialMessage FailureType = "partial_message"
	// FailureRequestDelay delays before processing the request
	FailureRequestDelay FailureType = "request_delay"
)

// FailureConfig defines how and when to inject a specific failure type
type FailureConfig struct {
	// Type specifies the type of failure to inject
	Type FailureType
	// Path restricts the failure to one endpoint, e.g. "/atom/children".
	// Empty matches every request.
	Path string
	// Method restricts the failure to one HTTP method. Empty matches all.
	Method string
	// Status is the HTTP status for FailureStatus
	Status int
	// Message is the body for FailureStatus
	Message string
	// Delay is the delay for FailureRequestDelay
	Delay time.Duration
	// Times limits how often the failure triggers. Zero means always.
	Times int
}

// Request is a recorded request.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Server is a fake CMIS AtomPub server.
type Server struct {
	mu       sync.RWMutex
	repo     *repository
	failures []*FailureConfig
	requests []Request
	server   *httptest.Server
	base     string

	// User and Password, when set, are required as basic auth credentials.
	User     string
	Password string

	// QueryTemplate advertises the query URI template. Without it clients
	// have to post queries to the query collection.
	QueryTemplate bool
}

// NewServer creates a server for a repository with an empty root folder.
// Call Start before use.
func NewServer(repositoryID string) *Server {
	return &Server{repo: newRepository(repositoryID), QueryTemplate: true}
}

// Start serves on a random local port.
func (s *Server) Start() {
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	s.mu.Lock()
	s.base = s.server.URL
	s.mu.Unlock()
}

// Close shuts the server down.
func (s *Server) Close() {
	if s.server != nil {
		s.server.Close()
	}
}

// URL is the service document URL.
func (s *Server) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.base + "/atom"
}

// Client returns an HTTP client for the server.
func (s *Server) Client() *http.Client {
	return s.server.Client()
}

// RepositoryID returns the id of the served repository.
func (s *Server) RepositoryID() string {
	return s.repo.id
}

// AddFailure injects a failure. Failures are checked in the order added.
func (s *Server) AddFailure(f FailureConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, &f)
}

// ClearFailures removes every injected failure.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = nil
}

// Requests returns the recorded requests in arrival order.
func (s *Server) Requests() []Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo returns the recorded requests for one path.
func (s *Server) RequestsTo(path string) []Request {
	var matched []Request
	for _, r := range s.Requests() {
		if r.Path == path {
			matched = append(matched, r)
		}
	}
	return matched
}

// ResetRequests forgets the recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// AddFolder creates a folder below parentID.
func (s *Server) AddFolder(id, name, parentID string) *Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.add(&Object{ID: id, Name: name, BaseType: BaseFolder, ParentID: parentID})
}

// AddDocument creates a document below parentID.
func (s *Server) AddDocument(id, name, parentID, mimeType string, content []byte) *Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.add(&Object{
		ID:       id,
		Name:     name,
		BaseType: BaseDocument,
		ParentID: parentID,
		MimeType: mimeType,
		Content:  content,
	})
}

// CheckOut marks a document as checked out.
func (s *Server) CheckOut(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.repo.objects[id]; ok {
		o.CheckedOut = true
	}
}

// RemoveLink drops a relation from the links served for an object, as a
// repository does when the user loses a permission.
func (s *Server) RemoveLink(id, rel string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.repo.objects[id]; ok {
		if o.hiddenRels == nil {
			o.hiddenRels = map[string]bool{}
		}
		o.hiddenRels[rel] = true
	}
}

// Object returns a copy of a stored object.
func (s *Server) Object(id string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.repo.objects[id]
	if !ok {
		return Object{}, false
	}
	return *o, true
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	failure := s.matchFailure(r)
	s.mu.Unlock()

	if s.User != "" {
		user, password, ok := r.BasicAuth()
		if !ok || user != s.User || password != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="cmis"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	if failure != nil {
		if done := s.applyFailure(w, failure); done {
			return
		}
	}

	rec := httptest.NewRecorder()
	s.route(rec, r, body)

	if failure != nil && failure.Type == FailurePartialMessage {
		copyHeader(w.Header(), rec.Header())
		w.Header().Del("Content-Length")
		w.WriteHeader(rec.Code)
		b := rec.Body.Bytes()
		_, _ = w.Write(b[:len(b)/2])
		return
	}
	copyHeader(w.Header(), rec.Header())
	w.WriteHeader(rec.Code)
	_, _ = io.Copy(w, bytes.NewReader(rec.Body.Bytes()))
}

func copyHeader(dst, src http.Header) {
	for k, v := range src {
		dst[k] = v
	}
}

// matchFailure finds the first failure for r and counts it. s.mu is held.
func (s *Server) matchFailure(r *http.Request) *FailureConfig {
	for _, f := range s.failures {
		if f.Type == FailureNone {
			continue
		}
		if f.Path != "" && f.Path != r.URL.Path {
			continue
		}
		if f.Method != "" && f.Method != r.Method {
			continue
		}
		if f.Times < 0 {
			continue
		}
		if f.Times > 0 {
			f.Times--
			if f.Times == 0 {
				f.Times = -1
			}
		}
		return f
	}
	return nil
}

// applyFailure writes the failure response. It returns false when the
// request should still be served.
func (s *Server) applyFailure(w http.ResponseWriter, f *FailureConfig) bool {
	switch f.Type {
	case FailureStatus:
		http.Error(w, f.Message, f.Status)
		return true
	case FailureHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, "<!DOCTYPE html>\n<HTML><head><title>Login</title></head><body>Please log in</body></HTML>")
		return true
	case FailureInvalidResponse:
		w.Header().Set("Content-Type", "application/atom+xml;type=entry")
		_, _ = io.WriteString(w, `<?xml version="1.0"?><entry xmlns="http://www.w3.org/2005/Atom"><id>`)
		return true
	case FailureRequestDelay:
		time.Sleep(f.Delay)
	}
	return false
}

func (s *Server) route(w http.ResponseWriter, r *http.Request, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := r.URL.Query()
	id := q.Get("id")
	switch r.Method + " " + r.URL.Path {
	case "GET /atom":
		s.serveService(w, q.Get("repositoryId"))
	case "GET /atom/id":
		s.serveEntry(w, id)
	case "GET /atom/path":
		s.serveEntry(w, s.repo.byPath(q.Get("path")))
	case "GET /atom/children":
		s.serveChildren(w, id, q)
	case "GET /atom/descendants":
		s.serveTree(w, id, q, false)
	case "GET /atom/foldertree":
		s.serveTree(w, id, q, true)
	case "GET /atom/parent":
		s.serveFolderParent(w, id)
	case "GET /atom/parents":
		s.serveParents(w, id, q)
	case "GET /atom/allowableactions":
		s.serveAllowableActions(w, id)
	case "GET /atom/acl":
		s.serveACL(w, id, q)
	case "GET /atom/content":
		s.serveContent(w, id)
	case "PUT /atom/content":
		s.setContent(w, r, id, body)
	case "DELETE /atom/content":
		s.deleteContent(w, id, q)
	case "PUT /atom/entry":
		s.updateProperties(w, id, q, body)
	case "DELETE /atom/entry":
		s.deleteObject(w, id)
	case "GET /atom/checkedout":
		s.serveCheckedOut(w, q)
	case "GET /atom/changes":
		s.serveChanges(w, q)
	case "GET /atom/query":
		s.serveQuery(w, http.StatusOK, q.Get(constants.ParamQ), q)
	case "POST /atom/query":
		s.postQuery(w, body)
	case "GET /atom/type":
		s.serveType(w, id)
	default:
		http.Error(w, fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path), http.StatusNotFound)
	}
}

func notFound(w http.ResponseWriter, what string) {
	http.Error(w, "objectNotFound: "+what, http.StatusNotFound)
}

func writeXML(w http.ResponseWriter, status int, contentType, doc string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = io.WriteString(w, doc)
}
