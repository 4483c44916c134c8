package connection

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
)

// Fetcher performs one HTTP exchange. Implementations return an *HTTPError for
// responses with an error status and wrap transport failures in
// constants.ErrConnection. The caller closes Response.Body.
type Fetcher interface {
	Fetch(ctx context.Context, req *Request) (*Response, error)
}

type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   io.Reader
}

func NewRequest(method, url string) *Request {
	return &Request{Method: method, URL: url, Header: make(http.Header)}
}

// WithBody sets the request body and its media type.
func (r *Request) WithBody(contentType string, body io.Reader) *Request {
	r.Body = body
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(HeaderContentType, contentType)
	return r
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// ContentType returns the media type of the body without parameters, in
// lower case.
func (r *Response) ContentType() string {
	if r == nil || r.Header == nil {
		return ""
	}
	v := r.Header.Get(HeaderContentType)
	if mt, _, err := mime.ParseMediaType(v); err == nil {
		return mt
	}
	mt, _, _ := strings.Cut(v, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// Close drains nothing; it only releases the body.
func (r *Response) Close() error {
	if r == nil || r.Body == nil {
		return nil
	}
	return r.Body.Close()
}
