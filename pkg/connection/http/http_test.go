package http_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/suite"

	"github.com/cmisgo/cmis.go/pkg/connection"
	cmishttp "github.com/cmisgo/cmis.go/pkg/connection/http"
	"github.com/cmisgo/cmis.go/pkg/constants"
)

type RoundTripFunc func(req *http.Request) *http.Response

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

// NewTestClient returns *http.Client with Transport replaced to avoid making real calls
func NewTestClient(fn RoundTripFunc) *http.Client {
	return &http.Client{
		Transport: fn,
	}
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

type HTTPTestSuite struct {
	suite.Suite
	config *connection.Config
}

func TestHttpTestSuite(t *testing.T) {
	suite.Run(t, new(HTTPTestSuite))
}

func (s *HTTPTestSuite) SetupTest() {
	u, err := url.Parse("http://test.cmis/cmis/atom")
	s.Require().NoError(err)
	s.config = connection.NewConfig(u)
}

func response(status int, header http.Header, body []byte) *http.Response {
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		StatusCode: status,
		// Send response to be tested
		Body: io.NopCloser(bytes.NewReader(body)),
		// Must be set to non-nil value or it panics
		Header: header,
	}
}

func (s *HTTPTestSuite) fetch(conn *cmishttp.HTTPConnection, req *connection.Request) (string, error) {
	resp, err := conn.Fetch(context.Background(), req)
	if err != nil {
		return "", err
	}
	defer resp.Close()
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return string(body), nil
}

func (s *HTTPTestSuite) TestFetchSendsHeadersAndAuth() {
	s.config.User = "admin"
	s.config.Password = "secret"
	conn := cmishttp.New(s.config).SetHTTPClient(NewTestClient(func(req *http.Request) *http.Response {
		s.Equal("http://test.cmis/cmis/atom/children", req.URL.String())
		s.Equal(http.MethodGet, req.Method)
		user, password, ok := req.BasicAuth()
		s.True(ok)
		s.Equal("admin", user)
		s.Equal("secret", password)
		s.Equal(connection.UserAgent, req.Header.Get("User-Agent"))
		s.Equal("application/atom+xml", req.Header.Get("Accept"))
		s.Empty(req.Header.Get("Accept-Encoding"))
		return response(http.StatusOK, http.Header{"Content-Type": {"application/atom+xml;type=feed"}}, []byte("<feed/>"))
	}))

	req := connection.NewRequest("", "http://test.cmis/cmis/atom/children")
	req.Header.Set("Accept", "application/atom+xml")
	body, err := s.fetch(conn, req)
	s.Require().NoError(err)
	s.Equal("<feed/>", body)
}

func (s *HTTPTestSuite) TestFetchResolvesRelativeURL() {
	conn := cmishttp.New(s.config).SetHTTPClient(NewTestClient(func(req *http.Request) *http.Response {
		s.Equal("http://test.cmis/cmis/atom", req.URL.String())
		return response(http.StatusOK, nil, nil)
	}))

	_, err := s.fetch(conn, connection.NewRequest(http.MethodGet, "/cmis/atom"))
	s.Require().NoError(err)
}

func (s *HTTPTestSuite) TestFetchPostsBody() {
	conn := cmishttp.New(s.config).SetHTTPClient(NewTestClient(func(req *http.Request) *http.Response {
		s.Equal(http.MethodPost, req.Method)
		s.Equal("application/cmisquery+xml", req.Header.Get("Content-Type"))
		body, err := io.ReadAll(req.Body)
		s.NoError(err)
		s.Equal("<query/>", string(body))
		return response(http.StatusCreated, nil, []byte("<feed/>"))
	}))

	req := connection.NewRequest(http.MethodPost, "http://test.cmis/query").
		WithBody("application/cmisquery+xml", strings.NewReader("<query/>"))
	_, err := s.fetch(conn, req)
	s.Require().NoError(err)
}

func (s *HTTPTestSuite) TestFetchDecodesCompressedBodies() {
	var gz, zl, fl bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, _ = gw.Write([]byte("gzipped"))
	s.Require().NoError(gw.Close())
	zw := zlib.NewWriter(&zl)
	_, _ = zw.Write([]byte("zlibbed"))
	s.Require().NoError(zw.Close())
	fw, err := flate.NewWriter(&fl, flate.DefaultCompression)
	s.Require().NoError(err)
	_, _ = fw.Write([]byte("deflated"))
	s.Require().NoError(fw.Close())

	cases := []struct {
		encoding string
		body     []byte
		want     string
	}{
		{encoding: "gzip", body: gz.Bytes(), want: "gzipped"},
		{encoding: "deflate", body: zl.Bytes(), want: "zlibbed"},
		{encoding: "deflate", body: fl.Bytes(), want: "deflated"},
		{encoding: "", body: []byte("plain"), want: "plain"},
	}

	s.config.Compression = true
	for _, tc := range cases {
		tc := tc
		conn := cmishttp.New(s.config).SetHTTPClient(NewTestClient(func(req *http.Request) *http.Response {
			s.Equal("gzip, deflate", req.Header.Get("Accept-Encoding"))
			header := make(http.Header)
			if tc.encoding != "" {
				header.Set("Content-Encoding", tc.encoding)
			}
			return response(http.StatusOK, header, tc.body)
		}))
		body, err := s.fetch(conn, connection.NewRequest(http.MethodGet, "http://test.cmis/x"))
		s.Require().NoError(err, tc.want)
		s.Equal(tc.want, body)
	}
}

func (s *HTTPTestSuite) TestFetchBrokenGzipIsConnectionError() {
	s.config.Compression = true
	conn := cmishttp.New(s.config).SetHTTPClient(NewTestClient(func(req *http.Request) *http.Response {
		return response(http.StatusOK, http.Header{"Content-Encoding": {"gzip"}}, []byte("not gzip"))
	}))

	_, err := conn.Fetch(context.Background(), connection.NewRequest(http.MethodGet, "http://test.cmis/x"))
	s.Require().ErrorIs(err, constants.ErrConnection)
}

func (s *HTTPTestSuite) TestFetchMapsErrorStatus() {
	cases := []struct {
		status int
		body   string
		want   error
	}{
		{status: http.StatusBadRequest, want: constants.ErrInvalidArgument},
		{status: http.StatusUnauthorized, want: constants.ErrPermissionDenied},
		{status: http.StatusForbidden, want: constants.ErrPermissionDenied},
		{status: http.StatusNotFound, body: "no such object", want: constants.ErrObjectNotFound},
		{status: http.StatusMethodNotAllowed, want: constants.ErrNotSupported},
		{status: http.StatusConflict, want: constants.ErrConstraint},
		{status: http.StatusConflict, body: "updateConflict: stale change token", want: constants.ErrUpdateConflict},
		{status: http.StatusInternalServerError, want: constants.ErrRuntime},
	}

	for _, tc := range cases {
		tc := tc
		conn := cmishttp.New(s.config).SetHTTPClient(NewTestClient(func(req *http.Request) *http.Response {
			return response(tc.status, nil, []byte(tc.body))
		}))

		_, err := conn.Fetch(context.Background(), connection.NewRequest(http.MethodGet, "http://test.cmis/x"))
		s.Require().Error(err)
		s.ErrorIs(err, tc.want, "status %d", tc.status)

		var httpErr *connection.HTTPError
		s.Require().ErrorAs(err, &httpErr)
		s.Equal(tc.status, httpErr.StatusCode)
		s.Equal(tc.body, httpErr.Message)
	}
}

func (s *HTTPTestSuite) TestFetchTransportError() {
	conn := cmishttp.New(s.config).SetHTTPClient(&http.Client{Transport: failingTransport{}})

	_, err := conn.Fetch(context.Background(), connection.NewRequest(http.MethodGet, "http://test.cmis/x"))
	s.Require().ErrorIs(err, constants.ErrConnection)
}

func (s *HTTPTestSuite) TestFetchWithoutURL() {
	conn := cmishttp.New(s.config)

	_, err := conn.Fetch(context.Background(), connection.NewRequest(http.MethodGet, ""))
	s.Require().ErrorIs(err, constants.ErrNoBaseURL)
}
