package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/rs/zerolog"

	"github.com/cmisgo/cmis.go/pkg/connection"
	"github.com/cmisgo/cmis.go/pkg/constants"
)

// HTTPConnection is the connection.Fetcher used by sessions. It adds basic
// authentication and, when compression is on, decodes gzip and deflate
// bodies itself.
type HTTPConnection struct {
	BaseURL string

	user        string
	password    string
	compression bool

	httpClient *http.Client
	log        zerolog.Logger
}

func New(p *connection.Config) *HTTPConnection {
	con := HTTPConnection{
		BaseURL:     p.BaseURL,
		user:        p.User,
		password:    p.Password,
		compression: p.Compression,
		log:         zerolog.Nop(),
	}
	if p.Logger != nil {
		con.log = p.Logger.With().Str("component", "http").Logger()
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = connection.DefaultTimeout
	}
	con.httpClient = p.HTTPClient
	if con.httpClient == nil {
		con.httpClient = &http.Client{
			Timeout: timeout, // Set a default timeout to avoid hanging requests
		}
	}

	return &con
}

func (h *HTTPConnection) SetTimeout(timeout time.Duration) *HTTPConnection {
	h.httpClient.Timeout = timeout
	return h
}

func (h *HTTPConnection) SetHTTPClient(client *http.Client) *HTTPConnection {
	h.httpClient = client
	return h
}

// Fetch sends req and returns the response with a decoded body. Relative URLs
// are resolved against BaseURL.
func (h *HTTPConnection) Fetch(ctx context.Context, req *connection.Request) (*connection.Response, error) {
	target, err := h.resolve(req.URL)
	if err != nil {
		return nil, err
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, req.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidArgument, err)
	}
	for k, v := range req.Header {
		httpReq.Header[k] = v
	}
	httpReq.Header.Set(connection.HeaderUserAgent, connection.UserAgent)
	if h.compression {
		httpReq.Header.Set(connection.HeaderAcceptEncoding, "gzip, deflate")
	}
	if h.user != "" {
		httpReq.SetBasicAuth(h.user, h.password)
	}

	start := time.Now()
	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: error making HTTP request: %w", constants.ErrConnection, err)
	}
	h.log.Debug().
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("fetched")

	body, err := decodeBody(resp)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %w", constants.ErrConnection, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer body.Close()
		msg, _ := io.ReadAll(io.LimitReader(body, connection.MaxErrorBody))
		_, _ = io.Copy(io.Discard, body)
		return nil, &connection.HTTPError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
	}

	return &connection.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (h *HTTPConnection) resolve(target string) (string, error) {
	if target == "" {
		return "", constants.ErrNoBaseURL
	}
	if strings.Contains(target, "://") {
		return target, nil
	}
	if h.BaseURL == "" {
		return "", constants.ErrNoBaseURL
	}
	return strings.TrimSuffix(h.BaseURL, "/") + "/" + strings.TrimPrefix(target, "/"), nil
}

// decodeBody undoes the Content-Encoding of resp. The returned body closes the
// underlying one.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get(connection.HeaderContentEncoding)))
	switch encoding {
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading gzip response: %w", err)
		}
		return &decodedBody{Reader: zr, decoder: zr, raw: resp.Body}, nil
	case "deflate":
		// Servers send either zlib-wrapped or raw deflate data.
		br := bufio.NewReader(resp.Body)
		if isZlibHeader(br) {
			zr, err := zlib.NewReader(br)
			if err != nil {
				return nil, fmt.Errorf("reading deflate response: %w", err)
			}
			return &decodedBody{Reader: zr, decoder: zr, raw: resp.Body}, nil
		}
		fr := flate.NewReader(br)
		return &decodedBody{Reader: fr, decoder: fr, raw: resp.Body}, nil
	default:
		return resp.Body, nil
	}
}

func isZlibHeader(br *bufio.Reader) bool {
	head, err := br.Peek(2)
	if err != nil {
		return false
	}
	return head[0]&0x0f == 8 && (uint16(head[0])<<8|uint16(head[1]))%31 == 0
}

type decodedBody struct {
	io.Reader
	decoder io.Closer
	raw     io.ReadCloser
}

func (b *decodedBody) Close() error {
	_ = b.decoder.Close()
	return b.raw.Close()
}
