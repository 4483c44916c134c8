package cmis

import (
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/cmisgo/cmis.go/pkg/connection"
	cmishttp "github.com/cmisgo/cmis.go/pkg/connection/http"
	"github.com/cmisgo/cmis.go/pkg/linkcache"
	"github.com/cmisgo/cmis.go/pkg/logger"
)

// Session is a client of one AtomPub endpoint. It is safe for concurrent use;
// all calls share the session's link cache.
type Session struct {
	params     Parameters
	serviceURL string

	fetcher connection.Fetcher
	links   *linkcache.LinkCache

	log     zerolog.Logger
	logData *logger.LogData
}

type sessionOptions struct {
	fetcher    connection.Fetcher
	httpClient *http.Client
	logger     *zerolog.Logger
}

// Option customizes NewSession.
type Option func(*sessionOptions)

// WithFetcher replaces the HTTP transport, e.g. with a recording or fake one.
func WithFetcher(f connection.Fetcher) Option {
	return func(o *sessionOptions) {
		o.fetcher = f
	}
}

// WithHTTPClient makes the default transport use client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *sessionOptions) {
		o.httpClient = client
	}
}

// WithLogger sets the session logger. Without it the session logs to stderr
// at the level named by the log.level parameter, or not at all.
func WithLogger(l zerolog.Logger) Option {
	return func(o *sessionOptions) {
		o.logger = &l
	}
}

// NewSession creates a session from parameters. Nothing is fetched until the
// first operation.
func NewSession(params Parameters, opts ...Option) (*Session, error) {
	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{params: params, log: zerolog.Nop()}
	switch {
	case o.logger != nil:
		s.log = *o.logger
	case params.get(ParamLogLevel) != "":
		logData, err := logger.New().
			FromBuffer(os.Stderr).
			WithLevelName(params.get(ParamLogLevel)).
			Make()
		if err != nil {
			return nil, err
		}
		s.logData = logData
		s.log = logData.Logger
	}

	cfg, err := params.connectionConfig(s.log)
	if err != nil {
		return nil, err
	}
	s.serviceURL = cfg.URL.String()

	cacheCfg := params.linkCacheConfig(s.log)
	cacheCfg.Logger = &s.log
	s.links = linkcache.New(cacheCfg)

	s.fetcher = o.fetcher
	if s.fetcher == nil {
		cfg.HTTPClient = o.httpClient
		s.fetcher = cmishttp.New(cfg)
	}
	return s, nil
}

// Links exposes the session's link cache.
func (s *Session) Links() *linkcache.LinkCache {
	return s.links
}

// Parameters returns the parameters the session was created with.
func (s *Session) Parameters() Parameters {
	return s.params
}

// ClearRepository forgets every link learned for a repository. The next
// operation on it needs GetRepositoryInfos or GetRepositoryInfo first.
func (s *Session) ClearRepository(repositoryID string) {
	s.links.ClearRepository(repositoryID)
}

// Close forgets every cached link and releases the session's log file.
func (s *Session) Close() error {
	s.links.Clear()
	if s.logData != nil {
		return s.logData.Close()
	}
	return nil
}
