package connection

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Config describes how to reach an AtomPub endpoint.
type Config struct {
	URL     url.URL
	BaseURL string

	User     string
	Password string

	// Compression asks the server for gzip or deflate encoded responses.
	Compression bool
	Timeout     time.Duration

	// HTTPClient replaces the default client; Timeout is then ignored.
	HTTPClient *http.Client

	Logger *zerolog.Logger
}

// NewConfig creates a new Config for the service document at u, such as
// "http://localhost:8080/cmis/atom".
// It is not absolutely necessary to create a Config using this function,
// but it fills in the defaults the HTTP connection expects.
func NewConfig(u *url.URL) *Config {
	nop := zerolog.Nop()
	return &Config{
		URL:     *u,
		BaseURL: fmt.Sprintf("%s://%s", u.Scheme, u.Host),
		Timeout: DefaultTimeout,
		Logger:  &nop,
	}
}
