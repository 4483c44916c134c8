package connection

import "time"

const (
	// DefaultTimeout bounds a whole request, body included.
	DefaultTimeout = 30 * time.Second
	// MaxErrorBody is how much of an error response is kept as message.
	MaxErrorBody   = 64 << 10
)

const (
	HeaderAccept          = "Accept"
	HeaderAcceptEncoding  = "Accept-Encoding"
	HeaderContentEncoding = "Content-Encoding"
	HeaderContentType     = "Content-Type"
	HeaderUserAgent       = "User-Agent"
	HeaderLocation        = "Location"
)

const UserAgent = "cmis.go"
