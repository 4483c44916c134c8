package connection

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cmisgo/cmis.go/pkg/constants"
)

// HTTPError is returned for responses with a status of 400 or above.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap maps the status to one of the CMIS error kinds, so callers can test
// with errors.Is(err, constants.ErrObjectNotFound) and friends.
func (e *HTTPError) Unwrap() error {
	if e.StatusCode == http.StatusConflict && strings.Contains(strings.ToLower(e.Message), "updateconflict") {
		return constants.ErrUpdateConflict
	}
	return StatusError(e.StatusCode)
}

func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// StatusError returns the CMIS error kind for an HTTP status.
func StatusError(status int) error {
	switch status {
	case http.StatusBadRequest:
		return constants.ErrInvalidArgument
	case http.StatusUnauthorized, http.StatusForbidden:
		return constants.ErrPermissionDenied
	case http.StatusNotFound:
		return constants.ErrObjectNotFound
	case http.StatusMethodNotAllowed:
		return constants.ErrNotSupported
	case http.StatusConflict:
		return constants.ErrConstraint
	case http.StatusPreconditionFailed:
		return constants.ErrUpdateConflict
	default:
		return constants.ErrRuntime
	}
}
