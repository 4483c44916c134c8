package cmis

import (
	"fmt"

	"github.com/cmisgo/cmis.go/pkg/constants"
)

// Errors returned by session operations. HTTP failures unwrap to the matching
// kind, see connection.HTTPError.
var (
	ErrObjectNotFound     = constants.ErrObjectNotFound
	ErrNotSupported       = constants.ErrNotSupported
	ErrInvalidArgument    = constants.ErrInvalidArgument
	ErrPermissionDenied   = constants.ErrPermissionDenied
	ErrConstraint         = constants.ErrConstraint
	ErrUpdateConflict     = constants.ErrUpdateConflict
	ErrRuntime            = constants.ErrRuntime
	ErrConnection         = constants.ErrConnection
	ErrRepositoryUnknown  = constants.ErrRepositoryUnknown
	ErrUnexpectedDocument = constants.ErrUnexpectedDocument
)

// LinkNotFoundError reports that no cached link answers a request. The object
// may not exist, it may not have been read in this session yet, or the
// repository may not support the operation. It matches ErrObjectNotFound.
type LinkNotFoundError struct {
	RepositoryID string
	ObjectID     string
	Relation     string
	Type         string
}

func (e *LinkNotFoundError) Error() string {
	msg := fmt.Sprintf("unknown repository or object, or operation not supported: no %q link", e.Relation)
	if e.Type != "" {
		msg += fmt.Sprintf(" of type %q", e.Type)
	}
	if e.ObjectID != "" {
		msg += fmt.Sprintf(" for object %q", e.ObjectID)
	}
	return msg + fmt.Sprintf(" in repository %q", e.RepositoryID)
}

func (e *LinkNotFoundError) Unwrap() error {
	return constants.ErrObjectNotFound
}
