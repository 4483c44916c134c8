package atom

import (
	"fmt"
	"io"

	"github.com/cmisgo/cmis.go/pkg/constants"
	"github.com/cmisgo/cmis.go/pkg/models"
)

func ParseFeed(stream io.ReadCloser) (*Feed, error) {
	return parseAs[*Feed](stream)
}

func ParseEntry(stream io.ReadCloser) (*Entry, error) {
	return parseAs[*Entry](stream)
}

func ParseServiceDoc(stream io.ReadCloser) (*ServiceDoc, error) {
	return parseAs[*ServiceDoc](stream)
}

func ParseAllowableActions(stream io.ReadCloser) (*models.AllowableActions, error) {
	return parseAs[*models.AllowableActions](stream)
}

func ParseACL(stream io.ReadCloser) (*models.ACL, error) {
	return parseAs[*models.ACL](stream)
}

func parseAs[T any](stream io.ReadCloser) (T, error) {
	var zero T
	result, err := Parse(stream)
	if err != nil {
		return zero, err
	}
	v, ok := result.(T)
	if !ok {
		return zero, UnexpectedDocument(result, zero)
	}
	return v, nil
}

// UnexpectedDocument builds the error for a parse result of the wrong kind.
func UnexpectedDocument(got, want any) error {
	switch got.(type) {
	case nil:
		return fmt.Errorf("%w: empty or unrecognized document, expected %T", constants.ErrUnexpectedDocument, want)
	case *HTMLDoc:
		return fmt.Errorf("%w: received an HTML page, expected %T", constants.ErrUnexpectedDocument, want)
	default:
		return fmt.Errorf("%w: got %T, expected %T", constants.ErrUnexpectedDocument, got, want)
	}
}
