package atom

import (
	"encoding/xml"
	"errors"
	"fmt"
)

// ParseError reports malformed AtomPub content. It is fatal: no partial
// result accompanies it.
type ParseError struct {
	Element xml.Name
	Msg     string
	Err     error
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if e.Element.Local != "" {
		msg = fmt.Sprintf("%s (element {%s}%s)", msg, e.Element.Space, e.Element.Local)
	}
	if e.Err != nil {
		return fmt.Sprintf("atom parse error: %s: %v", msg, e.Err)
	}
	return "atom parse error: " + msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is, or wraps, a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
