package atom

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/cmisgo/cmis.go/pkg/constants"
)

// readRecorder remembers the first read failure of the underlying stream so
// that transport errors can be told apart from malformed content.
type readRecorder struct {
	r   io.Reader
	err error
}

func (rr *readRecorder) Read(p []byte) (int, error) {
	n, err := rr.r.Read(p)
	if err != nil && err != io.EOF && rr.err == nil {
		rr.err = err
	}
	return n, err
}

// cursor is a pull-style view over an xml.Decoder. tok is the current event
// and is nil once the document is exhausted. cursor tracks namespace
// declarations so that QName-valued attributes can be resolved.
type cursor struct {
	dec    *xml.Decoder
	src    *readRecorder
	tok    xml.Token
	scopes []map[string]string
}

func newCursor(r io.Reader) *cursor {
	src := &readRecorder{r: r}
	dec := xml.NewDecoder(src)
	dec.CharsetReader = charset.NewReaderLabel
	return &cursor{dec: dec, src: src}
}

// next advances to the following event.
func (c *cursor) next() error {
	if _, ok := c.tok.(xml.EndElement); ok && len(c.scopes) > 0 {
		c.scopes = c.scopes[:len(c.scopes)-1]
	}

	tok, err := c.dec.Token()
	if err == io.EOF {
		c.tok = nil
		return nil
	}
	if err != nil {
		c.tok = nil
		return c.wrap(err)
	}

	if start, ok := tok.(xml.StartElement); ok {
		c.pushScope(start)
	}
	c.tok = tok
	return nil
}

// decode hands the subtree of the current start element to encoding/xml and
// leaves the cursor on the event after its end element.
func (c *cursor) decode(v any) error {
	start, ok := c.tok.(xml.StartElement)
	if !ok {
		return &ParseError{Msg: "cursor is not on a start element"}
	}
	if err := c.dec.DecodeElement(v, &start); err != nil {
		return c.wrapAt(start.Name, err)
	}
	c.tok = xml.EndElement{Name: start.Name}
	return c.next()
}

func (c *cursor) pushScope(start xml.StartElement) {
	var scope map[string]string
	for _, a := range start.Attr {
		switch {
		case a.Name.Space == "xmlns":
			if scope == nil {
				scope = make(map[string]string)
			}
			scope[a.Name.Local] = a.Value
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			if scope == nil {
				scope = make(map[string]string)
			}
			scope[""] = a.Value
		}
	}
	c.scopes = append(c.scopes, scope)
}

// resolve turns a QName literal such as "cmis:cmisTypeFolderDefinitionType"
// into an expanded name using the declarations in scope.
func (c *cursor) resolve(qname string) (xml.Name, bool) {
	prefix, local, found := strings.Cut(qname, ":")
	if !found {
		prefix, local = "", qname
	}
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if ns, ok := c.scopes[i][prefix]; ok {
			return xml.Name{Space: ns, Local: local}, true
		}
	}
	if prefix == "" {
		return xml.Name{Local: local}, true
	}
	return xml.Name{}, false
}

func (c *cursor) wrap(err error) error {
	return c.wrapAt(xml.Name{}, err)
}

func (c *cursor) wrapAt(name xml.Name, err error) error {
	if c.src.err != nil {
		return fmt.Errorf("%w: reading atompub response: %w", constants.ErrConnection, c.src.err)
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	return &ParseError{Element: name, Msg: "malformed document", Err: err}
}
