package atom

import (
	"encoding/xml"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/cmisgo/cmis.go/pkg/constants"
	"github.com/cmisgo/cmis.go/pkg/models"
)

// Parse reads one AtomPub document from stream. The result is determined by
// the first recognized start element and is one of *ServiceDoc, *Feed,
// *Entry, *models.AllowableActions, *models.ACL or *HTMLDoc. A document
// without a recognized element yields a nil result and a nil error.
//
// The stream is drained and closed before Parse returns, whatever the
// outcome, so that pooled connections can be reused.
func Parse(stream io.ReadCloser) (any, error) {
	if stream == nil {
		return nil, constants.ErrNilStream
	}
	defer drainAndClose(stream)

	p := &parser{cursor: newCursor(stream)}
	return p.parse()
}

func drainAndClose(stream io.ReadCloser) {
	_, _ = io.Copy(io.Discard, stream)
	_ = stream.Close()
}

type parser struct {
	*cursor
}

func (p *parser) parse() (any, error) {
	if err := p.next(); err != nil {
		return nil, err
	}

	for p.tok != nil {
		if start, ok := p.tok.(xml.StartElement); ok {
			if strings.EqualFold(start.Name.Local, "html") {
				return &HTMLDoc{}, nil
			}

			if parse, ok := documentParsers[start.Name]; ok {
				return parse(p)
			}
		}

		if err := p.next(); err != nil {
			return nil, err
		}
	}

	return nil, nil
}

// documentParsers is the top-level dispatch table. Each entry returns an
// untyped nil result on error.
var documentParsers = map[xml.Name]func(p *parser) (any, error){
	NameFeed: func(p *parser) (any, error) {
		feed, err := p.parseFeed()
		if err != nil {
			return nil, err
		}
		return feed, nil
	},
	NameEntry: func(p *parser) (any, error) {
		entry, err := p.parseEntry()
		if err != nil {
			return nil, err
		}
		return entry, nil
	},
	NameAllowableActions: func(p *parser) (any, error) {
		actions := &models.AllowableActions{}
		if err := p.decode(actions); err != nil {
			return nil, err
		}
		return actions, nil
	},
	NameACL: func(p *parser) (any, error) {
		acl := &models.ACL{}
		if err := p.decode(acl); err != nil {
			return nil, err
		}
		return acl, nil
	},
	NameService: func(p *parser) (any, error) {
		doc, err := p.parseServiceDoc()
		if err != nil {
			return nil, err
		}
		return doc, nil
	},
}

// children walks the child elements of the element the cursor is on. handle
// is called with the cursor on each child start element and must leave the
// cursor on the event following that child. On return the cursor is past
// the parent's end element.
func (p *parser) children(handle func(start xml.StartElement) error) error {
	if err := p.next(); err != nil {
		return err
	}

	for {
		switch tok := p.tok.(type) {
		case nil:
			return &ParseError{Msg: "unexpected end of document"}
		case xml.StartElement:
			if err := handle(tok); err != nil {
				return err
			}
		case xml.EndElement:
			return p.next()
		default:
			if err := p.next(); err != nil {
				return err
			}
		}
	}
}

// skip consumes the current element and its whole subtree.
func (p *parser) skip() error {
	depth := 1
	for {
		if err := p.next(); err != nil {
			return err
		}
		switch p.tok.(type) {
		case nil:
			return &ParseError{Msg: "unexpected end of document"}
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
			if depth == 0 {
				return p.next()
			}
		}
	}
}

// readText collects the character data of a text leaf. Markup inside the
// leaf is fatal.
func (p *parser) readText() (string, error) {
	leaf := p.tok.(xml.StartElement).Name
	if err := p.next(); err != nil {
		return "", err
	}

	var sb strings.Builder
	for {
		switch tok := p.tok.(type) {
		case nil:
			return "", &ParseError{Element: leaf, Msg: "unexpected end of document"}
		case xml.CharData:
			sb.Write(tok)
		case xml.StartElement:
			return "", &ParseError{
				Element: leaf,
				Msg:     fmt.Sprintf("unexpected element {%s}%s in text", tok.Name.Space, tok.Name.Local),
			}
		case xml.EndElement:
			text := sb.String()
			if err := p.next(); err != nil {
				return "", err
			}
			return text, nil
		}

		if err := p.next(); err != nil {
			return "", err
		}
	}
}

func (p *parser) parseText(name xml.Name) (*Element, error) {
	text, err := p.readText()
	if err != nil {
		return nil, err
	}
	return &Element{Name: name, Object: text}, nil
}

func (p *parser) parseBigInteger(name xml.Name) (*Element, error) {
	text, err := p.readText()
	if err != nil {
		return nil, err
	}
	n, ok := new(big.Int).SetString(strings.TrimSpace(text), 10)
	if !ok {
		return nil, &ParseError{Element: name, Msg: fmt.Sprintf("invalid integer %q", text)}
	}
	return &Element{Name: name, Object: n}, nil
}

func (p *parser) parseServiceDoc() (*ServiceDoc, error) {
	doc := &ServiceDoc{}
	err := p.children(func(start xml.StartElement) error {
		if start.Name != NameWorkspace {
			return p.skip()
		}
		ws, err := p.parseWorkspace()
		if err != nil {
			return err
		}
		doc.AddWorkspace(ws)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (p *parser) parseWorkspace() (*Workspace, error) {
	ws := &Workspace{}
	err := p.children(func(start xml.StartElement) error {
		var (
			el  *Element
			err error
		)
		switch start.Name {
		case NameRepositoryInfo:
			info := &models.RepositoryInfo{}
			if err = p.decode(info); err == nil {
				ws.RepositoryID = info.ID
				el = &Element{Name: start.Name, Object: info}
			}
		case NameURITemplate:
			el, err = p.parseTemplate(start)
		case NameCollection:
			el, err = p.parseCollection(start)
		case NameLink:
			el, err = p.parseLink(start)
		default:
			err = p.skip()
		}
		if err != nil {
			return err
		}
		ws.AddElement(el)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ws, nil
}

func (p *parser) parseCollection(start xml.StartElement) (*Element, error) {
	coll := &Collection{Href: attr(start, "href")}
	err := p.children(func(child xml.StartElement) error {
		if child.Name != NameCollectionType {
			return p.skip()
		}
		text, err := p.readText()
		coll.CollectionType = text
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Element{Name: start.Name, Object: coll}, nil
}

func (p *parser) parseTemplate(start xml.StartElement) (*Element, error) {
	tmpl := &URITemplate{}
	err := p.children(func(child xml.StartElement) error {
		var target *string
		switch child.Name {
		case NameTemplate:
			target = &tmpl.Template
		case NameType:
			target = &tmpl.Type
		case NameMediaType:
			target = &tmpl.MediaType
		default:
			return p.skip()
		}
		text, err := p.readText()
		*target = text
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Element{Name: start.Name, Object: tmpl}, nil
}

func (p *parser) parseFeed() (*Feed, error) {
	feed := &Feed{}
	err := p.children(func(start xml.StartElement) error {
		switch start.Name {
		case NameLink:
			el, err := p.parseLink(start)
			feed.AddElement(el)
			return err
		case NameNumItems:
			el, err := p.parseBigInteger(start.Name)
			feed.AddElement(el)
			return err
		case NameEntry:
			entry, err := p.parseEntry()
			feed.AddEntry(entry)
			return err
		default:
			return p.skip()
		}
	})
	if err != nil {
		return nil, err
	}
	return feed, nil
}

func (p *parser) parseEntry() (*Entry, error) {
	entry := &Entry{}
	err := p.children(func(start xml.StartElement) error {
		el, err := p.parseEntryElement(start)
		if err != nil {
			return err
		}
		if el == nil {
			return nil
		}
		entry.AddElement(el)

		switch obj := el.Object.(type) {
		case *models.ObjectData:
			if id := obj.ID(); id != "" {
				entry.ID = id
			}
		case models.TypeDefinition:
			if id := obj.TypeID(); id != "" {
				entry.ID = id
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// parseEntryElement returns nil for skipped children.
func (p *parser) parseEntryElement(start xml.StartElement) (*Element, error) {
	switch start.Name {
	case NameObject:
		obj := &models.ObjectData{}
		if err := p.decode(obj); err != nil {
			return nil, err
		}
		return &Element{Name: start.Name, Object: obj}, nil
	case NamePathSegment, NameRelativePathSegment:
		return p.parseText(start.Name)
	case NameType:
		return p.parseTypeDefinition(start)
	case NameChildren:
		return p.parseChildren(start)
	case NameLink:
		return p.parseLink(start)
	case NameContent:
		return p.parseContentSrc(start)
	default:
		return nil, p.skip()
	}
}

func (p *parser) parseTypeDefinition(start xml.StartElement) (*Element, error) {
	kind := attrNS(start, nameXSIType)
	name, ok := p.resolve(kind)
	if !ok {
		return nil, &ParseError{Element: start.Name, Msg: fmt.Sprintf("cannot resolve xsi:type %q", kind)}
	}
	newDef, ok := typeDefinitionKinds[name]
	if !ok {
		return nil, &ParseError{Element: start.Name, Msg: fmt.Sprintf("unknown type definition kind %q", kind)}
	}

	def := newDef()
	if err := p.decode(def); err != nil {
		return nil, err
	}
	return &Element{Name: start.Name, Object: def}, nil
}

// parseChildren unwraps the feed nested in cmisra:children.
func (p *parser) parseChildren(start xml.StartElement) (*Element, error) {
	var feed *Feed
	err := p.children(func(child xml.StartElement) error {
		if child.Name != NameFeed {
			return p.skip()
		}
		f, err := p.parseFeed()
		feed = f
		return err
	})
	if err != nil || feed == nil {
		return nil, err
	}
	return &Element{Name: start.Name, Object: feed}, nil
}

// parseLink reads the attributes of an atom:link. Children are skipped.
func (p *parser) parseLink(start xml.StartElement) (*Element, error) {
	link := &Link{
		Rel:  attr(start, "rel"),
		Href: attr(start, "href"),
		Type: attr(start, "type"),
	}
	if err := p.skip(); err != nil {
		return nil, err
	}
	return &Element{Name: start.Name, Object: link}, nil
}

// parseContentSrc turns <atom:content src="..."> into the synthetic content
// link. Inline content has no src and yields nothing.
func (p *parser) parseContentSrc(start xml.StartElement) (*Element, error) {
	src := attr(start, "src")
	if err := p.skip(); err != nil {
		return nil, err
	}
	if src == "" {
		return nil, nil
	}
	return &Element{Name: start.Name, Object: &Link{Rel: constants.RelContent, Href: src}}, nil
}

func attr(start xml.StartElement, local string) string {
	return attrNS(start, xml.Name{Local: local})
}

func attrNS(start xml.StartElement, name xml.Name) string {
	for _, a := range start.Attr {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}
