package atom

import "encoding/xml"

// Link is an atom:link, or the synthetic content link taken from
// <atom:content src="...">. Type is "" when the element carries no type.
type Link struct {
	Rel  string
	Href string
	Type string
}

// Element is one parsed child subtree. Object is one of *models.ObjectData,
// models.TypeDefinition, *models.RepositoryInfo, string, *big.Int, *Link,
// *Feed, *Collection or *URITemplate.
type Element struct {
	Name   xml.Name
	Object any
}

// Entry is an atom:entry. ID is taken from the CMIS object or type definition
// carried by the entry, if any.
type Entry struct {
	ID       string
	Elements []*Element
}

func (e *Entry) AddElement(el *Element) {
	if el != nil {
		e.Elements = append(e.Elements, el)
	}
}

// Feed is an atom:feed. Elements holds the feed-level links and numItems.
type Feed struct {
	Elements []*Element
	Entries  []*Entry
}

func (f *Feed) AddElement(el *Element) {
	if el != nil {
		f.Elements = append(f.Elements, el)
	}
}

func (f *Feed) AddEntry(e *Entry) {
	if e != nil {
		f.Entries = append(f.Entries, e)
	}
}

// ServiceDoc is an app:service document.
type ServiceDoc struct {
	Workspaces []*Workspace
}

func (s *ServiceDoc) AddWorkspace(ws *Workspace) {
	if ws != nil {
		s.Workspaces = append(s.Workspaces, ws)
	}
}

// Workspace is one app:workspace, i.e. one repository.
type Workspace struct {
	RepositoryID string
	Elements     []*Element
}

func (w *Workspace) AddElement(el *Element) {
	if el != nil {
		w.Elements = append(w.Elements, el)
	}
}

// Collection is an app:collection of a workspace.
type Collection struct {
	Href           string
	CollectionType string
}

// URITemplate is a cmisra:uritemplate of a workspace.
type URITemplate struct {
	Template  string
	Type      string
	MediaType string
}

// HTMLDoc marks a response that turned out to be an HTML page, typically a
// login or error page served instead of AtomPub.
type HTMLDoc struct{}
