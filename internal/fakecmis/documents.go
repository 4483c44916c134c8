package fakecmis

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cmisgo/cmis.go/pkg/constants"
)

const namespaces = ` xmlns="` + constants.NamespaceAtom + `"` +
	` xmlns:app="` + constants.NamespaceApp + `"` +
	` xmlns:cmis="` + constants.NamespaceCMIS + `"` +
	` xmlns:cmisra="` + constants.NamespaceRestAtom + `"` +
	` xmlns:xsi="` + constants.NamespaceXSI + `"`

// document accumulates one XML response.
type document struct {
	strings.Builder
	base string
}

func (s *Server) newDocument() *document {
	d := &document{base: s.base}
	d.WriteString(xml.Header)
	return d
}

func (d *document) printf(format string, args ...any) {
	fmt.Fprintf(&d.Builder, format, args...)
}

func (d *document) text(name, value string) {
	d.printf("<%s>%s</%s>", name, esc(value), name)
}

func (d *document) link(rel, href, typ string) {
	if typ == "" {
		d.printf(`<link rel="%s" href="%s"/>`, esc(rel), esc(href))
		return
	}
	d.printf(`<link rel="%s" href="%s" type="%s"/>`, esc(rel), esc(href), esc(typ))
}

// href builds an absolute URL below /atom.
func (d *document) href(path string, params ...string) string {
	q := url.Values{}
	for i := 0; i+1 < len(params); i += 2 {
		q.Set(params[i], params[i+1])
	}
	if len(q) == 0 {
		return d.base + "/atom" + path
	}
	return d.base + "/atom" + path + "?" + q.Encode()
}

func esc(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

type link struct {
	rel, href, typ string
}

// objectLinks are the links served for o, minus the hidden relations.
func objectLinks(d *document, o *Object) []link {
	id := o.ID
	links := []link{
		{constants.RelSelf, d.href("/id", "id", id), constants.MediaTypeEntry},
		{constants.RelEdit, d.href("/entry", "id", id), ""},
		{constants.RelDescribedBy, d.href("/type", "id", o.BaseType), constants.MediaTypeEntry},
		{constants.RelAllowableActions, d.href("/allowableactions", "id", id), constants.MediaTypeAllowableAction},
		{constants.RelACL, d.href("/acl", "id", id), constants.MediaTypeACL},
	}
	if o.isFolder() {
		links = append(links,
			link{constants.RelDown, d.href("/children", "id", id), constants.MediaTypeChildren},
			link{constants.RelDown, d.href("/descendants", "id", id), constants.MediaTypeDescendants},
			link{constants.RelFolderTree, d.href("/foldertree", "id", id), constants.MediaTypeDescendants},
		)
		if id != rootID {
			links = append(links, link{constants.RelUp, d.href("/parent", "id", id), constants.MediaTypeEntry})
		}
	} else {
		links = append(links,
			link{constants.RelUp, d.href("/parents", "id", id), constants.MediaTypeFeed},
			link{constants.RelEditMedia, d.href("/content", "id", id), o.MimeType},
		)
	}

	visible := links[:0]
	for _, l := range links {
		if !o.hiddenRels[l.rel] {
			visible = append(visible, l)
		}
	}
	return visible
}

// entryExtra holds the optional parts of an entry.
type entryExtra struct {
	pathSegment         string
	relativePathSegment string
	change              *ChangeEvent
	children            func(d *document)
}

func (r *repository) writeEntry(d *document, o *Object, extra entryExtra, standalone bool) {
	if standalone {
		d.printf("<entry%s>", namespaces)
	} else {
		d.WriteString("<entry>")
	}
	d.text("id", "urn:fakecmis:"+o.ID)
	title := o.Name
	if o.ID == rootID {
		title = "Root Folder"
	}
	d.text("title", title)
	d.text("updated", timestamp(o.Modified))
	d.WriteString("<author><name>fakecmis</name></author>")
	for _, l := range objectLinks(d, o) {
		d.link(l.rel, l.href, l.typ)
	}
	if !o.isFolder() && o.Content != nil && !o.hiddenRels[constants.RelContent] {
		d.printf(`<content src="%s" type="%s"/>`, esc(d.href("/content", "id", o.ID)), esc(o.MimeType))
	}

	d.WriteString("<cmisra:object>")
	r.writeProperties(d, o)
	if extra.change != nil {
		writeChangeEvent(d, extra.change)
	}
	d.WriteString("</cmisra:object>")

	if extra.pathSegment != "" {
		d.text("cmisra:pathSegment", extra.pathSegment)
	}
	if extra.relativePathSegment != "" {
		d.text("cmisra:relativePathSegment", extra.relativePathSegment)
	}
	if extra.children != nil {
		d.WriteString("<cmisra:children>")
		extra.children(d)
		d.WriteString("</cmisra:children>")
	}
	d.WriteString("</entry>")
}

func property(d *document, kind, id string, values ...string) {
	d.printf(`<cmis:%s propertyDefinitionId="%s">`, kind, esc(id))
	for _, v := range values {
		d.text("cmis:value", v)
	}
	d.printf("</cmis:%s>", kind)
}

func (r *repository) writeProperties(d *document, o *Object) {
	d.WriteString("<cmis:properties>")
	property(d, "propertyId", constants.PropertyObjectID, o.ID)
	property(d, "propertyString", constants.PropertyName, o.Name)
	property(d, "propertyId", constants.PropertyBaseTypeID, o.BaseType)
	property(d, "propertyId", constants.PropertyObjectTypeID, o.BaseType)
	property(d, "propertyString", constants.PropertyChangeToken, o.ChangeToken)
	property(d, "propertyDateTime", "cmis:lastModificationDate", timestamp(o.Modified))
	if o.isFolder() {
		property(d, "propertyString", constants.PropertyPath, r.path(o))
		if o.ID != rootID {
			property(d, "propertyId", "cmis:parentId", o.ParentID)
		}
	} else {
		property(d, "propertyBoolean", "cmis:isVersionSeriesCheckedOut", fmt.Sprint(o.CheckedOut))
		if o.Content != nil {
			property(d, "propertyString", constants.PropertyContentStreamMime, o.MimeType)
			property(d, "propertyInteger", constants.PropertyContentStreamLength, fmt.Sprint(len(o.Content)))
			property(d, "propertyString", constants.PropertyContentStreamFileName, o.Name)
		}
	}
	d.WriteString("</cmis:properties>")
}

func writeChangeEvent(d *document, c *ChangeEvent) {
	d.WriteString("<cmis:changeEventInfo>")
	d.text("cmis:changeType", c.Type)
	d.text("cmis:changeTime", timestamp(c.Time))
	d.WriteString("</cmis:changeEventInfo>")
}

// writeDeletedEntry describes an object that no longer exists, in the
// change log.
func writeDeletedEntry(d *document, c *ChangeEvent) {
	d.WriteString("<entry>")
	d.text("id", "urn:fakecmis:"+c.ObjectID)
	d.text("title", c.ObjectID)
	d.text("updated", timestamp(c.Time))
	d.WriteString("<cmisra:object><cmis:properties>")
	property(d, "propertyId", constants.PropertyObjectID, c.ObjectID)
	d.WriteString("</cmis:properties>")
	writeChangeEvent(d, c)
	d.WriteString("</cmisra:object></entry>")
}

// feedHeader opens a feed. Close it with "</feed>".
type feedHeader struct {
	id       string
	title    string
	self     string
	next     string
	numItems int
	links    []link
}

func (d *document) openFeed(h feedHeader, standalone bool) {
	if standalone {
		d.printf("<feed%s>", namespaces)
	} else {
		d.WriteString("<feed>")
	}
	d.text("id", h.id)
	d.text("title", h.title)
	d.text("updated", timestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	d.WriteString("<author><name>fakecmis</name></author>")
	if h.self != "" {
		d.link(constants.RelSelf, h.self, constants.MediaTypeFeed)
	}
	for _, l := range h.links {
		d.link(l.rel, l.href, l.typ)
	}
	if h.next != "" {
		d.link(constants.RelNext, h.next, constants.MediaTypeFeed)
	}
	if h.numItems >= 0 {
		d.printf("<cmisra:numItems>%d</cmisra:numItems>", h.numItems)
	}
}

func (s *Server) writeService(d *document) {
	r := s.repo
	d.printf("<app:service%s><app:workspace>", namespaces)
	d.text("title", r.id)

	d.WriteString("<cmisra:repositoryInfo>")
	d.text("cmis:repositoryId", r.id)
	d.text("cmis:repositoryName", "Fake repository "+r.id)
	d.text("cmis:repositoryDescription", "In-memory test repository")
	d.text("cmis:vendorName", "fakecmis")
	d.text("cmis:productName", "fakecmis")
	d.text("cmis:productVersion", "1.0")
	d.text("cmis:rootFolderId", rootID)
	d.text("cmis:latestChangeLogToken", fmt.Sprint(len(r.changes)))
	d.WriteString("<cmis:capabilities>")
	d.text("cmis:capabilityACL", "discover")
	d.text("cmis:capabilityAllVersionsSearchable", "false")
	d.text("cmis:capabilityChanges", "objectidsonly")
	d.text("cmis:capabilityContentStreamUpdatability", "anytime")
	d.text("cmis:capabilityGetDescendants", "true")
	d.text("cmis:capabilityGetFolderTree", "true")
	d.text("cmis:capabilityMultifiling", "false")
	d.text("cmis:capabilityPWCSearchable", "false")
	d.text("cmis:capabilityPWCUpdatable", "false")
	d.text("cmis:capabilityQuery", "metadataonly")
	d.text("cmis:capabilityRenditions", "none")
	d.text("cmis:capabilityUnfiling", "false")
	d.text("cmis:capabilityVersionSpecificFiling", "false")
	d.text("cmis:capabilityJoin", "none")
	d.WriteString("</cmis:capabilities>")
	d.text("cmis:cmisVersionSupported", "1.0")
	d.text("cmis:changesIncomplete", "false")
	d.text("cmis:principalAnonymous", "anonymous")
	d.text("cmis:principalAnyone", "anyone")
	d.WriteString("</cmisra:repositoryInfo>")

	collection := func(typ, title, href string) {
		d.printf(`<app:collection href="%s">`, esc(href))
		d.text("title", title)
		d.text("cmisra:collectionType", typ)
		d.WriteString("</app:collection>")
	}
	collection(constants.CollectionRoot, "Root Collection", d.href("/children", "id", rootID))
	collection(constants.CollectionTypes, "Types Collection", d.href("/types"))
	collection(constants.CollectionQuery, "Query Collection", d.href("/query"))
	collection(constants.CollectionCheckedOut, "Checked Out Collection", d.href("/checkedout"))

	d.link(constants.RelChanges, d.href("/changes"), constants.MediaTypeFeed)
	d.link(constants.RelRootDescendants, d.href("/descendants", "id", rootID), constants.MediaTypeDescendants)
	d.link(constants.RelFolderTree, d.href("/foldertree", "id", rootID), constants.MediaTypeDescendants)

	template := func(typ, tmpl, mediaType string) {
		d.WriteString("<cmisra:uritemplate>")
		d.text("cmisra:template", tmpl)
		d.text("cmisra:type", typ)
		d.text("cmisra:mediatype", mediaType)
		d.WriteString("</cmisra:uritemplate>")
	}
	objectParams := "&filter={filter}&includeAllowableActions={includeAllowableActions}" +
		"&includeACL={includeACL}&includePolicyIds={includePolicyIds}" +
		"&includeRelationships={includeRelationships}&renditionFilter={renditionFilter}"
	template(constants.TemplateObjectByID, d.base+"/atom/id?id={id}"+objectParams, constants.MediaTypeEntry)
	template(constants.TemplateObjectByPath, d.base+"/atom/path?path={path}"+objectParams, constants.MediaTypeEntry)
	template(constants.TemplateTypeByID, d.base+"/atom/type?id={id}", constants.MediaTypeEntry)
	if s.QueryTemplate {
		template(constants.TemplateQuery, d.base+"/atom/query?q={q}&searchAllVersions={searchAllVersions}"+
			"&includeAllowableActions={includeAllowableActions}&includeRelationships={includeRelationships}"+
			"&maxItems={maxItems}&skipCount={skipCount}", constants.MediaTypeFeed)
	}
	d.WriteString("</app:workspace></app:service>")
}

func writeAllowableActions(d *document, o *Object) {
	isDocument := !o.isFolder()
	hasContent := isDocument && o.Content != nil
	actions := []struct {
		name    string
		allowed bool
	}{
		{"canDeleteObject", o.ID != rootID},
		{"canUpdateProperties", true},
		{"canGetProperties", true},
		{"canGetObjectParents", o.ID != rootID},
		{"canGetFolderParent", o.isFolder() && o.ID != rootID},
		{"canGetChildren", o.isFolder()},
		{"canGetDescendants", o.isFolder()},
		{"canGetFolderTree", o.isFolder()},
		{"canGetContentStream", hasContent},
		{"canSetContentStream", isDocument},
		{"canDeleteContentStream", hasContent},
		{"canGetACL", true},
	}
	d.printf(`<cmis:allowableActions xmlns:cmis="%s">`, constants.NamespaceCMIS)
	for _, a := range actions {
		d.text("cmis:"+a.name, fmt.Sprint(a.allowed))
	}
	d.WriteString("</cmis:allowableActions>")
}

func writeACL(d *document, onlyBasic bool) {
	ace := func(principal, permission string, direct bool) {
		d.WriteString("<cmis:permission><cmis:principal>")
		d.text("cmis:principalId", principal)
		d.WriteString("</cmis:principal>")
		d.text("cmis:permission", permission)
		d.text("cmis:direct", fmt.Sprint(direct))
		d.WriteString("</cmis:permission>")
	}
	d.printf(`<cmis:acl xmlns:cmis="%s">`, constants.NamespaceCMIS)
	ace("admin", "cmis:all", true)
	ace("anyone", "cmis:read", false)
	if !onlyBasic {
		ace("auditor", "fakecmis:audit", true)
	}
	d.WriteString("</cmis:acl>")
}

func writeType(d *document, baseID string) {
	local := strings.TrimPrefix(baseID, "cmis:")
	display := strings.ToUpper(local[:1]) + local[1:]
	kind := "cmisTypeFolderDefinitionType"
	if baseID == BaseDocument {
		kind = "cmisTypeDocumentDefinitionType"
	}

	d.printf("<entry%s>", namespaces)
	d.text("id", "urn:fakecmis:type:"+baseID)
	d.text("title", display)
	d.text("updated", timestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	d.link(constants.RelSelf, d.href("/type", "id", baseID), constants.MediaTypeEntry)
	d.printf(`<cmisra:type xsi:type="cmis:%s">`, kind)
	d.text("cmis:id", baseID)
	d.text("cmis:localName", local)
	d.text("cmis:localNamespace", "fakecmis")
	d.text("cmis:displayName", display)
	d.text("cmis:queryName", baseID)
	d.text("cmis:description", display+" base type")
	d.text("cmis:baseId", baseID)
	d.text("cmis:creatable", "true")
	d.text("cmis:fileable", "true")
	d.text("cmis:queryable", "true")
	d.text("cmis:fulltextIndexed", "false")
	d.text("cmis:includedInSupertypeQuery", "true")
	d.text("cmis:controllablePolicy", "false")
	d.text("cmis:controllableACL", "true")
	if baseID == BaseDocument {
		d.text("cmis:versionable", "false")
		d.text("cmis:contentStreamAllowed", "allowed")
	}
	d.WriteString("</cmisra:type></entry>")
}
