package models

// TypeDefinition is implemented by the four type definition variants.
type TypeDefinition interface {
	TypeID() string
	BaseType() BaseTypeID
	Base() *TypeDefinitionBase
}

// TypeDefinitionBase holds the attributes shared by every variant. Property
// definitions are not modelled.
type TypeDefinitionBase struct {
	ID                       string     `xml:"id"`
	LocalName                string     `xml:"localName"`
	LocalNamespace           string     `xml:"localNamespace"`
	DisplayName              string     `xml:"displayName"`
	QueryName                string     `xml:"queryName"`
	Description              string     `xml:"description"`
	BaseID                   BaseTypeID `xml:"baseId"`
	ParentID                 string     `xml:"parentId"`
	Creatable                bool       `xml:"creatable"`
	Fileable                 bool       `xml:"fileable"`
	Queryable                bool       `xml:"queryable"`
	FulltextIndexed          bool       `xml:"fulltextIndexed"`
	IncludedInSupertypeQuery bool       `xml:"includedInSupertypeQuery"`
	ControllablePolicy       bool       `xml:"controllablePolicy"`
	ControllableACL          bool       `xml:"controllableACL"`
}

func (t *TypeDefinitionBase) TypeID() string {
	return t.ID
}

func (t *TypeDefinitionBase) BaseType() BaseTypeID {
	return t.BaseID
}

func (t *TypeDefinitionBase) Base() *TypeDefinitionBase {
	return t
}

type DocumentTypeDefinition struct {
	TypeDefinitionBase
	Versionable          bool   `xml:"versionable"`
	ContentStreamAllowed string `xml:"contentStreamAllowed"`
}

type FolderTypeDefinition struct {
	TypeDefinitionBase
}

type RelationshipTypeDefinition struct {
	TypeDefinitionBase
	AllowedSourceTypes []string `xml:"allowedSourceTypes"`
	AllowedTargetTypes []string `xml:"allowedTargetTypes"`
}

type PolicyTypeDefinition struct {
	TypeDefinitionBase
}
