package models

import (
	"encoding/xml"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/cmisgo/cmis.go/pkg/constants"
)

// BaseTypeID is one of the CMIS base object types.
type BaseTypeID string

const (
	BaseTypeDocument     BaseTypeID = "cmis:document"
	BaseTypeFolder       BaseTypeID = "cmis:folder"
	BaseTypeRelationship BaseTypeID = "cmis:relationship"
	BaseTypePolicy       BaseTypeID = "cmis:policy"
)

// PropertyType is derived from the element name carrying the property,
// e.g. cmis:propertyString -> "string".
type PropertyType string

const (
	PropertyTypeBoolean  PropertyType = "boolean"
	PropertyTypeID       PropertyType = "id"
	PropertyTypeInteger  PropertyType = "integer"
	PropertyTypeDateTime PropertyType = "datetime"
	PropertyTypeDecimal  PropertyType = "decimal"
	PropertyTypeHTML     PropertyType = "html"
	PropertyTypeString   PropertyType = "string"
	PropertyTypeURI      PropertyType = "uri"
)

var propertyElementTypes = map[string]PropertyType{
	"propertyBoolean":  PropertyTypeBoolean,
	"propertyId":       PropertyTypeID,
	"propertyInteger":  PropertyTypeInteger,
	"propertyDateTime": PropertyTypeDateTime,
	"propertyDecimal":  PropertyTypeDecimal,
	"propertyHtml":     PropertyTypeHTML,
	"propertyString":   PropertyTypeString,
	"propertyUri":      PropertyTypeURI,
}

// ObjectData is the payload of a cmisra:object element.
type ObjectData struct {
	Properties       *Properties       `xml:"properties"`
	AllowableActions *AllowableActions `xml:"allowableActions"`
	Relationships    []*ObjectData     `xml:"relationship"`
	ChangeEventInfo  *ChangeEventInfo  `xml:"changeEventInfo"`
	ACL              *ACL              `xml:"acl"`
	ExactACL         *bool             `xml:"exactACL"`
	PolicyIDs        []string          `xml:"policyIds>id"`
	Renditions       []Rendition       `xml:"rendition"`
}

// ID returns the cmis:objectId property, or "" when it is absent.
func (o *ObjectData) ID() string {
	return o.propertyValue(constants.PropertyObjectID)
}

// Name returns the cmis:name property, or "" when it is absent.
func (o *ObjectData) Name() string {
	return o.propertyValue(constants.PropertyName)
}

func (o *ObjectData) BaseTypeID() BaseTypeID {
	return BaseTypeID(o.propertyValue(constants.PropertyBaseTypeID))
}

func (o *ObjectData) ChangeToken() string {
	return o.propertyValue(constants.PropertyChangeToken)
}

func (o *ObjectData) propertyValue(id string) string {
	if o == nil || o.Properties == nil {
		return ""
	}
	return o.Properties.Value(id)
}

// Properties is the ordered list of cmis:property* children of
// cmis:properties. Unknown children, e.g. extensions, are kept but carry an
// empty Type.
type Properties struct {
	XMLName xml.Name
	Items   []PropertyData `xml:",any"`
}

// Get finds a property by definition id.
func (p *Properties) Get(id string) *PropertyData {
	if p == nil {
		return nil
	}
	for i := range p.Items {
		if p.Items[i].ID == id && p.Items[i].Type() != "" {
			return &p.Items[i]
		}
	}
	return nil
}

// Value returns the first value of a property, or "".
func (p *Properties) Value(id string) string {
	prop := p.Get(id)
	if prop == nil {
		return ""
	}
	return prop.FirstValue()
}

// Add appends a property built from the given type and values.
func (p *Properties) Add(typ PropertyType, id string, values ...string) {
	local := "property"
	for k, v := range propertyElementTypes {
		if v == typ {
			local = k
			break
		}
	}
	p.Items = append(p.Items, PropertyData{
		XMLName: xml.Name{Space: constants.NamespaceCMIS, Local: local},
		ID:      id,
		Values:  values,
	})
}

// PropertyData keeps values in their lexical form; the typed accessors
// convert on demand.
type PropertyData struct {
	XMLName     xml.Name
	ID          string   `xml:"propertyDefinitionId,attr"`
	LocalName   string   `xml:"localName,attr,omitempty"`
	DisplayName string   `xml:"displayName,attr,omitempty"`
	QueryName   string   `xml:"queryName,attr,omitempty"`
	Values      []string `xml:"value"`
}

func (p *PropertyData) Type() PropertyType {
	return propertyElementTypes[p.XMLName.Local]
}

func (p *PropertyData) FirstValue() string {
	if len(p.Values) == 0 {
		return ""
	}
	return p.Values[0]
}

func (p *PropertyData) Bool() (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(p.FirstValue()))
}

func (p *PropertyData) Integer() (*big.Int, bool) {
	return new(big.Int).SetString(strings.TrimSpace(p.FirstValue()), 10)
}

func (p *PropertyData) DateTime() (time.Time, error) {
	return ParseDateTime(p.FirstValue())
}

// ChangeEventInfo is attached to objects returned by getContentChanges.
type ChangeEventInfo struct {
	ChangeType string   `xml:"changeType"`
	ChangeTime DateTime `xml:"changeTime"`
}

type Rendition struct {
	StreamID   string `xml:"streamId"`
	MimeType   string `xml:"mimetype"`
	Length     int64  `xml:"length"`
	Kind       string `xml:"kind"`
	Title      string `xml:"title"`
	Height     int64  `xml:"height"`
	Width      int64  `xml:"width"`
	DocumentID string `xml:"renditionDocumentId"`
}
