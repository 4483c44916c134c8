package atom

import (
	"encoding/xml"

	"github.com/cmisgo/cmis.go/pkg/constants"
	"github.com/cmisgo/cmis.go/pkg/models"
)

func atomName(local string) xml.Name {
	return xml.Name{Space: constants.NamespaceAtom, Local: local}
}

func appName(local string) xml.Name {
	return xml.Name{Space: constants.NamespaceApp, Local: local}
}

func cmisName(local string) xml.Name {
	return xml.Name{Space: constants.NamespaceCMIS, Local: local}
}

func restName(local string) xml.Name {
	return xml.Name{Space: constants.NamespaceRestAtom, Local: local}
}

var (
	NameFeed    = atomName("feed")
	NameEntry   = atomName("entry")
	NameLink    = atomName("link")
	NameContent = atomName("content")

	NameService    = appName("service")
	NameWorkspace  = appName("workspace")
	NameCollection = appName("collection")

	NameAllowableActions = cmisName("allowableActions")
	NameACL              = cmisName("acl")

	NameObject              = restName("object")
	NamePathSegment         = restName("pathSegment")
	NameRelativePathSegment = restName("relativePathSegment")
	NameType                = restName("type")
	NameChildren            = restName("children")
	NameNumItems            = restName("numItems")
	NameRepositoryInfo      = restName("repositoryInfo")
	NameCollectionType      = restName("collectionType")
	NameURITemplate         = restName("uritemplate")
	NameTemplate            = restName("template")
	NameMediaType           = restName("mediatype")

	nameXSIType = xml.Name{Space: constants.NamespaceXSI, Local: "type"}
)

// typeDefinitionKinds maps the resolved xsi:type of a cmisra:type element to
// the variant it decodes into.
var typeDefinitionKinds = map[xml.Name]func() models.TypeDefinition{
	cmisName("cmisTypeDocumentDefinitionType"): func() models.TypeDefinition {
		return &models.DocumentTypeDefinition{}
	},
	cmisName("cmisTypeFolderDefinitionType"): func() models.TypeDefinition {
		return &models.FolderTypeDefinition{}
	},
	cmisName("cmisTypeRelationshipDefinitionType"): func() models.TypeDefinition {
		return &models.RelationshipTypeDefinition{}
	},
	cmisName("cmisTypePolicyDefinitionType"): func() models.TypeDefinition {
		return &models.PolicyTypeDefinition{}
	},
}
