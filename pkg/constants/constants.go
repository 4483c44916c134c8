package constants

import "time"

// XML namespaces
const (
	NamespaceAtom     = "http://www.w3.org/2005/Atom"
	NamespaceApp      = "http://www.w3.org/2007/app"
	NamespaceCMIS     = "http://docs.oasis-open.org/ns/cmis/core/200908/"
	NamespaceRestAtom = "http://docs.oasis-open.org/ns/cmis/restatom/200908/"
	NamespaceXSI      = "http://www.w3.org/2001/XMLSchema-instance"
)

// Link relations
const (
	RelSelf             = "self"
	RelEdit             = "edit"
	RelEditMedia        = "edit-media"
	RelAlternate        = "alternate"
	RelDescribedBy      = "describedby"
	RelService          = "service"
	RelUp               = "up"
	RelDown             = "down"
	RelVia              = "via"
	RelNext             = "next"
	RelFirst            = "first"
	RelPrevious         = "previous"
	RelLast             = "last"
	RelEnclosure        = "enclosure"
	RelVersionHistory   = "version-history"
	RelCurrentVersion   = "current-version"
	RelWorkingCopy      = "working-copy"
	RelAllowableActions = "http://docs.oasis-open.org/ns/cmis/link/200908/allowableactions"
	RelACL              = "http://docs.oasis-open.org/ns/cmis/link/200908/acl"
	RelPolicies         = "http://docs.oasis-open.org/ns/cmis/link/200908/policies"
	RelRelationships    = "http://docs.oasis-open.org/ns/cmis/link/200908/relationships"
	RelSource           = "http://docs.oasis-open.org/ns/cmis/link/200908/source"
	RelTarget           = "http://docs.oasis-open.org/ns/cmis/link/200908/target"
	RelFolderTree       = "http://docs.oasis-open.org/ns/cmis/link/200908/foldertree"
	RelRootDescendants  = "http://docs.oasis-open.org/ns/cmis/link/200908/rootdescendants"
	RelTypeDescendants  = "http://docs.oasis-open.org/ns/cmis/link/200908/typedescendants"
	RelChanges          = "http://docs.oasis-open.org/ns/cmis/link/200908/changes"

	// RelContent never appears on the wire. It keys the content stream
	// location taken from <atom:content src="...">.
	RelContent = "@@content@@"
)

// Media types
const (
	MediaTypeService         = "application/atomsvc+xml"
	MediaTypeFeed            = "application/atom+xml;type=feed"
	MediaTypeEntry           = "application/atom+xml;type=entry"
	MediaTypeChildren        = MediaTypeFeed
	MediaTypeDescendants     = "application/cmistree+xml"
	MediaTypeQuery           = "application/cmisquery+xml"
	MediaTypeAllowableAction = "application/cmisallowableactions+xml"
	MediaTypeACL             = "application/cmisacl+xml"
	MediaTypeCMISAtom        = "application/cmisatom+xml"
	MediaTypeOctetStream     = "application/octet-stream"
)

// Collection types advertised in the service document
const (
	CollectionRoot       = "root"
	CollectionTypes      = "types"
	CollectionQuery      = "query"
	CollectionCheckedOut = "checkedout"
	CollectionUnfiled    = "unfiled"
	CollectionUpdate     = "update"
)

// URI template types advertised in the service document
const (
	TemplateObjectByID   = "objectbyid"
	TemplateObjectByPath = "objectbypath"
	TemplateTypeByID     = "typebyid"
	TemplateQuery        = "query"
)

// Property ids read by the client
const (
	PropertyObjectID              = "cmis:objectId"
	PropertyName                  = "cmis:name"
	PropertyBaseTypeID            = "cmis:baseTypeId"
	PropertyObjectTypeID          = "cmis:objectTypeId"
	PropertyChangeToken           = "cmis:changeToken"
	PropertyPath                  = "cmis:path"
	PropertyContentStreamMime     = "cmis:contentStreamMimeType"
	PropertyContentStreamLength   = "cmis:contentStreamLength"
	PropertyContentStreamFileName = "cmis:contentStreamFileName"
)

// Query parameters of the AtomPub binding
const (
	ParamACL                        = "includeACL"
	ParamAllowableActions           = "includeAllowableActions"
	ParamAllVersions                = "allVersions"
	ParamChangeLogToken             = "changeLogToken"
	ParamChangeToken                = "changeToken"
	ParamDepth                      = "depth"
	ParamFilter                     = "filter"
	ParamFolderID                   = "folderId"
	ParamID                         = "id"
	ParamIncludePathSegment         = "includePathSegment"
	ParamIncludeProperties          = "includeProperties"
	ParamIncludePolicyIDs           = "includePolicyIds"
	ParamIncludeRelativePathSegment = "includeRelativePathSegment"
	ParamMaxItems                   = "maxItems"
	ParamOnlyBasicPermissions       = "onlyBasicPermissions"
	ParamOrderBy                    = "orderBy"
	ParamOverwriteFlag              = "overwriteFlag"
	ParamPath                       = "path"
	ParamQ                          = "q"
	ParamRelationships              = "includeRelationships"
	ParamRenditionFilter            = "renditionFilter"
	ParamRepositoryID               = "repositoryId"
	ParamSearchAllVersions          = "searchAllVersions"
	ParamSkipCount                  = "skipCount"
	ParamStreamID                   = "streamId"
	ParamTypeID                     = "typeId"
)

const (
	DefaultHTTPTimeout = 30 * time.Second
)
