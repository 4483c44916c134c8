package cmis

import "github.com/cmisgo/cmis.go/pkg/constants"

// IncludeRelationships selects the relationships returned with objects.
type IncludeRelationships string

const (
	RelationshipsNone   IncludeRelationships = "none"
	RelationshipsSource IncludeRelationships = "source"
	RelationshipsTarget IncludeRelationships = "target"
	RelationshipsBoth   IncludeRelationships = "both"
)

// ObjectOptions control what GetObject and GetObjectByPath return.
type ObjectOptions struct {
	Filter                  string
	IncludeAllowableActions bool
	IncludeRelationships    IncludeRelationships
	RenditionFilter         string
	IncludePolicyIDs        bool
	IncludeACL              bool
}

func (o *ObjectOptions) templateParams() map[string]any {
	if o == nil {
		o = &ObjectOptions{}
	}
	return map[string]any{
		constants.ParamFilter:           o.Filter,
		constants.ParamAllowableActions: o.IncludeAllowableActions,
		constants.ParamRelationships:    string(o.IncludeRelationships),
		constants.ParamRenditionFilter:  o.RenditionFilter,
		constants.ParamIncludePolicyIDs: o.IncludePolicyIDs,
		constants.ParamACL:              o.IncludeACL,
	}
}

// NavigationOptions control the paging and content of navigation results.
// Zero values leave the choice to the server.
type NavigationOptions struct {
	Filter                  string
	OrderBy                 string
	IncludeAllowableActions bool
	IncludeRelationships    IncludeRelationships
	RenditionFilter         string
	IncludePathSegment      bool
	MaxItems                int
	SkipCount               int
}

func (o *NavigationOptions) apply(b *urlBuilder) *urlBuilder {
	if o == nil {
		return b
	}
	return b.
		param(constants.ParamFilter, o.Filter).
		param(constants.ParamOrderBy, o.OrderBy).
		param(constants.ParamAllowableActions, o.IncludeAllowableActions).
		param(constants.ParamRelationships, string(o.IncludeRelationships)).
		param(constants.ParamRenditionFilter, o.RenditionFilter).
		param(constants.ParamIncludePathSegment, o.IncludePathSegment).
		param(constants.ParamMaxItems, o.MaxItems).
		param(constants.ParamSkipCount, o.SkipCount)
}

// QueryOptions control Query.
type QueryOptions struct {
	SearchAllVersions       bool
	IncludeAllowableActions bool
	IncludeRelationships    IncludeRelationships
	RenditionFilter         string
	MaxItems                int
	SkipCount               int
}

// ChangeOptions control GetContentChanges.
type ChangeOptions struct {
	IncludeProperties bool
	IncludePolicyIDs  bool
	IncludeACL        bool
	MaxItems          int
}
