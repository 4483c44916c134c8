package models

import (
	"io"
	"math/big"
)

type ObjectInFolderData struct {
	Object      *ObjectData
	PathSegment string
}

// ObjectInFolderList is one page of folder children.
type ObjectInFolderList struct {
	Objects      []*ObjectInFolderData
	HasMoreItems bool
	// NumItems is nil when the server did not report a total.
	NumItems *big.Int
}

// ObjectInFolderContainer is a node of a descendants or folder tree result.
type ObjectInFolderContainer struct {
	Object   *ObjectInFolderData
	Children []*ObjectInFolderContainer
}

type ObjectParentData struct {
	Object              *ObjectData
	RelativePathSegment string
}

// ObjectList is one page of query, checked-out or content change results.
type ObjectList struct {
	Objects      []*ObjectData
	HasMoreItems bool
	NumItems     *big.Int
}

// ChangeLog is the result of getContentChanges. LatestChangeLogToken is the
// token to pass to the next call, if the server provided one.
type ChangeLog struct {
	ObjectList
	LatestChangeLogToken string
}

// ContentStream is returned by getContentStream. The caller closes Stream.
type ContentStream struct {
	FileName string
	MimeType string
	Length   int64
	Stream   io.ReadCloser
}
