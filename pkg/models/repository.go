package models

// RepositoryInfo is the payload of cmisra:repositoryInfo inside a service
// document workspace.
type RepositoryInfo struct {
	ID                   string       `xml:"repositoryId"`
	Name                 string       `xml:"repositoryName"`
	Description          string       `xml:"repositoryDescription"`
	VendorName           string       `xml:"vendorName"`
	ProductName          string       `xml:"productName"`
	ProductVersion       string       `xml:"productVersion"`
	RootFolderID         string       `xml:"rootFolderId"`
	LatestChangeLogToken string       `xml:"latestChangeLogToken"`
	CMISVersionSupported string       `xml:"cmisVersionSupported"`
	ThinClientURI        string       `xml:"thinClientURI"`
	ChangesIncomplete    bool         `xml:"changesIncomplete"`
	PrincipalAnonymous   string       `xml:"principalAnonymous"`
	PrincipalAnyone      string       `xml:"principalAnyone"`
	Capabilities         Capabilities `xml:"capabilities"`
}

type Capabilities struct {
	ACL                       string `xml:"capabilityACL"`
	AllVersionsSearchable     bool   `xml:"capabilityAllVersionsSearchable"`
	Changes                   string `xml:"capabilityChanges"`
	ContentStreamUpdatability string `xml:"capabilityContentStreamUpdatability"`
	GetDescendants            bool   `xml:"capabilityGetDescendants"`
	GetFolderTree             bool   `xml:"capabilityGetFolderTree"`
	Multifiling               bool   `xml:"capabilityMultifiling"`
	PWCSearchable             bool   `xml:"capabilityPWCSearchable"`
	PWCUpdatable              bool   `xml:"capabilityPWCUpdatable"`
	Query                     string `xml:"capabilityQuery"`
	Renditions                string `xml:"capabilityRenditions"`
	Unfiling                  bool   `xml:"capabilityUnfiling"`
	VersionSpecificFiling     bool   `xml:"capabilityVersionSpecificFiling"`
	Join                      string `xml:"capabilityJoin"`
}
