package models

// ACL is the payload of a cmis:acl element, either embedded in an object or
// served as a standalone document.
type ACL struct {
	Aces []ACE `xml:"permission"`
}

type ACE struct {
	Principal   Principal `xml:"principal"`
	Permissions []string  `xml:"permission"`
	Direct      bool      `xml:"direct"`
}

type Principal struct {
	ID string `xml:"principalId"`
}

// Permissions returns the permissions granted to a principal.
func (a *ACL) Permissions(principalID string) []string {
	if a == nil {
		return nil
	}
	var out []string
	for _, ace := range a.Aces {
		if ace.Principal.ID == principalID {
			out = append(out, ace.Permissions...)
		}
	}
	return out
}
