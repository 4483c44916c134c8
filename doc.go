// Package cmis is a client for the AtomPub binding of CMIS content
// repositories.
//
// # Sessions
//
// A [Session] talks to one AtomPub service document. Create it from
// [Parameters], usually loaded with [LoadParameters]:
//
//	params := cmis.Parameters{cmis.ParamAtomPubURL: "http://localhost:8080/cmis/atom"}
//	s, err := cmis.NewSession(params)
//
// # Links
//
// AtomPub is driven by hypermedia: the URL of "the children of folder X" is a
// link found in a previous response for X. A session keeps the links of every
// response in a [linkcache.LinkCache] and resolves operations through it.
// Call [Session.GetRepositoryInfos] first, then reach objects through
// [Session.GetObject], [Session.GetObjectByPath] or navigation. An operation
// whose link was never seen fails with a [*LinkNotFoundError]; for a
// repository that was never discovered it fails with [ErrRepositoryUnknown].
//
// Mutating operations drop the cached links of the object before the links of
// the response are stored, so links revoked by the change are never reused.
//
// # Results
//
// Objects are returned as [models.ObjectData]. Navigation and discovery
// operations return one page of results together with the paging metadata
// reported by the server.
package cmis
