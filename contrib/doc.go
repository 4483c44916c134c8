// Package contrib provides additional functionality and utilities
// for the CMIS Go client.
//
// Everything below this directory extends the core client with features that
// are not part of it, such as testing utilities.
//
// Note that this package is outside of the backward compatibility guarantees
// provided by the core client. Changes to it may introduce breaking changes
// without following semantic versioning.
//
// [github.com/cmisgo/cmis.go/contrib/testenv] creates sessions against a
// sample repository, served in-process or by a real server.
package contrib
