// Package models holds the CMIS domain types produced by the AtomPub binding.
//
// The types are shaped for encoding/xml: the streaming Atom parser hands every
// CMIS payload subtree (cmisra:object, cmisra:repositoryInfo, cmisra:type,
// cmis:allowableActions, cmis:acl) to xml.Decoder.DecodeElement with one of
// the types below as the target. Child elements are matched by local name.
package models
