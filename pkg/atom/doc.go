// Package atom parses AtomPub documents of the CMIS REST binding into a typed
// tree.
//
// The parser is a forward-only recursive descent over an encoding/xml token
// cursor. Every parse function starts with the cursor on its start element and
// returns with the cursor on the token after the matching end element, so
// sub-parsers nest without lookahead or backtracking. Elements nobody asked for
// are skipped by depth counting, which keeps the parser tolerant of extension
// markup. Markup inside a text leaf and an unknown type definition kind are
// the only structural problems that abort a parse.
package atom
