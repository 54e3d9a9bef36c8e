package validate

import "strings"

// FieldPath locates a value inside a payload. Segments are object keys or
// decimal list indices, ordered root to leaf.
type FieldPath []string

// String renders the path for reports: "$" for the payload root, dot-joined
// segments otherwise, e.g. "tags.1" for the second element of a tags list.
func (p FieldPath) String() string {
	if len(p) == 0 {
		return "$"
	}

	return strings.Join(p, ".")
}

// child returns a copy of p extended with seg. Copying keeps sibling branches
// of the walk from sharing backing arrays.
func (p FieldPath) child(seg string) FieldPath {
	next := make(FieldPath, len(p), len(p)+1)
	copy(next, p)

	return append(next, seg)
}
