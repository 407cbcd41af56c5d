package util

import "github.com/oklog/ulid/v2"

// NewID returns a lexicographically sortable unique id, used for audit
// trail entries.
func NewID() string {
	return ulid.Make().String()
}
