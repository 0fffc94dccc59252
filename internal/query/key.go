package query

import "strings"

// Key identifies a cached read. Two keys are the same query only when every
// part is equal; invalidation matches on leading parts.
type Key []string

const keySep = "\x1f"

func (k Key) String() string {
	return strings.Join(k, keySep)
}

// HasPrefix reports whether p matches the leading parts of k.
func (k Key) HasPrefix(p Key) bool {
	if len(p) > len(k) {
		return false
	}
	for i := range p {
		if k[i] != p[i] {
			return false
		}
	}
	return true
}
