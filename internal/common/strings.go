package common

import "strings"

// UnknownStr is returned by String methods for out-of-range enum values.
const UnknownStr = "unknown"

// JoinKey joins parts with a unit separator so that distinct tuples never
// collide when used as a map key.
func JoinKey(parts ...string) string {
	return strings.Join(parts, "\x1f")
}
