// Package diagnostic provides structured errors and warnings for mapping
// specifications.
//
// Key capabilities:
//   - Stable diagnostic codes for structural problems
//   - Field paths pointing into the mapping ("dimensions[1].objects")
//   - "Did you mean" suggestions for unresolved header names
package diagnostic
