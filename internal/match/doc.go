// Package match ranks header names by similarity so that an unresolved
// column reference can be reported together with likely intended names.
//
// Key functions:
//   - NormalizeHeader: folds case and strips separators and punctuation
//   - Levenshtein: computes edit distance between strings
//   - Suggest: ranks candidate headers for a misspelled name
package match
