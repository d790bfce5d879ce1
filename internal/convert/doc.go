// Package convert coerces raw cell values into the closed set of value types
// an import understands.
//
// A raw cell is whatever a source adapter yields: a string, a native number,
// a time.Time or nil. A Spec names the target type:
//
//   - string: stringifies anything, never fails
//   - float: numeric literals and native numbers
//   - datetime: ISO-like timestamps
//   - duration: calendar/clock durations such as "1h", "3M" or "3 months"
//   - integer_sequence_datetime: ordinal labels ("t0001") mapped onto a
//     regular time axis anchored at a start instant
//
// Conversion is pure. Converters hold no state beyond the Spec itself and may
// be shared between goroutines.
package convert
