// Package dataset holds the normalized output of an import: flat, typed
// buckets of classes, entities, parameter definitions and parameter values,
// plus the row-scoped errors collected while producing them.
//
// Class-like buckets (object classes, relationship classes, parameter
// definitions, alternatives) are de-duplicated and keep first-seen order.
// Every other bucket holds one record per produced row, in row order.
//
// A Sink receives a finished Dataset; Fold turns indexed parameter-value
// records into the composite values (Array, Map, TimeSeries, TimePattern)
// sinks store.
package dataset
