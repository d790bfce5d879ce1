// Package importer runs mappings over the selected tables of several
// sources and gathers one normalized dataset plus an error log.
//
// A Coordinator is synchronous. Start runs it on its own goroutine and
// delivers a single terminal Outcome on a channel; cancellation through the
// context is honoured between tables, never inside one.
package importer
