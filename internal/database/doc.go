// Package database stores the history of grading runs in SQLite.
//
// Each saved run keeps the document source, the document hash and the full
// report, so later runs against the same file or URL can be compared with
// the history subcommand.
//
// The database lives at $XDG_DATA_HOME/htmlgrader/htmlgrader.db and uses
// modernc.org/sqlite, which needs no cgo.
package database
