// Package sqlite provides a SQLite-backed tracking.Store using mattn/go-sqlite3.
package sqlite
