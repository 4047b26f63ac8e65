// Package history persists which article URLs have already been covered so
// consecutive runs do not narrate the same story twice. It is a small SQLite
// database in the state directory keyed by normalized URL.
package history
