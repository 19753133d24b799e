// Package migration provides a file-backed ledger that records which
// migration files of each extension have been applied.
package migration
