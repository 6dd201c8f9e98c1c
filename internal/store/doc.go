// Package store holds the location master: the durable location records
// that import rows are reconciled against and that new locations are
// created in.
package store
