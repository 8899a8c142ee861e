// Package syncmap provides a string keyed generic map guarded by a
// read-write mutex.
package syncmap
