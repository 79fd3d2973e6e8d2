// Package storage provides the BBolt-backed file store for pinvault.
//
// Database structure uses two buckets:
//   - config: version, timestamps, vault ID and capacity
//   - files: file path -> whole file contents
//
// The file store mimics a small flash file system: every file is read and
// written as a whole, and writes are refused once the configured capacity
// would be exceeded. Used bytes count both the path and the content.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
