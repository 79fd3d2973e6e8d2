// Package core provides the pinvault authentication gate and credential store.
//
// Core operations include:
//   - Gate: PIN lifecycle (IsPinSet, CreatePin, VerifyPin)
//   - Store: named secrets kept in one JSON document (Create, Get, Delete, List, Stats)
//
// Both sit on top of a FileStore that reads and writes whole files.
//
// Document invariants, checked on every mutation:
//   - at most MaxEntries entries
//   - names of 1 to MaxNameLength bytes, secrets of at most MaxSecretLength bytes
//   - serialized document of at most MaxDocumentSize bytes
//   - unique names; creating an existing name never overwrites it
//
// Secrets are stored as plaintext. Confidentiality rests on the PIN gate
// and on the security of the device holding the file store.
package core
