package core

import "errors"

// Validation errors returned by Store.Create
var (
	ErrNameEmpty        = errors.New("name is empty")
	ErrNameTooLong      = errors.New("name too long")
	ErrSecretTooLong    = errors.New("secret too long")
	ErrInvalidEncoding  = errors.New("name or secret is not valid UTF-8")
	ErrAlreadyExists    = errors.New("name already exists")
	ErrCapacityExceeded = errors.New("maximum number of entries reached")
	ErrStorageFull      = errors.New("storage full")
)

var (
	// ErrIO wraps failures of the underlying file store
	ErrIO = errors.New("storage I/O error")
	// ErrCorruptDocument means the document exists but cannot be parsed
	ErrCorruptDocument = errors.New("credential document is corrupt")
	ErrPinAlreadySet   = errors.New("PIN already set")
)
