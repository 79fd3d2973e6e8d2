package core

import "github.com/illarion/pinvault/internal/storage"

// Well-known file paths inside the file store
const (
	PinFile      = "/pin.txt"
	DocumentFile = "/passwords.json"
)

// FileStore is the whole-file storage used by the gate and the store.
// Read must return storage.ErrFileNotFound for missing files.
type FileStore interface {
	Exists(path string) (bool, error)
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
	Delete(path string) error
	Usage() (storage.Usage, error)
}
