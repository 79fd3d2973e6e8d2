package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/illarion/pinvault/internal/storage"
)

const (
	MaxNameLength   = 32
	MaxSecretLength = 8000
	MaxEntries      = 1000
	MaxDocumentSize = 102400
)

// Stats aggregates the document and the file store counters
type Stats struct {
	TotalEntries       int
	TotalSecretBytes   int
	AverageSecretBytes float64
	TotalStorageBytes  int64
	UsedStorageBytes   int64
	FreeStorageBytes   int64
}

// Store keeps named secrets in a single JSON document.
// Every call reloads the document; mutations rewrite it whole.
type Store struct {
	mu    sync.Mutex
	files FileStore
	log   *zap.Logger
}

// NewStore creates a credential store on top of files
func NewStore(files FileStore, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{files: files, log: log}
}

type document map[string]string

// load reads the document. A missing file is an empty document.
func (s *Store) load() (document, error) {
	data, err := s.files.Read(DocumentFile)
	if errors.Is(err, storage.ErrFileNotFound) {
		return document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn("credential document is corrupt", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCorruptDocument, err)
	}
	if doc == nil {
		doc = document{}
	}
	return doc, nil
}

// encode serializes without HTML escaping so sizes match the literal text
func encode(doc document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Exists reports whether name is stored
func (s *Store) Exists(name string) bool {
	doc, err := s.load()
	if err != nil {
		return false
	}
	_, ok := doc[name]
	return ok
}

// Create stores a new secret under name. It never overwrites.
func (s *Store) Create(name, secret string) error {
	switch {
	case len(name) == 0:
		return ErrNameEmpty
	case len(name) > MaxNameLength:
		return ErrNameTooLong
	case len(secret) > MaxSecretLength:
		return ErrSecretTooLong
	case !utf8.ValidString(name) || !utf8.ValidString(secret):
		// JSON would store U+FFFD in place of the bad bytes
		return ErrInvalidEncoding
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		if errors.Is(err, ErrIO) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if _, ok := doc[name]; ok {
		return ErrAlreadyExists
	}
	if len(doc) >= MaxEntries {
		return ErrCapacityExceeded
	}

	doc[name] = secret
	data, err := encode(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if len(data) > MaxDocumentSize {
		return ErrStorageFull
	}

	if err := s.files.Write(DocumentFile, data); err != nil {
		s.log.Error("cannot write credential document", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	s.log.Debug("secret created", zap.String("name", name), zap.Int("entries", len(doc)))
	return nil
}

// Get returns the secret stored under name. A missing or corrupt
// document reads as not found.
func (s *Store) Get(name string) (string, bool) {
	doc, err := s.load()
	if err != nil {
		return "", false
	}
	secret, ok := doc[name]
	return secret, ok
}

// Delete removes name and reports whether it existed and the document
// was rewritten.
func (s *Store) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return false
	}
	if _, ok := doc[name]; !ok {
		return false
	}

	delete(doc, name)
	data, err := encode(doc)
	if err != nil {
		return false
	}
	if err := s.files.Write(DocumentFile, data); err != nil {
		s.log.Error("cannot write credential document", zap.Error(err))
		return false
	}

	s.log.Debug("secret deleted", zap.String("name", name), zap.Int("entries", len(doc)))
	return true
}

// List returns all names in the document's key order
func (s *Store) List() ([]string, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(doc)), nil
}

// Stats aggregates entry counts and secret sizes over a fresh load,
// together with the file store usage counters.
func (s *Store) Stats() (Stats, error) {
	usage, err := s.files.Usage()
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %w", ErrIO, err)
	}

	doc, err := s.load()
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		TotalEntries:      len(doc),
		TotalStorageBytes: usage.Total,
		UsedStorageBytes:  usage.Used,
		FreeStorageBytes:  usage.Free(),
	}
	for _, secret := range doc {
		st.TotalSecretBytes += len(secret)
	}
	if st.TotalEntries > 0 {
		st.AverageSecretBytes = float64(st.TotalSecretBytes) / float64(st.TotalEntries)
	}
	return st, nil
}
