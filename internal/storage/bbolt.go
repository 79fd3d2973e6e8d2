package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"
)

// DefaultCapacity matches the default SPIFFS partition of a 4 MB ESP32 board.
const DefaultCapacity int64 = 1441792

// Bucket names
var (
	ConfigBucket = []byte("config") // version, timestamps, vault ID, capacity
	FilesBucket  = []byte("files")  // file path -> file contents
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
	ConfigVaultID  = []byte("vault_id")
	ConfigCapacity = []byte("capacity")
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrNoSpace      = errors.New("no space left in file store")
	ErrInUse        = errors.New("database is in use by another process")
)

// Options tunes how the database is opened
type Options struct {
	// Capacity overrides the stored capacity when positive.
	Capacity int64
	// Timeout bounds the wait for the database file lock. Zero waits forever.
	Timeout time.Duration
}

// Usage reports the capacity counters of the file store
type Usage struct {
	Total int64
	Used  int64
}

// Free returns the remaining capacity, never negative
func (u Usage) Free() int64 {
	if u.Used >= u.Total {
		return 0
	}
	return u.Total - u.Used
}

// Storage provides a BBolt-backed file store
type Storage struct {
	db   *bolt.DB
	opts Options
}

// Open opens or creates a file store and makes sure its buckets exist
func Open(path string, opts Options) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: opts.Timeout})
	if errors.Is(err, berrors.ErrTimeout) {
		return nil, ErrInUse
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Storage{db: db, opts: opts}
	if err := s.Initialize(); err != nil {
		db.Close()
		return nil, err
	}
	if opts.Capacity > 0 {
		if err := s.SetCapacity(opts.Capacity); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.db.Path()
}

// Initialize creates the bucket structure. Existing data is left untouched.
func (s *Storage) Initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, FilesBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if config.Get(ConfigVersion) != nil {
			return nil
		}
		if err := config.Put(ConfigVersion, []byte("1")); err != nil {
			return err
		}

		created, _ := time.Now().MarshalBinary()
		if err := config.Put(ConfigCreated, created); err != nil {
			return err
		}
		return config.Put(ConfigModified, created)
	})
}

// SetCapacity stores the total capacity in bytes
func (s *Storage) SetCapacity(capacity int64) error {
	if capacity <= 0 {
		return fmt.Errorf("invalid capacity %d", capacity)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(capacity))
		return config.Put(ConfigCapacity, buf)
	})
}

func capacityOf(tx *bolt.Tx) int64 {
	config := tx.Bucket(ConfigBucket)
	if config == nil {
		return DefaultCapacity
	}
	buf := config.Get(ConfigCapacity)
	if len(buf) != 8 {
		return DefaultCapacity
	}
	return int64(binary.BigEndian.Uint64(buf))
}

// usedOf sums key and value sizes of every stored file
func usedOf(files *bolt.Bucket) int64 {
	var used int64
	_ = files.ForEach(func(k, v []byte) error {
		used += int64(len(k) + len(v))
		return nil
	})
	return used
}

// GetModified retrieves the last modified timestamp
func (s *Storage) GetModified() (time.Time, error) {
	var modified time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		data := config.Get(ConfigModified)
		if data == nil {
			return fmt.Errorf("modified time not found")
		}
		return modified.UnmarshalBinary(data)
	})
	return modified, err
}

// GetVaultID retrieves the vault ID from config bucket
func (s *Storage) GetVaultID() (string, error) {
	var vaultID string
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		data := config.Get(ConfigVaultID)
		if data == nil {
			return fmt.Errorf("vault_id not found")
		}
		vaultID = string(data)
		return nil
	})
	return vaultID, err
}

// GetOrCreateVaultID retrieves existing vault ID or generates a new one
func (s *Storage) GetOrCreateVaultID() (string, error) {
	vaultID, err := s.GetVaultID()
	if err == nil {
		return vaultID, nil
	}

	vaultID = uuid.NewString()
	err = s.db.Update(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		return config.Put(ConfigVaultID, []byte(vaultID))
	})
	if err != nil {
		return "", err
	}

	return vaultID, nil
}

// Exists reports whether a file is stored under path
func (s *Storage) Exists(path string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		files := tx.Bucket(FilesBucket)
		if files == nil {
			return fmt.Errorf("files bucket not found")
		}
		found = files.Get([]byte(path)) != nil
		return nil
	})
	return found, err
}

// Read returns the whole content of a file
func (s *Storage) Read(path string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		files := tx.Bucket(FilesBucket)
		if files == nil {
			return fmt.Errorf("files bucket not found")
		}
		data = files.Get([]byte(path))
		if data == nil {
			return ErrFileNotFound
		}
		// Make a copy since the slice is only valid during the transaction
		data = append([]byte(nil), data...)
		return nil
	})
	return data, err
}

// Write replaces the whole content of a file in a single transaction.
// The write is refused with ErrNoSpace if it would exceed capacity.
func (s *Storage) Write(path string, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		files := tx.Bucket(FilesBucket)
		if files == nil {
			return fmt.Errorf("files bucket not found")
		}

		key := []byte(path)
		used := usedOf(files)
		if old := files.Get(key); old != nil {
			used -= int64(len(key) + len(old))
		}
		if used+int64(len(key)+len(data)) > capacityOf(tx) {
			return ErrNoSpace
		}

		if err := files.Put(key, data); err != nil {
			return err
		}
		modified, _ := time.Now().MarshalBinary()
		return tx.Bucket(ConfigBucket).Put(ConfigModified, modified)
	})
}

// Delete removes a file. Deleting a missing file is not an error.
func (s *Storage) Delete(path string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		files := tx.Bucket(FilesBucket)
		if files == nil {
			return fmt.Errorf("files bucket not found")
		}
		return files.Delete([]byte(path))
	})
}

// Usage returns the capacity and used byte counters
func (s *Storage) Usage() (Usage, error) {
	var u Usage
	err := s.db.View(func(tx *bolt.Tx) error {
		files := tx.Bucket(FilesBucket)
		if files == nil {
			return fmt.Errorf("files bucket not found")
		}
		u.Total = capacityOf(tx)
		u.Used = usedOf(files)
		return nil
	})
	return u, err
}

// Compact creates a compacted copy of the database, removing unused space.
// This is useful after deleting entries to reclaim disk space.
func (s *Storage) Compact() error {
	srcPath := s.db.Path()
	tmpPath := srcPath + ".compact"

	// Create new database
	dst, err := bolt.Open(tmpPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	// Copy all buckets
	err = s.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	// Reopen database
	s.db, err = bolt.Open(srcPath, 0600, &bolt.Options{Timeout: s.opts.Timeout})
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}

	return nil
}
