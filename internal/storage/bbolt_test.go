package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTest(t *testing.T, opts Options) *Storage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "vault.db")

	db, err := Open(dbPath, opts)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenAndInitialize(t *testing.T) {
	db := openTest(t, Options{})

	if _, err := db.GetModified(); err != nil {
		t.Fatalf("Database should be initialized: %v", err)
	}

	// Initialize again must keep existing data
	if err := db.Write("/a", []byte("1")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to re-initialize: %v", err)
	}
	if ok, _ := db.Exists("/a"); !ok {
		t.Error("File lost after re-initialize")
	}
}

func TestFileOperations(t *testing.T) {
	db := openTest(t, Options{})

	ok, err := db.Exists("/secret.json")
	if err != nil {
		t.Fatalf("Failed to check existence: %v", err)
	}
	if ok {
		t.Fatal("File should not exist yet")
	}

	data := []byte(`{"a":"b"}`)
	if err := db.Write("/secret.json", data); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	retrieved, err := db.Read("/secret.json")
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(retrieved) != string(data) {
		t.Errorf("Data mismatch: got %s, want %s", retrieved, data)
	}

	if err := db.Delete("/secret.json"); err != nil {
		t.Fatalf("Failed to delete file: %v", err)
	}

	_, err = db.Read("/secret.json")
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}

	// Deleting a missing file is fine
	if err := db.Delete("/secret.json"); err != nil {
		t.Errorf("Delete of missing file failed: %v", err)
	}
}

func TestCapacity(t *testing.T) {
	db := openTest(t, Options{Capacity: 20})

	usage, err := db.Usage()
	if err != nil {
		t.Fatalf("Failed to get usage: %v", err)
	}
	if usage.Total != 20 {
		t.Fatalf("Capacity mismatch: got %d, want 20", usage.Total)
	}

	// 2 bytes of path + 10 bytes of data
	if err := db.Write("/a", make([]byte, 10)); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	usage, err = db.Usage()
	if err != nil {
		t.Fatalf("Failed to get usage: %v", err)
	}
	if usage.Total != 20 || usage.Used != 12 || usage.Free() != 8 {
		t.Errorf("Unexpected usage: %+v free=%d", usage, usage.Free())
	}

	if err := db.Write("/b", make([]byte, 7)); !errors.Is(err, ErrNoSpace) {
		t.Errorf("Expected ErrNoSpace, got %v", err)
	}

	// Rewriting a file only counts the difference
	if err := db.Write("/a", make([]byte, 18)); err != nil {
		t.Errorf("Rewrite within capacity failed: %v", err)
	}
}

func TestDefaultCapacity(t *testing.T) {
	db := openTest(t, Options{})

	usage, err := db.Usage()
	if err != nil {
		t.Fatalf("Failed to get usage: %v", err)
	}
	if usage.Total != DefaultCapacity {
		t.Errorf("Total mismatch: got %d, want %d", usage.Total, DefaultCapacity)
	}
	if usage.Used != 0 {
		t.Errorf("Used should be 0, got %d", usage.Used)
	}
}

func TestVaultID(t *testing.T) {
	db := openTest(t, Options{})

	if _, err := db.GetVaultID(); err == nil {
		t.Fatal("Expected error before vault ID is created")
	}

	id, err := db.GetOrCreateVaultID()
	if err != nil {
		t.Fatalf("Failed to create vault ID: %v", err)
	}
	if id == "" {
		t.Fatal("Vault ID should not be empty")
	}

	again, err := db.GetOrCreateVaultID()
	if err != nil {
		t.Fatalf("Failed to get vault ID: %v", err)
	}
	if again != id {
		t.Errorf("Vault ID changed: got %s, want %s", again, id)
	}
}

func TestPersistenceAndCompact(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "vault.db")

	db, err := Open(dbPath, Options{Capacity: 4096})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Write("/pin.txt", []byte("digest")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	db.Close()

	// Reopen without capacity override keeps the stored capacity
	db2, err := Open(dbPath, Options{})
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db2.Close()

	if err := db2.Compact(); err != nil {
		t.Fatalf("Failed to compact: %v", err)
	}

	data, err := db2.Read("/pin.txt")
	if err != nil {
		t.Fatalf("Failed to read after compact: %v", err)
	}
	if string(data) != "digest" {
		t.Error("File data not persisted correctly")
	}

	usage, err := db2.Usage()
	if err != nil {
		t.Fatalf("Failed to get usage: %v", err)
	}
	if usage.Total != 4096 {
		t.Errorf("Capacity mismatch: got %d, want 4096", usage.Total)
	}
}
