package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/illarion/pinvault/internal/storage"
)

// memFiles is an in-memory FileStore with switchable failures
type memFiles struct {
	files     map[string][]byte
	failRead  error
	failWrite error
}

func newMemFiles() *memFiles {
	return &memFiles{files: map[string][]byte{}}
}

func (m *memFiles) Exists(path string) (bool, error) {
	_, ok := m.files[path]
	return ok, nil
}

func (m *memFiles) Read(path string) ([]byte, error) {
	if m.failRead != nil {
		return nil, m.failRead
	}
	data, ok := m.files[path]
	if !ok {
		return nil, storage.ErrFileNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *memFiles) Write(path string, data []byte) error {
	if m.failWrite != nil {
		return m.failWrite
	}
	m.files[path] = append([]byte(nil), data...)
	return nil
}

func (m *memFiles) Delete(path string) error {
	delete(m.files, path)
	return nil
}

func (m *memFiles) Usage() (storage.Usage, error) {
	u := storage.Usage{Total: 1 << 20}
	for k, v := range m.files {
		u.Used += int64(len(k) + len(v))
	}
	return u, nil
}

func TestCreateGetRoundTrip(t *testing.T) {
	store := NewStore(newMemFiles(), zap.NewNop())

	tests := []struct {
		name   string
		secret string
	}{
		{"a", ""},
		{"alice", "s3cret"},
		{"unicode", "пароль ✓"},
		{"html", `<a href="x">&amp;</a>`},
		{strings.Repeat("n", MaxNameLength), strings.Repeat("s", MaxSecretLength)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, store.Create(tt.name, tt.secret))
			assert.True(t, store.Exists(tt.name))

			got, ok := store.Get(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.secret, got)
		})
	}
}

func TestCreateValidation(t *testing.T) {
	store := NewStore(newMemFiles(), zap.NewNop())

	assert.ErrorIs(t, store.Create("", "x"), ErrNameEmpty)
	assert.ErrorIs(t, store.Create(strings.Repeat("n", MaxNameLength+1), "x"), ErrNameTooLong)
	assert.NoError(t, store.Create(strings.Repeat("n", MaxNameLength), "x"))
	assert.ErrorIs(t, store.Create("big", strings.Repeat("s", MaxSecretLength+1)), ErrSecretTooLong)
	assert.NoError(t, store.Create("big", strings.Repeat("s", MaxSecretLength)))

	_, ok := store.Get(strings.Repeat("n", MaxNameLength+1))
	assert.False(t, ok)
}

func TestCreateDuplicateKeepsOriginal(t *testing.T) {
	store := NewStore(newMemFiles(), zap.NewNop())

	require.NoError(t, store.Create("alice", "first"))
	assert.ErrorIs(t, store.Create("alice", "second"), ErrAlreadyExists)

	got, ok := store.Get("alice")
	require.True(t, ok)
	assert.Equal(t, "first", got)
}

func TestCapacityExceeded(t *testing.T) {
	store := NewStore(newMemFiles(), zap.NewNop())

	for i := 0; i < MaxEntries; i++ {
		require.NoError(t, store.Create(fmt.Sprintf("name-%04d", i), "v"))
	}
	assert.ErrorIs(t, store.Create("one-too-many", "v"), ErrCapacityExceeded)

	names, err := store.List()
	require.NoError(t, err)
	assert.Len(t, names, MaxEntries)
	for i := 0; i < MaxEntries; i++ {
		got, ok := store.Get(fmt.Sprintf("name-%04d", i))
		require.True(t, ok)
		assert.Equal(t, "v", got)
	}
}

func TestStorageFull(t *testing.T) {
	files := newMemFiles()
	store := NewStore(files, zap.NewNop())

	big := strings.Repeat("x", MaxSecretLength)
	for i := 0; i < 12; i++ {
		require.NoError(t, store.Create(fmt.Sprintf("s%02d", i), big))
	}
	before := string(files.files[DocumentFile])

	assert.ErrorIs(t, store.Create("s12", big), ErrStorageFull)
	assert.Equal(t, before, string(files.files[DocumentFile]), "rejected create must not touch the document")
	assert.False(t, store.Exists("s12"))
}

func TestDelete(t *testing.T) {
	files := newMemFiles()
	store := NewStore(files, zap.NewNop())

	assert.False(t, store.Delete("ghost"), "no document yet")

	require.NoError(t, store.Create("alice", "s3cret"))
	require.NoError(t, store.Create("bob", "hunter2"))
	before := string(files.files[DocumentFile])

	assert.False(t, store.Delete("ghost"))
	assert.Equal(t, before, string(files.files[DocumentFile]))

	assert.True(t, store.Delete("alice"))
	_, ok := store.Get("alice")
	assert.False(t, ok)

	got, ok := store.Get("bob")
	require.True(t, ok)
	assert.Equal(t, "hunter2", got)
}

func TestDeleteWriteFailure(t *testing.T) {
	files := newMemFiles()
	store := NewStore(files, zap.NewNop())
	require.NoError(t, store.Create("alice", "s3cret"))

	files.failWrite = errors.New("flash worn out")
	assert.False(t, store.Delete("alice"))

	files.failWrite = nil
	assert.True(t, store.Exists("alice"))
}

func TestCreateRejectsInvalidUTF8(t *testing.T) {
	files := newMemFiles()
	store := NewStore(files, zap.NewNop())
	require.NoError(t, store.Create("\ufffd", "first"))

	assert.ErrorIs(t, store.Create("\xff", "secret-a"), ErrInvalidEncoding)
	assert.ErrorIs(t, store.Create("\xfe", "overwrites"), ErrInvalidEncoding)
	assert.ErrorIs(t, store.Create("bin", "ab\xffcd"), ErrInvalidEncoding)

	got, ok := store.Get("\ufffd")
	require.True(t, ok)
	assert.Equal(t, "first", got)
	assert.False(t, store.Exists("bin"))
	assert.Equal(t, "{\"\ufffd\":\"first\"}", string(files.files[DocumentFile]))
}

func TestListOrder(t *testing.T) {
	store := NewStore(newMemFiles(), zap.NewNop())

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, n := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, store.Create(n, "x"))
	}
	names, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestStats(t *testing.T) {
	store := NewStore(newMemFiles(), zap.NewNop())

	st, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, st.TotalEntries)
	assert.Zero(t, st.AverageSecretBytes)
	assert.EqualValues(t, 1<<20, st.TotalStorageBytes)

	require.NoError(t, store.Create("a", "1234"))
	require.NoError(t, store.Create("b", "12"))

	st, err = store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalEntries)
	assert.Equal(t, 6, st.TotalSecretBytes)
	assert.InDelta(t, 3.0, st.AverageSecretBytes, 0.0001)
	assert.Positive(t, st.UsedStorageBytes)
	assert.Equal(t, st.TotalStorageBytes-st.UsedStorageBytes, st.FreeStorageBytes)
}

func TestCorruptDocument(t *testing.T) {
	files := newMemFiles()
	obs, logs := observer.New(zap.WarnLevel)
	store := NewStore(files, zap.New(obs))

	files.files[DocumentFile] = []byte("{not json")

	// Optional-valued reads collapse to not found
	assert.False(t, store.Exists("a"))
	_, ok := store.Get("a")
	assert.False(t, ok)
	assert.False(t, store.Delete("a"))

	// Error-returning paths report the corruption
	_, err := store.List()
	assert.ErrorIs(t, err, ErrCorruptDocument)
	_, err = store.Stats()
	assert.ErrorIs(t, err, ErrCorruptDocument)

	err = store.Create("a", "b")
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, ErrCorruptDocument)

	assert.Equal(t, "{not json", string(files.files[DocumentFile]))
	assert.NotZero(t, logs.FilterMessage("credential document is corrupt").Len())
}

func TestIOErrors(t *testing.T) {
	files := newMemFiles()
	store := NewStore(files, zap.NewNop())

	files.failWrite = errors.New("disk gone")
	err := store.Create("a", "b")
	assert.ErrorIs(t, err, ErrIO)

	files.failWrite = nil
	files.failRead = errors.New("disk gone")
	err = store.Create("a", "b")
	assert.ErrorIs(t, err, ErrIO)
	assert.NotErrorIs(t, err, ErrCorruptDocument)

	_, ok := store.Get("a")
	assert.False(t, ok)
}

func TestStoreOnBolt(t *testing.T) {
	db, err := storage.Open(t.TempDir()+"/vault.db", storage.Options{})
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db, zap.NewNop())
	require.NoError(t, store.Create("alice", "s3cret"))

	got, ok := store.Get("alice")
	require.True(t, ok)
	assert.Equal(t, "s3cret", got)

	assert.True(t, store.Delete("alice"))
	_, ok = store.Get("alice")
	assert.False(t, ok)
}

func TestStoreOnFullBolt(t *testing.T) {
	db, err := storage.Open(t.TempDir()+"/vault.db", storage.Options{Capacity: 64})
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db, zap.NewNop())
	err = store.Create("alice", strings.Repeat("x", 100))
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, storage.ErrNoSpace)
}
