package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	DigestSize   = 32     // SHA-256 output size
	SaltSize     = 16     // PBKDF2 salt size in bytes
	DefaultIters = 210000 // Default PBKDF2 iterations (OWASP minimum)

	pbkdf2Prefix = "pbkdf2-sha256"
)

// Scheme names accepted by NewHasher
const (
	SchemeSHA256 = "sha256"
	SchemePBKDF2 = "pbkdf2"
)

var (
	ErrUnknownScheme = errors.New("unknown PIN hash scheme")
	ErrInvalidRecord = errors.New("invalid PIN record")
)

// Hasher turns a PIN into the record stored on disk
type Hasher interface {
	Hash(pin string) (string, error)
}

// NewHasher returns the hasher for a scheme name
func NewHasher(scheme string) (Hasher, error) {
	switch scheme {
	case "", SchemeSHA256:
		return SHA256Hasher{}, nil
	case SchemePBKDF2:
		return PBKDF2Hasher{Iterations: DefaultIters}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
}

// SHA256Hasher renders a single unsalted SHA-256 digest as lowercase hex.
// Records are 64 characters long.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(pin string) (string, error) {
	return DigestHex(pin), nil
}

// DigestHex returns the lowercase hex SHA-256 digest of pin
func DigestHex(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}

// PBKDF2Hasher derives the digest with PBKDF2-HMAC-SHA256 and a random salt.
// Records look like pbkdf2-sha256$<iterations>$<salt hex>$<digest hex>.
type PBKDF2Hasher struct {
	Iterations int
}

func (h PBKDF2Hasher) Hash(pin string) (string, error) {
	salt, err := GenerateRandom(SaltSize)
	if err != nil {
		return "", err
	}
	iters := h.Iterations
	if iters <= 0 {
		iters = DefaultIters
	}
	key := pbkdf2.Key([]byte(pin), salt, iters, DigestSize, sha256.New)
	defer ClearBytes(key)

	return fmt.Sprintf("%s$%d$%s$%s", pbkdf2Prefix, iters, hex.EncodeToString(salt), hex.EncodeToString(key)), nil
}

// Verify checks pin against a stored record of either scheme.
// The scheme is detected from the record itself.
func Verify(pin, record string) (bool, error) {
	if !strings.HasPrefix(record, pbkdf2Prefix+"$") {
		return ConstantTimeCompare([]byte(DigestHex(pin)), []byte(record)), nil
	}

	parts := strings.Split(record, "$")
	if len(parts) != 4 {
		return false, ErrInvalidRecord
	}
	iters, err := strconv.Atoi(parts[1])
	if err != nil || iters <= 0 {
		return false, ErrInvalidRecord
	}
	salt, err := hex.DecodeString(parts[2])
	if err != nil {
		return false, ErrInvalidRecord
	}
	want, err := hex.DecodeString(parts[3])
	if err != nil || len(want) != DigestSize {
		return false, ErrInvalidRecord
	}

	got := pbkdf2.Key([]byte(pin), salt, iters, DigestSize, sha256.New)
	defer ClearBytes(got)
	return ConstantTimeCompare(got, want), nil
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
