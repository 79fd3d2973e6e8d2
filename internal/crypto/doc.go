// Package crypto provides PIN digest operations for pinvault.
//
// Two record schemes are supported:
//   - sha256: lowercase hex SHA-256 of the PIN, no salt (64 characters)
//   - pbkdf2: PBKDF2-HMAC-SHA256 with a 16-byte random salt and
//     210,000 iterations, stored as pbkdf2-sha256$iters$salt$digest
//
// Verify detects the scheme from the stored record, and all digest
// comparisons are constant time.
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
package crypto
