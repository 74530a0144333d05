// Package secrets generates the short-lived secrets mailed to users:
// 6-digit registration codes and high-entropy password-reset tokens.
package secrets

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

const (
	// NumericCodeLength is the number of digits in a registration OTP.
	NumericCodeLength = 6

	tokenBytes = 32
)

// NumericCode returns a 6-digit decimal code uniform over [100000, 999999].
// The range excludes codes that would truncate to fewer digits.
func NumericCode() (string, error) {
	const span = 900000 // 999999 - 100000 + 1

	// Rejection sampling keeps the draw uniform over the span.
	max := uint64(1<<64 - 1)
	limit := max - max%span
	for {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return "", fmt.Errorf("failed to read entropy: %w", err)
		}
		n := binary.BigEndian.Uint64(buf[:])
		if n >= limit {
			continue
		}
		return fmt.Sprintf("%06d", 100000+n%span), nil
	}
}

// OpaqueToken returns a 256-bit random token, hex encoded so it can ride in
// a URL query parameter unescaped.
func OpaqueToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read entropy: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
