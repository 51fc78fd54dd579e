// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

func GenerateRandomDigits(length int) (string, error) {
	const charset = "0123456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GenerateOTPCode returns a 6-digit one-time passcode.
func GenerateOTPCode() (string, error) {
	return GenerateRandomDigits(6)
}

// GenerateCartID builds the external application identifier: a literal
// prefix, the millisecond timestamp, and a 4-digit random suffix.
// Uniqueness is probabilistic; the column carries a unique index as the
// backstop.
func GenerateCartID() (string, error) {
	suffix, err := GenerateRandomDigits(4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CART-%d%s", time.Now().UnixMilli(), suffix), nil
}
