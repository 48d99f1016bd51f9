// Package codegate checks the single-use pickup and delivery codes.
package codegate

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
)

// CodeLength is the length of codes generated server-side.
const CodeLength = 4

// Verify reports whether candidate matches expected exactly.
// No trimming or numeric coercion: "0423" and "423" are different codes.
func Verify(expected, candidate string) bool {
	if expected == "" || len(expected) != len(candidate) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(candidate)) == 1
}

// Generate returns a random code of CodeLength digits. Leading zeros are kept.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

// WellFormed reports whether code has CodeLength ASCII digits.
func WellFormed(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
