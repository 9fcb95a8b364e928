package idgen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateSecureID returns an identifier of the form "<prefix>_<random>",
// where random is a cryptographically secure string of the given length.
func GenerateSecureID(prefix string, length int) (string, error) {
	if prefix == "" {
		return "", errors.New("prefix is required")
	}
	if length <= 0 {
		return "", errors.New("length must be positive")
	}

	buf := make([]byte, length)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate secure id: %w", err)
		}
		buf[i] = idAlphabet[n.Int64()]
	}

	return prefix + "_" + string(buf), nil
}

// MustGenerateSecureID is GenerateSecureID for call sites that cannot
// reasonably recover from an entropy failure.
func MustGenerateSecureID(prefix string, length int) string {
	id, err := GenerateSecureID(prefix, length)
	if err != nil {
		panic(err)
	}
	return id
}
