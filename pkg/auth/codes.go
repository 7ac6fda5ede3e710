package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const codeAlphabet = "abcdefghijkmnpqrstuvwxyz23456789"

// RandomCode returns a random code of length n drawn from an alphabet
// without look-alike characters. Used for invite and task codes.
func RandomCode(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", n)
	}
	max := big.NewInt(int64(len(codeAlphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random code: %w", err)
		}
		out[i] = codeAlphabet[idx.Int64()]
	}
	return string(out), nil
}
