// Package slug generates random short codes. Uniqueness is enforced by the
// store's UNIQUE constraint; callers retry on collision.
package slug

import (
	"crypto/rand"
	"math/big"
)

const (
	charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Length of generated short codes. 62^7 leaves collisions vanishingly
	// rare at any realistic link count.
	Length = 7
)

var maxIdx = big.NewInt(int64(len(charset)))

// Generate returns a random base62 short code.
func Generate() (string, error) {
	b := make([]byte, Length)
	for i := range b {
		n, err := rand.Int(rand.Reader, maxIdx)
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}
	return string(b), nil
}
