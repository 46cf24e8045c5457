package utils

import (
	"crypto/rand"
	"math/big"
)

// Alphabet for access codes. Ambiguous characters (0/O, 1/I/L) are
// excluded because users retype the code by hand.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GenerateAccessCode returns a random code of n characters
func GenerateAccessCode(n int) string {
	buf := make([]byte, n)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken
			panic(err)
		}
		buf[i] = codeAlphabet[idx.Int64()]
	}
	return string(buf)
}

// Truncate bounds s to max bytes, appending an ellipsis marker when cut
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
