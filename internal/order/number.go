package order

import (
	"crypto/rand"
	"math/big"
)

// Order numbers are short human-facing codes read out over the phone, so
// the alphabet avoids lowercase.
const (
	NumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	NumberLength   = 4

	maxNumberAttempts = 20
)

// NewNumber draws a NumberLength-character code uniformly at random.
func NewNumber() (string, error) {
	max := big.NewInt(int64(len(NumberAlphabet)))
	buf := make([]byte, NumberLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = NumberAlphabet[n.Int64()]
	}
	return string(buf), nil
}
