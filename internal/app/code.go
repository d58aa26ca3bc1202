package app

import "crypto/rand"

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// newGameCode returns a 6-character uppercase alphanumeric code.
// Rejection sampling keeps the distribution uniform over the alphabet.
func newGameCode() string {
	const max = byte(255 - (256 % len(codeAlphabet)))

	out := make([]byte, 0, codeLength)
	buf := make([]byte, codeLength*2)

	for {
		if _, err := rand.Read(buf); err != nil {
			panic(err)
		}
		for _, b := range buf {
			if b <= max {
				out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
				if len(out) == codeLength {
					return string(out)
				}
			}
		}
	}
}
