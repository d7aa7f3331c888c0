package reservation

import "crypto/rand"

// Confirmation codes avoid ambiguous characters (0/O, 1/I) so they can
// be read over the phone at the gare routiere.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewCode returns a human-readable confirmation code like TB-7KQ2M9XA.
func NewCode() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand failure means the host is broken
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return "TB-" + string(buf)
}
