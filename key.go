// key.go - Cookie secret key
//
// To the extent possible under law, Yawning Angel has waived all copyright
// and related or neighboring rights to the software, using the Creative
// Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package cookiejar

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20"
)

const (
	// KeySize is the size of a key in bytes.
	KeySize = salsaStateSize * 4

	// SeedSize is the size of a seed accepted by NewKeyFromSeed in bytes.
	SeedSize = chacha20.KeySize
)

// Key is a cookie secret key.  It is never serialized, and formats as a
// redacted placeholder.
type Key [KeySize]byte

// NewKey returns a new random key.
func NewKey() (*Key, error) {
	k := new(Key)
	if _, err := rand.Read(k[:]); err != nil {
		return nil, fmt.Errorf("cookiejar: failed to generate key: %w", err)
	}
	return k, nil
}

// NewKeyFromSeed deterministically expands a SeedSize byte seed into a key,
// using the ChaCha20 keystream under an all zero nonce.
func NewKeyFromSeed(seed []byte) *Key {
	if len(seed) != SeedSize {
		panic(ErrInvalidSeedSize)
	}

	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(seed, nonce[:])
	if err != nil {
		panic(err)
	}

	k := new(Key)
	c.XORKeyStream(k[:], k[:])
	return k
}

// Reset clears the key.
func (k *Key) Reset() {
	burnBytes(k[:])
}

// String implements fmt.Stringer without revealing the key material.
func (k Key) String() string {
	return "[redacted]"
}

// GoString implements fmt.GoStringer without revealing the key material.
func (k Key) GoString() string {
	return k.String()
}

// Format implements fmt.Formatter, so that no verb reveals the key material.
func (k Key) Format(f fmt.State, verb rune) {
	_, _ = io.WriteString(f, k.String())
}
