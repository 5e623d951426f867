// Package sealer encrypts short configuration values for storage.
package sealer

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

var (
	ErrNoKey      = errors.New("encryption key not configured")
	ErrInvalidKey = errors.New("encryption key must be at least 64 hex characters")
	ErrMalformed  = errors.New("malformed sealed value")
	ErrOpen       = errors.New("sealed value could not be opened")
)

// Sealer encrypts values with XSalsa20-Poly1305. The zero value and a nil
// *Sealer both report ErrNoKey.
type Sealer struct {
	key *[keySize]byte
}

// New builds a Sealer from a hex key; only the first 32 bytes are used.
// An empty key returns a Sealer that refuses to seal or open.
func New(hexKey string) (*Sealer, error) {
	hexKey = strings.TrimSpace(hexKey)
	if hexKey == "" {
		return &Sealer{}, nil
	}

	raw, err := hex.DecodeString(hexKey)
	if err != nil || len(raw) < keySize {
		return nil, ErrInvalidKey
	}

	var key [keySize]byte
	copy(key[:], raw[:keySize])
	return &Sealer{key: &key}, nil
}

// Enabled reports whether key material is present
func (s *Sealer) Enabled() bool {
	return s != nil && s.key != nil
}

// Seal encrypts plaintext into "nonceHex:cipherHex"
func (s *Sealer) Seal(plaintext string) (string, error) {
	if !s.Enabled() {
		return "", ErrNoKey
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}

	sealed := secretbox.Seal(nil, []byte(plaintext), &nonce, s.key)
	return hex.EncodeToString(nonce[:]) + ":" + hex.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal
func (s *Sealer) Open(value string) (string, error) {
	if !s.Enabled() {
		return "", ErrNoKey
	}

	nonceHex, cipherHex, ok := strings.Cut(value, ":")
	if !ok {
		return "", ErrMalformed
	}

	nonceRaw, err := hex.DecodeString(nonceHex)
	if err != nil || len(nonceRaw) != nonceSize {
		return "", ErrMalformed
	}
	box, err := hex.DecodeString(cipherHex)
	if err != nil {
		return "", ErrMalformed
	}

	var nonce [nonceSize]byte
	copy(nonce[:], nonceRaw)

	plain, ok := secretbox.Open(nil, box, &nonce, s.key)
	if !ok {
		return "", ErrOpen
	}
	return string(plain), nil
}
