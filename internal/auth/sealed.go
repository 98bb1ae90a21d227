package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32
)

// ErrSealedCorrupt is returned when a sealed blob cannot be opened.
var ErrSealedCorrupt = errors.New("sealed data corrupt or wrong key")

// Sealer encrypts small secrets with a key derived from a passphrase.
type Sealer struct {
	passphrase []byte
	time       uint32
	memory     uint32
	threads    uint8
}

// NewSealer derives keys from passphrase with argon2id.
func NewSealer(passphrase string) *Sealer {
	return &Sealer{
		passphrase: []byte(passphrase),
		time:       1,
		memory:     32 * 1024,
		threads:    2,
	}
}

func (s *Sealer) key(salt []byte) *[keySize]byte {
	var k [keySize]byte
	copy(k[:], argon2.IDKey(s.passphrase, salt, s.time, s.memory, s.threads, keySize))
	return &k
}

// Seal returns salt || nonce || secretbox(plaintext).
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	header := make([]byte, saltSize+nonceSize)
	if _, err := io.ReadFull(rand.Reader, header); err != nil {
		return nil, fmt.Errorf("read random: %w", err)
	}
	var nonce [nonceSize]byte
	copy(nonce[:], header[saltSize:])

	return secretbox.Seal(header, plaintext, &nonce, s.key(header[:saltSize])), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < saltSize+nonceSize+secretbox.Overhead {
		return nil, ErrSealedCorrupt
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[saltSize:saltSize+nonceSize])

	plain, ok := secretbox.Open(nil, sealed[saltSize+nonceSize:], &nonce, s.key(sealed[:saltSize]))
	if !ok {
		return nil, ErrSealedCorrupt
	}
	return plain, nil
}
