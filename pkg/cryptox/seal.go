package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for deriving the sealing key from key material.
// These mirror the common interactive profile; the derived key is only used
// locally so there is no cross-system compatibility concern.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	keyLen       = 32 // AES-256
)

// keySalt is a fixed application salt. The sealed blobs never leave the
// local machine, so a per-install salt buys nothing here.
var keySalt = []byte("coincraft.credential-cache.v1")

// Sealer encrypts and decrypts small local blobs with AES-256-GCM using a
// key derived from caller-provided material (argon2id).
type Sealer struct {
	key []byte
}

// NewSealer derives the sealing key from material. Empty material falls back
// to an ephemeral random key, which means sealed blobs do not survive a
// process restart - acceptable for development, not for real use.
func NewSealer(material []byte) (*Sealer, error) {
	if len(material) == 0 {
		material = make([]byte, keyLen)
		if _, err := rand.Read(material); err != nil {
			return nil, fmt.Errorf("failed to generate ephemeral key material: %w", err)
		}
	}

	key := argon2.IDKey(material, keySalt, argonTime, argonMemory, argonThreads, keyLen)
	return &Sealer{key: key}, nil
}

// Seal encrypts plaintext. The output format is:
// [12-byte nonce][encrypted data][16-byte auth tag]
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	gcm, err := s.aead()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// gcm.Seal appends the ciphertext and auth tag to nonce
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts data produced by Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	gcm, err := s.aead()
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(sealed) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}

	return plaintext, nil
}

func (s *Sealer) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return gcm, nil
}
