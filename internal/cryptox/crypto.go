// Package cryptox protects small secrets at rest with AES-256-GCM and derives
// keys from passphrases with argon2id.
//
// Tokens produced by SecretBox have the form
//
//	base64(iv):base64(tag):base64(ciphertext)
//
// with a 12-byte IV drawn fresh for every call and a 16-byte GCM tag. The
// format carries no key version, so rotating the key invalidates every
// stored token.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// IVSize is the GCM nonce length in bytes.
	IVSize = 12
	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16
)

var (
	// ErrMissingKey is returned when no encryption key is configured.
	ErrMissingKey = errors.New("encryption key is not configured")
	// ErrInvalidKey is returned when the key is not 64 hex characters.
	ErrInvalidKey = errors.New("encryption key must be 64 hex characters (32 bytes)")
	// ErrDecrypt covers every decryption failure: malformed token, bad
	// encoding, wrong key or tampered data.
	ErrDecrypt = errors.New("failed to decrypt secret")
)

// SecretBox encrypts and decrypts short strings with a fixed key.
type SecretBox struct {
	aead cipher.AEAD
}

// NewSecretBox parses a 64-character hex key and prepares the AEAD.
func NewSecretBox(hexKey string) (*SecretBox, error) {
	hexKey = strings.TrimSpace(hexKey)
	if hexKey == "" {
		return nil, ErrMissingKey
	}
	if len(hexKey) != KeySize*2 {
		return nil, ErrInvalidKey
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, ErrInvalidKey
	}
	return newSecretBox(key)
}

func newSecretBox(key []byte) (*SecretBox, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &SecretBox{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random IV.
func (b *SecretBox) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	// Seal appends the tag to the ciphertext.
	sealed := b.aead.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext, tag := sealed[:len(sealed)-TagSize], sealed[len(sealed)-TagSize:]

	enc := base64.StdEncoding
	return enc.EncodeToString(iv) + ":" + enc.EncodeToString(tag) + ":" + enc.EncodeToString(ciphertext), nil
}

// Decrypt opens a token produced by Encrypt. Any failure yields ErrDecrypt.
func (b *SecretBox) Decrypt(token string) (string, error) {
	parts := strings.Split(token, ":")
	if len(parts) != 3 {
		return "", ErrDecrypt
	}

	enc := base64.StdEncoding
	iv, err := enc.DecodeString(parts[0])
	if err != nil || len(iv) != IVSize {
		return "", ErrDecrypt
	}
	tag, err := enc.DecodeString(parts[1])
	if err != nil || len(tag) != TagSize {
		return "", ErrDecrypt
	}
	ciphertext, err := enc.DecodeString(parts[2])
	if err != nil {
		return "", ErrDecrypt
	}

	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := b.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}

// GenerateKey returns a random key in the hex form NewSecretBox accepts.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// DeriveKey stretches a passphrase into a KeySize key with argon2id.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}
