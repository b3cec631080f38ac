// Package crypt provides AES-GCM authenticated encryption for values that are
// persisted on the device, such as the session token and user record.
//
// Ciphertext is base64url-encoded and carries its random nonce prefix, so a
// single string can be stored in any key-value backend.
//
//	c, _ := crypt.New(config.AppKey())
//	enc, _ := c.Encrypt("abc")
//	plain, _ := c.Decrypt(enc)
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrDecrypt is returned when decryption or authentication fails.
var ErrDecrypt = errors.New("crypt: decryption failed")

// ErrNoKey is returned by New when the secret is empty.
var ErrNoKey = errors.New("crypt: APP_KEY not configured")

// Cipher seals and opens strings with a key derived from a secret.
type Cipher struct {
	aead cipher.AEAD
}

// New derives a 32-byte AES-256 key from secret via SHA-256.
func New(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, ErrNoKey
	}
	k := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(k[:])
	if err != nil {
		return nil, fmt.Errorf("crypt: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypt: new GCM: %w", err)
	}
	return &Cipher{aead: gcm}, nil
}

// Encrypt returns base64url(nonce || ciphertext || tag).
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypt: nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a string produced by Encrypt. Any tampering, truncation or
// wrong key yields ErrDecrypt.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrDecrypt
	}

	nonceSize := c.aead.NonceSize()
	if len(data) < nonceSize {
		return "", ErrDecrypt
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
