package kvstore

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/vendordesk/pkg/crypt"
)

type encrypted struct {
	inner  Store
	cipher *crypt.Cipher
}

// Encrypted seals every value with c before it reaches inner. A value that
// fails to decrypt surfaces as an error from Get, never as plaintext.
func Encrypted(inner Store, c *crypt.Cipher) Store {
	return &encrypted{inner: inner, cipher: c}
}

func (e *encrypted) Get(ctx context.Context, key string) (string, error) {
	sealed, err := e.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	plain, err := e.cipher.Decrypt(sealed)
	if err != nil {
		return "", fmt.Errorf("kvstore: open %s: %w", key, err)
	}
	return plain, nil
}

func (e *encrypted) Set(ctx context.Context, key, value string) error {
	sealed, err := e.cipher.Encrypt(value)
	if err != nil {
		return fmt.Errorf("kvstore: seal %s: %w", key, err)
	}
	return e.inner.Set(ctx, key, sealed)
}

func (e *encrypted) Delete(ctx context.Context, key string) error {
	return e.inner.Delete(ctx, key)
}
