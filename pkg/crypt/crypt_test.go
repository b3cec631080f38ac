package crypt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vendordesk/pkg/crypt"
)

func TestRoundTrip(t *testing.T) {
	c, err := crypt.New("s3cret")
	require.NoError(t, err)

	enc, err := c.Encrypt(`{"id":"7"}`)
	require.NoError(t, err)
	assert.NotContains(t, enc, "id")

	plain, err := c.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"7"}`, plain)
}

func TestWrongKeyAndTampering(t *testing.T) {
	a, _ := crypt.New("one")
	b, _ := crypt.New("two")

	enc, err := a.Encrypt("abc")
	require.NoError(t, err)

	_, err = b.Decrypt(enc)
	assert.ErrorIs(t, err, crypt.ErrDecrypt)

	_, err = a.Decrypt("not base64 !!")
	assert.ErrorIs(t, err, crypt.ErrDecrypt)

	_, err = a.Decrypt("")
	assert.ErrorIs(t, err, crypt.ErrDecrypt)
}

func TestEmptySecret(t *testing.T) {
	_, err := crypt.New("")
	assert.ErrorIs(t, err, crypt.ErrNoKey)
}
