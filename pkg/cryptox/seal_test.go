package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSealRoundTrip(t *testing.T) {
	t.Parallel()

	sealer, err := NewSealer([]byte("test key material"))
	require.NoError(t, err)

	plaintext := []byte(`{"child_id":"01ABC","password":"s3cret"}`)

	sealed, err := sealer.Seal(plaintext)
	require.NoError(t, err)
	require.NotEqual(t, plaintext, sealed)

	opened, err := sealer.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, plaintext, opened)
}

func TestSealNonceUniqueness(t *testing.T) {
	t.Parallel()

	sealer, err := NewSealer([]byte("test key material"))
	require.NoError(t, err)

	a, err := sealer.Seal([]byte("same input"))
	require.NoError(t, err)
	b, err := sealer.Seal([]byte("same input"))
	require.NoError(t, err)

	// Random nonce per seal, so identical plaintexts never produce
	// identical ciphertexts.
	require.NotEqual(t, a, b)
}

func TestOpenRejectsTamperedData(t *testing.T) {
	t.Parallel()

	sealer, err := NewSealer([]byte("test key material"))
	require.NoError(t, err)

	sealed, err := sealer.Seal([]byte("payload"))
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xFF
	_, err = sealer.Open(sealed)
	require.Error(t, err)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	t.Parallel()

	a, err := NewSealer([]byte("key a"))
	require.NoError(t, err)
	b, err := NewSealer([]byte("key b"))
	require.NoError(t, err)

	sealed, err := a.Seal([]byte("payload"))
	require.NoError(t, err)

	_, err = b.Open(sealed)
	require.Error(t, err)
}

func TestOpenRejectsShortCiphertext(t *testing.T) {
	t.Parallel()

	sealer, err := NewSealer(nil)
	require.NoError(t, err)

	_, err = sealer.Open([]byte("short"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "too short")
}
