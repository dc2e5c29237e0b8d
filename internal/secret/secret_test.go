package secret

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey = "0123456789abcdef0123456789abcdef"
	testIV  = "abcdef9876543210"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		iv      string
		wantErr error
	}{
		{name: "raw key and iv", key: testKey, iv: testIV},
		{name: "hex key and iv", key: strings.Repeat("ab", 32), iv: strings.Repeat("cd", 16)},
		{name: "short key", key: "short", iv: testIV, wantErr: ErrInvalidKey},
		{name: "bad hex key", key: strings.Repeat("zz", 32), iv: testIV, wantErr: ErrInvalidKey},
		{name: "short iv", key: testKey, iv: "iv", wantErr: ErrInvalidIV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box, err := New(tt.key, tt.iv)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, box)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, box)
		})
	}
}

func TestEncryptDecrypt(t *testing.T) {
	box, err := New(testKey, testIV)
	require.NoError(t, err)

	encrypted := box.Encrypt("smtp-relay-password")
	assert.NotContains(t, encrypted, "smtp-relay-password")
	// a full block of padding is added for block aligned input
	assert.Len(t, box.Encrypt("0123456789abcdef"), 64)

	plain, err := box.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "smtp-relay-password", plain)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	box, err := New(testKey, testIV)
	require.NoError(t, err)

	for _, in := range []string{"", "not-hex", "abcd"} {
		_, err = box.Decrypt(in)
		assert.ErrorIs(t, err, ErrInvalidCiphertext, in)
	}
}
