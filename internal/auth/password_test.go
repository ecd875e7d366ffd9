package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	h := Hasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, h.Verify("correct horse", hash))
	assert.ErrorIs(t, h.Verify("wrong horse", hash), ErrPasswordMismatch)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"too short", "1234567", ErrPasswordTooShort},
		{"minimum", "12345678", nil},
		{"maximum", strings.Repeat("a", MaxPasswordLength), nil},
		{"too long", strings.Repeat("a", MaxPasswordLength+1), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestHasher_RejectsShortPassword(t *testing.T) {
	_, err := Hasher{Cost: bcrypt.MinCost}.Hash("short")

	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestVerify_MalformedHash(t *testing.T) {
	err := Hasher{Cost: bcrypt.MinCost}.Verify("whatever1", "not-a-bcrypt-hash")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}
