package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Currency string `json:"currency" validate:"omitempty,oneof=USD BDT EUR"`
}

func TestStruct(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		in      registerInput
		wantMsg string
	}{
		{
			name:    "missing fields use json names",
			in:      registerInput{},
			wantMsg: "email, username, password field(s) are required.",
		},
		{
			name:    "oneof lists allowed values",
			in:      registerInput{Email: "a@b.co", Username: "a", Password: "12345678", Currency: "JPY"},
			wantMsg: "Invalid currency. Allowed: USD, BDT, EUR",
		},
		{
			name:    "min length",
			in:      registerInput{Email: "a@b.co", Username: "a", Password: "short"},
			wantMsg: "password must be at least 8",
		},
		{
			name: "valid",
			in:   registerInput{Email: "a@b.co", Username: "a", Password: "12345678"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(v, tt.in)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}

			var verr *Error
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantMsg, verr.Error())
		})
	}
}

func TestRequired(t *testing.T) {
	assert.Equal(t, "Email, Password field(s) are required.", Required("Email", "Password").Error())
}
