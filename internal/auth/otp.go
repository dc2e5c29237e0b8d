package auth

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const codePeriod = 30

var codeOpts = totp.ValidateOpts{ //nolint:gochecknoglobals
	Period:    codePeriod,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// NewCode returns a random six digit code. Each code is derived from a fresh
// secret, so consecutive codes are independent.
func NewCode(now time.Time) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      tokenIssuer,
		AccountName: "code",
		Period:      codePeriod,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate code secret: %w", err)
	}

	return totp.GenerateCodeCustom(key.Secret(), now, codeOpts)
}

// SameCode compares codes in constant time.
func SameCode(a, b string) bool {
	return a != "" && subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// TwoFactorSetup is handed to the user when an authenticator app is enrolled.
type TwoFactorSetup struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauthUrl"`
}

// NewAuthenticatorKey creates the secret for an authenticator app.
func NewAuthenticatorKey(issuer, account string) (*TwoFactorSetup, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate authenticator key: %w", err)
	}

	return &TwoFactorSetup{Secret: key.Secret(), URL: key.URL()}, nil
}

// ValidateAuthenticatorCode checks a code from an authenticator app.
func ValidateAuthenticatorCode(code, secret string) bool {
	return secret != "" && totp.Validate(code, secret)
}
