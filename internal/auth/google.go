package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/shopadmin/shop-admin/internal/config"
	"github.com/shopadmin/shop-admin/internal/db/models"
)

// ErrGoogleDisabled is returned when Google login is disabled via configuration.
var ErrGoogleDisabled = errors.New("google authentication is disabled")

// Identity is what an external identity provider tells us about a user.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// IdentityProvider runs the browser redirect flow of an OAuth provider.
type IdentityProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// GoogleProvider signs users in with their Google account.
type GoogleProvider struct {
	verifier *oidc.IDTokenVerifier
	oauth2   oauth2.Config
}

// NewGoogleProvider discovers the provider endpoints.
func NewGoogleProvider(ctx context.Context, cfg config.GoogleAuth) (*GoogleProvider, error) {
	if !cfg.Enabled {
		return nil, ErrGoogleDisabled
	}

	provider, err := oidc.NewProvider(ctx, cfg.ProviderURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	return &GoogleProvider{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth2: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       scopes,
		},
	}, nil
}

// GenerateStateToken generates a random state token for CSRF protection.
func GenerateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// AuthURL returns the consent page url carrying state.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.oauth2.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades the callback code for the verified identity.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	token, err := p.oauth2.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, ErrNoIDToken
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}

	if err = idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}

	return &Identity{
		Subject:       claims.Sub,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}

// LoginWithIdentity finds or creates the account of a Google identity and
// opens a session. An existing account with the same email is only linked
// when Google reports the address as verified.
func (s *Service) LoginWithIdentity(ctx context.Context, id *Identity, deviceInfo string) (*Result, error) {
	if id == nil || strings.TrimSpace(id.Email) == "" {
		return nil, ErrNoEmail
	}

	email := normalizeEmail(id.Email)

	var user models.User

	err := s.db.WithContext(ctx).
		Where("(external_id = ? AND auth_source = ?) OR email = ?", id.Subject, models.AuthSourceGoogle, email).
		Order("id").First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		username := strings.TrimSpace(id.Name)
		if username == "" {
			username = strings.SplitN(email, "@", 2)[0] //nolint:mnd
		}

		user = models.User{
			Username:   username,
			Email:      email,
			Avatar:     id.Picture,
			Role:       models.RoleUser,
			Status:     models.StatusActive,
			AuthSource: models.AuthSourceGoogle,
			ExternalID: id.Subject,
		}

		if err = s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		log.Info().Uint64("id", user.ID).Str("email", email).Msg("user created from google login")
	case err != nil:
		return nil, fmt.Errorf("failed to query user: %w", err)
	case user.AuthSource == models.AuthSourceGoogle && user.ExternalID == id.Subject:
	case !id.EmailVerified:
		log.Warn().Uint64("id", user.ID).Str("subject", id.Subject).Msg("unverified google email matches an account")

		return nil, ErrEmailNotVerified
	case user.ExternalID == "":
		if err = s.db.WithContext(ctx).Model(&user).Update("external_id", id.Subject).Error; err != nil {
			return nil, fmt.Errorf("failed to link user: %w", err)
		}
	}

	if user.Status == models.StatusPending && id.EmailVerified {
		// google vouches for the address, no link needed
		if err = s.db.WithContext(ctx).Model(&user).Updates(map[string]any{
			"status":             models.StatusActive,
			"verification_token": "",
		}).Error; err != nil {
			return nil, err
		}

		user.Status = models.StatusActive
	}

	if !user.IsActive() {
		return nil, &AccountStatusError{Status: user.Status}
	}

	return s.open(ctx, &user, deviceInfo)
}
