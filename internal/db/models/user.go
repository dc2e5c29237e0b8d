package models

import (
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AuthSource represents the authentication source for a user account.
type AuthSource string

const (
	// AuthSourceLocal indicates the user authenticates with a local database password.
	AuthSourceLocal AuthSource = "local"
	// AuthSourceGoogle indicates the user signed in through Google OAuth.
	AuthSourceGoogle AuthSource = "google"
	// AuthSourceLDAP indicates the user authenticates via LDAP or Active Directory.
	AuthSourceLDAP AuthSource = "ldap"
)

// Role is the coarse access level of an account.
type Role string

// Roles ordered by privilege.
const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Rank orders roles, unknown roles rank below user.
func (r Role) Rank() int {
	switch r {
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2 //nolint:mnd
	case RoleSuperAdmin:
		return 3 //nolint:mnd
	default:
		return 0
	}
}

// Status is the lifecycle state of an account.
type Status string

const (
	// StatusPending is a self registered account waiting for email verification.
	StatusPending Status = "pending"
	// StatusActive accounts can log in.
	StatusActive Status = "active"
	// StatusInactive accounts were disabled by an administrator.
	StatusInactive Status = "inactive"
)

// User represents an account of the admin backend.
// Secrets and one time codes never leave the server, they carry json:"-".
type User struct {
	ID             uint64     `gorm:"primaryKey"                                json:"id"`
	Username       string     `gorm:"size:100;not null"                         json:"username"`
	Email          string     `gorm:"uniqueIndex;size:191;not null"             json:"email"`
	Password       string     `gorm:"size:255"                                  json:"-"`
	Phone          string     `gorm:"size:50"                                   json:"phone"`
	Address        string     `gorm:"size:255"                                  json:"address"`
	Avatar         string     `gorm:"size:500"                                  json:"avatar"`
	AvatarPublicID string     `gorm:"size:255"                                  json:"avatarPublicId"`
	Role           Role       `gorm:"type:varchar(20);not null;default:'user'"  json:"role"`
	Status         Status     `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	AuthSource     AuthSource `gorm:"type:varchar(20);not null;default:'local'" json:"authSource"`
	// ExternalID is the Google subject or the LDAP DN.
	ExternalID string `gorm:"size:255;index" json:"-"`

	IsTwoFactorEnabled bool       `json:"isTwoFactorEnabled"`
	TwoFactorSecret    string     `gorm:"size:128" json:"-"` // authenticator app secret, empty means emailed codes
	TwoFactorTempToken string     `gorm:"size:16"  json:"-"`
	TwoFactorTempExp   *time.Time `json:"-"`

	ResetCode           string     `gorm:"size:16" json:"-"`
	ResetCodeExpiration *time.Time `json:"-"`

	VerificationToken           string     `gorm:"size:64;index" json:"-"`
	VerificationTokenExpiration *time.Time `json:"-"`

	IsEmailNotificationEnabled bool `json:"isEmailNotificationEnabled"`
	IsOrderNotificationEnabled bool `json:"isOrderNotificationEnabled"`
	IsStockAlertEnabled        bool `json:"isStockAlertEnabled"`
	IsSystemAlertEnabled       bool `json:"isSystemAlertEnabled"`

	Sessions []Session `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the stored hash.
// Hashes imported from the previous installation are bcrypt, they still verify.
func (u *User) VerifyPassword(password string) bool {
	if u.Password == "" {
		return false
	}

	if strings.HasPrefix(u.Password, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
	}

	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}

// IsActive reports whether the account may log in.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}
