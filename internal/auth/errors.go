package auth

import (
	"errors"
	"fmt"

	"github.com/shopadmin/shop-admin/internal/db/models"
)

var (
	// ErrRegistrationDisabled is returned when self registration is switched off.
	ErrRegistrationDisabled = errors.New("User registration is currently disabled by the system administrator.")

	// ErrUserExists is returned when the email is already registered.
	ErrUserExists = errors.New("User already registered with this email or username.")

	// ErrUserNotFound is returned when a user cannot be found in the database or directory.
	ErrUserNotFound = errors.New("User not found.")

	// ErrLoginFieldsRequired is returned when a login lacks email or password.
	ErrLoginFieldsRequired = errors.New("Email and password are required.")

	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("Invalid email or password.")

	// ErrOTPFieldsRequired is returned when a 2FA verification lacks email or code.
	ErrOTPFieldsRequired = errors.New("Email and OTP are required.")

	// ErrInvalidOTPRequest is returned when no code was issued for the account.
	ErrInvalidOTPRequest = errors.New("Invalid OTP request.")

	// ErrInvalidOTP is returned for a wrong or expired code.
	ErrInvalidOTP = errors.New("Invalid or expired OTP.")

	// ErrPasswordMismatch is returned when a reset password and its confirmation differ.
	ErrPasswordMismatch = errors.New("Password not match. Please try again.")

	// ErrInvalidResetCode is returned for a reset code that was never issued.
	ErrInvalidResetCode = errors.New("Invalid reset code.")

	// ErrResetCodeExpired is returned for a reset code past its expiry.
	ErrResetCodeExpired = errors.New("Reset code has expired.")

	// ErrAllFieldsRequired is returned by change password for missing fields.
	ErrAllFieldsRequired = errors.New("All fields are required!")

	// ErrInvalidOldPassword is returned when the provided old password does not match the user's current password.
	ErrInvalidOldPassword = errors.New("Old password is incorrect!")

	// ErrConfirmMismatch is returned when a new password and its confirmation differ.
	ErrConfirmMismatch = errors.New("New password and confirmation do not match!")

	// ErrInvalidVerificationToken is returned for an unknown or expired verification link.
	ErrInvalidVerificationToken = errors.New("Invalid or expired verification link.")

	// ErrUnauthenticated is returned when a request carries no bearer token.
	ErrUnauthenticated = errors.New("You are not authenticated!")

	// ErrInvalidToken is returned when a token fails signature or claim checks.
	ErrInvalidToken = errors.New("Token is not valid!")

	// ErrSessionNotFound is returned when the session a token points to is gone.
	ErrSessionNotFound = errors.New("Session not found.")

	// ErrSessionRevoked is returned when the session is inactive or expired.
	ErrSessionRevoked = errors.New("Session expired or revoked. Please log in again.")

	// ErrForbidden is returned when the principal lacks the required role.
	ErrForbidden = errors.New("You are not authorized to access this resource")

	// ErrUserIDRequired is returned by admin operations without a target.
	ErrUserIDRequired = errors.New("User ID is required!")

	// ErrInvalidStatus is returned for a status other than active or inactive.
	ErrInvalidStatus = errors.New("Invalid status!")

	// ErrSelfStatus is returned when an admin toggles their own account.
	ErrSelfStatus = errors.New("You cannot change your own status.")

	// ErrPeerAccount is returned when the target's role is not below the actor's.
	ErrPeerAccount = errors.New("You cannot access another admin account.")

	// ErrSuperAdminOnly is returned when a non super admin deletes an admin.
	ErrSuperAdminOnly = errors.New("Only super admins can delete admin accounts.")

	// ErrSelfDelete is returned when a super admin deletes their own account.
	ErrSelfDelete = errors.New("You cannot delete your own super admin account.")

	// ErrAdminNotFound is returned when the admin to delete does not exist.
	ErrAdminNotFound = errors.New("Admin not found.")

	// ErrNotAdminAccount is returned when the delete target is not an admin.
	ErrNotAdminAccount = errors.New("You can only delete admin accounts, not super admins.")

	// ErrNoEmail is returned when an identity provider does not disclose an email.
	ErrNoEmail = errors.New("no email in identity")

	// ErrEmailNotVerified is returned when an unverified identity claims an existing account.
	ErrEmailNotVerified = errors.New("identity email is not verified")

	// ErrNoIDToken is returned when the OAuth2 token response doesn't contain an ID token.
	ErrNoIDToken = errors.New("no id_token in token response")

	// ErrMultipleUsersFound is returned when a query expected one user but found multiple.
	// This typically indicates a misconfigured LDAP filter or duplicate entries.
	ErrMultipleUsersFound = errors.New("multiple users found")
)

// PasswordLengthError is returned when a password is shorter than the policy allows.
type PasswordLengthError struct {
	Min int
}

func (e *PasswordLengthError) Error() string {
	return fmt.Sprintf("Password must be at least %d characters long.", e.Min)
}

// AccountStatusError is returned when an account that is not active tries to sign in.
type AccountStatusError struct {
	Status models.Status
}

func (e *AccountStatusError) Error() string {
	if e.Status == models.StatusPending {
		return "Please verify your email address before logging in."
	}

	return fmt.Sprintf("Your account has been %s by an administrator. "+
		"If you believe this was a mistake, please contact support.", e.Status)
}
