package mail

import (
	"context"
	"time"
)

// SendVerification sends the link that activates a self registered account.
func (m *Mailer) SendVerification(ctx context.Context, to, token string, ttl time.Duration) error {
	return m.Send(ctx, to, "Verify your email", "verify_email", map[string]any{
		"Link":  m.frontendURL + "/verify-email?token=" + token,
		"Hours": int(ttl.Hours()),
	})
}

// SendLoginCode sends the one time code of a two factor login.
func (m *Mailer) SendLoginCode(ctx context.Context, to, code string, ttl time.Duration) error {
	return m.Send(ctx, to, "Your login verification code", "login_code", map[string]any{
		"Code":    code,
		"Minutes": int(ttl.Minutes()),
	})
}

// SendResetCode sends the code of a forgotten password request.
func (m *Mailer) SendResetCode(ctx context.Context, to, code string, ttl time.Duration) error {
	return m.Send(ctx, to, "Password Reset Code", "reset_code", map[string]any{
		"Code":    code,
		"Minutes": int(ttl.Minutes()),
	})
}

// SendPasswordChanged confirms a password change.
func (m *Mailer) SendPasswordChanged(ctx context.Context, to, username string) error {
	return m.Send(ctx, to, "Your password was changed", "password_changed", map[string]any{
		"Username": username,
	})
}

// SendStatusChanged tells a user that an admin changed their account status.
func (m *Mailer) SendStatusChanged(ctx context.Context, to, username, status string) error {
	return m.Send(ctx, to, "Your account status has been updated", "account_status", map[string]any{
		"Username": username,
		"Status":   status,
	})
}

// SendAdminCreated welcomes an admin account created by a super admin.
func (m *Mailer) SendAdminCreated(ctx context.Context, to, username string) error {
	return m.Send(ctx, to, "Your admin account has been created", "admin_created", map[string]any{
		"Username": username,
		"Email":    to,
		"Link":     m.frontendURL + "/login",
	})
}

// SendTest checks the relay configuration.
func (m *Mailer) SendTest(ctx context.Context, to string) error {
	return m.Send(ctx, to, "Test email", "test_email", nil)
}
