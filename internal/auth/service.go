package auth

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/shopadmin/shop-admin/internal/db/models"
	"github.com/shopadmin/shop-admin/internal/media"
	"github.com/shopadmin/shop-admin/internal/validation"
)

const avatarFolder = "avatars"

type (
	// Notifier sends the account emails.
	Notifier interface {
		SendVerification(ctx context.Context, to, token string, ttl time.Duration) error
		SendLoginCode(ctx context.Context, to, code string, ttl time.Duration) error
		SendResetCode(ctx context.Context, to, code string, ttl time.Duration) error
		SendPasswordChanged(ctx context.Context, to, username string) error
		SendStatusChanged(ctx context.Context, to, username, status string) error
		SendAdminCreated(ctx context.Context, to, username string) error
	}

	// Policy supplies the site wide account rules.
	Policy interface {
		Global(ctx context.Context) (*models.GlobalSettings, error)
	}

	// Options tunes the lifetimes of the one time secrets.
	Options struct {
		Issuer                   string
		OTPTTL                   time.Duration
		ResetCodeTTL             time.Duration
		VerificationTTL          time.Duration
		RequireEmailVerification bool
	}

	// Result is the outcome of a successful sign in or registration. Token is
	// empty when a second factor or an email verification is still outstanding.
	Result struct {
		User              *models.User
		Session           *models.Session
		Token             string
		TwoFactorRequired bool
	}
)

// Service implements the account flows.
type Service struct {
	db       *gorm.DB
	sessions *Sessions
	notifier Notifier
	policy   Policy
	media    media.Store
	ldap     *LDAPProvider
	validate *validator.Validate
	opts     Options
	now      func() time.Time
}

// NewService creates the auth service. store and ldap may be nil.
func NewService(
	db *gorm.DB, sessions *Sessions, notifier Notifier, policy Policy, store media.Store, ldap *LDAPProvider, opts Options,
) *Service {
	return &Service{
		db:       db,
		sessions: sessions,
		notifier: notifier,
		policy:   policy,
		media:    store,
		ldap:     ldap,
		validate: validation.New(),
		opts:     opts,
		now:      time.Now,
	}
}

// Sessions exposes the session manager.
func (s *Service) Sessions() *Sessions {
	return s.sessions
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) userByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

func (s *Service) userByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

func (s *Service) minPasswordLength(ctx context.Context) (int, error) {
	gs, err := s.policy.Global(ctx)
	if err != nil {
		return 0, err
	}

	return gs.PasswordMinLength, nil
}

func (s *Service) checkPassword(ctx context.Context, password string) error {
	minLen, err := s.minPasswordLength(ctx)
	if err != nil {
		return err
	}

	if len(password) < minLen {
		return &PasswordLengthError{Min: minLen}
	}

	return nil
}

func (s *Service) emailTaken(ctx context.Context, email string) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return err
	}

	if n > 0 {
		return ErrUserExists
	}

	return nil
}

// RegisterInput is the body of a registration.
type RegisterInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (in RegisterInput) check(v *validator.Validate) error {
	var missing []string

	if strings.TrimSpace(in.Email) == "" {
		missing = append(missing, "Email")
	}

	if strings.TrimSpace(in.Username) == "" {
		missing = append(missing, "Username")
	}

	if in.Password == "" {
		missing = append(missing, "Password")
	}

	if len(missing) > 0 {
		return validation.Required(missing...)
	}

	if err := v.Var(strings.TrimSpace(in.Email), "email"); err != nil {
		return &validation.Error{Fields: []validation.FieldError{{Field: "email", Tag: "email"}}}
	}

	return nil
}

// Register creates a user account. With email verification on, the account
// stays pending and no session is opened until the emailed link is followed.
func (s *Service) Register(ctx context.Context, in RegisterInput, deviceInfo string) (*Result, error) {
	if err := in.check(s.validate); err != nil {
		return nil, err
	}

	gs, err := s.policy.Global(ctx)
	if err != nil {
		return nil, err
	}

	if !gs.AllowUserRegistration {
		return nil, ErrRegistrationDisabled
	}

	if len(in.Password) < gs.PasswordMinLength {
		return nil, &PasswordLengthError{Min: gs.PasswordMinLength}
	}

	email := normalizeEmail(in.Email)
	if err = s.emailTaken(ctx, email); err != nil {
		return nil, err
	}

	user := &models.User{
		Email:              email,
		Username:           strings.TrimSpace(in.Username),
		Password:           models.HashPassword(in.Password),
		Role:               models.RoleUser,
		Status:             models.StatusActive,
		AuthSource:         models.AuthSourceLocal,
		IsTwoFactorEnabled: gs.RequireTwoFactorAuth,
	}

	if s.opts.RequireEmailVerification {
		exp := s.now().Add(s.opts.VerificationTTL)
		user.Status = models.StatusPending
		user.VerificationToken = uuid.NewString()
		user.VerificationTokenExpiration = &exp
	}

	if err = s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Uint64("id", user.ID).Str("email", user.Email).Str("status", string(user.Status)).Msg("user registered")

	if user.Status == models.StatusPending {
		errSend := s.notifier.SendVerification(ctx, user.Email, user.VerificationToken, s.opts.VerificationTTL)
		if errSend != nil {
			// an account nobody can verify is useless, let the user try again
			if errDel := s.db.WithContext(ctx).Delete(user).Error; errDel != nil {
				log.Error().Err(errDel).Uint64("id", user.ID).Msg("failed to remove unverifiable user")
			}

			return nil, fmt.Errorf("failed to send verification email: %w", errSend)
		}

		return &Result{User: user}, nil
	}

	token, sess, err := s.sessions.Create(ctx, user, deviceInfo)
	if err != nil {
		return nil, err
	}

	return &Result{User: user, Session: sess, Token: token}, nil
}

// VerifyEmail activates the pending account owning token.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidVerificationToken
	}

	var user models.User

	err := s.db.WithContext(ctx).Where("verification_token = ?", token).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidVerificationToken
	}

	if err != nil {
		return nil, err
	}

	if user.VerificationTokenExpiration == nil || s.now().After(*user.VerificationTokenExpiration) {
		return nil, ErrInvalidVerificationToken
	}

	err = s.db.WithContext(ctx).Model(&user).Updates(map[string]any{
		"status":                        models.StatusActive,
		"verification_token":            "",
		"verification_token_expiration": nil,
	}).Error
	if err != nil {
		return nil, err
	}

	user.Status = models.StatusActive

	return &user, nil
}

// LoginInput is the body of a password login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks the credentials. Accounts with two factor auth, or every account
// while the site requires it, get a code by email and must finish with
// VerifyTwoFactor.
func (s *Service) Login(ctx context.Context, in LoginInput, deviceInfo string) (*Result, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, ErrLoginFieldsRequired
	}

	user, err := s.userByEmail(ctx, in.Email)
	if errors.Is(err, ErrUserNotFound) && s.ldap != nil {
		user, err = s.loginLDAP(ctx, in.Email, in.Password)
	}

	if err != nil {
		return nil, err
	}

	if !user.IsActive() {
		return nil, &AccountStatusError{Status: user.Status}
	}

	if err = s.verifyCredentials(user, in.Password); err != nil {
		return nil, err
	}

	gs, err := s.policy.Global(ctx)
	if err != nil {
		return nil, err
	}

	if user.IsTwoFactorEnabled || gs.RequireTwoFactorAuth {
		if err = s.sendLoginCode(ctx, user); err != nil {
			return nil, err
		}

		return &Result{User: user, TwoFactorRequired: true}, nil
	}

	return s.open(ctx, user, deviceInfo)
}

func (s *Service) verifyCredentials(user *models.User, password string) error {
	if user.AuthSource == models.AuthSourceLDAP && s.ldap != nil {
		if _, err := s.ldap.Authenticate(user.Username, password); err != nil {
			log.Debug().Err(err).Str("user", user.Username).Msg("ldap bind failed")

			return ErrInvalidCredentials
		}

		return nil
	}

	if !user.VerifyPassword(password) {
		return ErrInvalidCredentials
	}

	return nil
}

// loginLDAP signs in a directory account that has no local row yet.
func (s *Service) loginLDAP(ctx context.Context, login, password string) (*models.User, error) {
	entry, err := s.ldap.Authenticate(login, password)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		log.Debug().Err(err).Str("login", login).Msg("ldap login failed")

		return nil, ErrInvalidCredentials
	}

	return s.upsertDirectoryUser(ctx, entry)
}

func (s *Service) upsertDirectoryUser(ctx context.Context, entry *DirectoryEntry) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).Where("external_id = ? AND auth_source = ?", entry.DN, models.AuthSourceLDAP).
		First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Username:   entry.Username,
			Email:      normalizeEmail(entry.Email),
			Role:       models.RoleUser,
			Status:     models.StatusActive,
			AuthSource: models.AuthSourceLDAP,
			ExternalID: entry.DN,
		}

		if err = s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

func (s *Service) sendLoginCode(ctx context.Context, user *models.User) error {
	code, err := NewCode(s.now())
	if err != nil {
		return err
	}

	exp := s.now().Add(s.opts.OTPTTL)

	err = s.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"two_factor_temp_token": code,
		"two_factor_temp_exp":   exp,
	}).Error
	if err != nil {
		return err
	}

	return s.notifier.SendLoginCode(ctx, user.Email, code, s.opts.OTPTTL)
}

func (s *Service) open(ctx context.Context, user *models.User, deviceInfo string) (*Result, error) {
	token, sess, err := s.sessions.Create(ctx, user, deviceInfo)
	if err != nil {
		return nil, err
	}

	log.Info().Uint64("id", user.ID).Str("session", sess.ID).Msg("user signed in")

	return &Result{User: user, Session: sess, Token: token}, nil
}

// VerifyTwoFactorInput is the body of the second login step.
type VerifyTwoFactorInput struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyTwoFactor finishes a pending two factor login with the emailed code
// or, when one is enrolled, a code from an authenticator app.
func (s *Service) VerifyTwoFactor(ctx context.Context, in VerifyTwoFactorInput, deviceInfo string) (*Result, error) {
	code := strings.TrimSpace(in.OTP)
	if strings.TrimSpace(in.Email) == "" || code == "" {
		return nil, ErrOTPFieldsRequired
	}

	user, err := s.userByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}

	if !user.IsActive() {
		return nil, &AccountStatusError{Status: user.Status}
	}

	// only a login that passed the password check leaves a pending challenge
	if user.TwoFactorTempToken == "" || user.TwoFactorTempExp == nil {
		return nil, ErrInvalidOTPRequest
	}

	if !s.now().Before(*user.TwoFactorTempExp) {
		return nil, ErrInvalidOTP
	}

	if !SameCode(user.TwoFactorTempToken, code) && !ValidateAuthenticatorCode(code, user.TwoFactorSecret) {
		return nil, ErrInvalidOTP
	}

	err = s.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"two_factor_temp_token": "",
		"two_factor_temp_exp":   nil,
	}).Error
	if err != nil {
		return nil, err
	}

	return s.open(ctx, user, deviceInfo)
}

// SetupTwoFactor enables two factor auth and enrolls an authenticator secret.
// Emailed codes keep working for the account.
func (s *Service) SetupTwoFactor(ctx context.Context, userID uint64) (*TwoFactorSetup, error) {
	user, err := s.userByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	setup, err := NewAuthenticatorKey(s.opts.Issuer, user.Email)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"is_two_factor_enabled": true,
		"two_factor_secret":     setup.Secret,
	}).Error
	if err != nil {
		return nil, err
	}

	return setup, nil
}

// RemoveTwoFactor disables two factor auth and forgets every pending code.
func (s *Service) RemoveTwoFactor(ctx context.Context, userID uint64) error {
	user, err := s.userByID(ctx, userID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"is_two_factor_enabled": false,
		"two_factor_secret":     "",
		"two_factor_temp_token": "",
		"two_factor_temp_exp":   nil,
	}).Error
}

// Logout ends the session sessionID.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// ForgotPassword emails a reset code to the owner of email.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return validation.Required("Email")
	}

	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := NewCode(s.now())
	if err != nil {
		return err
	}

	exp := s.now().Add(s.opts.ResetCodeTTL)

	err = s.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"reset_code":            code,
		"reset_code_expiration": exp,
	}).Error
	if err != nil {
		return err
	}

	return s.notifier.SendResetCode(ctx, user.Email, code, s.opts.ResetCodeTTL)
}

// ResetPasswordInput is the body of a password reset.
type ResetPasswordInput struct {
	Email           string `json:"email"`
	ResetCode       string `json:"resetCode"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ResetPassword sets a new password with an emailed code. A wrong or expired
// code leaves the account untouched. Success signs the user out everywhere.
func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	var missing []string

	for field, value := range map[string]string{
		"Email":            in.Email,
		"Reset code":       in.ResetCode,
		"New password":     in.NewPassword,
		"Confirm password": in.ConfirmPassword,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}

	if len(missing) > 0 {
		return validation.Required(sortedFields(missing)...)
	}

	if err := s.checkPassword(ctx, in.NewPassword); err != nil {
		return err
	}

	if in.NewPassword != in.ConfirmPassword {
		return ErrPasswordMismatch
	}

	user, err := s.userByEmail(ctx, in.Email)
	if err != nil {
		return err
	}

	if !SameCode(user.ResetCode, strings.TrimSpace(in.ResetCode)) {
		return ErrInvalidResetCode
	}

	if user.ResetCodeExpiration == nil || s.now().After(*user.ResetCodeExpiration) {
		return ErrResetCodeExpired
	}

	err = s.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"password":              models.HashPassword(in.NewPassword),
		"reset_code":            "",
		"reset_code_expiration": nil,
	}).Error
	if err != nil {
		return err
	}

	if _, err = s.sessions.DeleteForUser(ctx, user.ID); err != nil {
		return err
	}

	log.Info().Uint64("id", user.ID).Msg("password reset")

	return nil
}

// sortedFields keeps the order in which the fields appear in the form.
func sortedFields(missing []string) []string {
	order := []string{"Email", "Reset code", "New password", "Confirm password"}
	out := make([]string, 0, len(missing))

	for _, f := range order {
		for _, m := range missing {
			if m == f {
				out = append(out, f)
			}
		}
	}

	return out
}

// ChangePasswordInput is the body of a password change.
type ChangePasswordInput struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePassword replaces the password of userID after checking the old one.
// Every other session of the user is closed.
func (s *Service) ChangePassword(ctx context.Context, userID uint64, currentSession string, in ChangePasswordInput) error {
	if in.OldPassword == "" || in.NewPassword == "" || in.ConfirmPassword == "" {
		return ErrAllFieldsRequired
	}

	if err := s.checkPassword(ctx, in.NewPassword); err != nil {
		return err
	}

	if in.NewPassword != in.ConfirmPassword {
		return ErrConfirmMismatch
	}

	user, err := s.userByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.VerifyPassword(in.OldPassword) {
		return ErrInvalidOldPassword
	}

	if err = s.db.WithContext(ctx).Model(user).Update("password", models.HashPassword(in.NewPassword)).Error; err != nil {
		return err
	}

	if _, err = s.sessions.DeleteForUser(ctx, user.ID, currentSession); err != nil {
		return err
	}

	if errSend := s.notifier.SendPasswordChanged(ctx, user.Email, user.Username); errSend != nil {
		log.Warn().Err(errSend).Uint64("id", user.ID).Msg("failed to send password change notice")
	}

	return nil
}

// Profile returns the current state of userID.
func (s *Service) Profile(ctx context.Context, userID uint64) (*models.User, error) {
	return s.userByID(ctx, userID)
}

// ProfileInput holds the editable profile fields. Nil fields are left alone.
type ProfileInput struct {
	Username                   *string `json:"username"`
	Phone                      *string `json:"phone"`
	Address                    *string `json:"address"`
	IsEmailNotificationEnabled *bool   `json:"isEmailNotificationEnabled"`
	IsOrderNotificationEnabled *bool   `json:"isOrderNotificationEnabled"`
	IsStockAlertEnabled        *bool   `json:"isStockAlertEnabled"`
	IsSystemAlertEnabled       *bool   `json:"isSystemAlertEnabled"`
}

// UpdateProfile applies in and an optional new avatar.
func (s *Service) UpdateProfile(
	ctx context.Context, userID uint64, in ProfileInput, avatar *multipart.FileHeader,
) (*models.User, error) {
	user, err := s.userByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}

	if in.Username != nil && strings.TrimSpace(*in.Username) != "" {
		updates["username"] = strings.TrimSpace(*in.Username)
	}

	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}

	if in.Address != nil {
		updates["address"] = *in.Address
	}

	for column, flag := range map[string]*bool{
		"is_email_notification_enabled": in.IsEmailNotificationEnabled,
		"is_order_notification_enabled": in.IsOrderNotificationEnabled,
		"is_stock_alert_enabled":        in.IsStockAlertEnabled,
		"is_system_alert_enabled":       in.IsSystemAlertEnabled,
	} {
		if flag != nil {
			updates[column] = *flag
		}
	}

	staleAvatar := ""

	if avatar != nil {
		if s.media == nil {
			return nil, errors.New("no media store configured")
		}

		obj, errSave := s.media.Save(ctx, avatar, avatarFolder)
		if errSave != nil {
			return nil, errSave
		}

		staleAvatar = user.AvatarPublicID
		updates["avatar"] = obj.URL
		updates["avatar_public_id"] = obj.PublicID
	}

	if len(updates) > 0 {
		if err = s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if staleAvatar != "" {
		if errDel := s.media.Delete(ctx, staleAvatar); errDel != nil {
			log.Warn().Err(errDel).Str("publicId", staleAvatar).Msg("failed to delete replaced avatar")
		}
	}

	return s.userByID(ctx, userID)
}
