// Package authentication serves the account api under /api/authentication.
package authentication

import (
	"errors"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/shopadmin/shop-admin/internal/auth"
	"github.com/shopadmin/shop-admin/internal/db/models"
	"github.com/shopadmin/shop-admin/internal/web/handler"
)

// Path is the prefix of the account api.
const Path = handler.APIPrefix + "/authentication"

// Service is the authentication handler service.
type Service struct {
	auth *auth.Service
}

// Handler is the authentication handler.
var Handler = Service{}

var codes = map[error]int{ //nolint:gochecknoglobals
	auth.ErrRegistrationDisabled:     fiber.StatusForbidden,
	auth.ErrUserExists:               fiber.StatusBadRequest,
	auth.ErrUserNotFound:             fiber.StatusNotFound,
	auth.ErrLoginFieldsRequired:      fiber.StatusBadRequest,
	auth.ErrInvalidCredentials:       fiber.StatusUnauthorized,
	auth.ErrOTPFieldsRequired:        fiber.StatusBadRequest,
	auth.ErrInvalidOTPRequest:        fiber.StatusBadRequest,
	auth.ErrInvalidOTP:               fiber.StatusUnauthorized,
	auth.ErrPasswordMismatch:         fiber.StatusBadRequest,
	auth.ErrInvalidResetCode:         fiber.StatusBadRequest,
	auth.ErrResetCodeExpired:         fiber.StatusBadRequest,
	auth.ErrAllFieldsRequired:        fiber.StatusBadRequest,
	auth.ErrInvalidOldPassword:       fiber.StatusBadRequest,
	auth.ErrConfirmMismatch:          fiber.StatusBadRequest,
	auth.ErrInvalidVerificationToken: fiber.StatusBadRequest,
	auth.ErrSessionNotFound:          fiber.StatusNotFound,
	auth.ErrUserIDRequired:           fiber.StatusBadRequest,
	auth.ErrInvalidStatus:            fiber.StatusBadRequest,
	auth.ErrSelfStatus:               fiber.StatusBadRequest,
	auth.ErrPeerAccount:              fiber.StatusBadRequest,
	auth.ErrSuperAdminOnly:           fiber.StatusForbidden,
	auth.ErrSelfDelete:               fiber.StatusBadRequest,
	auth.ErrAdminNotFound:            fiber.StatusNotFound,
	auth.ErrNotAdminAccount:          fiber.StatusBadRequest,
}

// fail turns a service error into the api error.
func fail(err error) error {
	var (
		lenErr    *auth.PasswordLengthError
		statusErr *auth.AccountStatusError
	)

	switch {
	case errors.As(err, &lenErr):
		return fiber.NewError(fiber.StatusBadRequest, lenErr.Error())
	case errors.As(err, &statusErr):
		return fiber.NewError(fiber.StatusForbidden, statusErr.Error())
	default:
		return handler.Status(err, codes)
	}
}

// Init registers the account routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Auth == nil {
		return handler.ErrNilDeps
	}

	s.auth = deps.Auth

	guard := deps.RequireAuth()

	r := app.Group(Path)

	r.Post("/register", s.Register)
	r.Get("/verify-email", s.VerifyEmail)
	r.Post("/login", s.Login)
	r.Post("/verify-2fa", s.VerifyTwoFactor)
	r.Post("/forgot-password", s.ForgotPassword)
	r.Post("/reset-password", s.ResetPassword)

	r.Post("/setup-2fa", guard, s.SetupTwoFactor)
	r.Post("/remove-2fa", guard, s.RemoveTwoFactor)
	r.Post("/logout", guard, s.Logout)
	r.Get("/profile", guard, s.Profile)
	r.Put("/update-profile", guard, s.UpdateProfile)
	r.Put("/change-password", guard, s.ChangePassword)
	r.Get("/sessions", guard, s.Sessions)
	r.Delete("/sessions/:id", guard, s.RevokeSession)

	r.Post("/admin/register", guard, auth.RequirePermission(auth.PermAdminsCreate), s.CreateAdmin)
	r.Delete("/admin/delete/:id", guard, auth.RequirePermission(auth.PermAdminsDelete), s.DeleteAdmin)
	r.Get("/admin/users", guard, auth.RequirePermission(auth.PermUsersManage), s.Users)
	r.Put("/admin/user-status", guard, auth.RequirePermission(auth.PermUsersManage), s.UserStatus)

	return nil
}

func userPayload(u *models.User, token string) fiber.Map {
	out := fiber.Map{
		"_id":                u.ID,
		"name":               u.Username,
		"username":           u.Username,
		"email":              u.Email,
		"role":               u.Role,
		"status":             u.Status,
		"avatar":             u.Avatar,
		"createdAt":          u.CreatedAt,
		"isTwoFactorEnabled": u.IsTwoFactorEnabled,
	}

	if token != "" {
		out["token"] = token
	}

	return out
}

func sessionPayload(sess *models.Session) fiber.Map {
	return fiber.Map{
		"id":         sess.ID,
		"deviceInfo": sess.DeviceInfo,
		"isActive":   sess.IsActive,
		"expiresAt":  sess.ExpiresAt,
	}
}

// Register creates an account.
func (s *Service) Register(c fiber.Ctx) error {
	var in auth.RegisterInput
	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	res, err := s.auth.Register(c.Context(), in, handler.DeviceInfo(c))
	if err != nil {
		return fail(err)
	}

	msg := "User registered successfully."
	if res.Token == "" {
		msg = "Registration successful. Please check your email to verify your account."
	}

	return handler.Payload(c, fiber.StatusCreated, msg, userPayload(res.User, res.Token))
}

// VerifyEmail activates the account of the link's token.
func (s *Service) VerifyEmail(c fiber.Ctx) error {
	user, err := s.auth.VerifyEmail(c.Context(), c.Query("token"))
	if err != nil {
		return fail(err)
	}

	return handler.Payload(c, fiber.StatusOK, "Email verified successfully. You can now log in.", userPayload(user, ""))
}

// Login checks the credentials and either opens a session or asks for the second factor.
func (s *Service) Login(c fiber.Ctx) error {
	var in auth.LoginInput
	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	res, err := s.auth.Login(c.Context(), in, handler.DeviceInfo(c))
	if err != nil {
		return fail(err)
	}

	if res.TwoFactorRequired {
		return handler.Message(c, fiber.StatusOK, "OTP sent to your email. Please verify.", fiber.Map{
			"step":  "2fa",
			"email": res.User.Email,
		})
	}

	return handler.Payload(c, fiber.StatusOK, "Login successful.", userPayload(res.User, res.Token))
}

// VerifyTwoFactor finishes a two factor login.
func (s *Service) VerifyTwoFactor(c fiber.Ctx) error {
	var in auth.VerifyTwoFactorInput
	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	res, err := s.auth.VerifyTwoFactor(c.Context(), in, handler.DeviceInfo(c))
	if err != nil {
		return fail(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful.",
		"payload": userPayload(res.User, res.Token),
		"session": sessionPayload(res.Session),
	})
}

// SetupTwoFactor enrolls the caller.
func (s *Service) SetupTwoFactor(c fiber.Ctx) error {
	p := auth.PrincipalFrom(c)

	setup, err := s.auth.SetupTwoFactor(c.Context(), p.User.ID)
	if err != nil {
		return fail(err)
	}

	return handler.Payload(c, fiber.StatusOK, "Setup 2FA successful", setup)
}

// RemoveTwoFactor disables two factor auth of the caller.
func (s *Service) RemoveTwoFactor(c fiber.Ctx) error {
	p := auth.PrincipalFrom(c)

	if err := s.auth.RemoveTwoFactor(c.Context(), p.User.ID); err != nil {
		return fail(err)
	}

	return handler.Message(c, fiber.StatusOK, "Remove 2FA successful", nil)
}

// ForgotPassword emails a reset code.
func (s *Service) ForgotPassword(c fiber.Ctx) error {
	var in struct {
		Email string `json:"email"`
	}

	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	if err := s.auth.ForgotPassword(c.Context(), in.Email); err != nil {
		return fail(err)
	}

	return handler.Message(c, fiber.StatusOK, "Reset code sent to your email.", nil)
}

// ResetPassword sets a new password with the emailed code.
func (s *Service) ResetPassword(c fiber.Ctx) error {
	var in auth.ResetPasswordInput
	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	if err := s.auth.ResetPassword(c.Context(), in); err != nil {
		return fail(err)
	}

	return handler.Message(c, fiber.StatusOK, "Password reset successfully.", nil)
}

// Logout deletes the session of the presented token.
func (s *Service) Logout(c fiber.Ctx) error {
	p := auth.PrincipalFrom(c)

	if err := s.auth.Logout(c.Context(), p.Session.ID); err != nil {
		return fail(err)
	}

	return handler.Message(c, fiber.StatusOK, "Logout successful.", nil)
}

// Profile returns the caller and the current session.
func (s *Service) Profile(c fiber.Ctx) error {
	p := auth.PrincipalFrom(c)

	user, err := s.auth.Profile(c.Context(), p.User.ID)
	if err != nil {
		return fail(err)
	}

	return handler.Payload(c, fiber.StatusOK, "Profile fetched successfully.", fiber.Map{
		"user":    user,
		"session": sessionPayload(p.Session),
	})
}

// UpdateProfile accepts json or a multipart form with an optional avatar file.
func (s *Service) UpdateProfile(c fiber.Ctx) error {
	p := auth.PrincipalFrom(c)

	var (
		in     auth.ProfileInput
		avatar *multipart.FileHeader
	)

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		in = profileFromForm(c)

		if fh, err := c.FormFile("avatar"); err == nil {
			avatar = fh
		}
	} else if err := handler.Bind(c, &in); err != nil {
		return err
	}

	user, err := s.auth.UpdateProfile(c.Context(), p.User.ID, in, avatar)
	if err != nil {
		return fail(err)
	}

	return handler.Payload(c, fiber.StatusOK, "Profile updated successfully.", user)
}

func profileFromForm(c fiber.Ctx) auth.ProfileInput {
	text := func(key string) *string {
		if !formHas(c, key) {
			return nil
		}

		v := c.FormValue(key)

		return &v
	}

	flag := func(key string) *bool {
		if !formHas(c, key) {
			return nil
		}

		v, err := strconv.ParseBool(c.FormValue(key))
		if err != nil {
			return nil
		}

		return &v
	}

	return auth.ProfileInput{
		Username:                   text("username"),
		Phone:                      text("phone"),
		Address:                    text("address"),
		IsEmailNotificationEnabled: flag("isEmailNotificationEnabled"),
		IsOrderNotificationEnabled: flag("isOrderNotificationEnabled"),
		IsStockAlertEnabled:        flag("isStockAlertEnabled"),
		IsSystemAlertEnabled:       flag("isSystemAlertEnabled"),
	}
}

func formHas(c fiber.Ctx, key string) bool {
	form, err := c.MultipartForm()
	if err != nil {
		return false
	}

	_, ok := form.Value[key]

	return ok
}

// ChangePassword replaces the caller's password.
func (s *Service) ChangePassword(c fiber.Ctx) error {
	p := auth.PrincipalFrom(c)

	var in auth.ChangePasswordInput
	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	if err := s.auth.ChangePassword(c.Context(), p.User.ID, p.Session.ID, in); err != nil {
		return fail(err)
	}

	return handler.Message(c, fiber.StatusOK, "Password changed successfully.", nil)
}

// Sessions lists the caller's sessions.
func (s *Service) Sessions(c fiber.Ctx) error {
	p := auth.PrincipalFrom(c)

	list, err := s.auth.Sessions().List(c.Context(), p.User.ID)
	if err != nil {
		return err
	}

	return handler.Payload(c, fiber.StatusOK, "Sessions fetched successfully.", list)
}

// RevokeSession ends one of the caller's sessions.
func (s *Service) RevokeSession(c fiber.Ctx) error {
	p := auth.PrincipalFrom(c)

	if err := s.auth.Sessions().Revoke(c.Context(), p.User.ID, c.Params("id")); err != nil {
		return fail(err)
	}

	return handler.Message(c, fiber.StatusOK, "Session revoked.", nil)
}

// CreateAdmin creates an admin account.
func (s *Service) CreateAdmin(c fiber.Ctx) error {
	p := auth.PrincipalFrom(c)

	var in auth.RegisterInput
	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	user, err := s.auth.CreateAdmin(c.Context(), p.User, in)
	if err != nil {
		return fail(err)
	}

	return handler.Payload(c, fiber.StatusCreated, "Admin created successfully.", userPayload(user, ""))
}

// DeleteAdmin deletes an admin account.
func (s *Service) DeleteAdmin(c fiber.Ctx) error {
	p := auth.PrincipalFrom(c)

	id := handler.ParamID(c, "id")
	if id == 0 {
		return fiber.NewError(fiber.StatusBadRequest, auth.ErrUserIDRequired.Error())
	}

	if err := s.auth.DeleteAdmin(c.Context(), p.User, id); err != nil {
		return fail(err)
	}

	return handler.Message(c, fiber.StatusOK, "Admin deleted successfully.", nil)
}

// Users lists accounts for the admins.
func (s *Service) Users(c fiber.Ctx) error {
	page := handler.Paginate(c)

	users, total, err := s.auth.ListUsers(c.Context(), auth.UserQuery{
		Skip:   page.Skip,
		Limit:  page.Limit,
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Status: c.Query("status"),
	})
	if err != nil {
		return err
	}

	return handler.List(c, users, total, page, nil)
}

type statusInput struct {
	UserID uint64 `json:"userId"`
	Status string `json:"status"`
}

// UserStatus activates or deactivates an account.
func (s *Service) UserStatus(c fiber.Ctx) error {
	p := auth.PrincipalFrom(c)

	var in statusInput
	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	user, err := s.auth.SetStatus(c.Context(), p.User, in.UserID, in.Status)
	if err != nil {
		return fail(err)
	}

	log.Debug().Uint64("id", user.ID).Str("status", in.Status).Msg("status toggled over api")

	return handler.Payload(c, fiber.StatusOK, "User status updated to "+in.Status+".", user)
}
