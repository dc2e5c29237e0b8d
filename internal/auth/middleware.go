package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

const principalKey = "auth.principal"

// bearer extracts the token of an Authorization header.
func bearer(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}

// RequireAuth creates Fiber middleware that resolves the bearer token to a
// principal. Tokens whose session row is gone are rejected.
func RequireAuth(sessions *Sessions) fiber.Handler {
	return func(c fiber.Ctx) error {
		raw := bearer(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, ErrUnauthenticated.Error())
		}

		p, err := sessions.Authenticate(c.Context(), raw)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("rejected token")

			var statusErr *AccountStatusError

			switch {
			case errors.As(err, &statusErr),
				errors.Is(err, ErrInvalidToken),
				errors.Is(err, ErrSessionNotFound),
				errors.Is(err, ErrSessionRevoked),
				errors.Is(err, ErrUserNotFound):
				return fiber.NewError(fiber.StatusUnauthorized, unwrapMessage(err))
			default:
				return err
			}
		}

		c.Locals(principalKey, p)

		return c.Next()
	}
}

func unwrapMessage(err error) string {
	if errors.Is(err, ErrInvalidToken) {
		return ErrInvalidToken.Error()
	}

	return err.Error()
}

// RequirePermission creates Fiber middleware that requires a specific permission.
// It must run after RequireAuth.
func RequirePermission(permission string) fiber.Handler {
	return func(c fiber.Ctx) error {
		p := PrincipalFrom(c)
		if p == nil {
			return fiber.NewError(fiber.StatusUnauthorized, ErrUnauthenticated.Error())
		}

		if !HasPermission(p.User.Role, permission) {
			log.Warn().Uint64("user_id", p.User.ID).Str("permission", permission).
				Msg("User lacks required permission")

			return fiber.NewError(fiber.StatusForbidden, ErrForbidden.Error())
		}

		return c.Next()
	}
}

// PrincipalFrom returns the principal stored by RequireAuth, or nil.
func PrincipalFrom(c fiber.Ctx) *Principal {
	p, ok := c.Locals(principalKey).(*Principal)
	if !ok {
		return nil
	}

	return p
}
