package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/shopadmin/shop-admin/internal/validation"
)

const (
	msgNotFound       = "Resource not found"
	msgDatabase       = "Database operation failed"
	msgInvalidToken   = "Invalid token"
	msgInternalServer = "Internal Server Error"
)

// gormClientErrors are database errors caused by the request.
var gormClientErrors = []error{ //nolint:gochecknoglobals
	gorm.ErrDuplicatedKey,
	gorm.ErrForeignKeyViolated,
	gorm.ErrCheckConstraintViolated,
	gorm.ErrInvalidData,
	gorm.ErrInvalidValue,
	gorm.ErrPrimaryKeyRequired,
	gorm.ErrMissingWhereClause,
}

// jwtErrors reject the caller.
var jwtErrors = []error{ //nolint:gochecknoglobals
	jwt.ErrTokenMalformed,
	jwt.ErrTokenExpired,
	jwt.ErrTokenNotValidYet,
	jwt.ErrTokenSignatureInvalid,
	jwt.ErrTokenInvalidClaims,
	jwt.ErrTokenUnverifiable,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// ErrorHandler renders every error as {"success":false,"status":code,"message":msg}.
func ErrorHandler(devMode bool) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		var (
			fiberErr      *fiber.Error
			validationErr *validation.Error
			code          = fiber.StatusInternalServerError
			body          = fiber.Map{"success": false}
		)

		switch {
		case errors.As(err, &validationErr):
			code = fiber.StatusBadRequest
			body["message"] = validationErr.Error()
			body["errors"] = validationErr.Fields
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			body["message"] = fiberErr.Message
		case errors.Is(err, gorm.ErrRecordNotFound):
			code = fiber.StatusNotFound
			body["message"] = msgNotFound
		case isAny(err, gormClientErrors):
			code = fiber.StatusBadRequest
			body["message"] = msgDatabase
		case isAny(err, jwtErrors):
			code = fiber.StatusUnauthorized
			body["message"] = msgInvalidToken
		default:
			body["message"] = msgInternalServer
		}

		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")

			if devMode {
				body["error"] = err.Error()
			}
		}

		body["status"] = code

		return c.Status(code).JSON(body)
	}
}
