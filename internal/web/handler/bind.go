package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

// ErrBadBody is the message of an unparsable request body.
const ErrBadBody = "Invalid request body"

// Bind decodes the request body into out.
func Bind(c fiber.Ctx, out any) error {
	if err := c.Bind().Body(out); err != nil {
		log.Debug().Err(err).Str("path", c.Path()).Msg("failed to bind body")

		return fiber.NewError(fiber.StatusBadRequest, ErrBadBody)
	}

	return nil
}

// ParamID reads a numeric path parameter, zero when it is absent or invalid.
func ParamID(c fiber.Ctx, name string) uint64 {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil {
		return 0
	}

	return id
}
