package serverutils

import (
	"context"
	"errors"
	"strings"

	"note-summary-be/internal/session"

	"github.com/gofiber/fiber/v2"
)

const LocalsSession = "session"

type SessionValidator interface {
	Validate(ctx context.Context, token string) (*session.Session, error)
}

// BearerToken reads the Authorization header, falling back to the "token" query
// parameter for clients that cannot set headers (browser websockets).
func BearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ctx.Query("token")
}

func SessionMiddleware(validator SessionValidator) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		s, err := validator.Validate(ctx.UserContext(), BearerToken(ctx))
		if err != nil {
			if errors.Is(err, session.ErrUnauthorized) || errors.Is(err, session.ErrRevoked) {
				return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Unauthorized"))
			}
			return err
		}

		ctx.Locals(LocalsSession, s)
		ctx.Locals("user_id", s.UserId.String())
		ctx.SetUserContext(session.NewContext(ctx.UserContext(), s))
		return ctx.Next()
	}
}

// CurrentSession returns the session stored by SessionMiddleware.
func CurrentSession(ctx *fiber.Ctx) (*session.Session, bool) {
	s, ok := ctx.Locals(LocalsSession).(*session.Session)
	return s, ok && s != nil
}
