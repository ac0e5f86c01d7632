package server

import (
	"strings"

	photoflow "github.com/SajalTalukder/photoflow-backend"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CookieName is the cookie carrying the session token. The Authorization
// header with a Bearer token works as well.
const CookieName = "token"

const userContextKey = "user"

// RequireAuth extracts the token from the cookie or Authorization header,
// validates it, resolves the account, and stores it in request locals.
func RequireAuth(tokens photoflow.TokenService, users photoflow.Users) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(CookieName)
		if token == "" {
			header := c.Get(fiber.HeaderAuthorization)
			if strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}
		}

		if token == "" {
			return photoflow.ErrTokenMissing
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			return err
		}

		id, err := uuid.Parse(claims.UserID())
		if err != nil {
			return photoflow.ErrTokenMalformed
		}

		user, err := users.GetByID(c.UserContext(), id.String())
		if err != nil {
			return photoflow.ErrTokenSubjectGone
		}

		c.Locals(userContextKey, user)

		return c.Next()
	}
}

// CurrentUser returns the account RequireAuth resolved for this request.
func CurrentUser(c *fiber.Ctx) (*photoflow.User, error) {
	user, ok := c.Locals(userContextKey).(*photoflow.User)
	if !ok || user == nil {
		return nil, photoflow.ErrTokenMissing
	}
	return user, nil
}
