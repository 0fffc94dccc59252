package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/salon_storefront/pkg/reqctx"
)

// OperatorCookie holds the backend token issued to an operator at login.
// Login itself happens elsewhere; the storefront only forwards the token.
const OperatorCookie = "operator_token"

// OperatorRequired takes the operator token from the cookie, or from a
// Bearer Authorization header, and puts it on the request context. The
// backend remains the judge of whether the token is valid.
func OperatorRequired() fiber.Handler {
	return func(c fiber.Ctx) error {
		token := strings.TrimSpace(c.Cookies(OperatorCookie))
		if token == "" {
			token = bearer(c.Get(fiber.HeaderAuthorization))
		}
		if token == "" {
			return fiber.ErrUnauthorized
		}

		c.SetContext(reqctx.WithOperator(c.Context(), reqctx.Operator{Token: token}))
		return c.Next()
	}
}

func bearer(h string) string {
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
