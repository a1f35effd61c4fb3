package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"autotelex-sync/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BasicAuth guards the manage endpoint with HTTP Basic Authentication against
// the two configured feed credential strings. The feed contract is a plain
// string comparison; the compare is constant-time but the stored values are
// not hashed.
func BasicAuth(username, password string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, pass, ok := parseBasicAuth(c.Get(fiber.HeaderAuthorization))
		if !ok {
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="autotelex"`)
			return response.Unauthorized(c, "authentication required")
		}
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1
		if !userOK || !passOK {
			return response.Unauthorized(c, "invalid credentials")
		}
		return c.Next()
	}
}

func parseBasicAuth(header string) (string, string, bool) {
	const prefix = "Basic "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	user, pass, found := strings.Cut(string(decoded), ":")
	if !found {
		return "", "", false
	}
	return user, pass, true
}
