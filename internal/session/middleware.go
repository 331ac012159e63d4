// Package session resolves the opaque per-browser session identity every
// API call is scoped to. The credential is a signed token carried in a
// cookie; a request without a valid one gets a freshly minted session.
package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var nowFn = time.Now

const CookieName = "lastmile_session"

const localsKey = "session_id"

type Claims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Middleware reads the session cookie, verifies it, and stores the
// session ID in locals. Absent or invalid credentials mint a new session
// and set the cookie on the response. Sessions never expire on their own;
// idle cleanup belongs to the store.
func Middleware(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		if id := verifyCookie(c.Cookies(CookieName), secretBytes); id != "" {
			c.Locals(localsKey, id)
			return c.Next()
		}

		id := uuid.NewString()
		token, err := signToken(id, secretBytes)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		c.Cookie(&fiber.Cookie{
			Name:     CookieName,
			Value:    token,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		c.Locals(localsKey, id)
		return c.Next()
	}
}

// FromCtx returns the session ID the middleware resolved for the request.
func FromCtx(c *fiber.Ctx) string {
	id, _ := c.Locals(localsKey).(string)
	return id
}

func verifyCookie(cookie string, secret []byte) string {
	if cookie == "" {
		return ""
	}
	parsed, err := jwt.ParseWithClaims(cookie, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return ""
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return ""
	}
	return claims.SessionID
}

func signToken(sessionID string, secret []byte) (string, error) {
	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(nowFn()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
