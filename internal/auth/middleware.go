package auth

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"finanzas-backend/internal/session"
)

const CtxSessionKey = "session"

// JWTMiddleware verifies the bearer token and stores the session handle in
// the request locals.
func JWTMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
		}

		token, err := jwt.ParseWithClaims(parts[1], &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		claims, ok := token.Claims.(*JWTCustomClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unreadable token claims")
		}
		sess, err := session.New(claims.UID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "token carries no account")
		}

		c.Locals(CtxSessionKey, sess)
		return c.Next()
	}
}

// SessionFrom returns the handle JWTMiddleware stored for this request.
func SessionFrom(c *fiber.Ctx) (session.Handle, error) {
	sess, ok := c.Locals(CtxSessionKey).(session.Handle)
	if !ok || !sess.Valid() {
		return session.Handle{}, fiber.NewError(fiber.StatusUnauthorized, "no session")
	}
	return sess, nil
}
