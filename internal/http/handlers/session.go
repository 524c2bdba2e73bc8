package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "noiressence/internal/log"
	"noiressence/internal/services"
)

const sidCookie = "sid"

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies(sidCookie)
	if sid != "" {
		if _, err := uuid.Parse(sid); err == nil {
			return sid
		}
		applog.Security(c, "session.invalid", nil)
	}
	sid = uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     sidCookie,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false, // enable true behind TLS
	})
	return sid
}

// WithSession attaches the caller's session to the request.
func WithSession(store *services.SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("session", store.Get(ensureSID(c)))
		return c.Next()
	}
}

func sessionOf(c *fiber.Ctx) *services.Session {
	s, _ := c.Locals("session").(*services.Session)
	return s
}
