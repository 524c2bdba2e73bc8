package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"noiressence/internal/domain"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	if s := sessionOf(c); s != nil {
		data["Cart"] = s.CartView()
		data["Chat"] = s.Conversation().Transcript()
	}
	data["Path"] = c.Path()
	data["Categories"] = domain.Categories
	return c.Render(tmpl, data)
}

// fail renders the shared error page with status.
func fail(c *fiber.Ctx, status int, msg string) error {
	c.Status(status)
	return render(c, "notfound", fiber.Map{"Message": msg})
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return "/"
	}
	return next
}
