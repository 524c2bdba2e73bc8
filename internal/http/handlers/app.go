package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	applog "noiressence/internal/log"
)

type Options struct {
	TemplateDir string
	StaticDir   string
	// Reload re-parses templates on every render.
	Reload bool
	// AccessLog enables the per-request access log line.
	AccessLog bool

	// Requests per minute per IP. Zero picks the default.
	GlobalLimit int
	ChatLimit   int
	BodyLimit   int
}

func (o *Options) defaults() {
	if o.TemplateDir == "" {
		o.TemplateDir = "./web/templates"
	}
	if o.GlobalLimit == 0 {
		o.GlobalLimit = 120
	}
	if o.ChatLimit == 0 {
		o.ChatLimit = 10
	}
	if o.BodyLimit == 0 {
		o.BodyLimit = 1 << 20 // 1 MiB
	}
}

func isAPI(c *fiber.Ctx) bool { return strings.HasPrefix(c.Path(), "/api/") }

// ErrorHandler logs server faults and answers with a friendly page (or JSON
// under /api) that never carries the underlying error.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}
	if isAPI(c) {
		return c.Status(code).JSON(fiber.Map{"error": "Something went wrong. Please try again."})
	}
	// Avoid leaking internals; best-effort render
	if rerr := c.Status(code).Render("notfound", fiber.Map{
		"Message": "Something went wrong. Please try again.",
	}); rerr != nil {
		return c.Status(code).SendString("Something went wrong. Please try again.")
	}
	return nil
}

// NewApp builds the storefront: middleware, routes and the redirect for
// unknown pages.
func NewApp(d *Deps, o Options) *fiber.App {
	o.defaults()

	engine := html.New(o.TemplateDir, ".html")
	engine.Reload(o.Reload)
	engine.AddFunc("join", strings.Join)

	app := fiber.New(fiber.Config{
		Views:        engine,
		BodyLimit:    o.BodyLimit,
		ErrorHandler: ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = o.BodyLimit

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	if o.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New(helmet.Config{
		CrossOriginEmbedderPolicy: "unsafe-none", // product images are served from a CDN
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        o.GlobalLimit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/static/") || c.Path() == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).SendString("Too many requests. Please slow down.")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		// JSON endpoints require application/json, which a cross-site form cannot send
		Next: isAPI,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"form": c.FormValue("csrf") != ""})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	if o.StaticDir != "" {
		app.Static("/static", o.StaticDir)
	}
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	app.Use(WithSession(d.Sessions))

	chatLimiter := limiter.New(limiter.Config{
		Max:        o.ChatLimit,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|assistant"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.assistant.hit", nil)
			if isAPI(c) {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
			}
			return c.Status(fiber.StatusTooManyRequests).Render("notfound", fiber.Map{"Message": "The Sommelier needs a moment. Please try again shortly."})
		},
	})

	// Pages
	app.Get("/", d.StoreHandler.Home)
	app.Get("/collection", d.StoreHandler.Collection)
	app.Get("/our-story", d.StoreHandler.OurStory)
	app.Get("/journal", d.StoreHandler.Journal)

	// Cart & checkout
	app.Post("/cart", d.CartHandler.Add)
	app.Post("/cart/remove", d.CartHandler.Remove)
	app.Post("/cart/panel", d.CartHandler.Panel)
	app.Get("/checkout", d.CheckoutHandler.Page)
	app.Post("/checkout", d.CheckoutHandler.Place)

	// Sommelier
	app.Post("/chat", chatLimiter, d.ChatHandler.Form)

	// Admin
	admin := app.Group("/admin")
	admin.Get("/", d.AdminHandler.Dashboard)
	admin.Post("/products", d.AdminHandler.Create)
	admin.Post("/products/describe", chatLimiter, d.AdminHandler.Describe)
	admin.Get("/products/:id/delete", d.AdminHandler.Delete)
	admin.Post("/products/:id/delete", d.AdminHandler.Delete)

	// API
	api := app.Group("/api/v1")
	api.Get("/cart", d.CartHandler.JSON)
	api.Post("/chat", chatLimiter, d.ChatHandler.JSON)
	api.Post("/chat/stream", chatLimiter, d.ChatHandler.Stream)

	// Unknown pages fall back to the storefront
	app.Use(func(c *fiber.Ctx) error {
		if isAPI(c) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
			return c.Redirect("/", fiber.StatusFound)
		}
		return fail(c, fiber.StatusNotFound, "Page not found")
	})

	return app
}
