package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"noiressence/internal/domain"
	applog "noiressence/internal/log"
	"noiressence/internal/repos"
	"noiressence/internal/services"
	"noiressence/internal/validate"
)

type StoreHandler struct {
	Catalog *services.CatalogService
	Content *repos.ContentRepo
}

// GET /
func (h *StoreHandler) Home(c *fiber.Ctx) error {
	arrivals, err := h.Catalog.NewArrivals(3)
	if err != nil {
		applog.Error(c, "home.arrivals.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "Could not load the collection. Please retry.")
	}
	products, err := h.Catalog.List()
	if err != nil {
		applog.Error(c, "home.products.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "Could not load the collection. Please retry.")
	}
	reviews, err := h.Content.Testimonials()
	if err != nil {
		applog.Error(c, "home.testimonials.fail", err, nil)
		reviews = nil
	}
	return render(c, "home", fiber.Map{
		"Arrivals":     arrivals,
		"Products":     products,
		"Testimonials": reviews,
	})
}

// GET /collection?category=&q=
func (h *StoreHandler) Collection(c *fiber.Ctx) error {
	data := fiber.Map{"Active": "", "Q": "", "Products": []domain.Product{}, "Count": 0}

	var cat domain.Category
	if raw := strings.TrimSpace(c.Query("category")); raw != "" && !strings.EqualFold(raw, "all") {
		parsed, err := domain.ParseCategory(raw)
		if err != nil {
			applog.Security(c, "validation.fail", map[string]any{"field": "category", "value": raw})
			data["Err"] = "Unknown category"
			c.Status(fiber.StatusBadRequest)
			return render(c, "collection", data)
		}
		cat = parsed
		data["Active"] = string(cat)
	}

	var q string
	if raw := c.Query("q"); strings.TrimSpace(raw) != "" {
		var ok bool
		if q, ok = validate.Q(raw); !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "q", "value": raw})
			data["Err"] = "Enter a valid keyword (letters/numbers only)"
			c.Status(fiber.StatusBadRequest)
			return render(c, "collection", data)
		}
		data["Q"] = q
	}

	products, err := h.Catalog.Browse(q, cat)
	if err != nil {
		applog.Error(c, "collection.error", err, nil)
		return fail(c, fiber.StatusInternalServerError, "Could not load results. Please retry.")
	}
	counts, err := h.Catalog.CategoryCounts()
	if err != nil {
		applog.Error(c, "collection.counts.fail", err, nil)
	}
	data["Products"] = products
	data["Count"] = len(products)
	data["Counts"] = counts
	return render(c, "collection", data)
}

// GET /our-story
func (h *StoreHandler) OurStory(c *fiber.Ctx) error {
	return render(c, "our_story", nil)
}

// GET /journal
func (h *StoreHandler) Journal(c *fiber.Ctx) error {
	posts, err := h.Content.JournalPosts()
	if err != nil {
		applog.Error(c, "journal.list.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "Could not load the journal. Please retry.")
	}
	return render(c, "journal", fiber.Map{"Posts": posts})
}
