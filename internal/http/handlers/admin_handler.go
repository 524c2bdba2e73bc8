package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"noiressence/internal/domain"
	applog "noiressence/internal/log"
	"noiressence/internal/services"
	"noiressence/internal/validate"
)

type AdminHandler struct {
	Catalog   *services.CatalogService
	Assistant *services.AssistantService
}

// draftForm is the admin form as typed. It survives a failed submit so the
// page can be re-rendered without losing input.
type draftForm struct {
	Name        string
	Brand       string
	Price       string
	Description string
	Notes       string
	Image       string
	Category    string
}

func readDraft(c *fiber.Ctx) draftForm {
	return draftForm{
		Name:        strings.TrimSpace(c.FormValue("name")),
		Brand:       strings.TrimSpace(c.FormValue("brand")),
		Price:       strings.TrimSpace(c.FormValue("price")),
		Description: strings.TrimSpace(c.FormValue("description")),
		Notes:       strings.TrimSpace(c.FormValue("notes")),
		Image:       strings.TrimSpace(c.FormValue("image")),
		Category:    strings.TrimSpace(c.FormValue("category")),
	}
}

// check validates field shapes and returns the first bad field.
func (f draftForm) check() (domain.Draft, string) {
	d := domain.Draft{Brand: f.Brand, Price: f.Price, Category: f.Category}
	var ok bool
	if d.Name, ok = validate.Name(f.Name); !ok {
		return d, "name"
	}
	if f.Brand != "" {
		if d.Brand, ok = validate.Name(f.Brand); !ok {
			return d, "brand"
		}
	}
	if d.Price, ok = validate.Price(f.Price); !ok {
		return d, "price"
	}
	if d.Description, ok = validate.Text(f.Description, 1000); !ok {
		return d, "description"
	}
	if d.Notes, ok = validate.Notes(f.Notes); !ok {
		return d, "notes"
	}
	if d.Image, ok = validate.ImageURL(f.Image); !ok {
		return d, "image"
	}
	return d, ""
}

func (h *AdminHandler) page(c *fiber.Ctx, status int, form draftForm, msg string) error {
	products, err := h.Catalog.List()
	if err != nil {
		applog.Error(c, "admin.products.list.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "Could not load the catalog")
	}
	stats, err := h.Catalog.Stats()
	if err != nil {
		applog.Error(c, "admin.stats.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "Could not load the catalog")
	}
	counts, _ := h.Catalog.CategoryCounts()
	c.Status(status)
	return render(c, "admin", fiber.Map{
		"Products": products,
		"Stats":    stats,
		"Counts":   counts,
		"Form":     form,
		"Err":      msg,
	})
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	return h.page(c, fiber.StatusOK, draftForm{Category: string(domain.Unisex)}, "")
}

// POST /admin/products
func (h *AdminHandler) Create(c *fiber.Ctx) error {
	form := readDraft(c)
	d, field := form.check()
	if field != "" {
		applog.Security(c, "validation.fail", map[string]any{"field": field})
		return h.page(c, fiber.StatusBadRequest, form, "Please check the "+field+" field.")
	}
	p, err := h.Catalog.Create(d)
	if errors.Is(err, services.ErrInvalidDraft) {
		applog.Security(c, "validation.fail", map[string]any{"field": "draft", "reason": err.Error()})
		return h.page(c, fiber.StatusBadRequest, form, "Name and a price above zero are required.")
	}
	if err != nil {
		applog.Error(c, "admin.products.create.fail", err, nil)
		return h.page(c, fiber.StatusInternalServerError, form, "Could not save the product. Please retry.")
	}
	applog.Audit(c, "admin.products.create", map[string]any{
		"product_id": p.ID,
		"name":       p.Name,
		"price":      p.Price.StringFixed(2),
		"category":   string(p.Category),
	})
	return c.Redirect("/admin")
}

// POST /admin/products/describe fills the form's description from the assistant.
func (h *AdminHandler) Describe(c *fiber.Ctx) error {
	form := readDraft(c)
	notes, ok := validate.Notes(form.Notes)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "notes"})
		return h.page(c, fiber.StatusBadRequest, form, "Please check the notes field.")
	}
	text, err := h.Assistant.DraftDescription(c.UserContext(), form.Name, notes)
	if errors.Is(err, services.ErrDraftNeedsNotes) {
		return h.page(c, fiber.StatusBadRequest, form, "Enter a name and at least one note to draft a description.")
	}
	form.Description = text
	applog.Info(c, "admin.products.describe", map[string]any{"name": form.Name, "notes": len(notes)})
	return h.page(c, fiber.StatusOK, form, "")
}

// GET /admin/products/:id/delete asks for confirmation; POST with
// confirm=yes deletes.
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id"})
		return fail(c, fiber.StatusBadRequest, "Invalid product")
	}
	p, err := h.Catalog.Get(id)
	if errors.Is(err, services.ErrProductMissing) {
		return c.Redirect("/admin")
	}
	if err != nil {
		applog.Error(c, "admin.products.get.fail", err, map[string]any{"product_id": id})
		return fail(c, fiber.StatusInternalServerError, "Could not load the product")
	}
	if c.Method() != fiber.MethodPost || c.FormValue("confirm") != "yes" {
		return render(c, "admin_confirm_delete", fiber.Map{"Product": p})
	}
	if _, err := h.Catalog.Delete(id); err != nil {
		applog.Error(c, "admin.products.delete.fail", err, map[string]any{"product_id": id})
		return fail(c, fiber.StatusInternalServerError, "Could not delete the product")
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product_id": id, "name": p.Name})
	return c.Redirect("/admin")
}
