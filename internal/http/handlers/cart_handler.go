package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "noiressence/internal/log"
	"noiressence/internal/services"
	"noiressence/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

// POST /cart
func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := sessionOf(c).ID
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return fail(c, fiber.StatusBadRequest, "That fragrance could not be found.")
	}
	line, err := h.Cart.Add(sid, productID)
	if errors.Is(err, services.ErrProductMissing) {
		return fail(c, fiber.StatusNotFound, "This fragrance is no longer available.")
	}
	if err != nil {
		applog.Error(c, "cart.add.fail", err, map[string]any{"product": productID})
		return fail(c, fiber.StatusInternalServerError, "Could not add to your bag. Please retry.")
	}
	applog.Info(c, "cart.add", map[string]any{"product": productID, "qty": line.Quantity})
	return c.Redirect(safeNext(c.FormValue("next")))
}

// POST /cart/remove
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := sessionOf(c).ID
	if productID, ok := validate.ID(c.FormValue("productId")); ok {
		if h.Cart.Remove(sid, productID) {
			applog.Info(c, "cart.remove", map[string]any{"product": productID})
		}
	}
	return c.Redirect(safeNext(c.FormValue("next")))
}

// POST /cart/panel
func (h *CartHandler) Panel(c *fiber.Ctx) error {
	h.Cart.SetPanel(sessionOf(c).ID, c.FormValue("open") == "1")
	return c.Redirect(safeNext(c.FormValue("next")))
}

// GET /api/v1/cart
func (h *CartHandler) JSON(c *fiber.Ctx) error {
	return c.JSON(h.Cart.View(sessionOf(c).ID))
}
