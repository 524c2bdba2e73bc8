package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"noiressence/internal/checkout"
	applog "noiressence/internal/log"
	"noiressence/internal/services"
	"noiressence/internal/validate"
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
}

// GET /checkout
func (h *CheckoutHandler) Page(c *fiber.Ctx) error {
	v := h.Checkout.Open(sessionOf(c).ID)
	return render(c, "checkout", fiber.Map{
		"View":  v,
		"Empty": v.Status == checkout.StatusEmpty,
		"Form":  checkout.Shipping{},
	})
}

func shippingForm(c *fiber.Ctx) (checkout.Shipping, string, bool) {
	var s checkout.Shipping
	var ok bool
	if s.FirstName, ok = validate.Name(c.FormValue("firstName")); !ok {
		return s, "firstName", false
	}
	if s.LastName, ok = validate.Name(c.FormValue("lastName")); !ok {
		return s, "lastName", false
	}
	if s.Email, ok = validate.Email(c.FormValue("email")); !ok {
		return s, "email", false
	}
	if s.Address, ok = validate.Text(c.FormValue("address"), 120); !ok || s.Address == "" {
		return s, "address", false
	}
	if s.City, ok = validate.Name(c.FormValue("city")); !ok {
		return s, "city", false
	}
	if s.PostalCode, ok = validate.PostalCode(c.FormValue("postalCode")); !ok {
		return s, "postalCode", false
	}
	return s, "", true
}

// POST /checkout
func (h *CheckoutHandler) Place(c *fiber.Ctx) error {
	sid := sessionOf(c).ID

	ship, field, ok := shippingForm(c)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": field})
		c.Status(fiber.StatusBadRequest)
		v := h.Checkout.Open(sid)
		return render(c, "checkout", fiber.Map{
			"View":  v,
			"Empty": v.Status == checkout.StatusEmpty,
			"Form":  ship,
			"Err":   "Please complete every shipping field correctly.",
			"Field": field,
		})
	}

	v, err := h.Checkout.Place(c.UserContext(), sid, ship)
	switch {
	case errors.Is(err, checkout.ErrNotCollecting), errors.Is(err, checkout.ErrEmptyCart):
		return c.Redirect("/checkout")
	case errors.Is(err, checkout.ErrShippingIncomplete):
		applog.Security(c, "validation.fail", map[string]any{"field": "shipping"})
		return fail(c, fiber.StatusBadRequest, "Please complete every shipping field.")
	case err != nil:
		applog.Error(c, "order.place.fail", err, map[string]any{"subtotal": v.Subtotal.StringFixed(2)})
		return fail(c, fiber.StatusBadGateway, "We could not place your order right now. Your bag has been kept; please try again shortly.")
	}

	applog.Audit(c, "order.place", map[string]any{
		"order_id": v.Order.ID,
		"items":    v.Order.ItemCount(),
		"subtotal": v.Order.Subtotal.StringFixed(2),
	})
	return render(c, "checkout_confirmed", fiber.Map{"Order": v.Order, "Total": v.Total})
}
