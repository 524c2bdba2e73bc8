package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "noiressence/internal/log"
	"noiressence/internal/services"
	"noiressence/internal/validate"
)

type ChatHandler struct {
	Assistant *services.AssistantService
}

type chatRequest struct {
	Message string `json:"message"`
}

// POST /chat
func (h *ChatHandler) Form(c *fiber.Ctx) error {
	next := safeNext(c.FormValue("next"))
	raw := c.FormValue("message")
	if strings.TrimSpace(raw) == "" {
		return c.Redirect(next)
	}
	msg, ok := validate.Message(raw)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "message", "len": len(raw)})
		return c.Redirect(next)
	}
	h.Assistant.Ask(c.UserContext(), sessionOf(c).Conversation(), msg)
	return c.Redirect(next + "#sommelier")
}

func readChat(c *fiber.Ctx) (string, error) {
	if !c.Is("json") {
		return "", fiber.NewError(fiber.StatusUnsupportedMediaType, "expected application/json")
	}
	var req chatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	msg, ok := validate.Message(req.Message)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "message", "len": len(req.Message)})
		return "", fiber.NewError(fiber.StatusBadRequest, "message must be 1-500 characters")
	}
	return msg, nil
}

func apiError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// POST /api/v1/chat
func (h *ChatHandler) JSON(c *fiber.Ctx) error {
	msg, err := readChat(c)
	if err != nil {
		return apiError(c, err)
	}
	conv := sessionOf(c).Conversation()
	reply, _ := h.Assistant.Ask(c.UserContext(), conv, msg)
	return c.JSON(fiber.Map{"reply": reply, "transcript": conv.Transcript()})
}

// POST /api/v1/chat/stream answers with server-sent events: one "fragment"
// event per piece of the reply followed by "done".
func (h *ChatHandler) Stream(c *fiber.Ctx) error {
	msg, err := readChat(c)
	if err != nil {
		return apiError(c, err)
	}
	conv := sessionOf(c).Conversation()
	applog.Info(c, "chat.stream", map[string]any{"len": len(msg)})

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	// The request context is gone once the handler returns; the stream gets its own.
	ctx, cancel := context.WithCancel(context.Background())
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		for f := range h.Assistant.Stream(ctx, conv, msg) {
			if err := writeEvent(w, "fragment", f); err != nil {
				return
			}
		}
		_ = writeEvent(w, "done", fiber.Map{})
	})
	return nil
}

func writeEvent(w *bufio.Writer, event string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b); err != nil {
		return err
	}
	return w.Flush()
}
