package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Inbox GET /api/inbox/:nick
func (h *ChatHandler) Inbox(c *fiber.Ctx) error {
	return c.JSON(h.Mgr.GetInbox(c.Params("nick")))
}

// Unread GET /api/inbox/:nick/unread
//
// Total unread count across all threads; the badge shown on the inbox
// tab.
func (h *ChatHandler) Unread(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"unread": h.Mgr.UnreadTotal(c.Params("nick"))})
}

// MarkRead POST /api/inbox/read?nick=&thread_id=
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	nick := c.Query("nick")
	thread := c.Query("thread_id")
	if nick == "" || thread == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	h.Mgr.MarkRead(nick, thread)
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteThread POST /api/inbox/delete?nick=&thread_id=
func (h *ChatHandler) DeleteThread(c *fiber.Ctx) error {
	nick := c.Query("nick")
	thread := c.Query("thread_id")
	if nick == "" || thread == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	if !h.Mgr.DeleteThread(nick, thread) {
		return c.SendStatus(fiber.StatusNotFound)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Settings GET /api/inbox/settings?nick=
func (h *ChatHandler) Settings(c *fiber.Ctx) error {
	nick := c.Query("nick")
	if nick == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	return c.JSON(h.Mgr.GetSettings(nick))
}

// SetSettings POST /api/inbox/settings?nick=&muted=
func (h *ChatHandler) SetSettings(c *fiber.Ctx) error {
	nick := c.Query("nick")
	if nick == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	h.Mgr.SetMuted(nick, c.QueryBool("muted"))
	return c.JSON(h.Mgr.GetSettings(nick))
}

// Login POST /api/session/:nick
func (h *ChatHandler) Login(c *fiber.Ctx) error {
	nick := c.Params("nick")
	if nick == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	token := h.Sessions.Login(nick)
	h.Log.Info().Str("nick", nick).Msg("session created")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token": token})
}

// Logout POST /api/session/logout?token=
func (h *ChatHandler) Logout(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	h.Sessions.Logout(token)
	return c.SendStatus(fiber.StatusNoContent)
}

// Health GET /healthz
//
// Reports 503 until the readiness gate has opened and the inbox is
// hydrated.
func (h *ChatHandler) Health(c *fiber.Ctx) error {
	ready := h.Ready()
	status := fiber.StatusOK
	if !ready {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"ready": ready})
}
