// Package handlers wires the chat manager and session manager to the
// HTTP and websocket surface.
package handlers

import (
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pelusa-v/chatline/internal/chat"
	"github.com/pelusa-v/chatline/internal/session"
)

type ChatHandler struct {
	Mgr      *chat.Manager
	Sessions *session.Manager
	Log      zerolog.Logger
	Ready    func() bool // initial data load finished
}

// Register GET /api/ws/register/:nick
func (h *ChatHandler) Register(c *websocket.Conn) {
	nick := c.Params("nick")
	client := h.Mgr.NewClient(uuid.NewString(), nick, c)
	h.Mgr.Register(client)
	defer h.Mgr.Unregister(client)
	go client.WritePump()
	client.ReadPump()
}

// Clients GET /api/clients?exclude=nickOrId
func (h *ChatHandler) Clients(c *fiber.Ctx) error {
	return c.JSON(h.Mgr.ListClients(c.Query("exclude")))
}

// Rooms GET /api/rooms?nick=
func (h *ChatHandler) Rooms(c *fiber.Ctx) error {
	return c.JSON(h.Mgr.ListRooms(c.Query("nick")))
}

// CreateRoom POST /api/room/create?nick=&room=
func (h *ChatHandler) CreateRoom(c *fiber.Ctx) error {
	nick := strings.TrimSpace(c.Query("nick"))
	room := strings.TrimSpace(c.Query("room"))
	if nick == "" || room == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	if !h.Mgr.CreateRoom(nick, room) {
		// already exists or invalid name
		return c.SendStatus(fiber.StatusConflict)
	}
	return c.SendStatus(fiber.StatusCreated)
}

// DeleteRoom POST /api/room/delete?nick=&room=
func (h *ChatHandler) DeleteRoom(c *fiber.Ctx) error {
	nick := strings.TrimSpace(c.Query("nick"))
	room := strings.TrimSpace(c.Query("room"))
	if nick == "" || room == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing nick or room"})
	}
	ok, reason := h.Mgr.DeleteRoom(nick, room)
	if !ok {
		code := fiber.StatusForbidden
		if reason == "not_found" {
			code = fiber.StatusNotFound
		}
		return c.Status(code).JSON(fiber.Map{"error": reason})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SubscribeRoom POST /api/room/subscribe?nick=&room=
func (h *ChatHandler) SubscribeRoom(c *fiber.Ctx) error {
	nick := strings.TrimSpace(c.Query("nick"))
	room := strings.TrimSpace(c.Query("room"))
	if nick == "" || room == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	if !h.Mgr.Subscribe(nick, room) {
		return c.SendStatus(fiber.StatusNotFound) // unknown room or invalid name
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnsubscribeRoom POST /api/room/unsubscribe?nick=&room=
func (h *ChatHandler) UnsubscribeRoom(c *fiber.Ctx) error {
	nick := strings.TrimSpace(c.Query("nick"))
	room := strings.TrimSpace(c.Query("room"))
	if nick == "" || room == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	if !h.Mgr.Unsubscribe(nick, room) {
		return c.SendStatus(fiber.StatusForbidden) // owners can't unsubscribe
	}
	return c.SendStatus(fiber.StatusNoContent)
}
