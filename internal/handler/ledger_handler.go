package handler

import (
	"errors"
	"strconv"

	"go-stockledger-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LedgerHandler struct {
	service service.LedgerService
}

func NewLedgerHandler(s service.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: s}
}

// Helpers to pull actor info from the JWT context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	userID := c.Locals("user_id")
	if userID == nil {
		return "system"
	}
	return userID.(string)
}

func getUserName(c *fiber.Ctx) string {
	userName := c.Locals("user_name")
	if userName == nil {
		return "Unknown"
	}
	return userName.(string)
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// statusForError maps service sentinels to HTTP codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrNotPending),
		errors.Is(err, service.ErrSupplierInUse):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrUnknownItem),
		errors.Is(err, service.ErrSupplierNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusBadRequest
	}
}

// SubmitInward records a goods receipt
// POST /api/v1/movements/inward
func (h *LedgerHandler) SubmitInward(c *fiber.Ctx) error {
	var req service.InwardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	movement, err := h.service.SubmitInward(&req, getUserID(c), getUserName(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Inward recorded", "data": movement})
}

// SubmitTransfer moves stock between godown and shop
// POST /api/v1/movements/transfer
func (h *LedgerHandler) SubmitTransfer(c *fiber.Ctx) error {
	var req service.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	movement, err := h.service.SubmitTransfer(&req, getUserID(c), getUserName(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Transfer recorded", "data": movement})
}

// GetStock returns the current per-location levels for an item
// GET /api/v1/items/:id/stock
func (h *LedgerHandler) GetStock(c *fiber.Ctx) error {
	itemID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	snapshot, err := h.service.GetStock(itemID)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(snapshot)
}

// GetItemMovements returns an item's full history, oldest first
// GET /api/v1/items/:id/movements
func (h *LedgerHandler) GetItemMovements(c *fiber.Ctx) error {
	itemID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	movements, err := h.service.ListMovements(itemID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(movements)
}

// GetRecentMovements returns the latest ledger entries across all items
// GET /api/v1/movements?limit=n
func (h *LedgerHandler) GetRecentMovements(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	movements, err := h.service.ListRecent(limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(movements)
}
