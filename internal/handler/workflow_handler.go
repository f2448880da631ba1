package handler

import (
	"go-stockledger-ws/internal/model"
	"go-stockledger-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type WorkflowHandler struct {
	service service.WorkflowService
}

func NewWorkflowHandler(s service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{service: s}
}

// RequestAdjustment raises a PENDING write-off
// POST /api/v1/adjustments
func (h *WorkflowHandler) RequestAdjustment(c *fiber.Ctx) error {
	var req service.AdjustmentInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	adj, err := h.service.RequestAdjustment(&req, getUserID(c), getUserName(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Adjustment requested", "data": adj})
}

// ApproveAdjustment applies the write-off to the ledger
// POST /api/v1/adjustments/:id/approve
func (h *WorkflowHandler) ApproveAdjustment(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid adjustment ID"})
	}

	movement, err := h.service.ApproveAdjustment(id, getUserID(c), getUserName(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Adjustment approved", "data": movement})
}

// POST /api/v1/adjustments/:id/reject
func (h *WorkflowHandler) RejectAdjustment(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid adjustment ID"})
	}

	adj, err := h.service.RejectAdjustment(id, getUserID(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Adjustment rejected", "data": adj})
}

// GET /api/v1/adjustments?status=PENDING
func (h *WorkflowHandler) GetAdjustments(c *fiber.Ctx) error {
	status := model.AdjustmentStatus(c.Query("status"))

	adjustments, err := h.service.ListAdjustments(status)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(adjustments)
}

// RequestPurchase raises a PENDING replenishment request
// POST /api/v1/purchase-requests
func (h *WorkflowHandler) RequestPurchase(c *fiber.Ctx) error {
	var req service.PurchaseInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	pr, err := h.service.RequestPurchase(&req, getUserID(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Purchase request created", "data": pr})
}

// ApprovePurchase flips the request to ORDERED (status only, no stock effect)
// POST /api/v1/purchase-requests/:id/approve
func (h *WorkflowHandler) ApprovePurchase(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request ID"})
	}

	pr, err := h.service.ApprovePurchase(id, getUserID(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Purchase request ordered", "data": pr})
}

// POST /api/v1/purchase-requests/:id/reject
func (h *WorkflowHandler) RejectPurchase(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request ID"})
	}

	pr, err := h.service.RejectPurchase(id, getUserID(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Purchase request rejected", "data": pr})
}

// GET /api/v1/purchase-requests?status=PENDING
func (h *WorkflowHandler) GetPurchaseRequests(c *fiber.Ctx) error {
	status := model.PurchaseStatus(c.Query("status"))

	requests, err := h.service.ListPurchaseRequests(status)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(requests)
}
