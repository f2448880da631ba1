package handler

import (
	"strconv"
	"time"

	"go-stockledger-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.AnalyzerService
}

func NewReportHandler(s service.AnalyzerService) *ReportHandler {
	return &ReportHandler{service: s}
}

// GetValuationReport returns total asset value, location/category breakdowns
// and stock health lists
// GET /api/v1/reports/valuation
func (h *ReportHandler) GetValuationReport(c *fiber.Ctx) error {
	report, err := h.service.GetValuationReport(time.Now())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to compute valuation report"})
	}
	return c.JSON(report)
}

// GetDashboardStats returns overview statistics
// GET /api/v1/dashboard/stats
func (h *ReportHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}
	return c.JSON(stats)
}

// GetStockFlow returns daily inward/outward aggregates for charts
// Query params: days (default 7)
func (h *ReportHandler) GetStockFlow(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil || days <= 0 {
		days = 7
	}

	data, err := h.service.GetDailyFlow(days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch stock flow"})
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}
