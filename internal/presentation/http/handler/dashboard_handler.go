package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/gstpos-api/internal/application/service"
	"github.com/sangkips/gstpos-api/internal/presentation/http/dto/response"
)

// DashboardHandler serves the stats and analytics endpoints
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats returns the headline numbers shown on the dashboard
// @Summary Dashboard stats
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.GetDashboardStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard stats retrieved successfully", stats)
}

// SalesTrend returns per-day totals
func (h *DashboardHandler) SalesTrend(c *gin.Context) {
	points, err := h.dashboardService.GetSalesTrend(c.Request.Context(), queryInt(c, "days", 30))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sales trend retrieved successfully", points)
}

// TopProducts returns the best sellers by revenue
func (h *DashboardHandler) TopProducts(c *gin.Context) {
	products, err := h.dashboardService.GetTopProducts(c.Request.Context(), queryInt(c, "days", 30), queryInt(c, "limit", 10))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Top products retrieved successfully", products)
}

// LowStock returns products at or below their reorder level
func (h *DashboardHandler) LowStock(c *gin.Context) {
	items, err := h.dashboardService.GetLowStock(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Low stock products retrieved successfully", items)
}

// RevenueProfit returns revenue, cost and margin totals
func (h *DashboardHandler) RevenueProfit(c *gin.Context) {
	summary, err := h.dashboardService.GetRevenueProfit(c.Request.Context(), queryInt(c, "days", 30))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Revenue and profit retrieved successfully", summary)
}

// queryInt reads an integer query parameter, falling back when it is absent or malformed
func queryInt(c *gin.Context, key string, fallback int) int {
	if n, err := strconv.Atoi(c.Query(key)); err == nil {
		return n
	}
	return fallback
}
