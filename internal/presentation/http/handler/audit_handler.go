package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/gstpos-api/internal/application/service"
	"github.com/sangkips/gstpos-api/internal/presentation/http/dto/response"
)

// AuditHandler exposes the audit trail to administrators
type AuditHandler struct {
	auditService *service.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List returns recent entries, optionally for one action
func (h *AuditHandler) List(c *gin.Context) {
	logs, err := h.auditService.List(c.Request.Context(), c.Query("action"), queryInt(c, "limit", 100))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Audit logs retrieved successfully", logs)
}

// UserActivity returns one user's recent entries and per-action counts
func (h *AuditHandler) UserActivity(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	activity, err := h.auditService.GetUserActivity(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "User activity retrieved successfully", activity)
}
