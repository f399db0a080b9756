package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/gstpos-api/internal/application/service"
	"github.com/sangkips/gstpos-api/internal/presentation/http/dto/response"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves CSV, Excel and JSON exports and the data wipe
type ExportHandler struct {
	exportService *service.ExportService
	logger        *zap.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService *service.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{exportService: exportService, logger: logger}
}

func attachment(c *gin.Context, name, ext, contentType string) {
	filename := fmt.Sprintf("%s-%s.%s", name, time.Now().Format(dateLayout), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
}

// Products streams the product catalogue as CSV
func (h *ExportHandler) Products(c *gin.Context) {
	attachment(c, "products", "csv", "text/csv; charset=utf-8")
	if err := h.exportService.WriteProductsCSV(c.Request.Context(), c.Writer); err != nil {
		// headers are already sent, so all that is left is to log
		h.logger.Error("product export failed", zap.Error(err))
		_ = c.Error(err)
	}
}

// Invoices streams invoices as CSV, or as an Excel workbook with ?format=xlsx
// @Summary Export invoices
// @Tags export
// @Security BearerAuth
// @Param format query string false "csv (default) or xlsx"
// @Success 200
// @Router /export/invoices [get]
func (h *ExportHandler) Invoices(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	switch format {
	case "csv":
		attachment(c, "invoices", "csv", "text/csv; charset=utf-8")
		if err := h.exportService.WriteInvoicesCSV(c.Request.Context(), c.Writer); err != nil {
			h.logger.Error("invoice export failed", zap.Error(err))
			_ = c.Error(err)
		}
	case "xlsx":
		attachment(c, "invoices", "xlsx", xlsxContentType)
		if err := h.exportService.WriteInvoicesXLSX(c.Request.Context(), c.Writer); err != nil {
			h.logger.Error("invoice export failed", zap.Error(err))
			_ = c.Error(err)
		}
	default:
		response.BadRequest(c, "format must be csv or xlsx")
	}
}

// Backup returns a JSON dump of the business data
func (h *ExportHandler) Backup(c *gin.Context) {
	backup, err := h.exportService.BuildBackup(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "backup-"+time.Now().Format(dateLayout)+".json"))
	c.JSON(http.StatusOK, backup)
}

// ClearAll wipes products, customers, invoices, audit logs and non-admin users
// @Summary Clear all data
// @Tags admin
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Router /admin/clear-all-data [delete]
func (h *ExportHandler) ClearAll(c *gin.Context) {
	cleared, err := h.exportService.ClearAllData(c.Request.Context(), GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "All data cleared", gin.H{"deleted": cleared})
}
