package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/gstpos-api/internal/application/service"
	"github.com/sangkips/gstpos-api/internal/domain/enum"
	"github.com/sangkips/gstpos-api/internal/domain/repository"
	"github.com/sangkips/gstpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/gstpos-api/internal/presentation/http/dto/response"
)

const dateLayout = "2006-01-02"

// InvoiceHandler serves the read-only invoice ledger
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	printerService *service.PrinterService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService, printerService *service.PrinterService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, printerService: printerService}
}

// List handles listing invoices, newest first
// @Summary List invoices
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Param from query string false "First day, YYYY-MM-DD"
// @Param to query string false "Last day, YYYY-MM-DD"
// @Param payment_mode query string false "cash, card, upi or split"
// @Param search query string false "Bill number or customer name"
// @Success 200 {object} response.APIResponse
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter request.InvoiceFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.InvoiceFilterParams{
		Pagination: paginationFrom(filter.Page, filter.PerPage),
		Search:     filter.Search,
	}

	var from, to time.Time
	var err error
	if filter.From != "" {
		if from, err = time.Parse(dateLayout, filter.From); err != nil {
			response.BadRequest(c, "'from' must be a date in YYYY-MM-DD format")
			return
		}
		params.From = &from
	}
	if filter.To != "" {
		if to, err = time.Parse(dateLayout, filter.To); err != nil {
			response.BadRequest(c, "'to' must be a date in YYYY-MM-DD format")
			return
		}
		if params.From != nil && to.Before(from) {
			response.BadRequest(c, "'to' must not be before 'from'")
			return
		}
		// the whole of the last day is included
		end := to.AddDate(0, 0, 1)
		params.To = &end
	}
	if filter.PaymentMode != "" {
		mode, err := enum.ParsePaymentMode(filter.PaymentMode)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		params.PaymentMode = mode
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Invoices retrieved successfully", result)
}

// Get handles fetching a single invoice
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// Print sends the invoice receipt to the thermal printer
// @Summary Print receipt
// @Description Prints on the configured ESC/POS printer. Without one, the composed receipt is returned.
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.APIResponse
// @Router /invoices/{id}/print [post]
func (h *InvoiceHandler) Print(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.printerService.PrintInvoice(c.Request.Context(), id, GetUsername(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Receipt printed"
	if !result.Printed {
		message = "No printer configured, receipt returned"
	}
	response.OK(c, message, result)
}
