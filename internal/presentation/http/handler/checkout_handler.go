package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/application/service"
	"github.com/sangkips/gstpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/gstpos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/gstpos-api/pkg/apperror"
)

// CheckoutHandler exposes the checkout engine
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Checkout handles a completed sale at the till
// @Summary Checkout
// @Description Price a cart, decrement stock and record the invoice in one step
// @Tags checkout
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param request body request.CheckoutRequest true "Cart"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req request.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidCheckout("Request body is not a valid checkout request"))
		return
	}

	input, err := toCheckoutInput(&req, GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	invoice, err := h.checkoutService.Checkout(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Checkout completed", response.NewCheckoutResponse(invoice))
}

// toCheckoutInput parses ids and resolves attribution. The authenticated user
// wins over the body's userId; the body's username is only a fallback.
func toCheckoutInput(req *request.CheckoutRequest, actor service.Actor) (*service.CheckoutInput, error) {
	input := &service.CheckoutInput{
		Items:           make([]service.CheckoutItemInput, len(req.Items)),
		DiscountPercent: req.DiscountPercent,
		CustomerState:   req.CustomerState,
		PaymentMode:     req.PaymentMode,
		CashAmount:      req.CashAmount,
		UPIAmount:       req.UPIAmount,
		CardAmount:      req.CardAmount,
		Actor:           actor,
	}

	if req.CustomerID != nil && strings.TrimSpace(*req.CustomerID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(*req.CustomerID))
		if err != nil {
			return nil, invalidCheckout("customerId is not a valid id")
		}
		input.CustomerID = &id
	}

	for i, item := range req.Items {
		id, err := uuid.Parse(strings.TrimSpace(item.ProductID))
		if err != nil {
			return nil, invalidCheckout(fmt.Sprintf("items[%d].productId is not a valid id", i))
		}
		input.Items[i] = service.CheckoutItemInput{
			ProductID: id,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	if input.Actor.UserID == uuid.Nil {
		if id, err := uuid.Parse(req.UserID); err == nil {
			input.Actor.UserID = id
		}
	}
	if input.Actor.Username == "" {
		input.Actor.Username = strings.TrimSpace(req.Username)
	}
	return input, nil
}

func invalidCheckout(msg string) error {
	return apperror.Wrap(http.StatusBadRequest, apperror.ReasonInvalidCheckoutRequest, msg, nil)
}
