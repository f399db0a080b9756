package request

import "github.com/shopspring/decimal"

// CheckoutItemRequest is one cart line
type CheckoutItemRequest struct {
	ProductID string          `json:"productId"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// CheckoutRequest is the POST /checkout body. Amounts may be JSON numbers or
// numeric strings. Shape checks live in the service so that every malformed
// cart gets the same INVALID_CHECKOUT_REQUEST reason.
type CheckoutRequest struct {
	CustomerID      *string               `json:"customerId"`
	Items           []CheckoutItemRequest `json:"items"`
	DiscountPercent decimal.Decimal       `json:"discountPercent"`
	CustomerState   string                `json:"customerState"`
	PaymentMode     string                `json:"paymentMode"`
	CashAmount      decimal.Decimal       `json:"cashAmount"`
	UPIAmount       decimal.Decimal       `json:"upiAmount"`
	CardAmount      decimal.Decimal       `json:"cardAmount"`
	UserID          string                `json:"userId"`
	Username        string                `json:"username"`
}
