package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CheckoutItem is one line of the checkout confirmation
type CheckoutItem struct {
	ProductID    uuid.UUID       `json:"productId"`
	ProductName  string          `json:"productName"`
	HSNCode      string          `json:"hsnCode"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	LineSubtotal decimal.Decimal `json:"lineSubtotal"`
}

// CheckoutResponse is returned by POST /checkout
type CheckoutResponse struct {
	BillID          uuid.UUID            `json:"billId"`
	BillNumber      string               `json:"billNumber"`
	BillDate        string               `json:"billDate"`
	CustomerName    string               `json:"customerName"`
	CustomerPhone   *string              `json:"customerPhone"`
	CustomerGSTIN   *string              `json:"customerGstin,omitempty"`
	CustomerState   string               `json:"customerState"`
	IsSameState     bool                 `json:"isSameState"`
	PaymentMode     string               `json:"paymentMode"`
	PaymentStatus   string               `json:"paymentStatus"`
	Items           []CheckoutItem       `json:"items"`
	Subtotal        decimal.Decimal      `json:"subtotal"`
	DiscountPercent decimal.Decimal      `json:"discountPercent"`
	DiscountAmount  decimal.Decimal      `json:"discountAmount"`
	AfterDiscount   decimal.Decimal      `json:"afterDiscount"`
	CGST            decimal.Decimal      `json:"cgst"`
	SGST            decimal.Decimal      `json:"sgst"`
	IGST            decimal.Decimal      `json:"igst"`
	GSTAmount       decimal.Decimal      `json:"gstAmount"`
	GrandTotal      decimal.Decimal      `json:"grandTotal"`
	Profit          decimal.Decimal      `json:"profit"`
	SplitPayment    *entity.SplitPayment `json:"splitPaymentDetails,omitempty"`
	CreatedBy       string               `json:"createdBy"`
}

// NewCheckoutResponse maps a committed invoice to the checkout confirmation
func NewCheckoutResponse(inv *entity.Invoice) *CheckoutResponse {
	resp := &CheckoutResponse{
		BillID:          inv.ID,
		BillNumber:      inv.BillNumber,
		BillDate:        inv.BillDate.Format(time.RFC3339),
		CustomerName:    inv.CustomerName,
		CustomerPhone:   inv.CustomerPhone,
		CustomerGSTIN:   inv.CustomerGSTIN,
		CustomerState:   inv.CustomerState.String(),
		IsSameState:     inv.IsSameState,
		PaymentMode:     inv.PaymentMode.String(),
		PaymentStatus:   inv.PaymentStatus,
		Items:           make([]CheckoutItem, len(inv.Items)),
		Subtotal:        inv.Subtotal,
		DiscountPercent: inv.DiscountPercent,
		DiscountAmount:  inv.DiscountAmount,
		AfterDiscount:   inv.AfterDiscount,
		CGST:            inv.CGST,
		SGST:            inv.SGST,
		IGST:            inv.IGST,
		GSTAmount:       inv.GSTAmount,
		GrandTotal:      inv.GrandTotal,
		Profit:          inv.TotalProfit,
		CreatedBy:       inv.CreatedByUsername,
	}
	for i, it := range inv.Items {
		resp.Items[i] = CheckoutItem{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			HSNCode:      it.HSNCode,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			LineSubtotal: it.LineSubtotal,
		}
	}
	if split, err := inv.SplitDetails(); err == nil {
		resp.SplitPayment = split
	}
	return resp
}

// UserResponse is the public view of a staff account
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       *string   `json:"email,omitempty"`
	Photo       *string   `json:"photo,omitempty"`
	Provider    string    `json:"provider"`
	Role        string    `json:"role"`
	Approved    bool      `json:"approved"`
	Permissions []string  `json:"permissions"`
	CreatedAt   string    `json:"createdAt"`
}

// NewUserResponse maps a user with loaded roles
func NewUserResponse(u *entity.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Photo:       u.Photo,
		Provider:    u.Provider,
		Role:        u.PrimaryRole(),
		Approved:    u.Approved,
		Permissions: u.GetPermissions(),
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}

// TokenResponse is returned by login, refresh and the Google callback
type TokenResponse struct {
	User         *UserResponse `json:"user,omitempty"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	TokenType    string        `json:"tokenType"`
	ExpiresIn    int64         `json:"expiresIn"`
}
