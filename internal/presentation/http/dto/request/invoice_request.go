package request

// InvoiceFilterRequest represents invoice list query parameters. Dates are YYYY-MM-DD.
type InvoiceFilterRequest struct {
	From        string `form:"from"`
	To          string `form:"to"`
	PaymentMode string `form:"payment_mode"`
	Search      string `form:"search"`
	Page        int    `form:"page"`
	PerPage     int    `form:"per_page"`
}
