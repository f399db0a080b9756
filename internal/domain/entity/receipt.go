package entity

// ReceiptHeader holds the seller identity printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"storeName"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	GSTIN     string `json:"gstin,omitempty"`
}

// ReceiptItem represents a single line on a receipt.
type ReceiptItem struct {
	Name      string `json:"name"`
	HSNCode   string `json:"hsnCode,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Total     string `json:"total"`
}

// ReceiptAmount is a labelled amount, used for split-payment tenders.
type ReceiptAmount struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

// Receipt is a printable view of an invoice, composed at print time.
// Amounts are pre-formatted to two decimals.
type Receipt struct {
	Header          ReceiptHeader   `json:"header"`
	BillNumber      string          `json:"billNumber"`
	Date            string          `json:"date"`
	Cashier         string          `json:"cashier,omitempty"`
	Customer        string          `json:"customer"`
	CustomerGSTIN   string          `json:"customerGstin,omitempty"`
	PaymentMode     string          `json:"paymentMode"`
	Items           []ReceiptItem   `json:"items"`
	Subtotal        string          `json:"subtotal"`
	DiscountPercent string          `json:"discountPercent"`
	DiscountAmount  string          `json:"discountAmount"`
	AfterDiscount   string          `json:"afterDiscount"`
	IsSameState     bool            `json:"isSameState"`
	CGST            string          `json:"cgst"`
	SGST            string          `json:"sgst"`
	IGST            string          `json:"igst"`
	GrandTotal      string          `json:"grandTotal"`
	Split           []ReceiptAmount `json:"split,omitempty"`
}
