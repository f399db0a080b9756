package service

import (
	"strings"

	"github.com/sangkips/gstpos-api/internal/domain/entity"
	"github.com/sangkips/gstpos-api/pkg/email"
)

// EmailInvoiceMailer sends invoice e-mails through the SMTP email service.
type EmailInvoiceMailer struct {
	sender *email.EmailService
	store  entity.ReceiptHeader
}

// NewEmailInvoiceMailer creates an InvoiceMailer with the store header shown on every e-mail.
func NewEmailInvoiceMailer(sender *email.EmailService, store entity.ReceiptHeader) *EmailInvoiceMailer {
	return &EmailInvoiceMailer{sender: sender, store: store}
}

func (m *EmailInvoiceMailer) SendInvoiceEmail(to string, invoice *entity.Invoice) error {
	return m.sender.SendInvoiceEmail(to, InvoiceMessage(invoice, m.store))
}

// InvoiceMessage maps an invoice snapshot onto the e-mail view.
func InvoiceMessage(invoice *entity.Invoice, store entity.ReceiptHeader) *email.InvoiceMessage {
	msg := &email.InvoiceMessage{
		StoreName:       store.StoreName,
		StoreAddress:    store.Address,
		StorePhone:      store.Phone,
		StoreGSTIN:      store.GSTIN,
		BillNumber:      invoice.BillNumber,
		BillDate:        invoice.BillDate.Format("02-01-2006 15:04"),
		CustomerName:    invoice.CustomerName,
		PaymentMode:     strings.ToUpper(invoice.PaymentMode.String()),
		Lines:           make([]email.InvoiceLine, 0, len(invoice.Items)),
		Subtotal:        money(invoice.Subtotal),
		DiscountPercent: invoice.DiscountPercent.String(),
		DiscountAmount:  money(invoice.DiscountAmount),
		HasDiscount:     invoice.DiscountAmount.IsPositive(),
		IsSameState:     invoice.IsSameState,
		CGST:            money(invoice.CGST),
		SGST:            money(invoice.SGST),
		IGST:            money(invoice.IGST),
		GrandTotal:      money(invoice.GrandTotal),
	}
	if invoice.CustomerGSTIN != nil {
		msg.CustomerGSTIN = *invoice.CustomerGSTIN
	}
	for _, item := range invoice.Items {
		msg.Lines = append(msg.Lines, email.InvoiceLine{
			Name:      item.ProductName,
			HSNCode:   item.HSNCode,
			Quantity:  item.Quantity,
			UnitPrice: money(item.UnitPrice),
			Amount:    money(item.LineSubtotal),
		})
	}
	return msg
}
