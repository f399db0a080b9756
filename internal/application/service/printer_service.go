package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	"github.com/sangkips/gstpos-api/pkg/printer"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PrinterService formats invoices as GST receipts and sends them to the thermal printer.
type PrinterService struct {
	printer     printer.Printer
	invoices    *InvoiceService
	store       entity.ReceiptHeader
	configured  bool
	printerType string
	charWidth   int
	logger      *zap.Logger
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	cfg printer.Config,
	charWidth int,
	invoices *InvoiceService,
	store entity.ReceiptHeader,
	logger *zap.Logger,
) *PrinterService {
	return &PrinterService{
		printer:     p,
		invoices:    invoices,
		store:       store,
		configured:  cfg.IsConfigured(),
		printerType: cfg.Type,
		charWidth:   charWidth,
		logger:      logger,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.configured,
		Connected:  s.configured && s.printer.IsConnected(ctx),
		Type:       s.printerType,
	}
}

// PrintResult is the receipt that was composed and whether it reached a printer.
type PrintResult struct {
	Receipt *entity.Receipt `json:"receipt"`
	Printed bool            `json:"printed"`
}

// PrintInvoice composes the receipt for an invoice and prints it. With no
// printer configured the receipt is returned for the client to render.
func (s *PrinterService) PrintInvoice(ctx context.Context, invoiceID uuid.UUID, cashier string) (*PrintResult, error) {
	invoice, err := s.invoices.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	receipt, err := BuildReceipt(invoice, s.store, cashier)
	if err != nil {
		return nil, err
	}
	if !s.configured {
		return &PrintResult{Receipt: receipt}, nil
	}

	if err := s.printer.Print(ctx, FormatReceipt(receipt, s.charWidth)); err != nil {
		s.logger.Warn("receipt print failed",
			zap.String("bill_number", invoice.BillNumber),
			zap.Error(err))
		return &PrintResult{Receipt: receipt}, fmt.Errorf("failed to print receipt: %w", err)
	}
	return &PrintResult{Receipt: receipt, Printed: true}, nil
}

// TestPrint sends a sample receipt to the printer.
func (s *PrinterService) TestPrint(ctx context.Context) (*PrintResult, error) {
	receipt := &entity.Receipt{
		Header:          s.store,
		BillNumber:      "TEST-0000",
		Date:            "-",
		Cashier:         "System",
		Customer:        entity.WalkInCustomerName,
		PaymentMode:     "cash",
		Items:           []entity.ReceiptItem{{Name: "Test Item", HSNCode: entity.DefaultHSNCode, Quantity: 1, UnitPrice: "10.00", Total: "10.00"}},
		Subtotal:        "10.00",
		DiscountPercent: "0",
		DiscountAmount:  "0.00",
		AfterDiscount:   "10.00",
		IsSameState:     true,
		CGST:            "0.90",
		SGST:            "0.90",
		IGST:            "0.00",
		GrandTotal:      "11.80",
	}
	if !s.configured {
		return &PrintResult{Receipt: receipt}, nil
	}
	if err := s.printer.Print(ctx, FormatReceipt(receipt, s.charWidth)); err != nil {
		return &PrintResult{Receipt: receipt}, fmt.Errorf("test print failed: %w", err)
	}
	return &PrintResult{Receipt: receipt, Printed: true}, nil
}

// BuildReceipt renders an invoice's snapshot into a receipt. Only stored
// invoice fields are used, so a reprint always matches the original sale.
func BuildReceipt(invoice *entity.Invoice, store entity.ReceiptHeader, cashier string) (*entity.Receipt, error) {
	if cashier == "" {
		cashier = invoice.CreatedByUsername
	}

	receipt := &entity.Receipt{
		Header:          store,
		BillNumber:      invoice.BillNumber,
		Date:            invoice.BillDate.Format("02-01-2006 15:04"),
		Cashier:         cashier,
		Customer:        invoice.CustomerName,
		PaymentMode:     strings.ToUpper(invoice.PaymentMode.String()),
		Items:           make([]entity.ReceiptItem, 0, len(invoice.Items)),
		Subtotal:        money(invoice.Subtotal),
		DiscountPercent: invoice.DiscountPercent.String(),
		DiscountAmount:  money(invoice.DiscountAmount),
		AfterDiscount:   money(invoice.AfterDiscount),
		IsSameState:     invoice.IsSameState,
		CGST:            money(invoice.CGST),
		SGST:            money(invoice.SGST),
		IGST:            money(invoice.IGST),
		GrandTotal:      money(invoice.GrandTotal),
	}
	if invoice.CustomerGSTIN != nil {
		receipt.CustomerGSTIN = *invoice.CustomerGSTIN
	}

	for _, item := range invoice.Items {
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:      item.ProductName,
			HSNCode:   item.HSNCode,
			Quantity:  item.Quantity,
			UnitPrice: money(item.UnitPrice),
			Total:     money(item.LineSubtotal),
		})
	}

	split, err := invoice.SplitDetails()
	if err != nil {
		return nil, err
	}
	if split != nil {
		for _, tender := range []struct {
			label  string
			amount decimal.Decimal
		}{
			{"Cash", split.CashAmount},
			{"UPI", split.UPIAmount},
			{"Card", split.CardAmount},
		} {
			if tender.amount.IsPositive() {
				receipt.Split = append(receipt.Split, entity.ReceiptAmount{Label: tender.label, Amount: money(tender.amount)})
			}
		}
	}
	return receipt, nil
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, charWidth int) []byte {
	doc := printer.NewDocument(charWidth)
	width := doc.Width()

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)
	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.TextF("Ph: %s", r.Header.Phone)
	}
	if r.Header.GSTIN != "" {
		doc.TextF("GSTIN: %s", r.Header.GSTIN)
	}
	doc.SetBold(true).Text("TAX INVOICE").SetBold(false)

	doc.SetAlign(printer.AlignLeft).Separator('-')
	doc.KeyValue("Bill No:", r.BillNumber).
		KeyValue("Date:", r.Date)
	if r.Cashier != "" {
		doc.KeyValue("Cashier:", r.Cashier)
	}
	doc.KeyValue("Customer:", r.Customer)
	if r.CustomerGSTIN != "" {
		doc.KeyValue("Cust. GSTIN:", r.CustomerGSTIN)
	}
	doc.Separator('-')

	// Item | Qty | Rate | Amount
	cols := []int{width - 24, 5, 9, 10}
	doc.SetBold(true).Columns(cols, "Item", "Qty", "Rate", "Amount").SetBold(false)
	for _, item := range r.Items {
		doc.Columns(cols, item.Name, fmt.Sprintf("%d", item.Quantity), item.UnitPrice, item.Total)
		if item.HSNCode != "" {
			doc.TextF("  HSN %s", item.HSNCode)
		}
	}
	doc.Separator('-')

	doc.KeyValue("Subtotal:", r.Subtotal)
	if r.DiscountAmount != "0.00" {
		doc.KeyValue(fmt.Sprintf("Discount (%s%%):", r.DiscountPercent), "-"+r.DiscountAmount).
			KeyValue("Taxable value:", r.AfterDiscount)
	}
	if r.IsSameState {
		doc.KeyValue("CGST @ 9%:", r.CGST).
			KeyValue("SGST @ 9%:", r.SGST)
	} else {
		doc.KeyValue("IGST @ 18%:", r.IGST)
	}
	doc.Separator('=').
		SetBold(true).
		KeyValue("GRAND TOTAL:", r.GrandTotal).
		SetBold(false).
		Separator('=')

	doc.KeyValue("Payment:", r.PaymentMode)
	for _, tender := range r.Split {
		doc.KeyValue("  "+tender.Label+":", tender.Amount)
	}

	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text("Thank you! Visit again.").
		SetAlign(printer.AlignLeft).
		FeedLines(3).
		PartialCut()

	return doc.Bytes()
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
