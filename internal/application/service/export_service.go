package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sangkips/gstpos-api/internal/domain/entity"
	"github.com/sangkips/gstpos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const invoiceSheet = "Invoices"

var (
	productCSVHeader = []string{"Name", "Barcode", "Quantity", "Price", "Cost Price", "HSN Code", "Min Stock", "Profit"}
	invoiceHeader    = []string{"Bill Number", "Date", "Customer", "Customer GSTIN", "Items", "Subtotal", "Discount", "CGST", "SGST", "IGST", "GST", "Total", "Profit", "Payment Mode"}
)

// ExportService produces CSV/XLSX exports, JSON backups and the full data wipe.
type ExportService struct {
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	invoiceRepo  repository.InvoiceRepository
	userRepo     repository.UserRepository
	dataAdmin    repository.DataAdminRepository
	audit        AuditRecorder
	logger       *zap.Logger
}

// NewExportService creates a new export service
func NewExportService(
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
	userRepo repository.UserRepository,
	dataAdmin repository.DataAdminRepository,
	audit AuditRecorder,
	logger *zap.Logger,
) *ExportService {
	return &ExportService{
		productRepo:  productRepo,
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		userRepo:     userRepo,
		dataAdmin:    dataAdmin,
		audit:        audit,
		logger:       logger,
	}
}

// WriteProductsCSV writes every product as CSV
func (s *ExportService) WriteProductsCSV(ctx context.Context, w io.Writer) error {
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(productCSVHeader); err != nil {
		return err
	}
	for i := range products {
		p := &products[i]
		barcode := ""
		if p.Barcode != nil {
			barcode = *p.Barcode
		}
		if err := cw.Write([]string{
			p.Name,
			barcode,
			strconv.Itoa(p.Quantity),
			money(p.Price),
			money(p.CostPrice),
			p.HSNCode,
			strconv.Itoa(p.MinStock),
			money(p.Profit()),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteInvoicesCSV writes every invoice as one CSV row
func (s *ExportService) WriteInvoicesCSV(ctx context.Context, w io.Writer) error {
	invoices, err := s.invoiceRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(invoiceHeader); err != nil {
		return err
	}
	for i := range invoices {
		row := invoiceRow(&invoices[i])
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		if err := cw.Write(cells); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteInvoicesXLSX writes every invoice to a single-sheet workbook
func (s *ExportService) WriteInvoicesXLSX(ctx context.Context, w io.Writer) error {
	invoices, err := s.invoiceRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", invoiceSheet); err != nil {
		return err
	}

	header := make([]interface{}, len(invoiceHeader))
	for i, h := range invoiceHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(invoiceSheet, "A1", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(invoiceHeader))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(invoiceSheet, "A1", lastCol+"1", bold); err != nil {
		return err
	}
	if err := f.SetColWidth(invoiceSheet, "A", lastCol, 16); err != nil {
		return err
	}

	for i := range invoices {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := invoiceRow(&invoices[i])
		if err := f.SetSheetRow(invoiceSheet, cell, &row); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}

// invoiceRow is shared by the CSV and XLSX exports. Money cells are float64
// so spreadsheets treat them as numbers.
func invoiceRow(inv *entity.Invoice) []interface{} {
	gstin := ""
	if inv.CustomerGSTIN != nil {
		gstin = *inv.CustomerGSTIN
	}
	return []interface{}{
		inv.BillNumber,
		inv.BillDate.Format("2006-01-02 15:04:05"),
		inv.CustomerName,
		gstin,
		len(inv.Items),
		num(inv.Subtotal),
		num(inv.DiscountAmount),
		num(inv.CGST),
		num(inv.SGST),
		num(inv.IGST),
		num(inv.GSTAmount),
		num(inv.GrandTotal),
		num(inv.TotalProfit),
		inv.PaymentMode.String(),
	}
}

func num(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Backup is a full JSON dump. User password hashes are never serialised.
type Backup struct {
	Timestamp time.Time         `json:"timestamp"`
	Products  []entity.Product  `json:"products"`
	Customers []entity.Customer `json:"customers"`
	Invoices  []entity.Invoice  `json:"invoices"`
	Users     []entity.User     `json:"users"`
}

// BuildBackup loads everything for a JSON backup
func (s *ExportService) BuildBackup(ctx context.Context) (*Backup, error) {
	backup := &Backup{Timestamp: time.Now().UTC()}
	var err error

	if backup.Products, err = s.productRepo.ListAll(ctx); err != nil {
		return nil, err
	}
	if backup.Customers, err = s.customerRepo.ListAll(ctx); err != nil {
		return nil, err
	}
	if backup.Invoices, err = s.invoiceRepo.ListAll(ctx); err != nil {
		return nil, err
	}
	if backup.Users, err = s.userRepo.ListAll(ctx); err != nil {
		return nil, err
	}
	return backup, nil
}

// ClearAllData wipes business data and non-admin users. The wipe itself is
// then the first entry of the new audit log.
func (s *ExportService) ClearAllData(ctx context.Context, actor Actor) (map[string]int64, error) {
	cleared, err := s.dataAdmin.ClearAll(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Warn("all business data cleared", zap.String("by", actor.Username), zap.Any("rows", cleared))

	details := make(map[string]interface{}, len(cleared))
	for table, n := range cleared {
		details[table] = n
	}
	s.audit.Record(ctx, entity.AuditDataCleared, actor, details)
	return cleared, nil
}
