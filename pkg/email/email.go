package email

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strconv"
)

var ErrNotConfigured = errors.New("email: SMTP is not configured")

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService handles email sending
type EmailService struct {
	config  EmailConfig
	invoice *template.Template
	send    sendFunc
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{
		config:  config,
		invoice: template.Must(template.New("invoice").Parse(invoiceTemplate)),
		send:    smtp.SendMail,
	}
}

// InvoiceLine is one row of the item table.
type InvoiceLine struct {
	Name      string
	HSNCode   string
	Quantity  int
	UnitPrice string
	Amount    string
}

// InvoiceMessage is everything the invoice e-mail shows. Amounts are pre-formatted.
type InvoiceMessage struct {
	StoreName       string
	StoreAddress    string
	StorePhone      string
	StoreGSTIN      string
	BillNumber      string
	BillDate        string
	CustomerName    string
	CustomerGSTIN   string
	PaymentMode     string
	Lines           []InvoiceLine
	Subtotal        string
	DiscountPercent string
	DiscountAmount  string
	HasDiscount     bool
	IsSameState     bool
	CGST            string
	SGST            string
	IGST            string
	GrandTotal      string
}

// SendInvoiceEmail renders msg and mails it to toEmail
func (s *EmailService) SendInvoiceEmail(toEmail string, msg *InvoiceMessage) error {
	if s.config.SMTPHost == "" || s.config.FromEmail == "" {
		return ErrNotConfigured
	}

	body, err := s.RenderInvoice(msg)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Invoice %s from %s", msg.BillNumber, msg.StoreName)
	return s.sendEmail(toEmail, s.buildHTMLEmail(toEmail, subject, body))
}

// RenderInvoice executes the invoice template
func (s *EmailService) RenderInvoice(msg *InvoiceMessage) (string, error) {
	var buf bytes.Buffer
	if err := s.invoice.Execute(&buf, msg); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *EmailService) sendEmail(to string, message []byte) error {
	addr := s.config.SMTPHost + ":" + strconv.Itoa(s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := s.send(addr, auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *EmailService) buildHTMLEmail(to, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		mime.QEncoding.Encode("utf-8", s.config.FromName),
		s.config.FromEmail,
		to,
		mime.QEncoding.Encode("utf-8", subject),
	)
	return []byte(headers + htmlBody)
}

const invoiceTemplate = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Invoice {{.BillNumber}}</title></head>
<body style="margin:0;padding:24px;font-family:Arial,Helvetica,sans-serif;background:#f4f7fa;color:#1a1a2e;">
  <table role="presentation" style="max-width:640px;margin:0 auto;background:#ffffff;border-collapse:collapse;width:100%;">
    <tr>
      <td style="padding:24px;border-bottom:2px solid #1a1a2e;">
        <h1 style="margin:0;font-size:22px;">{{.StoreName}}</h1>
        {{if .StoreAddress}}<div>{{.StoreAddress}}</div>{{end}}
        {{if .StorePhone}}<div>Ph: {{.StorePhone}}</div>{{end}}
        {{if .StoreGSTIN}}<div>GSTIN: {{.StoreGSTIN}}</div>{{end}}
        <h2 style="margin:16px 0 0;font-size:16px;">TAX INVOICE {{.BillNumber}}</h2>
        <div>{{.BillDate}}</div>
      </td>
    </tr>
    <tr>
      <td style="padding:16px 24px;">
        <strong>Billed to:</strong> {{.CustomerName}}{{if .CustomerGSTIN}} (GSTIN {{.CustomerGSTIN}}){{end}}
      </td>
    </tr>
    <tr>
      <td style="padding:0 24px;">
        <table style="width:100%;border-collapse:collapse;font-size:14px;">
          <tr style="background:#eef1f5;">
            <th align="left" style="padding:6px;">Item</th>
            <th align="left" style="padding:6px;">HSN</th>
            <th align="right" style="padding:6px;">Qty</th>
            <th align="right" style="padding:6px;">Rate</th>
            <th align="right" style="padding:6px;">Amount</th>
          </tr>
          {{range .Lines}}
          <tr>
            <td style="padding:6px;">{{.Name}}</td>
            <td style="padding:6px;">{{.HSNCode}}</td>
            <td align="right" style="padding:6px;">{{.Quantity}}</td>
            <td align="right" style="padding:6px;">{{.UnitPrice}}</td>
            <td align="right" style="padding:6px;">{{.Amount}}</td>
          </tr>
          {{end}}
        </table>
      </td>
    </tr>
    <tr>
      <td style="padding:16px 24px;">
        <table style="width:100%;font-size:14px;">
          <tr><td>Subtotal</td><td align="right">{{.Subtotal}}</td></tr>
          {{if .HasDiscount}}<tr><td>Discount ({{.DiscountPercent}}%)</td><td align="right">-{{.DiscountAmount}}</td></tr>{{end}}
          {{if .IsSameState}}
          <tr><td>CGST @ 9%</td><td align="right">{{.CGST}}</td></tr>
          <tr><td>SGST @ 9%</td><td align="right">{{.SGST}}</td></tr>
          {{else}}
          <tr><td>IGST @ 18%</td><td align="right">{{.IGST}}</td></tr>
          {{end}}
          <tr><td style="font-weight:bold;font-size:16px;">Grand Total</td><td align="right" style="font-weight:bold;font-size:16px;">{{.GrandTotal}}</td></tr>
          <tr><td>Paid by</td><td align="right">{{.PaymentMode}}</td></tr>
        </table>
      </td>
    </tr>
    <tr>
      <td style="padding:16px 24px;color:#718096;font-size:12px;text-align:center;">Thank you for shopping with {{.StoreName}}.</td>
    </tr>
  </table>
</body>
</html>
`
