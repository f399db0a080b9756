package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// PaymentMode is how an invoice was settled. Stored lowercased.
type PaymentMode string

const (
	PaymentModeCash  PaymentMode = "cash"
	PaymentModeCard  PaymentMode = "card"
	PaymentModeUPI   PaymentMode = "upi"
	PaymentModeSplit PaymentMode = "split"
)

// ParsePaymentMode normalizes the mode to lowercase. Empty means cash.
func ParsePaymentMode(s string) (PaymentMode, error) {
	mode := PaymentMode(strings.ToLower(strings.TrimSpace(s)))
	switch mode {
	case "":
		return PaymentModeCash, nil
	case PaymentModeCash, PaymentModeCard, PaymentModeUPI, PaymentModeSplit:
		return mode, nil
	}
	return "", fmt.Errorf("invalid payment mode %q: must be cash, card, upi or split", s)
}

func (m PaymentMode) String() string {
	return string(m)
}

func (m PaymentMode) IsSplit() bool {
	return m == PaymentModeSplit
}

func (m *PaymentMode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParsePaymentMode(str)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m PaymentMode) Value() (driver.Value, error) {
	return string(m), nil
}

func (m *PaymentMode) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = PaymentModeCash
	case string:
		*m = PaymentMode(v)
	case []byte:
		*m = PaymentMode(v)
	}
	return nil
}
