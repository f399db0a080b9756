package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// TaxState says whether the buyer is registered in the seller's state.
// It selects the CGST+SGST split or IGST at checkout.
type TaxState int

const (
	TaxStateSame  TaxState = 0
	TaxStateOther TaxState = 1
)

func (t TaxState) String() string {
	names := [...]string{"Same", "Other"}
	if int(t) < 0 || int(t) >= len(names) {
		return "Same"
	}
	return names[t]
}

// IsSameState reports whether intra-state GST (CGST + SGST) applies.
func (t TaxState) IsSameState() bool {
	return t == TaxStateSame
}

// ParseTaxState accepts "Same" or "Other" (case-insensitive). Empty means Same.
func ParseTaxState(s string) (TaxState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "same":
		return TaxStateSame, nil
	case "other":
		return TaxStateOther, nil
	}
	return TaxStateSame, fmt.Errorf("invalid customer state %q: must be Same or Other", s)
}

func (t TaxState) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TaxState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		if i != int(TaxStateSame) && i != int(TaxStateOther) {
			return fmt.Errorf("invalid customer state %d", i)
		}
		*t = TaxState(i)
		return nil
	}
	parsed, err := ParseTaxState(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TaxState) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *TaxState) Scan(value interface{}) error {
	if value == nil {
		*t = TaxStateSame
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = TaxState(v)
	case int32:
		*t = TaxState(v)
	case int:
		*t = TaxState(v)
	}
	return nil
}
