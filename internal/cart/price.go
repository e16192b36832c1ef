package cart

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Price is a product price as the storefront API and older cart snapshots
// deliver it: a JSON number, a numeric string, or a {"$numberDecimal": "..."}
// wrapper. It always marshals as a JSON number.
type Price struct {
	decimal.Decimal
}

func NewPrice(d decimal.Decimal) Price {
	return Price{Decimal: d}
}

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		p.Decimal = decimal.Zero
		return nil
	}

	if len(data) > 0 && data[0] == '{' {
		var wrapper struct {
			Value *string `json:"$numberDecimal"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return fmt.Errorf("price: %w", err)
		}
		if wrapper.Value == nil {
			return fmt.Errorf("price: object without $numberDecimal")
		}
		d, err := decimal.NewFromString(*wrapper.Value)
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		p.Decimal = d
		return nil
	}

	// decimal accepts both quoted and bare numbers.
	return p.Decimal.UnmarshalJSON(data)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}
