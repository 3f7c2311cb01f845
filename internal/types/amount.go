package types

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountString accepts a JSON number or a JSON string on the wire and
// preserves the raw text. Upstream systems disagree on the amount_paid
// encoding, so both must decode without error.
type AmountString string

func (a *AmountString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = AmountString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*a = AmountString(n.String())
		return nil
	}
	// Keep the raw text; ParseAmount handles the fallback to zero.
	*a = AmountString(strings.Trim(string(data), `"`))
	return nil
}

func (a AmountString) String() string {
	return string(a)
}

// ParseAmount normalizes an amount that upstream systems transmit
// inconsistently as either a JSON number or a decimal string
// (e.g. "150000.50"). On parse failure it returns zero and false so the
// caller can log the anomaly and proceed; it never fails the operation.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}
