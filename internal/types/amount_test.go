package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected decimal.Decimal
		ok       bool
	}{
		{name: "integer string", raw: "150000", expected: decimal.NewFromInt(150000), ok: true},
		{name: "decimal string", raw: "150000.50", expected: decimal.RequireFromString("150000.50"), ok: true},
		{name: "whitespace padded", raw: "  150000  ", expected: decimal.NewFromInt(150000), ok: true},
		{name: "empty string", raw: "", expected: decimal.Zero, ok: false},
		{name: "not a number", raw: "not-a-number", expected: decimal.Zero, ok: false},
		{name: "negative", raw: "-500", expected: decimal.NewFromInt(-500), ok: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			amount, ok := ParseAmount(tc.raw)
			assert.Equal(t, tc.ok, ok)
			assert.True(t, amount.Equal(tc.expected), "got %s", amount)
		})
	}
}

func TestAmountStringUnmarshal(t *testing.T) {
	var payload struct {
		AmountPaid AmountString `json:"amount_paid"`
	}

	// Number on the wire.
	err := json.Unmarshal([]byte(`{"amount_paid": 150000.50}`), &payload)
	assert.NoError(t, err)
	assert.Equal(t, "150000.50", payload.AmountPaid.String())

	// String on the wire.
	err = json.Unmarshal([]byte(`{"amount_paid": "150000.50"}`), &payload)
	assert.NoError(t, err)
	assert.Equal(t, "150000.50", payload.AmountPaid.String())

	// Garbage decodes without error; normalization handles the fallback.
	err = json.Unmarshal([]byte(`{"amount_paid": "no idea"}`), &payload)
	assert.NoError(t, err)
	_, ok := ParseAmount(payload.AmountPaid.String())
	assert.False(t, ok)
}
