package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentPathFor(t *testing.T) {
	path, err := PaymentPathFor(PaymentMethodPayOnVisit)
	assert.NoError(t, err)
	manual, ok := path.(ManualPath)
	assert.True(t, ok)
	assert.Equal(t, PaymentMethodPayOnVisit, manual.Method)

	path, err = PaymentPathFor(PaymentMethodBankTransfer)
	assert.NoError(t, err)
	_, ok = path.(ManualPath)
	assert.True(t, ok)

	path, err = PaymentPathFor(PaymentMethodPaperDigital)
	assert.NoError(t, err)
	_, ok = path.(ExternalInvoicePath)
	assert.True(t, ok)

	_, err = PaymentPathFor("cheque")
	assert.Error(t, err)
}

func TestManualPathConfirmationNote(t *testing.T) {
	assert.Equal(t,
		"Payment received on visit (cash)",
		ManualPath{Method: PaymentMethodPayOnVisit}.ConfirmationNote())
	assert.Equal(t,
		"Payment received via bank transfer",
		ManualPath{Method: PaymentMethodBankTransfer}.ConfirmationNote())
}

func TestCanonicalLabel(t *testing.T) {
	assert.Equal(t, "cash", PaymentMethodPayOnVisit.CanonicalLabel())
	assert.Equal(t, "bank_transfer", PaymentMethodBankTransfer.CanonicalLabel())
	assert.Equal(t, "paper_digital", PaymentMethodPaperDigital.CanonicalLabel())
}

func TestPaymentMethodValidate(t *testing.T) {
	assert.NoError(t, PaymentMethodBankTransfer.Validate())
	assert.NoError(t, PaymentMethodPayOnVisit.Validate())
	assert.NoError(t, PaymentMethodPaperDigital.Validate())
	assert.Error(t, PaymentMethodType("crypto").Validate())
	assert.Error(t, PaymentMethodType("").Validate())
}
