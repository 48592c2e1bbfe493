package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetOutstanding_EmptyRetailerIsZero(t *testing.T) {
	got, err := netOutstanding("", "")
	require.NoError(t, err)
	assert.Equal(t, "0.00", got)
}

func TestNetOutstanding_InvoicedOnly(t *testing.T) {
	got, err := netOutstanding("210", "")
	require.NoError(t, err)
	assert.Equal(t, "210.00", got)
}

func TestNetOutstanding_PartialPayment(t *testing.T) {
	got, err := netOutstanding("210", "50.5")
	require.NoError(t, err)
	assert.Equal(t, "159.50", got)
}

func TestNetOutstanding_OverpaymentGoesNegative(t *testing.T) {
	got, err := netOutstanding("210", "300")
	require.NoError(t, err)
	assert.Equal(t, "-90.00", got)
}

func TestNetOutstanding_RejectsGarbage(t *testing.T) {
	_, err := netOutstanding("not-a-number", "")
	assert.Error(t, err)
}

func TestValidatePaymentMode(t *testing.T) {
	assert.NoError(t, validatePaymentMode("Cash"))
	assert.NoError(t, validatePaymentMode("UPI"))
	assert.NoError(t, validatePaymentMode("Bank"))
	assert.Error(t, validatePaymentMode("Cheque"))
	assert.Error(t, validatePaymentMode(""))
}

func TestValidatePaymentAmount(t *testing.T) {
	got, err := validatePaymentAmount("100.5")
	require.NoError(t, err)
	assert.Equal(t, "100.50", got)

	_, err = validatePaymentAmount("0")
	assert.Error(t, err)

	_, err = validatePaymentAmount("-5")
	assert.Error(t, err)

	_, err = validatePaymentAmount("lots")
	assert.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "210.00", formatAmount("210"))
	assert.Equal(t, "0.00", formatAmount(""))
}
