package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateItemInput(t *testing.T) {
	assert.NoError(t, validateItemInput("24", "100", "5"))
	assert.NoError(t, validateItemInput("12.5", "99.50", "0"))

	assert.Error(t, validateItemInput("0", "100", "5"))
	assert.Error(t, validateItemInput("-24", "100", "5"))
	assert.Error(t, validateItemInput("24", "-1", "5"))
	assert.Error(t, validateItemInput("24", "100", "-5"))
	assert.Error(t, validateItemInput("a box", "100", "5"))
	assert.Error(t, validateItemInput("24", "free", "5"))
	assert.Error(t, validateItemInput("24", "100", "some"))
}

func TestValidateCreditLimit(t *testing.T) {
	got, err := validateCreditLimit("")
	require.NoError(t, err)
	assert.Equal(t, "0.00", got)

	got, err = validateCreditLimit("50000")
	require.NoError(t, err)
	assert.Equal(t, "50000.00", got)

	_, err = validateCreditLimit("-1")
	assert.Error(t, err)

	_, err = validateCreditLimit("plenty")
	assert.Error(t, err)
}
