package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePositiveQuantity(t *testing.T) {
	got, err := parsePositiveQuantity("2.5")
	require.NoError(t, err)
	assert.Equal(t, "2.5", got.String())

	_, err = parsePositiveQuantity("0")
	assert.Error(t, err)

	_, err = parsePositiveQuantity("-3")
	assert.Error(t, err)

	_, err = parsePositiveQuantity("a dozen")
	assert.Error(t, err)
}

func TestValidateUnit(t *testing.T) {
	assert.NoError(t, validateUnit("BOX"))
	assert.NoError(t, validateUnit("PCS"))
	assert.Error(t, validateUnit("box"))
	assert.Error(t, validateUnit("CRATE"))
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []int64{3, 1, 2}, uniqueIDs([]int64{3, 1, 3, 2, 1}))
	assert.Empty(t, uniqueIDs(nil))
}
