package handler

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distributor-system/internal/database/models"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func testItem() models.Item {
	return models.Item{
		ID:               1,
		Name:             "Washing Soap",
		HSNCode:          "3401",
		ConversionFactor: "24",
		Price:            "100",
		GSTRatePercent:   "5",
		Stock:            "10",
	}
}

func TestToCoarseQuantity_BoxIsIdentity(t *testing.T) {
	got, err := toCoarseQuantity(dec(t, "3"), models.UnitBox, dec(t, "24"))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec(t, "3")))
}

func TestToCoarseQuantity_PiecesDivideByConversion(t *testing.T) {
	got, err := toCoarseQuantity(dec(t, "48"), models.UnitPiece, dec(t, "24"))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec(t, "2")))
}

func TestToCoarseQuantity_RejectsNonPositiveConversion(t *testing.T) {
	_, err := toCoarseQuantity(dec(t, "48"), models.UnitPiece, decimal.Zero)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errInvalidLine))
}

func TestToCoarseQuantity_RejectsUnknownUnit(t *testing.T) {
	_, err := toCoarseQuantity(dec(t, "1"), "CRATE", dec(t, "24"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errInvalidLine))
}

func TestComputeInvoice_PieceOrder(t *testing.T) {
	item := testItem()
	lines := []models.OrderLine{
		{OrderID: 1, ItemID: item.ID, Quantity: "48", Unit: models.UnitPiece},
	}

	comp, err := computeInvoice(lines, map[int64]models.Item{item.ID: item})
	require.NoError(t, err)

	assert.Equal(t, "200.00", comp.Taxable.StringFixed(2))
	assert.Equal(t, "10.00", comp.GST.StringFixed(2))
	assert.Equal(t, "210.00", comp.Total.StringFixed(2))
	assert.True(t, comp.StockDeltas[item.ID].Equal(dec(t, "2")))
}

func TestComputeInvoice_BoxOrder(t *testing.T) {
	item := testItem()
	lines := []models.OrderLine{
		{OrderID: 1, ItemID: item.ID, Quantity: "3", Unit: models.UnitBox},
	}

	comp, err := computeInvoice(lines, map[int64]models.Item{item.ID: item})
	require.NoError(t, err)

	assert.Equal(t, "300.00", comp.Taxable.StringFixed(2))
	assert.Equal(t, "15.00", comp.GST.StringFixed(2))
	assert.Equal(t, "315.00", comp.Total.StringFixed(2))
	assert.True(t, comp.StockDeltas[item.ID].Equal(dec(t, "3")))
}

func TestComputeInvoice_DuplicateLinesPricedIndependently(t *testing.T) {
	item := testItem()
	lines := []models.OrderLine{
		{OrderID: 1, ItemID: item.ID, Quantity: "1", Unit: models.UnitBox},
		{OrderID: 1, ItemID: item.ID, Quantity: "24", Unit: models.UnitPiece},
	}

	comp, err := computeInvoice(lines, map[int64]models.Item{item.ID: item})
	require.NoError(t, err)

	require.Len(t, comp.Lines, 2)
	assert.Equal(t, "200.00", comp.Taxable.StringFixed(2))
	// Both lines draw from the same item: deltas are summed.
	assert.True(t, comp.StockDeltas[item.ID].Equal(dec(t, "2")))
}

func TestComputeInvoice_TotalEqualsTaxablePlusGST(t *testing.T) {
	soap := testItem()
	biscuits := models.Item{
		ID:               2,
		Name:             "Biscuits",
		HSNCode:          "1905",
		ConversionFactor: "12",
		Price:            "99.50",
		GSTRatePercent:   "12",
	}
	lines := []models.OrderLine{
		{OrderID: 1, ItemID: soap.ID, Quantity: "7", Unit: models.UnitPiece},
		{OrderID: 1, ItemID: biscuits.ID, Quantity: "5", Unit: models.UnitBox},
		{OrderID: 1, ItemID: biscuits.ID, Quantity: "30", Unit: models.UnitPiece},
	}

	comp, err := computeInvoice(lines, map[int64]models.Item{
		soap.ID:     soap,
		biscuits.ID: biscuits,
	})
	require.NoError(t, err)

	assert.True(t, comp.Total.Equal(comp.Taxable.Add(comp.GST)))
	assert.True(t, comp.Taxable.GreaterThan(decimal.Zero))
	assert.True(t, comp.GST.GreaterThan(decimal.Zero))
}

func TestComputeInvoice_MissingItemFails(t *testing.T) {
	lines := []models.OrderLine{
		{OrderID: 1, ItemID: 99, Quantity: "1", Unit: models.UnitBox},
	}

	_, err := computeInvoice(lines, map[int64]models.Item{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errItemNotFound))
}

func TestComputeInvoice_RejectsNonPositiveQuantity(t *testing.T) {
	item := testItem()
	lines := []models.OrderLine{
		{OrderID: 1, ItemID: item.ID, Quantity: "0", Unit: models.UnitBox},
	}

	_, err := computeInvoice(lines, map[int64]models.Item{item.ID: item})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errInvalidLine))
}

func TestNewInvoiceNumber(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	number := newInvoiceNumber(now)

	assert.Regexp(t, `^INV-20260828-[0-9A-F]{8}$`, number)
	assert.NotEqual(t, number, newInvoiceNumber(now))
}
