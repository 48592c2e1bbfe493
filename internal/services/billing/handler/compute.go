package handler

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"distributor-system/internal/database/models"
)

var (
	errOrderNotFound        = errors.New("order not found")
	errOrderAlreadyApproved = errors.New("order already approved")
	errItemNotFound         = errors.New("item not found")
	errInsufficientStock    = errors.New("insufficient stock")
	errInvalidLine          = errors.New("invalid order line")
)

var oneHundred = decimal.NewFromInt(100)

func decimalFromStored(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("stored amount %q is not a decimal", s)
	}
	return d, nil
}

type lineComputation struct {
	Line      models.OrderLine
	Item      models.Item
	Canonical decimal.Decimal
	Amount    decimal.Decimal
	Tax       decimal.Decimal
}

type invoiceComputation struct {
	Lines   []lineComputation
	Taxable decimal.Decimal
	GST     decimal.Decimal
	Total   decimal.Decimal
	// StockDeltas aggregates canonical quantities per item, so duplicate
	// lines for the same item decrement stock once with their sum.
	StockDeltas map[int64]decimal.Decimal
}

// toCoarseQuantity converts a line quantity into coarse (BOX) units, the
// unit items are priced and stocked in. Piece quantities are divided by
// the item's pieces-per-box conversion factor.
func toCoarseQuantity(qty decimal.Decimal, unit string, conversionFactor decimal.Decimal) (decimal.Decimal, error) {
	switch unit {
	case models.UnitBox:
		return qty, nil
	case models.UnitPiece:
		if conversionFactor.Sign() <= 0 {
			return decimal.Zero, fmt.Errorf("%w: conversion factor must be greater than zero", errInvalidLine)
		}
		return qty.Div(conversionFactor), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unit must be BOX or PCS", errInvalidLine)
	}
}

// computeInvoice prices every order line in coarse units and accumulates
// the invoice totals. It performs no writes; the caller applies the stock
// deltas and persists the invoice inside one transaction.
func computeInvoice(lines []models.OrderLine, items map[int64]models.Item) (*invoiceComputation, error) {
	comp := &invoiceComputation{
		Taxable:     decimal.Zero,
		GST:         decimal.Zero,
		StockDeltas: make(map[int64]decimal.Decimal, len(lines)),
	}

	for _, line := range lines {
		item, ok := items[line.ItemID]
		if !ok {
			return nil, fmt.Errorf("%w: item %d", errItemNotFound, line.ItemID)
		}

		qty, err := decimal.NewFromString(line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("%w: quantity %q is not a decimal", errInvalidLine, line.Quantity)
		}
		if qty.Sign() <= 0 {
			return nil, fmt.Errorf("%w: quantity must be greater than zero", errInvalidLine)
		}

		conversionFactor, err := decimal.NewFromString(item.ConversionFactor)
		if err != nil {
			return nil, fmt.Errorf("%w: conversion factor %q is not a decimal", errInvalidLine, item.ConversionFactor)
		}

		canonical, err := toCoarseQuantity(qty, line.Unit, conversionFactor)
		if err != nil {
			return nil, err
		}

		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return nil, fmt.Errorf("%w: price %q is not a decimal", errInvalidLine, item.Price)
		}
		gstRate, err := decimal.NewFromString(item.GSTRatePercent)
		if err != nil {
			return nil, fmt.Errorf("%w: gst rate %q is not a decimal", errInvalidLine, item.GSTRatePercent)
		}

		amount := canonical.Mul(price)
		tax := amount.Mul(gstRate).Div(oneHundred)

		comp.Taxable = comp.Taxable.Add(amount)
		comp.GST = comp.GST.Add(tax)
		comp.StockDeltas[item.ID] = comp.StockDeltas[item.ID].Add(canonical)
		comp.Lines = append(comp.Lines, lineComputation{
			Line:      line,
			Item:      item,
			Canonical: canonical,
			Amount:    amount,
			Tax:       tax,
		})
	}

	comp.Total = comp.Taxable.Add(comp.GST)
	return comp, nil
}
