package ledger

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/defterapp/defter-core/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// Pricing holds the derived monetary columns of a line, in minor units.
type Pricing struct {
	// UnitGross is the per-unit price after tax and discount.
	UnitGross int64
	// Total is the gross total for the full amount.
	Total int64
}

// ComputePricing derives the stored price columns from the raw inputs:
//
//	total = round(net * amount * (1 + tax/100) * (1 - discount/100))
//
// The math runs in fixed-point decimals and rounds half away from zero at
// the end, so repeated postings of the same inputs always land on the same
// minor-unit totals.
func ComputePricing(netPrice, amount, taxPercent, discountPercent int64) (Pricing, error) {
	if netPrice < 0 {
		return Pricing{}, pkgerrors.New(pkgerrors.CodeValidation, "net price must not be negative")
	}
	if amount <= 0 {
		return Pricing{}, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if taxPercent < 0 {
		return Pricing{}, pkgerrors.New(pkgerrors.CodeValidation, "tax percent must not be negative")
	}
	if discountPercent < 0 || discountPercent > 100 {
		return Pricing{}, pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be between 0 and 100")
	}

	net := decimal.NewFromInt(netPrice)
	taxFactor := decimal.NewFromInt(100 + taxPercent).Div(oneHundred)
	discountFactor := decimal.NewFromInt(100 - discountPercent).Div(oneHundred)

	unit := net.Mul(taxFactor).Mul(discountFactor)
	total := unit.Mul(decimal.NewFromInt(amount))

	return Pricing{
		UnitGross: unit.Round(0).IntPart(),
		Total:     total.Round(0).IntPart(),
	}, nil
}
