// Package pricing computes quotation totals and validates quotation drafts.
//
// Line totals are rounded to the minor unit of the quotation currency. The
// discount, taxes and total derived from them keep full decimal precision.
// Tax is a fixed rate applied after the discount.
package pricing

import (
	"errors"
	"strings"

	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// TaxRate is the IVA rate applied to the taxable amount
var TaxRate = decimal.RequireFromString("0.19")

var hundred = decimal.NewFromInt(100)

var (
	ErrDiscountExceedsSubtotal = errors.New("discount exceeds subtotal")
	ErrNegativeDiscount        = errors.New("discount cannot be negative")
)

// Item is a single quotation line
type Item struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Summary holds the derived amounts of a quotation
type Summary struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount"`
	Taxes          decimal.Decimal `json:"taxes"`
	Total          decimal.Decimal `json:"total"`
}

// MinorUnits returns the number of decimal places used by a currency
func MinorUnits(currency string) int32 {
	switch strings.ToUpper(currency) {
	case "CLP", "JPY":
		return 0
	default:
		return 2
	}
}

// LineTotal is quantity × unit price rounded to the currency's minor unit
func LineTotal(quantity int, unitPrice decimal.Decimal, currency string) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(MinorUnits(currency))
}

// ComputeSubtotal sums the rounded line totals
func ComputeSubtotal(items []Item, currency string) decimal.Decimal {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(LineTotal(it.Quantity, it.UnitPrice, currency))
	}
	return subtotal
}

// ComputeDiscount resolves the discount amount for a subtotal. The result
// is never clamped: a discount larger than the subtotal is an error.
func ComputeDiscount(subtotal decimal.Decimal, discountType enum.DiscountType, value decimal.Decimal) (decimal.Decimal, error) {
	if value.IsNegative() {
		return decimal.Zero, ErrNegativeDiscount
	}

	amount := value
	if discountType == enum.DiscountTypePercentage {
		amount = subtotal.Mul(value).Div(hundred)
	}

	if amount.GreaterThan(subtotal) {
		return decimal.Zero, ErrDiscountExceedsSubtotal
	}
	return amount, nil
}

// ComputeTaxes applies TaxRate to the taxable amount without rounding
func ComputeTaxes(taxable decimal.Decimal) decimal.Decimal {
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	return taxable.Mul(TaxRate)
}

// ComputeTotal is the taxable amount plus taxes
func ComputeTotal(taxable, taxes decimal.Decimal) decimal.Decimal {
	return taxable.Add(taxes)
}

// Summarize derives every amount of a quotation from its lines and discount
func Summarize(items []Item, discountType enum.DiscountType, discountValue decimal.Decimal, currency string) (Summary, error) {
	subtotal := ComputeSubtotal(items, currency)

	discount, err := ComputeDiscount(subtotal, discountType, discountValue)
	if err != nil {
		return Summary{}, err
	}

	taxable := decimal.Max(decimal.Zero, subtotal.Sub(discount))
	taxes := ComputeTaxes(taxable)

	return Summary{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		Taxes:          taxes,
		Total:          ComputeTotal(taxable, taxes),
	}, nil
}

// IsEditable reports whether lines, discount and title may still change
func IsEditable(status enum.QuotationStatus) bool {
	return status == enum.QuotationStatusDraft
}
