package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/sangkips/cowork-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// Draft is a quotation as submitted for create or update
type Draft struct {
	Title         string
	ClientID      *uuid.UUID
	Currency      string
	Items         []Item
	DiscountType  enum.DiscountType
	DiscountValue decimal.Decimal
	ValidUntil    *time.Time
}

// Validate checks a draft before it is persisted. An empty result means the draft is valid.
func Validate(d Draft, now time.Time) []apperror.FieldError {
	var errs []apperror.FieldError

	if strings.TrimSpace(d.Title) == "" {
		errs = append(errs, apperror.FieldError{Field: "title", Message: "Title is required"})
	}
	if d.ClientID == nil || *d.ClientID == uuid.Nil {
		errs = append(errs, apperror.FieldError{Field: "client_id", Message: "Client is required"})
	}
	if d.ValidUntil == nil {
		errs = append(errs, apperror.FieldError{Field: "valid_until", Message: "Valid until date is required"})
	} else if !d.ValidUntil.After(now) {
		errs = append(errs, apperror.FieldError{Field: "valid_until", Message: "Valid until date must be in the future"})
	}

	return append(errs, ValidateLines(d.Items, d.DiscountType, d.DiscountValue, d.Currency)...)
}

// ValidateLines checks the items and discount of a quotation
func ValidateLines(items []Item, discountType enum.DiscountType, discountValue decimal.Decimal, currency string) []apperror.FieldError {
	var errs []apperror.FieldError

	if len(items) == 0 {
		errs = append(errs, apperror.FieldError{Field: "items", Message: "At least one item is required"})
	}
	for i, it := range items {
		if strings.TrimSpace(it.Description) == "" {
			errs = append(errs, apperror.FieldError{Field: fmt.Sprintf("items[%d].description", i), Message: "Description is required"})
		}
		if it.Quantity <= 0 {
			errs = append(errs, apperror.FieldError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "Quantity must be greater than zero"})
		}
		switch {
		case it.UnitPrice.IsNegative():
			errs = append(errs, apperror.FieldError{Field: fmt.Sprintf("items[%d].unit_price", i), Message: "Unit price cannot be negative"})
		case !fitsPlaces(it.UnitPrice, MinorUnits(currency)):
			errs = append(errs, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].unit_price", i),
				Message: fmt.Sprintf("Unit price allows at most %d decimal places", MinorUnits(currency)),
			})
		}
	}

	if discountType != "" && !discountType.IsValid() {
		errs = append(errs, apperror.FieldError{Field: "discount_type", Message: "Discount type must be FIXED or PERCENTAGE"})
		return errs
	}

	switch {
	case discountValue.IsNegative():
		errs = append(errs, apperror.FieldError{Field: "discount_value", Message: "Discount cannot be negative"})
	case discountType == enum.DiscountTypePercentage && discountValue.GreaterThan(hundred):
		errs = append(errs, apperror.FieldError{Field: "discount_value", Message: "Percentage discount cannot exceed 100"})
	case discountType == enum.DiscountTypePercentage && !fitsPlaces(discountValue, PercentagePlaces):
		errs = append(errs, apperror.FieldError{Field: "discount_value", Message: fmt.Sprintf("Percentage allows at most %d decimal places", PercentagePlaces)})
	case discountType != enum.DiscountTypePercentage && !fitsPlaces(discountValue, MinorUnits(currency)):
		errs = append(errs, apperror.FieldError{Field: "discount_value", Message: fmt.Sprintf("Discount allows at most %d decimal places", MinorUnits(currency))})
	default:
		subtotal := ComputeSubtotal(items, currency)
		if _, err := ComputeDiscount(subtotal, discountType, discountValue); err != nil {
			errs = append(errs, apperror.FieldError{Field: "discount_value", Message: "Discount cannot exceed the subtotal"})
		}
	}

	return errs
}

// PercentagePlaces is the precision accepted for percentage discounts
const PercentagePlaces int32 = 2

// fitsPlaces reports whether v is exactly representable with the given decimal places
func fitsPlaces(v decimal.Decimal, places int32) bool {
	return v.Equal(v.Round(places))
}
