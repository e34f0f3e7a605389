package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cowork-api/internal/domain/enum"
	"github.com/sangkips/cowork-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func TestLineTotalRoundsToMinorUnit(t *testing.T) {
	assertAmount(t, "100000", LineTotal(2, d("50000"), "CLP"), "clp")
	assertAmount(t, "32", LineTotal(3, d("10.5"), "CLP"), "clp half up")
	assertAmount(t, "31.50", LineTotal(3, d("10.5"), "USD"), "usd")
	assertAmount(t, "0.67", LineTotal(2, d("0.333"), "EUR"), "eur")
}

func TestSummarizePercentageDiscount(t *testing.T) {
	items := []Item{{Description: "Hot desk monthly", Quantity: 1, UnitPrice: d("100000")}}

	s, err := Summarize(items, enum.DiscountTypePercentage, d("10"), "CLP")
	require.NoError(t, err)
	assertAmount(t, "100000", s.Subtotal, "subtotal")
	assertAmount(t, "10000", s.DiscountAmount, "discount")
	assertAmount(t, "90000", s.TaxableAmount, "taxable")
	assertAmount(t, "17100", s.Taxes, "taxes")
	assertAmount(t, "107100", s.Total, "total")
}

func TestSummarizeFixedDiscount(t *testing.T) {
	items := []Item{{Description: "Meeting room pack", Quantity: 2, UnitPrice: d("50000")}}

	s, err := Summarize(items, enum.DiscountTypeFixed, d("20000"), "CLP")
	require.NoError(t, err)
	assertAmount(t, "100000", s.Subtotal, "subtotal")
	assertAmount(t, "20000", s.DiscountAmount, "discount")
	assertAmount(t, "80000", s.TaxableAmount, "taxable")
	assertAmount(t, "15200", s.Taxes, "taxes")
	assertAmount(t, "95200", s.Total, "total")
}

func TestSummarizeFullPercentageDiscount(t *testing.T) {
	items := []Item{{Description: "Private office", Quantity: 3, UnitPrice: d("45000")}}

	s, err := Summarize(items, enum.DiscountTypePercentage, d("100"), "CLP")
	require.NoError(t, err)
	assert.True(t, s.DiscountAmount.Equal(s.Subtotal))
	assert.True(t, s.TaxableAmount.IsZero())
	assert.True(t, s.Taxes.IsZero())
	assert.True(t, s.Total.IsZero())
}

func TestSummarizeZeroDiscountAddsIVA(t *testing.T) {
	cases := []struct {
		currency string
		price    string
	}{
		{"CLP", "1"},
		{"CLP", "99"},
		{"CLP", "100"},
		{"CLP", "2500"},
		{"CLP", "1234567"},
		{"USD", "0.05"},
		{"USD", "19.99"},
		{"EUR", "0.01"},
	}
	for _, tc := range cases {
		items := []Item{
			{Description: "a", Quantity: 1, UnitPrice: d(tc.price)},
			{Description: "b", Quantity: 3, UnitPrice: d(tc.price)},
		}
		s, err := Summarize(items, enum.DiscountTypeFixed, decimal.Zero, tc.currency)
		require.NoError(t, err)
		assert.Truef(t, s.Total.Equal(s.Subtotal.Mul(d("1.19"))),
			"%s %s: total %s, subtotal %s", tc.price, tc.currency, s.Total, s.Subtotal)
	}
}

func TestSummarizeKeepsDerivedPrecision(t *testing.T) {
	items := []Item{{Description: "Day pass", Quantity: 1, UnitPrice: d("99")}}

	s, err := Summarize(items, enum.DiscountTypeFixed, decimal.Zero, "CLP")
	require.NoError(t, err)
	assertAmount(t, "18.81", s.Taxes, "taxes")
	assertAmount(t, "117.81", s.Total, "total")

	s, err = Summarize(items, enum.DiscountTypePercentage, d("12.5"), "CLP")
	require.NoError(t, err)
	assertAmount(t, "12.375", s.DiscountAmount, "discount")
	assertAmount(t, "86.625", s.TaxableAmount, "taxable")
	assertAmount(t, "16.45875", s.Taxes, "taxes")
	assertAmount(t, "103.08375", s.Total, "total")
}

func TestSummarizeRejectsDiscountAboveSubtotal(t *testing.T) {
	items := []Item{{Description: "Desk", Quantity: 2, UnitPrice: d("50000")}}

	_, err := Summarize(items, enum.DiscountTypeFixed, d("150000"), "CLP")
	assert.ErrorIs(t, err, ErrDiscountExceedsSubtotal)

	_, err = Summarize(items, enum.DiscountTypePercentage, d("100.5"), "CLP")
	assert.ErrorIs(t, err, ErrDiscountExceedsSubtotal)

	_, err = Summarize(items, enum.DiscountTypeFixed, d("-1"), "CLP")
	assert.ErrorIs(t, err, ErrNegativeDiscount)
}

func TestComputeSubtotalIsPure(t *testing.T) {
	items := []Item{
		{Description: "a", Quantity: 3, UnitPrice: d("19.99")},
		{Description: "b", Quantity: 1, UnitPrice: d("0.01")},
	}
	first := ComputeSubtotal(items, "USD")
	second := ComputeSubtotal(items, "USD")
	assert.True(t, first.Equal(second))
	assertAmount(t, "59.98", first, "subtotal")
}

func TestComputeTaxes(t *testing.T) {
	assertAmount(t, "23.4555", ComputeTaxes(d("123.45")), "usd")
	assertAmount(t, "189.81", ComputeTaxes(d("999")), "clp")
	assert.True(t, ComputeTaxes(d("-5")).IsZero())
}

func TestComputeTotal(t *testing.T) {
	assertAmount(t, "117.81", ComputeTotal(d("99"), d("18.81")), "total")
}

func TestIsEditable(t *testing.T) {
	for _, status := range enum.AllQuotationStatuses() {
		assert.Equal(t, status == enum.QuotationStatusDraft, IsEditable(status), status)
	}
}

func fieldNames(errs []apperror.FieldError) []string {
	names := make([]string, 0, len(errs))
	for _, e := range errs {
		names = append(names, e.Field)
	}
	return names
}

func TestValidate(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	clientID := uuid.New()
	validUntil := now.Add(30 * 24 * time.Hour)

	valid := Draft{
		Title:         "Annual membership",
		ClientID:      &clientID,
		Currency:      "CLP",
		Items:         []Item{{Description: "Desk", Quantity: 12, UnitPrice: d("90000")}},
		DiscountType:  enum.DiscountTypePercentage,
		DiscountValue: d("5"),
		ValidUntil:    &validUntil,
	}
	assert.Empty(t, Validate(valid, now))

	t.Run("missing header fields", func(t *testing.T) {
		draft := valid
		draft.Title = "  "
		draft.ClientID = nil
		draft.ValidUntil = nil
		assert.ElementsMatch(t, []string{"title", "client_id", "valid_until"}, fieldNames(Validate(draft, now)))
	})

	t.Run("valid until must be strictly in the future", func(t *testing.T) {
		draft := valid
		draft.ValidUntil = &now
		assert.Equal(t, []string{"valid_until"}, fieldNames(Validate(draft, now)))
	})

	t.Run("empty items", func(t *testing.T) {
		draft := valid
		draft.Items = nil
		assert.Equal(t, []string{"items"}, fieldNames(Validate(draft, now)))
	})

	t.Run("bad item lines", func(t *testing.T) {
		draft := valid
		draft.DiscountValue = decimal.Zero
		draft.Items = []Item{
			{Description: "ok", Quantity: 1, UnitPrice: d("10")},
			{Description: "", Quantity: 0, UnitPrice: d("-1")},
		}
		assert.ElementsMatch(t,
			[]string{"items[1].description", "items[1].quantity", "items[1].unit_price"},
			fieldNames(Validate(draft, now)))
	})

	t.Run("unit price finer than the currency allows", func(t *testing.T) {
		draft := valid
		draft.DiscountValue = decimal.Zero
		draft.Items = []Item{
			{Description: "Desk", Quantity: 1, UnitPrice: d("90000.5")},
			{Description: "Locker", Quantity: 1, UnitPrice: d("5000.00")},
		}
		assert.Equal(t, []string{"items[0].unit_price"}, fieldNames(Validate(draft, now)))

		draft.Currency = "USD"
		draft.Items = []Item{{Description: "Desk", Quantity: 2, UnitPrice: d("0.333")}}
		assert.Equal(t, []string{"items[0].unit_price"}, fieldNames(Validate(draft, now)))

		draft.Items = []Item{{Description: "Desk", Quantity: 2, UnitPrice: d("0.33")}}
		assert.Empty(t, Validate(draft, now))
	})

	t.Run("discount finer than allowed", func(t *testing.T) {
		draft := valid
		draft.DiscountValue = d("12.345")
		assert.Equal(t, []string{"discount_value"}, fieldNames(Validate(draft, now)))

		draft.DiscountValue = d("12.34")
		assert.Empty(t, Validate(draft, now))

		draft.DiscountType = enum.DiscountTypeFixed
		draft.DiscountValue = d("100.5")
		assert.Equal(t, []string{"discount_value"}, fieldNames(Validate(draft, now)))
	})

	t.Run("percentage above 100", func(t *testing.T) {
		draft := valid
		draft.DiscountValue = d("101")
		assert.Equal(t, []string{"discount_value"}, fieldNames(Validate(draft, now)))
	})

	t.Run("fixed discount above subtotal", func(t *testing.T) {
		draft := valid
		draft.Items = []Item{{Description: "Desk", Quantity: 2, UnitPrice: d("50000")}}
		draft.DiscountType = enum.DiscountTypeFixed
		draft.DiscountValue = d("150000")
		errs := Validate(draft, now)
		require.Len(t, errs, 1)
		assert.Equal(t, "discount_value", errs[0].Field)
		assert.Equal(t, "Discount cannot exceed the subtotal", errs[0].Message)
	})

	t.Run("unknown discount type", func(t *testing.T) {
		draft := valid
		draft.DiscountType = enum.DiscountType("BOGO")
		assert.Equal(t, []string{"discount_type"}, fieldNames(Validate(draft, now)))
	})
}
