// Package ledger holds the sale arithmetic and sale number allocation.
// Nothing here touches the database directly.
package ledger

import (
	"fmt"

	"go-vendas-api/internal/model"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits kept for every amount.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// MaxAmount is the largest value a numeric(12,2) money column can hold.
var MaxAmount = decimal.RequireFromString("9999999999.99")

func checkCeiling(field string, amount decimal.Decimal) error {
	if amount.GreaterThan(MaxAmount) {
		return NewValidationError(field, "%s exceeds the maximum amount %s",
			amount.StringFixed(MoneyPlaces), MaxAmount.StringFixed(MoneyPlaces))
	}
	return nil
}

// RoundMoney rounds half-up to cents. decimal.Round rounds half away from
// zero, which is half-up for the non-negative amounts the ledger stores.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// PercentDiscount returns percent% of gross, rounded half-up to cents.
func PercentDiscount(gross, percent decimal.Decimal) (decimal.Decimal, error) {
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return decimal.Zero, NewValidationError("discount_percent", "must be between 0 and 100, got %s", percent.String())
	}
	return RoundMoney(gross.Mul(percent).Div(hundred)), nil
}

// LineTotal computes quantity*unitPrice-discount. A discount larger than the
// gross line value is rejected rather than clamped.
func LineTotal(quantity int, unitPrice, discount decimal.Decimal) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, NewValidationError("quantity", "must be greater than zero, got %d", quantity)
	}
	if unitPrice.IsNegative() {
		return decimal.Zero, NewValidationError("unit_price", "must not be negative, got %s", unitPrice.StringFixed(MoneyPlaces))
	}
	if discount.IsNegative() {
		return decimal.Zero, NewValidationError("discount", "must not be negative, got %s", discount.StringFixed(MoneyPlaces))
	}

	gross := RoundMoney(unitPrice).Mul(decimal.NewFromInt(int64(quantity)))
	if err := checkCeiling("total_price", gross); err != nil {
		return decimal.Zero, err
	}
	discount = RoundMoney(discount)
	if discount.GreaterThan(gross) {
		return decimal.Zero, NewValidationError("discount", "%s exceeds item total %s",
			discount.StringFixed(MoneyPlaces), gross.StringFixed(MoneyPlaces))
	}
	return RoundMoney(gross.Sub(discount)), nil
}

// Recalculate recomputes every derived amount of sale from its in-memory
// items: each item's TotalPrice, then Subtotal and Total. It must run after
// any change to the item set and inside the same transaction that persists
// the result.
func Recalculate(sale *model.Sale) error {
	headers := []struct {
		name   string
		amount decimal.Decimal
	}{
		{"shipping", sale.Shipping},
		{"discount_total", sale.DiscountTotal},
		{"tax_total", sale.TaxTotal},
	}
	for _, h := range headers {
		if h.amount.IsNegative() {
			return NewValidationError(h.name, "must not be negative, got %s", h.amount.StringFixed(MoneyPlaces))
		}
		if err := checkCeiling(h.name, h.amount); err != nil {
			return err
		}
	}

	subtotal := decimal.Zero
	for i := range sale.Items {
		item := &sale.Items[i]
		lineTotal, err := LineTotal(item.Quantity, item.UnitPrice, item.Discount)
		if err != nil {
			if ve, ok := err.(*ValidationError); ok {
				ve.Field = fmt.Sprintf("items[%d].%s", i, ve.Field)
			}
			return err
		}
		item.UnitPrice = RoundMoney(item.UnitPrice)
		item.Discount = RoundMoney(item.Discount)
		item.TotalPrice = lineTotal
		subtotal = subtotal.Add(lineTotal)
	}
	if err := checkCeiling("subtotal", subtotal); err != nil {
		return err
	}

	sale.Shipping = RoundMoney(sale.Shipping)
	sale.DiscountTotal = RoundMoney(sale.DiscountTotal)
	sale.TaxTotal = RoundMoney(sale.TaxTotal)
	sale.Subtotal = subtotal

	total := subtotal.Sub(sale.DiscountTotal).Add(sale.TaxTotal).Add(sale.Shipping)
	if total.IsNegative() {
		return NewValidationError("discount_total", "%s exceeds the sale amount", sale.DiscountTotal.StringFixed(MoneyPlaces))
	}
	if err := checkCeiling("total", total); err != nil {
		return err
	}
	sale.Total = total
	return nil
}

// RequireItems enforces that a sale about to be committed has at least one
// line item.
func RequireItems(sale *model.Sale) error {
	if len(sale.Items) == 0 {
		return NewValidationError("items", "a sale needs at least one item")
	}
	return nil
}
