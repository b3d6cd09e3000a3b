package services

import (
	"fmt"
	"strings"
	"time"

	"roti-erp/internal/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate applies when no rate is configured.
var DefaultTaxRate = decimal.RequireFromString("0.05")

var hundred = decimal.NewFromInt(100)

// LineInput is one requested line of an order or POS sale.
type LineInput struct {
	ProductID uint            `json:"productId" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Total is Quantity x UnitPrice.
func (l LineInput) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals are the header amounts derived from the lines.
type Totals struct {
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Discount    decimal.Decimal `json:"discount"`
	Tax         decimal.Decimal `json:"tax"`
	FinalAmount decimal.Decimal `json:"finalAmount"`
}

// ValidateLines checks the shape of a line list before any lookup.
func ValidateLines(lines []LineInput) error {
	if len(lines) == 0 {
		return apperr.Field("items", "at least one item is required")
	}
	var details []apperr.FieldError
	for i, l := range lines {
		if l.ProductID == 0 {
			details = append(details, apperr.FieldError{Field: fmt.Sprintf("items[%d].productId", i), Message: "is required"})
		}
		if l.Quantity < 1 {
			details = append(details, apperr.FieldError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be at least 1"})
		}
		if l.UnitPrice.IsNegative() {
			details = append(details, apperr.FieldError{Field: fmt.Sprintf("items[%d].unitPrice", i), Message: "must not be negative"})
		}
	}
	if len(details) > 0 {
		return apperr.Validation("Validation failed", details...)
	}
	return nil
}

// ComputeTotals sums the lines, subtracts the flat discount and applies rate
// to the discounted subtotal. Tax is rounded to the minor unit.
func ComputeTotals(lines []LineInput, discount, rate decimal.Decimal) (Totals, error) {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	total = total.Round(2)
	discount = discount.Round(2)

	if discount.IsNegative() {
		return Totals{}, apperr.Field("discount", "must not be negative")
	}
	if discount.GreaterThan(total) {
		return Totals{}, apperr.Field("discount", "must not exceed the order total")
	}

	taxable := total.Sub(discount)
	tax := taxable.Mul(rate).Round(2)
	return Totals{
		TotalAmount: total,
		Discount:    discount,
		Tax:         tax,
		FinalAmount: taxable.Add(tax),
	}, nil
}

// NewDocumentNumber builds "<PREFIX>-YYYYMMDD-XXXXXXXX" from a random UUID.
// Uniqueness is enforced by the column index; callers retry on conflict.
func NewDocumentNumber(prefix string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), suffix)
}

// averageOf returns total/count rounded to cents, or zero for no rows.
func averageOf(total decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(count)).Round(2)
}
