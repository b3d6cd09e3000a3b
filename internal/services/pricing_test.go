package services

import (
	"regexp"
	"testing"
	"time"

	"roti-erp/internal/apperr"
)

func TestComputeTotals(t *testing.T) {
	cases := []struct {
		name     string
		lines    []LineInput
		discount string
		total    string
		tax      string
		final    string
	}{
		{
			name: "plain and butter roti",
			lines: []LineInput{
				{ProductID: 1, Quantity: 3, UnitPrice: dec("8.00")},
				{ProductID: 2, Quantity: 2, UnitPrice: dec("12.00")},
			},
			discount: "0", total: "48", tax: "2.4", final: "50.4",
		},
		{
			name:     "discount is taken before tax",
			lines:    []LineInput{{ProductID: 1, Quantity: 10, UnitPrice: dec("10.00")}},
			discount: "20", total: "100", tax: "4", final: "84",
		},
		{
			name:     "tax rounds to cents",
			lines:    []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: dec("0.33")}},
			discount: "0", total: "0.33", tax: "0.02", final: "0.35",
		},
		{
			name:     "full discount",
			lines:    []LineInput{{ProductID: 1, Quantity: 2, UnitPrice: dec("5.00")}},
			discount: "10", total: "10", tax: "0", final: "0",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeTotals(tc.lines, dec(tc.discount), DefaultTaxRate)
			if err != nil {
				t.Fatalf("ComputeTotals: %v", err)
			}
			if !got.TotalAmount.Equal(dec(tc.total)) || !got.Tax.Equal(dec(tc.tax)) || !got.FinalAmount.Equal(dec(tc.final)) {
				t.Fatalf("got total=%s tax=%s final=%s, want %s/%s/%s",
					got.TotalAmount, got.Tax, got.FinalAmount, tc.total, tc.tax, tc.final)
			}
			// final = total - discount + tax
			if !got.FinalAmount.Equal(got.TotalAmount.Sub(got.Discount).Add(got.Tax)) {
				t.Fatalf("final does not reconcile: %+v", got)
			}
		})
	}
}

func TestComputeTotalsRejectsBadDiscount(t *testing.T) {
	lines := []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: dec("5.00")}}
	for _, d := range []string{"-1", "5.01"} {
		_, err := ComputeTotals(lines, dec(d), DefaultTaxRate)
		if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("discount %s: expected validation error, got %v", d, err)
		}
	}
}

func TestValidateLines(t *testing.T) {
	if err := ValidateLines(nil); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("empty lines: got %v", err)
	}
	err := ValidateLines([]LineInput{{ProductID: 0, Quantity: 0, UnitPrice: dec("-1")}})
	e, ok := apperr.As(err)
	if !ok || len(e.Details) != 3 {
		t.Fatalf("expected 3 field errors, got %v", err)
	}
	if e.Details[0].Field != "items[0].productId" {
		t.Fatalf("unexpected field %q", e.Details[0].Field)
	}
}

func TestNewDocumentNumber(t *testing.T) {
	now := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	n := NewDocumentNumber("ORD", now)
	if !regexp.MustCompile(`^ORD-20260309-[0-9A-F]{10}$`).MatchString(n) {
		t.Fatalf("unexpected number %q", n)
	}
	if n == NewDocumentNumber("ORD", now) {
		t.Fatalf("expected distinct numbers")
	}
}
