package ledger

import (
	"testing"

	pkgerrors "github.com/defterapp/defter-core/pkg/errors"
)

func TestComputePricing(t *testing.T) {
	cases := []struct {
		name      string
		net       int64
		amount    int64
		tax       int64
		discount  int64
		wantUnit  int64
		wantTotal int64
	}{
		{name: "plain tax", net: 100, amount: 2, tax: 20, discount: 0, wantUnit: 120, wantTotal: 240},
		{name: "no tax", net: 100, amount: 3, tax: 0, discount: 0, wantUnit: 100, wantTotal: 300},
		{name: "discount", net: 100, amount: 1, tax: 20, discount: 10, wantUnit: 108, wantTotal: 108},
		{name: "full discount", net: 100, amount: 5, tax: 20, discount: 100, wantUnit: 0, wantTotal: 0},
		{name: "rounds up", net: 333, amount: 1, tax: 18, discount: 0, wantUnit: 393, wantTotal: 393},
		{name: "half rounds away", net: 50, amount: 1, tax: 1, discount: 0, wantUnit: 51, wantTotal: 51},
		{name: "total rounds once", net: 33, amount: 3, tax: 18, discount: 0, wantUnit: 39, wantTotal: 117},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pricing, err := ComputePricing(tc.net, tc.amount, tc.tax, tc.discount)
			if err != nil {
				t.Fatalf("compute: %v", err)
			}
			if pricing.UnitGross != tc.wantUnit {
				t.Fatalf("unit gross: want %d, got %d", tc.wantUnit, pricing.UnitGross)
			}
			if pricing.Total != tc.wantTotal {
				t.Fatalf("total: want %d, got %d", tc.wantTotal, pricing.Total)
			}
		})
	}
}

func TestComputePricingValidation(t *testing.T) {
	cases := []struct {
		name     string
		net      int64
		amount   int64
		tax      int64
		discount int64
	}{
		{name: "negative net", net: -1, amount: 1, tax: 20},
		{name: "zero amount", net: 100, amount: 0, tax: 20},
		{name: "negative amount", net: 100, amount: -2, tax: 20},
		{name: "negative tax", net: 100, amount: 1, tax: -1},
		{name: "negative discount", net: 100, amount: 1, tax: 20, discount: -1},
		{name: "discount over 100", net: 100, amount: 1, tax: 20, discount: 101},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputePricing(tc.net, tc.amount, tc.tax, tc.discount)
			if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
