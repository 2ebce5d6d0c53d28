package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func TestMergeLinesSumsDuplicates(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	merged := MergeLines([]LineRequest{
		{ProductID: a, Quantity: 1},
		{ProductID: b, Quantity: 2},
		{ProductID: a, Quantity: 3},
	})

	if len(merged) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(merged))
	}
	if merged[0].ProductID != a || merged[0].Quantity != 4 {
		t.Errorf("unexpected first line %+v", merged[0])
	}
	if merged[1].ProductID != b || merged[1].Quantity != 2 {
		t.Errorf("unexpected second line %+v", merged[1])
	}
}

// Merging never changes the total quantity per product
func TestProperty_MergeLinesPreservesQuantities(t *testing.T) {
	products := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	properties := gopter.NewProperties(nil)

	properties.Property("per-product quantity sums survive merging", prop.ForAll(
		func(picks []int, quantities []int) bool {
			var lines []LineRequest
			want := map[uuid.UUID]int{}
			for i := 0; i < len(picks) && i < len(quantities); i++ {
				id := products[picks[i]%len(products)]
				lines = append(lines, LineRequest{ProductID: id, Quantity: quantities[i]})
				want[id] += quantities[i]
			}

			merged := MergeLines(lines)
			if len(merged) != len(want) {
				return false
			}
			for _, line := range merged {
				if want[line.ProductID] != line.Quantity {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 100)),
		gen.SliceOf(gen.IntRange(1, 10)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCartLineSubtotal(t *testing.T) {
	line := CartLine{Price: decimal.RequireFromString("299.99"), Quantity: 3}
	if !line.Subtotal().Equal(decimal.RequireFromString("899.97")) {
		t.Fatalf("unexpected subtotal %s", line.Subtotal())
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, status := range OrderStatuses {
		if !status.Valid() {
			t.Errorf("%s should be valid", status)
		}
	}
	if OrderStatus("refunded").Valid() {
		t.Error("refunded should not be valid")
	}
}

func TestProductOnSale(t *testing.T) {
	original := decimal.RequireFromString("399.99")
	p := Product{Price: decimal.RequireFromString("299.99"), OriginalPrice: &original}
	if !p.OnSale() {
		t.Error("expected product to be on sale")
	}
	p.OriginalPrice = nil
	if p.OnSale() {
		t.Error("product without original price is not on sale")
	}
}
