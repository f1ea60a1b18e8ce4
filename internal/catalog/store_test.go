package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/pharmakart/go-pharma-checkout/internal/pricing"
)

func TestPutGet_RoundTrip(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "catalog")
	ctx := context.Background()

	p, err := pricing.NewProduct(2, 2_500_000, []pricing.WholesaleTier{
		{MinQuantity: 5, UnitPrice: 2_200_000},
		{MinQuantity: 20, UnitPrice: 2_000_000},
	}, 5, pricing.StockLowStock)
	if err != nil {
		t.Fatalf("NewProduct: %v", err)
	}

	if err := s.Put(ctx, p); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, 2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected product, got nil")
	}
	if got.RetailPrice != 2_500_000 {
		t.Fatalf("retail price mismatch: %d", got.RetailPrice)
	}
	if len(got.WholesaleTiers) != 2 || got.WholesaleTiers[1].UnitPrice != 2_000_000 {
		t.Fatalf("tiers not round-tripped: %+v", got.WholesaleTiers)
	}
	if got.MinOrderQuantity != 5 {
		t.Fatalf("min order quantity mismatch: %d", got.MinOrderQuantity)
	}
	if got.StockStatus != pricing.StockLowStock {
		t.Fatalf("stock status mismatch: %s", got.StockStatus)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := NewStore(newSimpleMock(), "catalog")

	got, err := s.Get(context.Background(), 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing product, got %+v", got)
	}
}

func TestGet_DefaultsApplied(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "catalog")

	// A record with no min order quantity and no stock status, as older
	// catalog rows were written.
	item, err := attributevalue.MarshalMap(productRecord{
		ProductID:   7,
		RetailPrice: 150_000,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	mock.table["7"] = item

	got, err := s.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.MinOrderQuantity != 1 {
		t.Fatalf("expected min order quantity default 1, got %d", got.MinOrderQuantity)
	}
	if got.StockStatus != pricing.StockInStock {
		t.Fatalf("expected stock status default in_stock, got %s", got.StockStatus)
	}
}

func TestGet_MissingRetailPriceRejected(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "catalog")

	mock.table["8"] = map[string]types.AttributeValue{
		"product_id": &types.AttributeValueMemberN{Value: "8"},
	}

	_, err := s.Get(context.Background(), 8)
	var verr *pricing.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for record without retail price, got %v", err)
	}
}
