// Package catalog reads product records from the catalog DynamoDB table and
// hands the pricing engine fully-resolved, validated products.
package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/pharmakart/go-pharma-checkout/internal/aws"
	"github.com/pharmakart/go-pharma-checkout/internal/pricing"
)

// Store encapsulates reads against the catalog table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
}

// NewStore creates a new catalog Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
	}
}

type tierRecord struct {
	MinQuantity int   `dynamodbav:"min_quantity"`
	UnitPrice   int64 `dynamodbav:"unit_price"`
}

type productRecord struct {
	ProductID        int          `dynamodbav:"product_id"` // PK
	RetailPrice      int64        `dynamodbav:"retail_price"`
	WholesaleTiers   []tierRecord `dynamodbav:"wholesale_tiers,omitempty"`
	MinOrderQuantity int          `dynamodbav:"min_order_quantity,omitempty"`
	StockStatus      string       `dynamodbav:"stock_status,omitempty"`
}

// Get fetches a product by id. Returns (nil, nil) if not found. A stored
// record missing its retail price fails validation rather than pricing at
// zero.
func (s *Store) Get(ctx context.Context, productID int) (*pricing.Product, error) {
	key := map[string]types.AttributeValue{
		"product_id": &types.AttributeValueMemberN{Value: strconv.Itoa(productID)},
	}
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var rec productRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}

	tiers := make([]pricing.WholesaleTier, 0, len(rec.WholesaleTiers))
	for _, t := range rec.WholesaleTiers {
		tiers = append(tiers, pricing.WholesaleTier{MinQuantity: t.MinQuantity, UnitPrice: t.UnitPrice})
	}
	if len(tiers) == 0 {
		tiers = nil
	}

	stock := rec.StockStatus
	if stock == "" {
		stock = pricing.StockInStock
	}

	p, err := pricing.NewProduct(rec.ProductID, rec.RetailPrice, tiers, rec.MinOrderQuantity, stock)
	if err != nil {
		return nil, fmt.Errorf("product %d: %w", productID, err)
	}
	return &p, nil
}

// Put stores a product record. Used by seeding tooling and tests; the
// storefront admin surface owns catalog writes in production.
func (s *Store) Put(ctx context.Context, p pricing.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}

	rec := productRecord{
		ProductID:        p.ID,
		RetailPrice:      p.RetailPrice,
		MinOrderQuantity: p.MinOrderQuantity,
		StockStatus:      p.StockStatus,
	}
	for _, t := range p.WholesaleTiers {
		rec.WholesaleTiers = append(rec.WholesaleTiers, tierRecord{MinQuantity: t.MinQuantity, UnitPrice: t.UnitPrice})
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}
