// Package buyers reads buyer profiles from DynamoDB and maps them to the
// pricing engine's buyer context. An absent profile is an anonymous/guest
// buyer: general public role, no loyalty discount.
package buyers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/pharmakart/go-pharma-checkout/internal/aws"
	"github.com/pharmakart/go-pharma-checkout/internal/pricing"
)

// Store encapsulates reads against the buyer profiles table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
}

// NewStore creates a new buyer profile Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
	}
}

type profileRecord struct {
	BuyerID        string  `dynamodbav:"buyer_id"` // PK
	Role           string  `dynamodbav:"role"`
	ApprovalStatus string  `dynamodbav:"approval_status"`
	LoyaltyPercent float64 `dynamodbav:"loyalty_percent,omitempty"`
}

// Context resolves the pricing context for a buyer id. An empty id or a
// missing profile yields the guest context. A stored profile with a bad role
// or out-of-range loyalty percentage is an error, not a silent downgrade.
func (s *Store) Context(ctx context.Context, buyerID string) (pricing.BuyerContext, error) {
	if buyerID == "" {
		return pricing.Guest(), nil
	}

	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"buyer_id": &types.AttributeValueMemberS{Value: buyerID},
		},
	})
	if err != nil {
		return pricing.BuyerContext{}, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return pricing.Guest(), nil
	}

	var rec profileRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return pricing.BuyerContext{}, fmt.Errorf("unmarshal profile: %w", err)
	}

	bc := pricing.BuyerContext{
		Role:           rec.Role,
		ApprovalStatus: rec.ApprovalStatus,
		LoyaltyPercent: rec.LoyaltyPercent,
	}
	if err := bc.Validate(); err != nil {
		return pricing.BuyerContext{}, fmt.Errorf("profile %s: %w", buyerID, err)
	}
	return bc, nil
}

// Put stores a buyer profile. Used by account tooling and tests.
func (s *Store) Put(ctx context.Context, buyerID string, bc pricing.BuyerContext) error {
	if err := bc.Validate(); err != nil {
		return err
	}

	item, err := attributevalue.MarshalMap(profileRecord{
		BuyerID:        buyerID,
		Role:           bc.Role,
		ApprovalStatus: bc.ApprovalStatus,
		LoyaltyPercent: bc.LoyaltyPercent,
	})
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
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
