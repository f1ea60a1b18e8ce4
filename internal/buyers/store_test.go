package buyers

import (
	"context"
	"errors"
	"sync"
	"testing"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/pharmakart/go-pharma-checkout/internal/pricing"
)

type simpleMock struct {
	mu    sync.Mutex
	table map[string]map[string]types.AttributeValue
}

func newSimpleMock() *simpleMock {
	return &simpleMock{table: map[string]map[string]types.AttributeValue{}}
}

func (m *simpleMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keyAttr, ok := params.Item["buyer_id"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("missing buyer_id")
	}
	m.table[keyAttr.Value] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *simpleMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keyAttr, ok := params.Key["buyer_id"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("missing buyer_id")
	}
	item, ok := m.table[keyAttr.Value]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *simpleMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	return nil, errors.New("not supported by buyers mock")
}

func (m *simpleMock) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	return nil, errors.New("not supported by buyers mock")
}

func TestContext_StoredProfile(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "buyers")
	ctx := context.Background()

	want := pricing.BuyerContext{
		Role:           pricing.RoleWholesaleBuyer,
		ApprovalStatus: pricing.ApprovalApproved,
		LoyaltyPercent: 10,
	}
	if err := s.Put(ctx, "buyer-1", want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Context(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if got != want {
		t.Fatalf("profile mismatch: got %+v want %+v", got, want)
	}
	if !got.WholesaleUnlocked() {
		t.Fatal("approved wholesaler should unlock tiered pricing")
	}
}

func TestContext_MissingProfileIsGuest(t *testing.T) {
	s := NewStore(newSimpleMock(), "buyers")

	got, err := s.Context(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if got != pricing.Guest() {
		t.Fatalf("expected guest context, got %+v", got)
	}
}

func TestContext_EmptyIDIsGuest(t *testing.T) {
	s := NewStore(newSimpleMock(), "buyers")

	got, err := s.Context(context.Background(), "")
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if got.Role != pricing.RoleGeneralPublic || got.LoyaltyPercent != 0 {
		t.Fatalf("expected guest context, got %+v", got)
	}
}

func TestContext_MalformedProfileRejected(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "buyers")

	mock.table["bad"] = map[string]types.AttributeValue{
		"buyer_id":        &types.AttributeValueMemberS{Value: "bad"},
		"role":            &types.AttributeValueMemberS{Value: "moderator"},
		"approval_status": &types.AttributeValueMemberS{Value: pricing.ApprovalApproved},
	}

	_, err := s.Context(context.Background(), "bad")
	var verr *pricing.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for unknown role, got %v", err)
	}
}
