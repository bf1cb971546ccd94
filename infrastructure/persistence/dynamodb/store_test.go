package dynamodb

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClient keeps items in memory and understands the two condition
// expressions this package writes
type fakeClient struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
	err   error
}

func newFakeClient() *fakeClient {
	return &fakeClient{items: make(map[string]map[string]types.AttributeValue)}
}

func itemKey(item map[string]types.AttributeValue) string {
	return str(item["PK"]) + "|" + str(item["SK"])
}

func str(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (c *fakeClient) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return &dynamodb.GetItemOutput{Item: c.items[itemKey(in.Key)]}, nil
}

func (c *fakeClient) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	key := itemKey(in.Item)
	if existing, ok := c.items[key]; ok && in.ConditionExpression != nil {
		now := str(in.ExpressionAttributeValues[":now"])
		owner := str(in.ExpressionAttributeValues[":owner"])
		if str(existing["ExpiresAt"]) >= now && str(existing["Owner"]) != owner {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	c.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (c *fakeClient) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := itemKey(in.Key)
	existing, ok := c.items[key]
	if !ok || str(existing["LeaseID"]) != str(in.ExpressionAttributeValues[":leaseId"]) {
		return nil, &types.ConditionalCheckFailedException{}
	}
	delete(c.items, key)
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	s := NewStore(client, "brainbrowser", zap.NewNop())

	_, found, err := s.Get(ctx, "brainBrowser")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "brainBrowser", `{"lastNeuronId":2}`))
	value, found, err := s.Get(ctx, "brainBrowser")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"lastNeuronId":2}`, value)

	stored := client.items["SESSION#brainBrowser|RECORD"]
	assert.Equal(t, "RECORD", str(stored["SK"]))
}

func TestStore_ClientErrors(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	client.err = errors.New("throttled")
	s := NewStore(client, "brainbrowser", zap.NewNop())

	_, _, err := s.Get(ctx, "brainBrowser")
	assert.ErrorContains(t, err, "throttled")
	assert.ErrorContains(t, s.Set(ctx, "brainBrowser", "x"), "throttled")
}

func TestLeaser(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := NewLeaser(client, "brainbrowser", zap.NewNop())
	l.now = func() time.Time { return now }

	lease, err := l.Acquire(ctx, "brainBrowser", "server-a", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Minute), lease.ExpiresAt())

	_, err = l.Acquire(ctx, "brainBrowser", "server-b", time.Minute)
	assert.ErrorIs(t, err, ErrLeaseHeld)

	// The holder may renew
	renewed, err := l.Acquire(ctx, "brainBrowser", "server-a", time.Minute)
	require.NoError(t, err)

	// The stale acquisition no longer owns the item
	require.NoError(t, lease.Release(ctx))
	_, err = l.Acquire(ctx, "brainBrowser", "server-b", time.Minute)
	assert.ErrorIs(t, err, ErrLeaseHeld)

	require.NoError(t, renewed.Release(ctx))
	_, err = l.Acquire(ctx, "brainBrowser", "server-b", time.Minute)
	require.NoError(t, err)
}

func TestLeaser_ExpiredLeaseIsTakenOver(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := NewLeaser(client, "brainbrowser", zap.NewNop())
	l.now = func() time.Time { return now }

	lease, err := l.Acquire(ctx, "brainBrowser", "server-a", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	assert.True(t, lease.IsExpired())
	_, err = l.Acquire(ctx, "brainBrowser", "server-b", time.Minute)
	require.NoError(t, err)
}
