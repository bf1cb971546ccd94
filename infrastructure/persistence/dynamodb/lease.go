package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const leaseSortKey = "LEASE"

// ErrLeaseHeld is returned when another owner holds an unexpired lease
var ErrLeaseHeld = errors.New("session lease already held")

// Leaser grants single-writer leases on a session key, so two servers
// never overwrite each other's record. Leases are conditional writes that
// expire by timestamp.
type Leaser struct {
	client    Client
	tableName string
	logger    *zap.Logger
	now       func() time.Time
}

// LeaseRecord is the stored lease item
type LeaseRecord struct {
	PK        string `dynamodbav:"PK"`        // SESSION#<key>
	SK        string `dynamodbav:"SK"`        // LEASE
	LeaseID   string `dynamodbav:"LeaseID"`   // unique per acquisition
	Owner     string `dynamodbav:"Owner"`     // server instance id
	ExpiresAt string `dynamodbav:"ExpiresAt"` // RFC3339
	TTL       int64  `dynamodbav:"TTL"`       // unix seconds, for DynamoDB TTL
}

// NewLeaser creates a leaser on tableName
func NewLeaser(client Client, tableName string, logger *zap.Logger) *Leaser {
	return &Leaser{client: client, tableName: tableName, logger: logger, now: time.Now}
}

// Acquire takes the lease on key for duration, failing with ErrLeaseHeld
// while another owner's lease is live
func (l *Leaser) Acquire(ctx context.Context, key, owner string, duration time.Duration) (*Lease, error) {
	now := l.now().UTC()
	expiresAt := now.Add(duration)
	leaseID := fmt.Sprintf("%s_%d", owner, now.UnixNano())

	item, err := attributevalue.MarshalMap(LeaseRecord{
		PK:        sessionPrefix + key,
		SK:        leaseSortKey,
		LeaseID:   leaseID,
		Owner:     owner,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		TTL:       expiresAt.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal lease: %w", err)
	}

	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(l.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) OR ExpiresAt < :now OR #owner = :owner"),
		ExpressionAttributeNames: map[string]string{
			"#owner": "Owner",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now":   &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
			":owner": &types.AttributeValueMemberS{Value: owner},
		},
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			l.logger.Debug("Session lease held elsewhere", zap.String("key", key), zap.String("owner", owner))
			return nil, fmt.Errorf("%s: %w", key, ErrLeaseHeld)
		}
		return nil, fmt.Errorf("acquire lease %s: %w", key, err)
	}

	l.logger.Info("Acquired session lease",
		zap.String("key", key),
		zap.String("owner", owner),
		zap.Duration("duration", duration),
	)
	return &Lease{leaser: l, key: key, leaseID: leaseID, owner: owner, expiresAt: expiresAt}, nil
}

// Release drops the lease if this acquisition still holds it
func (l *Leaser) Release(ctx context.Context, key, leaseID string) error {
	_, err := l.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(l.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: sessionPrefix + key},
			"SK": &types.AttributeValueMemberS{Value: leaseSortKey},
		},
		ConditionExpression: aws.String("LeaseID = :leaseId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":leaseId": &types.AttributeValueMemberS{Value: leaseID},
		},
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			l.logger.Warn("Session lease already released or taken over", zap.String("key", key))
			return nil
		}
		return fmt.Errorf("release lease %s: %w", key, err)
	}
	l.logger.Debug("Released session lease", zap.String("key", key))
	return nil
}

// Lease is an acquired session lease
type Lease struct {
	leaser    *Leaser
	key       string
	leaseID   string
	owner     string
	expiresAt time.Time
}

// Release gives the lease back
func (l *Lease) Release(ctx context.Context) error {
	return l.leaser.Release(ctx, l.key, l.leaseID)
}

// ExpiresAt is when the lease lapses
func (l *Lease) ExpiresAt() time.Time {
	return l.expiresAt
}

// IsExpired checks if the lease has lapsed
func (l *Lease) IsExpired() bool {
	return l.leaser.now().After(l.expiresAt)
}
