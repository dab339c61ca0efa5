package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/wearvault/storefront-service/internal/domain"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrUserExists      = errors.New("user already exists")
)

const emailIndexName = "email-index"

type UserRepository struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepository(client *dynamodb.Client, tableName string) *UserRepository {
	return &UserRepository{
		client:    client,
		tableName: tableName,
	}
}

// CreateProfile writes a new profile, failing with ErrUserExists when
// the user id is already taken.
func (r *UserRepository) CreateProfile(ctx context.Context, profile *domain.UserProfile) error {
	av, err := attributevalue.MarshalMap(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to put profile: %w", err)
	}

	return nil
}

func (r *UserRepository) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if result.Item == nil {
		return nil, ErrProfileNotFound
	}

	var profile domain.UserProfile
	if err := attributevalue.UnmarshalMap(result.Item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return &profile, nil
}

// GetProfileByEmail looks a profile up through the email GSI. Used by
// login, where the caller has no user id yet.
func (r *UserRepository) GetProfileByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	keyCond := expression.Key("email").Equal(expression.Value(email))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(emailIndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query profile by email: %w", err)
	}

	if len(result.Items) == 0 {
		return nil, ErrProfileNotFound
	}

	var profile domain.UserProfile
	if err := attributevalue.UnmarshalMap(result.Items[0], &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return &profile, nil
}

// PutProfile overwrites an existing profile. Used for wishlist
// mutations, which are read-modify-write on the whole record.
func (r *UserRepository) PutProfile(ctx context.Context, profile *domain.UserProfile) error {
	av, err := attributevalue.MarshalMap(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put profile: %w", err)
	}

	return nil
}

// AppendOrder atomically appends an order id to the profile's order
// history without rewriting the rest of the record.
func (r *UserRepository) AppendOrder(ctx context.Context, userID, orderID string) error {
	update := expression.Set(
		expression.Name("orders"),
		expression.ListAppend(
			expression.IfNotExists(expression.Name("orders"), expression.Value([]string{})),
			expression.Value([]string{orderID}),
		),
	)
	condition := expression.AttributeExists(expression.Name("user_id"))

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(condition).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build append expression: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("failed to append order: %w", err)
	}

	return nil
}
