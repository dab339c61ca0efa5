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

var ErrOrderNotFound = errors.New("order not found")

type OrderRepository struct {
	client    *dynamodb.Client
	tableName string
}

func NewOrderRepository(client *dynamodb.Client, tableName string) *OrderRepository {
	return &OrderRepository{
		client:    client,
		tableName: tableName,
	}
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	av, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put order: %w", err)
	}

	return nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if result.Item == nil {
		return nil, ErrOrderNotFound
	}

	var order domain.Order
	if err := attributevalue.UnmarshalMap(result.Item, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}

	return &order, nil
}

// GetOrders batch-reads orders by id, preserving the input order and
// dropping ids with no record.
func (r *OrderRepository) GetOrders(ctx context.Context, orderIDs []string) ([]domain.Order, error) {
	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	keys := make([]map[string]types.AttributeValue, 0, len(orderIDs))
	for _, id := range orderIDs {
		keys = append(keys, map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: id},
		})
	}

	result, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
		RequestItems: map[string]types.KeysAndAttributes{
			r.tableName: {Keys: keys},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to batch get orders: %w", err)
	}

	byID := make(map[string]domain.Order, len(orderIDs))
	for _, item := range result.Responses[r.tableName] {
		var order domain.Order
		if err := attributevalue.UnmarshalMap(item, &order); err != nil {
			return nil, fmt.Errorf("failed to unmarshal order: %w", err)
		}
		byID[order.OrderID] = order
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		if order, ok := byID[id]; ok {
			orders = append(orders, order)
		}
	}

	return orders, nil
}

// UpdateStatus changes an order's status. Status is the only mutable
// field of a persisted order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	update := expression.Set(expression.Name("status"), expression.Value(status))
	condition := expression.AttributeExists(expression.Name("order_id"))

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(condition).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build status expression: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return nil
}
