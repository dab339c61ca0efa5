package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/wearvault/storefront-service/internal/domain"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductRepository is the catalog store and the inventory ledger. The
// availability counters on the product items are the sole source of
// truth for stock.
type ProductRepository struct {
	client    *dynamodb.Client
	tableName string
}

func NewProductRepository(client *dynamodb.Client, tableName string) *ProductRepository {
	return &ProductRepository{
		client:    client,
		tableName: tableName,
	}
}

func (r *ProductRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	av, err := attributevalue.MarshalMap(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})

	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}

	return nil
}

func (r *ProductRepository) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	if result.Item == nil {
		return nil, ErrProductNotFound
	}

	var product domain.Product
	if err := attributevalue.UnmarshalMap(result.Item, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}

	return &product, nil
}

func (r *ProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})

	var products []domain.Product
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan products: %w", err)
		}

		var batch []domain.Product
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal products: %w", err)
		}
		products = append(products, batch...)
	}

	return products, nil
}

type sizeSlot struct {
	txType domain.TransactionType
	size   string
}

// Reserve applies every line's stock decrement as a single DynamoDB
// transaction: one conditional update per product, each counter
// required to stay at or above zero. If any counter would go short the
// whole transaction cancels and no stock is mutated. Combinations
// without an availability record are unconstrained and not decremented.
func (r *ProductRepository) Reserve(ctx context.Context, lines []domain.CartLine) error {
	need := make(map[string]map[sizeSlot]int)
	var productOrder []string
	slotOrder := make(map[string][]sizeSlot)

	for _, line := range lines {
		slots, ok := need[line.ProductID]
		if !ok {
			slots = make(map[sizeSlot]int)
			need[line.ProductID] = slots
			productOrder = append(productOrder, line.ProductID)
		}
		slot := sizeSlot{txType: line.Type, size: line.Size}
		if _, ok := slots[slot]; !ok {
			slotOrder[line.ProductID] = append(slotOrder[line.ProductID], slot)
		}
		slots[slot] += line.Quantity
	}

	var items []types.TransactWriteItem
	var itemProducts []string // product id per transact item, for error mapping

	for _, productID := range productOrder {
		product, err := r.GetProduct(ctx, productID)
		if err != nil {
			return err
		}

		upd := expression.UpdateBuilder{}
		var conds []expression.ConditionBuilder
		for _, slot := range slotOrder[productID] {
			if _, constrained := product.Available(slot.txType, slot.size); !constrained {
				continue
			}
			qty := need[productID][slot]
			path := expression.Name(fmt.Sprintf("availability.%s.%s", slot.txType, slot.size))
			upd = upd.Set(path, expression.Minus(path, expression.Value(qty)))
			conds = append(conds, path.GreaterThanEqual(expression.Value(qty)))
		}
		if len(conds) == 0 {
			// nothing to decrement for this product
			continue
		}
		upd = upd.Set(expression.Name("updated_at"), expression.Value(time.Now()))

		cond := conds[0]
		for _, c := range conds[1:] {
			cond = cond.And(c)
		}

		expr, err := expression.NewBuilder().
			WithUpdate(upd).
			WithCondition(cond).
			Build()
		if err != nil {
			return fmt.Errorf("failed to build reserve expression: %w", err)
		}

		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName: aws.String(r.tableName),
				Key: map[string]types.AttributeValue{
					"product_id": &types.AttributeValueMemberS{Value: productID},
				},
				ExpressionAttributeNames:  expr.Names(),
				ExpressionAttributeValues: expr.Values(),
				UpdateExpression:          expr.Update(),
				ConditionExpression:       expr.Condition(),
			},
		})
		itemProducts = append(itemProducts, productID)
	}

	if len(items) == 0 {
		return nil
	}

	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			for i, reason := range canceled.CancellationReasons {
				if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" && i < len(itemProducts) {
					return fmt.Errorf("product %s: %w", itemProducts[i], ErrInsufficientStock)
				}
			}
			return fmt.Errorf("reserve transaction canceled: %w", err)
		}
		return fmt.Errorf("failed to reserve stock: %w", err)
	}

	return nil
}
